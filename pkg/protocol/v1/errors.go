package v1

import (
	"errors"
	"fmt"
)

// ErrInvalidMessageData is the root of the validation error family. Every
// construction or decode failure in this package wraps it, so callers can
// treat "this buffer/these fields were bad" uniformly with
// errors.Is(err, ErrInvalidMessageData) and still branch on the specific
// sub-kind below.
var ErrInvalidMessageData = errors.New("xax: invalid message data")

var (
	// ErrMalformedHeader: buffer shorter than the fixed header, or the
	// protocol version / message type is out of the valid or expected set.
	ErrMalformedHeader = fmt.Errorf("%w: malformed header", ErrInvalidMessageData)

	// ErrTruncatedBuffer: buffer shorter than the total length implied by
	// the header's variable-width fields.
	ErrTruncatedBuffer = fmt.Errorf("%w: truncated buffer", ErrInvalidMessageData)

	// ErrTrailingData: bytes remain past the implied total length. The
	// format is not self-terminating, so trailing garbage means framing
	// corruption upstream.
	ErrTrailingData = fmt.Errorf("%w: trailing data", ErrInvalidMessageData)

	// ErrInvalidFieldValue: an enumerated or length-constrained field is
	// outside its closed set, at construction or decode time.
	ErrInvalidFieldValue = fmt.Errorf("%w: invalid field value", ErrInvalidMessageData)
)
