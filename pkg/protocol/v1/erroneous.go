package v1

import "fmt"

// ErroneousResponseMessage tells the translator why an address could not be
// translated. Like the successful response it holds the request's
// transaction id by value only.
type ErroneousResponseMessage struct {
	txid uint32
	code ErrorCode
}

// NewErroneousResponse builds an erroneous response from explicit fields,
// validating the error code against its closed set.
func NewErroneousResponse(txid uint32, code ErrorCode) (*ErroneousResponseMessage, error) {
	if !code.valid() {
		return nil, fmt.Errorf("unknown error code %d: %w", uint8(code), ErrInvalidFieldValue)
	}
	return &ErroneousResponseMessage{txid: txid, code: code}, nil
}

// ParseErroneousResponse decodes and fully validates an erroneous response
// buffer.
func ParseErroneousResponse(buf []byte) (*ErroneousResponseMessage, error) {
	_, txid, err := parseHeader(buf, TypeErroneousResponse)
	if err != nil {
		return nil, err
	}
	if len(buf) < ErroneousResponseSize {
		return nil, fmt.Errorf("erroneous response needs %d bytes, got %d: %w", ErroneousResponseSize, len(buf), ErrTruncatedBuffer)
	}
	if len(buf) > ErroneousResponseSize {
		return nil, fmt.Errorf("%d bytes past erroneous response end: %w", len(buf)-ErroneousResponseSize, ErrTrailingData)
	}
	code := ErrorCode(buf[offBody])
	if !code.valid() {
		return nil, fmt.Errorf("unknown error code %d: %w", buf[offBody], ErrInvalidFieldValue)
	}
	return &ErroneousResponseMessage{txid: txid, code: code}, nil
}

// TransactionID returns the transaction id echoed from the request.
func (m *ErroneousResponseMessage) TransactionID() uint32 { return m.txid }

// Code returns the failure reason.
func (m *ErroneousResponseMessage) Code() ErrorCode { return m.code }

// Type returns TypeErroneousResponse.
func (m *ErroneousResponseMessage) Type() MessageType { return TypeErroneousResponse }

// Encode serializes the response. Encoding a constructed message is total.
func (m *ErroneousResponseMessage) Encode() []byte {
	buf := make([]byte, ErroneousResponseSize)
	putHeader(buf, TypeErroneousResponse, m.txid)
	buf[offBody] = byte(m.code)
	return buf
}
