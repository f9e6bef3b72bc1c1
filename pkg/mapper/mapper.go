// Package mapper implements the address-translation decision logic behind a
// NAT64 decision service: given a request for one address, it produces the
// translated address or a typed refusal. It never touches the wire; the
// daemon feeds it decoded requests and encodes whatever it returns.
package mapper

import (
	"fmt"
	"net/netip"

	v1 "xaxlib-go/pkg/protocol/v1"
)

// Mapper decides how a single address translates. Implementations must be
// safe for concurrent use; the daemon calls Translate from one goroutine
// per connection.
type Mapper interface {
	// Translate returns the translated address and its family, or a
	// *TranslationError carrying the wire error code to reply with.
	Translate(req *v1.RequestMessage) (v1.AddressFamily, netip.Addr, error)
}

// TranslationError is the typed refusal a Mapper returns. The daemon copies
// Code into the erroneous response verbatim.
type TranslationError struct {
	Code   v1.ErrorCode
	Reason string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translation failed (%s): %s", e.Code, e.Reason)
}

func failf(code v1.ErrorCode, format string, args ...any) error {
	return &TranslationError{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// checkUsable rejects addresses that can never take part in translation:
// unspecified, loopback and multicast addresses of either family, plus the
// IPv4 zero network and limited broadcast.
func checkUsable(addr netip.Addr) error {
	if addr.IsUnspecified() || addr.IsLoopback() || addr.IsMulticast() {
		return failf(v1.CodeUnusableAddress, "%s is not a translatable address", addr)
	}
	if addr.Is4() {
		b := addr.As4()
		if b[0] == 0 || addr == netip.AddrFrom4([4]byte{255, 255, 255, 255}) {
			return failf(v1.CodeUnusableAddress, "%s is not a translatable address", addr)
		}
	}
	return nil
}

// checkPolicy enforces the private-address policy on top of usability.
func checkPolicy(addr netip.Addr, allowPrivate bool) error {
	if err := checkUsable(addr); err != nil {
		return err
	}
	if !allowPrivate && addr.IsPrivate() {
		return failf(v1.CodePolicyForbidden, "translation of private address %s is disabled", addr)
	}
	return nil
}
