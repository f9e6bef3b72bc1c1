// Package v1 implements version 1 of the external address translation
// wireformat: the fixed binary messages exchanged between a stateless NAT64
// translator and its address-translation decision service. It covers
// byte-exact encoding and decoding with full validation, the three message
// value types, and request/response correlation. Transport, framing policy
// and the translation decision itself live elsewhere.
package v1

// ProtocolVersion is the single wire protocol version this package speaks.
const ProtocolVersion uint8 = 1

// MessageType is the header discriminator identifying a message kind.
type MessageType uint8

const (
	TypeRequest            MessageType = 1
	TypeSuccessfulResponse MessageType = 2
	TypeErroneousResponse  MessageType = 3
)

// String returns a human-readable name for the message type.
func (t MessageType) String() string {
	switch t {
	case TypeRequest:
		return "Request"
	case TypeSuccessfulResponse:
		return "SuccessfulResponse"
	case TypeErroneousResponse:
		return "ErroneousResponse"
	default:
		return "Unknown"
	}
}

func (t MessageType) valid() bool {
	return t == TypeRequest || t == TypeSuccessfulResponse || t == TypeErroneousResponse
}

// AddressFamily selects the width of the address field that follows it on
// the wire.
type AddressFamily uint8

const (
	FamilyIPv4 AddressFamily = 1
	FamilyIPv6 AddressFamily = 2
)

// String returns a human-readable name for the address family.
func (f AddressFamily) String() string {
	switch f {
	case FamilyIPv4:
		return "IPv4"
	case FamilyIPv6:
		return "IPv6"
	default:
		return "Unknown"
	}
}

// AddrLen returns the wire width in bytes of an address of this family, or
// 0 for an invalid family.
func (f AddressFamily) AddrLen() int {
	switch f {
	case FamilyIPv4:
		return 4
	case FamilyIPv6:
		return 16
	default:
		return 0
	}
}

func (f AddressFamily) valid() bool {
	return f == FamilyIPv4 || f == FamilyIPv6
}

// ErrorCode is the closed set of failure reasons an erroneous response can
// carry back to the translator.
type ErrorCode uint8

const (
	// CodeUnusableAddress: the address cannot take part in translation
	// (unspecified, loopback, multicast, zero-network or broadcast).
	CodeUnusableAddress ErrorCode = 1
	// CodePolicyForbidden: translation refused by policy, e.g. a private
	// address while private translation is disabled.
	CodePolicyForbidden ErrorCode = 2
	// CodeNoMapping: no translation exists for the address, e.g. an IPv6
	// address outside the configured NAT64 prefix.
	CodeNoMapping ErrorCode = 3
	// CodePoolExhausted: the dynamic address pool has no free addresses.
	CodePoolExhausted ErrorCode = 4
	// CodeMalformedRequest: best-effort reply to a request that failed to
	// decode; such replies carry a zero transaction id since the real one
	// could not be recovered.
	CodeMalformedRequest ErrorCode = 5
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeUnusableAddress:
		return "UnusableAddress"
	case CodePolicyForbidden:
		return "PolicyForbidden"
	case CodeNoMapping:
		return "NoMapping"
	case CodePoolExhausted:
		return "PoolExhausted"
	case CodeMalformedRequest:
		return "MalformedRequest"
	default:
		return "Unknown"
	}
}

func (c ErrorCode) valid() bool {
	return c >= CodeUnusableAddress && c <= CodeMalformedRequest
}
