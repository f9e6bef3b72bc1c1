package v1

import "net/netip"

// RequestMessage asks the decision service to translate one address. It is
// an immutable value; construct it with NewRequestMessage or ParseRequest
// so validation can never be bypassed.
type RequestMessage struct {
	txid   uint32
	family AddressFamily
	addr   netip.Addr
}

// NewRequestMessage builds a request from explicit fields, validating the
// address against the family.
func NewRequestMessage(txid uint32, family AddressFamily, addr netip.Addr) (*RequestMessage, error) {
	if err := checkAddress(family, addr); err != nil {
		return nil, err
	}
	return &RequestMessage{txid: txid, family: family, addr: addr}, nil
}

// ParseRequest decodes and fully validates a request message buffer.
func ParseRequest(buf []byte) (*RequestMessage, error) {
	_, txid, err := parseHeader(buf, TypeRequest)
	if err != nil {
		return nil, err
	}
	family, addr, err := parseAddressed(buf)
	if err != nil {
		return nil, err
	}
	return &RequestMessage{txid: txid, family: family, addr: addr}, nil
}

// TransactionID returns the opaque correlation token the response must echo.
func (m *RequestMessage) TransactionID() uint32 { return m.txid }

// Family returns the family of the address to translate.
func (m *RequestMessage) Family() AddressFamily { return m.family }

// Address returns the address to translate.
func (m *RequestMessage) Address() netip.Addr { return m.addr }

// Type returns TypeRequest.
func (m *RequestMessage) Type() MessageType { return TypeRequest }

// Encode serializes the request. Encoding a constructed message is total.
func (m *RequestMessage) Encode() []byte {
	return putAddressed(TypeRequest, m.txid, m.family, m.addr)
}

// GenerateSuccessfulResponse builds the success reply for this request,
// carrying the translated address and echoing the request's transaction id.
// This is the only sanctioned way to build a correlated success reply; the
// translated family may differ from the request's.
func (m *RequestMessage) GenerateSuccessfulResponse(family AddressFamily, addr netip.Addr) (*SuccessfulResponseMessage, error) {
	return NewSuccessfulResponse(m.txid, family, addr)
}

// GenerateErroneousResponse builds the failure reply for this request,
// echoing the request's transaction id.
func (m *RequestMessage) GenerateErroneousResponse(code ErrorCode) (*ErroneousResponseMessage, error) {
	return NewErroneousResponse(m.txid, code)
}
