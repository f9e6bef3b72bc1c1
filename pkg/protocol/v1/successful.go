package v1

import "net/netip"

// SuccessfulResponseMessage carries the translated address back to the
// translator. It holds the request's transaction id by value only; there is
// no reference back to the request object.
type SuccessfulResponseMessage struct {
	txid   uint32
	family AddressFamily
	addr   netip.Addr
}

// NewSuccessfulResponse builds a successful response from explicit fields,
// validating the translated address against its family.
func NewSuccessfulResponse(txid uint32, family AddressFamily, addr netip.Addr) (*SuccessfulResponseMessage, error) {
	if err := checkAddress(family, addr); err != nil {
		return nil, err
	}
	return &SuccessfulResponseMessage{txid: txid, family: family, addr: addr}, nil
}

// ParseSuccessfulResponse decodes and fully validates a successful response
// buffer.
func ParseSuccessfulResponse(buf []byte) (*SuccessfulResponseMessage, error) {
	_, txid, err := parseHeader(buf, TypeSuccessfulResponse)
	if err != nil {
		return nil, err
	}
	family, addr, err := parseAddressed(buf)
	if err != nil {
		return nil, err
	}
	return &SuccessfulResponseMessage{txid: txid, family: family, addr: addr}, nil
}

// TransactionID returns the transaction id echoed from the request.
func (m *SuccessfulResponseMessage) TransactionID() uint32 { return m.txid }

// Family returns the family of the translated address.
func (m *SuccessfulResponseMessage) Family() AddressFamily { return m.family }

// Address returns the translated address.
func (m *SuccessfulResponseMessage) Address() netip.Addr { return m.addr }

// Type returns TypeSuccessfulResponse.
func (m *SuccessfulResponseMessage) Type() MessageType { return TypeSuccessfulResponse }

// Encode serializes the response. Encoding a constructed message is total.
func (m *SuccessfulResponseMessage) Encode() []byte {
	return putAddressed(TypeSuccessfulResponse, m.txid, m.family, m.addr)
}
