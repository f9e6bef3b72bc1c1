package v1

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
)

// Wire layout (big-endian, byte-exact):
//
//	offset 0: protocol_version (1)
//	offset 1: message_type     (1)
//	offset 2: transaction_id   (4)
//
// Request and SuccessfulResponse continue with address_family (1) and the
// raw address (4 or 16 bytes, per family). ErroneousResponse continues with
// error_code (1). Total length is fully determined by the header fields;
// anything shorter or longer is rejected.
const (
	// HeaderSize is the size of the fixed header shared by all messages.
	HeaderSize = 6

	// ErroneousResponseSize is the total size of an erroneous response.
	ErroneousResponseSize = HeaderSize + 1

	offVersion = 0
	offType    = 1
	offTxID    = 2
	offBody    = HeaderSize
)

// MessageSize returns the total wire size of a request or successful
// response carrying an address of the given family.
func MessageSize(family AddressFamily) int {
	return HeaderSize + 1 + family.AddrLen()
}

// putHeader writes the fixed header. buf must be at least HeaderSize long.
func putHeader(buf []byte, t MessageType, txid uint32) {
	buf[offVersion] = ProtocolVersion
	buf[offType] = byte(t)
	binary.BigEndian.PutUint32(buf[offTxID:offTxID+4], txid)
}

// parseHeader validates the fixed header and returns its fields. When
// expected is nonzero the message type must match it.
func parseHeader(buf []byte, expected MessageType) (MessageType, uint32, error) {
	if len(buf) < HeaderSize {
		return 0, 0, fmt.Errorf("header needs %d bytes, got %d: %w", HeaderSize, len(buf), ErrMalformedHeader)
	}
	if v := buf[offVersion]; v != ProtocolVersion {
		return 0, 0, fmt.Errorf("protocol version must be %d, got %d: %w", ProtocolVersion, v, ErrMalformedHeader)
	}
	t := MessageType(buf[offType])
	if !t.valid() {
		return 0, 0, fmt.Errorf("unknown message type %d: %w", uint8(t), ErrMalformedHeader)
	}
	if expected != 0 && t != expected {
		return 0, 0, fmt.Errorf("expected %s, got %s: %w", expected, t, ErrMalformedHeader)
	}
	return t, binary.BigEndian.Uint32(buf[offTxID : offTxID+4]), nil
}

// checkAddress validates that addr is exactly an address of the given
// family. IPv4-mapped IPv6 addresses do not pass as IPv4.
func checkAddress(family AddressFamily, addr netip.Addr) error {
	switch family {
	case FamilyIPv4:
		if !addr.Is4() {
			return fmt.Errorf("address %s is not IPv4: %w", addr, ErrInvalidFieldValue)
		}
	case FamilyIPv6:
		if !addr.Is6() || addr.Is4In6() {
			return fmt.Errorf("address %s is not IPv6: %w", addr, ErrInvalidFieldValue)
		}
	default:
		return fmt.Errorf("unknown address family %d: %w", uint8(family), ErrInvalidFieldValue)
	}
	return nil
}

// putAddressed encodes a header-plus-address message. The caller must have
// validated the family/address pair already; encoding is total.
func putAddressed(t MessageType, txid uint32, family AddressFamily, addr netip.Addr) []byte {
	buf := make([]byte, MessageSize(family))
	putHeader(buf, t, txid)
	buf[offBody] = byte(family)
	copy(buf[offBody+1:], addr.AsSlice())
	return buf
}

// parseAddressed decodes the family and address of a request or successful
// response, enforcing exact total length.
func parseAddressed(buf []byte) (AddressFamily, netip.Addr, error) {
	if len(buf) < offBody+1 {
		return 0, netip.Addr{}, fmt.Errorf("buffer ends before address family: %w", ErrTruncatedBuffer)
	}
	family := AddressFamily(buf[offBody])
	if !family.valid() {
		return 0, netip.Addr{}, fmt.Errorf("unknown address family %d: %w", buf[offBody], ErrInvalidFieldValue)
	}
	total := MessageSize(family)
	if len(buf) < total {
		return 0, netip.Addr{}, fmt.Errorf("%s message needs %d bytes, got %d: %w", family, total, len(buf), ErrTruncatedBuffer)
	}
	if len(buf) > total {
		return 0, netip.Addr{}, fmt.Errorf("%d bytes past %s message end: %w", len(buf)-total, family, ErrTrailingData)
	}
	var addr netip.Addr
	if family == FamilyIPv4 {
		addr = netip.AddrFrom4([4]byte(buf[offBody+1 : offBody+5]))
	} else {
		addr = netip.AddrFrom16([16]byte(buf[offBody+1 : offBody+17]))
	}
	return family, addr, nil
}

// ReadWireformat reads exactly one wireformat message off a byte stream and
// returns its raw bytes, using the header-implied length for framing. The
// returned buffer still has to be parsed; only the fields needed to size
// the message are validated here. Stream errors are returned as-is, so a
// clean end of stream surfaces as io.EOF.
func ReadWireformat(r io.Reader) ([]byte, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("stream ended inside the fixed header: %w", ErrMalformedHeader)
		}
		return nil, err
	}
	t, _, err := parseHeader(buf, 0)
	if err != nil {
		return nil, err
	}
	// Past this point the header is complete and valid; a short read is a
	// truncated body, never a malformed header.
	buf = append(buf, 0)
	if _, err := io.ReadFull(r, buf[HeaderSize:]); err != nil {
		return nil, fmt.Errorf("stream ended after the header of a %s message: %w", t, ErrTruncatedBuffer)
	}
	total := ErroneousResponseSize
	if t != TypeErroneousResponse {
		family := AddressFamily(buf[offBody])
		if !family.valid() {
			return nil, fmt.Errorf("unknown address family %d: %w", buf[offBody], ErrInvalidFieldValue)
		}
		total = MessageSize(family)
	}
	buf = append(buf, make([]byte, total-len(buf))...)
	if n, err := io.ReadFull(r, buf[HeaderSize+1:]); err != nil {
		return nil, fmt.Errorf("stream ended %d bytes into a %d byte message: %w", HeaderSize+1+n, total, ErrTruncatedBuffer)
	}
	return buf, nil
}
