package v1

import (
	"errors"
	"net/netip"
	"testing"
)

var (
	testV4 = netip.MustParseAddr("192.0.2.1")
	testV6 = netip.MustParseAddr("2001:db8::1")
)

func mustRequest(t *testing.T, txid uint32, family AddressFamily, addr netip.Addr) *RequestMessage {
	t.Helper()
	req, err := NewRequestMessage(txid, family, addr)
	if err != nil {
		t.Fatalf("NewRequestMessage failed: %v", err)
	}
	return req
}

func TestRequestRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		family AddressFamily
		addr   netip.Addr
		size   int
	}{
		{"IPv4", FamilyIPv4, testV4, 11},
		{"IPv6", FamilyIPv6, testV6, 23},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			orig := mustRequest(t, 0xDEADBEEF, tc.family, tc.addr)

			data := orig.Encode()
			if len(data) != tc.size {
				t.Fatalf("Expected encoded size %d, got %d", tc.size, len(data))
			}
			if data[0] != ProtocolVersion {
				t.Errorf("Version byte: expected %d, got %d", ProtocolVersion, data[0])
			}
			if MessageType(data[1]) != TypeRequest {
				t.Errorf("Type byte: expected %d, got %d", TypeRequest, data[1])
			}

			parsed, err := ParseRequest(data)
			if err != nil {
				t.Fatalf("ParseRequest failed: %v", err)
			}
			if parsed.TransactionID() != orig.TransactionID() {
				t.Errorf("TransactionID mismatch: expected %#x, got %#x", orig.TransactionID(), parsed.TransactionID())
			}
			if parsed.Family() != orig.Family() {
				t.Errorf("Family mismatch: expected %s, got %s", orig.Family(), parsed.Family())
			}
			if parsed.Address() != orig.Address() {
				t.Errorf("Address mismatch: expected %s, got %s", orig.Address(), parsed.Address())
			}
		})
	}
}

func TestSuccessfulResponseRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name   string
		family AddressFamily
		addr   netip.Addr
	}{
		{"IPv4", FamilyIPv4, testV4},
		{"IPv6", FamilyIPv6, testV6},
	} {
		t.Run(tc.name, func(t *testing.T) {
			orig, err := NewSuccessfulResponse(42, tc.family, tc.addr)
			if err != nil {
				t.Fatalf("NewSuccessfulResponse failed: %v", err)
			}
			parsed, err := ParseSuccessfulResponse(orig.Encode())
			if err != nil {
				t.Fatalf("ParseSuccessfulResponse failed: %v", err)
			}
			if parsed.TransactionID() != 42 || parsed.Family() != tc.family || parsed.Address() != tc.addr {
				t.Errorf("Round trip mismatch: got (%d, %s, %s)", parsed.TransactionID(), parsed.Family(), parsed.Address())
			}
		})
	}
}

func TestErroneousResponseRoundTrip(t *testing.T) {
	orig, err := NewErroneousResponse(7, CodeNoMapping)
	if err != nil {
		t.Fatalf("NewErroneousResponse failed: %v", err)
	}
	data := orig.Encode()
	if len(data) != ErroneousResponseSize {
		t.Fatalf("Expected encoded size %d, got %d", ErroneousResponseSize, len(data))
	}
	parsed, err := ParseErroneousResponse(data)
	if err != nil {
		t.Fatalf("ParseErroneousResponse failed: %v", err)
	}
	if parsed.TransactionID() != 7 {
		t.Errorf("TransactionID mismatch: expected 7, got %d", parsed.TransactionID())
	}
	if parsed.Code() != CodeNoMapping {
		t.Errorf("Code mismatch: expected %s, got %s", CodeNoMapping, parsed.Code())
	}
}

func TestFamilyAddressMismatch(t *testing.T) {
	testCases := []struct {
		name   string
		family AddressFamily
		addr   netip.Addr
	}{
		{"IPv4FamilyWithIPv6Address", FamilyIPv4, testV6},
		{"IPv6FamilyWithIPv4Address", FamilyIPv6, testV4},
		{"IPv6FamilyWith4In6Address", FamilyIPv6, netip.AddrFrom16(netip.MustParseAddr("::ffff:192.0.2.1").As16())},
		{"UnknownFamily", AddressFamily(9), testV4},
		{"ZeroAddress", FamilyIPv4, netip.Addr{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRequestMessage(1, tc.family, tc.addr); !errors.Is(err, ErrInvalidFieldValue) {
				t.Errorf("NewRequestMessage: expected ErrInvalidFieldValue, got %v", err)
			}
			if _, err := NewSuccessfulResponse(1, tc.family, tc.addr); !errors.Is(err, ErrInvalidFieldValue) {
				t.Errorf("NewSuccessfulResponse: expected ErrInvalidFieldValue, got %v", err)
			}
		})
	}
}

func TestErroneousResponseCodeValidation(t *testing.T) {
	for _, code := range []ErrorCode{0, 6, 200} {
		if _, err := NewErroneousResponse(1, code); !errors.Is(err, ErrInvalidFieldValue) {
			t.Errorf("NewErroneousResponse(%d): expected ErrInvalidFieldValue, got %v", code, err)
		}
	}
}

func TestResponseCorrelation(t *testing.T) {
	const txid = 0x01020304
	req := mustRequest(t, txid, FamilyIPv6, testV6)

	success, err := req.GenerateSuccessfulResponse(FamilyIPv4, testV4)
	if err != nil {
		t.Fatalf("GenerateSuccessfulResponse failed: %v", err)
	}
	if success.TransactionID() != txid {
		t.Errorf("Success reply transaction id: expected %#x, got %#x", txid, success.TransactionID())
	}
	if success.Family() != FamilyIPv4 || success.Address() != testV4 {
		t.Errorf("Success reply carries wrong address: (%s, %s)", success.Family(), success.Address())
	}

	erroneous, err := req.GenerateErroneousResponse(CodePoolExhausted)
	if err != nil {
		t.Fatalf("GenerateErroneousResponse failed: %v", err)
	}
	if erroneous.TransactionID() != txid {
		t.Errorf("Erroneous reply transaction id: expected %#x, got %#x", txid, erroneous.TransactionID())
	}
	if erroneous.Code() != CodePoolExhausted {
		t.Errorf("Erroneous reply code: expected %s, got %s", CodePoolExhausted, erroneous.Code())
	}

	// The wire bytes must echo the id verbatim at offset 2.
	want := []byte{0x01, 0x02, 0x03, 0x04}
	for name, data := range map[string][]byte{"success": success.Encode(), "erroneous": erroneous.Encode()} {
		got := data[2:6]
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s reply transaction id bytes: expected % x, got % x", name, want, got)
				break
			}
		}
	}
}

func TestGenerateErroneousResponseRejectsUnknownCode(t *testing.T) {
	req := mustRequest(t, 1, FamilyIPv4, testV4)
	if _, err := req.GenerateErroneousResponse(ErrorCode(77)); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("Expected ErrInvalidFieldValue, got %v", err)
	}
}

func TestEnumStrings(t *testing.T) {
	testCases := []struct {
		got      string
		expected string
	}{
		{TypeRequest.String(), "Request"},
		{TypeSuccessfulResponse.String(), "SuccessfulResponse"},
		{TypeErroneousResponse.String(), "ErroneousResponse"},
		{MessageType(0).String(), "Unknown"},
		{FamilyIPv4.String(), "IPv4"},
		{FamilyIPv6.String(), "IPv6"},
		{AddressFamily(3).String(), "Unknown"},
		{CodeUnusableAddress.String(), "UnusableAddress"},
		{CodePolicyForbidden.String(), "PolicyForbidden"},
		{CodeNoMapping.String(), "NoMapping"},
		{CodePoolExhausted.String(), "PoolExhausted"},
		{CodeMalformedRequest.String(), "MalformedRequest"},
		{ErrorCode(0).String(), "Unknown"},
	}
	for _, tc := range testCases {
		if tc.got != tc.expected {
			t.Errorf("String(): expected %q, got %q", tc.expected, tc.got)
		}
	}
}

func BenchmarkEncodeRequest(b *testing.B) {
	req, _ := NewRequestMessage(12345, FamilyIPv6, testV6)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = req.Encode()
	}
}

func BenchmarkParseRequest(b *testing.B) {
	req, _ := NewRequestMessage(12345, FamilyIPv6, testV6)
	data := req.Encode()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseRequest(data)
	}
}
