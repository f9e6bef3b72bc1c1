package mapper

import (
	"fmt"
	"net/netip"

	v1 "xaxlib-go/pkg/protocol/v1"
)

// PrefixMapper performs stateless RFC 6052 prefix translation: an IPv4
// address embeds into the low 32 bits of the configured /96 NAT64 prefix,
// and an IPv6 address inside the prefix extracts back to IPv4. IPv6
// addresses outside the prefix have no mapping.
type PrefixMapper struct {
	prefix       netip.Prefix
	allowPrivate bool
	translatorV4 netip.Addr
	translatorV6 netip.Addr
}

// NewPrefixMapper builds a PrefixMapper for the given NAT64 prefix, which
// must be an IPv6 /96 (e.g. the well-known 64:ff9b::/96).
func NewPrefixMapper(prefix netip.Prefix, allowPrivate bool) (*PrefixMapper, error) {
	if !prefix.Addr().Is6() || prefix.Addr().Is4In6() || prefix.Bits() != 96 {
		return nil, fmt.Errorf("NAT64 prefix must be an IPv6 /96, got %s", prefix)
	}
	return &PrefixMapper{prefix: prefix.Masked(), allowPrivate: allowPrivate}, nil
}

// Prefix returns the configured NAT64 prefix.
func (m *PrefixMapper) Prefix() netip.Prefix { return m.prefix }

// SetTranslatorPair registers the translator's own address pair. A request
// for one side of the pair answers with the other side, consulted before
// the prefix mapping, so the translator stays reachable from both families
// without occupying an address inside the prefix.
func (m *PrefixMapper) SetTranslatorPair(v4, v6 netip.Addr) error {
	if !v4.Is4() {
		return fmt.Errorf("translator pair v4 side must be an IPv4 address, got %s", v4)
	}
	if !v6.Is6() || v6.Is4In6() {
		return fmt.Errorf("translator pair v6 side must be an IPv6 address, got %s", v6)
	}
	m.translatorV4 = v4
	m.translatorV6 = v6
	return nil
}

// Translate implements Mapper.
func (m *PrefixMapper) Translate(req *v1.RequestMessage) (v1.AddressFamily, netip.Addr, error) {
	addr := req.Address()
	if err := checkPolicy(addr, m.allowPrivate); err != nil {
		return 0, netip.Addr{}, err
	}
	if req.Family() == v1.FamilyIPv4 {
		if addr == m.translatorV4 {
			return v1.FamilyIPv6, m.translatorV6, nil
		}
		return v1.FamilyIPv6, m.embed(addr), nil
	}
	if addr == m.translatorV6 {
		return v1.FamilyIPv4, m.translatorV4, nil
	}
	v4, err := m.extract(addr)
	if err != nil {
		return 0, netip.Addr{}, err
	}
	return v1.FamilyIPv4, v4, nil
}

// embed maps an IPv4 address into the prefix.
func (m *PrefixMapper) embed(v4 netip.Addr) netip.Addr {
	out := m.prefix.Addr().As16()
	a4 := v4.As4()
	copy(out[12:], a4[:])
	return netip.AddrFrom16(out)
}

// extract recovers the IPv4 address embedded in a prefix-internal IPv6
// address.
func (m *PrefixMapper) extract(v6 netip.Addr) (netip.Addr, error) {
	if !m.prefix.Contains(v6) {
		return netip.Addr{}, failf(v1.CodeNoMapping, "%s is outside the NAT64 prefix %s", v6, m.prefix)
	}
	b := v6.As16()
	return netip.AddrFrom4([4]byte(b[12:])), nil
}
