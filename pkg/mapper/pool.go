package mapper

import (
	"fmt"
	"net/netip"
	"sort"
	"sync"
	"time"

	"github.com/cjbrigato/ippool"

	v1 "xaxlib-go/pkg/protocol/v1"
)

// Allocator hands out IPv4 addresses for IPv6 sources. Repeated calls with
// the same key must return the same address while the binding lives.
type Allocator interface {
	Allocate(key string) (netip.Addr, error)
}

// cleaner is the optional reclamation hook an Allocator may implement.
type cleaner interface {
	Cleanup()
}

// PoolMapper is the stateful flavour of the decision engine: the v4-to-v6
// direction still embeds into the NAT64 prefix, but each IPv6 address gets
// a leased IPv4 address from a pool instead of a prefix extraction.
type PoolMapper struct {
	prefix *PrefixMapper
	alloc  Allocator
}

// NewPoolMapper combines a prefix mapper with an allocator.
func NewPoolMapper(prefix *PrefixMapper, alloc Allocator) *PoolMapper {
	return &PoolMapper{prefix: prefix, alloc: alloc}
}

// Translate implements Mapper.
func (m *PoolMapper) Translate(req *v1.RequestMessage) (v1.AddressFamily, netip.Addr, error) {
	if req.Family() == v1.FamilyIPv4 {
		return m.prefix.Translate(req)
	}
	addr := req.Address()
	if err := checkPolicy(addr, m.prefix.allowPrivate); err != nil {
		return 0, netip.Addr{}, err
	}
	if addr == m.prefix.translatorV6 {
		return v1.FamilyIPv4, m.prefix.translatorV4, nil
	}
	v4, err := m.alloc.Allocate(addr.String())
	if err != nil {
		// Expired bindings hold their addresses until reclaimed; give the
		// allocator one chance to free them before refusing.
		if c, ok := m.alloc.(cleaner); ok {
			c.Cleanup()
			v4, err = m.alloc.Allocate(addr.String())
		}
		if err != nil {
			return 0, netip.Addr{}, failf(v1.CodePoolExhausted, "no IPv4 address available for %s: %v", addr, err)
		}
	}
	return v1.FamilyIPv4, v4, nil
}

// LeaseAllocator backs PoolMapper with a persistent lease pool: bindings
// are sticky per source address and survive daemon restarts through the
// pool database.
type LeaseAllocator struct {
	pool *ippool.IPPool

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewLeaseAllocator opens the pool database and registers the pool CIDR.
func NewLeaseAllocator(cidr string, leaseDuration time.Duration, dbPath string) (*LeaseAllocator, error) {
	if err := ippool.InitializeDB(dbPath); err != nil {
		return nil, fmt.Errorf("open pool database: %w", err)
	}
	if err := ippool.LoadPoolState(); err != nil {
		return nil, fmt.Errorf("load pool state: %w", err)
	}
	pool, err := ippool.NewIPPool(cidr, leaseDuration)
	if err != nil {
		return nil, fmt.Errorf("create pool %s: %w", cidr, err)
	}
	return &LeaseAllocator{pool: pool, keys: make(map[string]struct{})}, nil
}

// Allocate implements Allocator with a sticky lease keyed by the source
// address.
func (a *LeaseAllocator) Allocate(key string) (netip.Addr, error) {
	ip, err := a.pool.RequestIP(key, true)
	if err != nil {
		return netip.Addr{}, err
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, fmt.Errorf("pool returned unparsable address %v", ip)
	}
	a.mu.Lock()
	a.keys[key] = struct{}{}
	a.mu.Unlock()
	return addr.Unmap(), nil
}

// LeaseInfo is one active pool binding, shaped for the HTTP API.
type LeaseInfo struct {
	Key    string    `json:"key"`
	IP     string    `json:"ip"`
	Expiry time.Time `json:"expiry"`
}

// Leases returns the active bindings sorted by key. Expired bindings are
// skipped.
func (a *LeaseAllocator) Leases() []LeaseInfo {
	a.mu.Lock()
	keys := make([]string, 0, len(a.keys))
	for key := range a.keys {
		keys = append(keys, key)
	}
	a.mu.Unlock()
	sort.Strings(keys)

	now := time.Now()
	out := make([]LeaseInfo, 0, len(keys))
	for _, key := range keys {
		lease := a.pool.GetLease(key)
		if lease == nil || lease.Expiry.Before(now) {
			continue
		}
		out = append(out, LeaseInfo{Key: key, IP: lease.IP.String(), Expiry: lease.Expiry})
	}
	return out
}

// Cleanup implements cleaner: it releases expired leases so their addresses
// become allocatable again. Sticky bindings are kept past expiry only while
// the pool has room; the lease store itself never frees them.
func (a *LeaseAllocator) Cleanup() {
	a.pool.CleanupExpiredLeases()

	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for key := range a.keys {
		lease := a.pool.GetLease(key)
		if lease == nil {
			delete(a.keys, key)
			continue
		}
		if lease.Expiry.Before(now) {
			if err := a.pool.ReleaseLease(key); err == nil {
				delete(a.keys, key)
			}
		}
	}
}

// Close persists the pool state and closes the database.
func (a *LeaseAllocator) Close() error {
	if err := ippool.SavePoolState(); err != nil {
		return err
	}
	return ippool.CloseDB()
}
