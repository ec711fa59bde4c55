// Package servicelabel resolves an IP address to a human-readable
// service name from a static table of exact IPs and CIDR ranges,
// consulted by the NetFlow query functions.
package servicelabel

import (
	"fmt"
	"net/netip"
	"sync"
)

// Entry is one static service-label table row: either an exact IP
// (Prefix.Bits() == 32/128) or a CIDR range.
type Entry struct {
	Prefix netip.Prefix
	Label  string
}

// Table resolves addresses to service labels. Lookup order is exact
// match first, then a linear scan of CIDR entries, per spec §6; results
// are cached in a sync.Map keyed by the looked-up address.
type Table struct {
	exact map[netip.Addr]string
	cidrs []Entry
	cache sync.Map // netip.Addr -> string
}

// New builds a Table from a flat entry list, splitting exact /32 and
// /128 prefixes into a direct map for O(1) lookup ahead of the CIDR scan.
func New(entries []Entry) *Table {
	t := &Table{exact: make(map[netip.Addr]string)}
	for _, e := range entries {
		if e.Prefix.Bits() == e.Prefix.Addr().BitLen() {
			t.exact[e.Prefix.Addr()] = e.Label
			continue
		}
		t.cidrs = append(t.cidrs, e)
	}
	return t
}

// Lookup returns the service label for addr, or "" if none matches.
func (t *Table) Lookup(addr netip.Addr) string {
	if cached, ok := t.cache.Load(addr); ok {
		return cached.(string)
	}

	label := t.resolve(addr)
	t.cache.Store(addr, label)
	return label
}

// ConfigEntry mirrors the site file's "service=target=label" rows, kept
// independent of internal/config to avoid an import cycle.
type ConfigEntry struct {
	Target string
	Label  string
}

// FromConfigEntries parses site-file service entries into a Table. A
// target without a "/" is treated as an exact IP. The first entry that
// fails to parse rejects the whole table with an error.
func FromConfigEntries(rows []ConfigEntry) (*Table, error) {
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		prefix, err := parseTarget(r.Target)
		if err != nil {
			return nil, fmt.Errorf("service label %q: %w", r.Target, err)
		}
		entries = append(entries, Entry{Prefix: prefix, Label: r.Label})
	}
	return New(entries), nil
}

func parseTarget(target string) (netip.Prefix, error) {
	if prefix, err := netip.ParsePrefix(target); err == nil {
		return prefix, nil
	}
	addr, err := netip.ParseAddr(target)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("not an IP or CIDR: %w", err)
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func (t *Table) resolve(addr netip.Addr) string {
	if label, ok := t.exact[addr]; ok {
		return label
	}
	for _, e := range t.cidrs {
		if e.Prefix.Contains(addr) {
			return e.Label
		}
	}
	return ""
}
