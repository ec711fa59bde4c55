package servicelabel

import (
	"net/netip"
	"testing"
)

func mustTable(t *testing.T, rows []ConfigEntry) *Table {
	t.Helper()
	tbl, err := FromConfigEntries(rows)
	if err != nil {
		t.Fatalf("FromConfigEntries: %v", err)
	}
	return tbl
}

func TestLookup_exactMatchWinsOverCIDR(t *testing.T) {
	tbl := mustTable(t, []ConfigEntry{
		{Target: "10.0.5.0/24", Label: "subnet-label"},
		{Target: "10.0.5.10", Label: "exact-label"},
	})

	got := tbl.Lookup(netip.MustParseAddr("10.0.5.10"))
	if got != "exact-label" {
		t.Errorf("got %q, want exact-label", got)
	}
}

func TestLookup_cidrMatch(t *testing.T) {
	tbl := mustTable(t, []ConfigEntry{
		{Target: "203.0.113.0/24", Label: "vendor-vpn"},
	})

	got := tbl.Lookup(netip.MustParseAddr("203.0.113.77"))
	if got != "vendor-vpn" {
		t.Errorf("got %q, want vendor-vpn", got)
	}
}

func TestLookup_noMatch(t *testing.T) {
	tbl := mustTable(t, []ConfigEntry{
		{Target: "203.0.113.0/24", Label: "vendor-vpn"},
	})

	if got := tbl.Lookup(netip.MustParseAddr("8.8.8.8")); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestLookup_cachesResult(t *testing.T) {
	tbl := mustTable(t, []ConfigEntry{
		{Target: "10.0.5.10", Label: "exact-label"},
	})
	addr := netip.MustParseAddr("10.0.5.10")

	first := tbl.Lookup(addr)
	if _, ok := tbl.cache.Load(addr); !ok {
		t.Fatal("expected cache to be populated after Lookup")
	}
	second := tbl.Lookup(addr)
	if first != second {
		t.Errorf("cached lookup mismatch: %q vs %q", first, second)
	}
}

func TestFromConfigEntries_invalidTargetErrors(t *testing.T) {
	if _, err := FromConfigEntries([]ConfigEntry{{Target: "not-an-ip", Label: "x"}}); err == nil {
		t.Fatal("expected error for invalid target")
	}
}
