// Package flowcurator classifies the external collector's raw NetFlow
// rows against the network-of-interest and distributes them across the
// four curated tables, pruning each to a fixed retention window.
package flowcurator

import (
	"net/netip"

	"github.com/netreveal/topolink/pkg/model"
)

// privateBlocks are the RFC 1918 ranges; an address outside the network
// of interest is "private" for classification purposes if it falls in
// one of these, "public" otherwise.
var privateBlocks = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

func isPrivate(addr netip.Addr) bool {
	for _, b := range privateBlocks {
		if b.Contains(addr) {
			return true
		}
	}
	return false
}

// classify applies §4.5's classification rule to one raw flow row. It
// returns ok=false when the row should be discarded: both endpoints lie
// in the network of interest (an intra-LAN flow), neither endpoint does,
// or either address fails to parse.
func classify(network netip.Prefix, f model.Flow) (model.FlowTable, bool) {
	src, err := netip.ParseAddr(f.SrcIP)
	if err != nil {
		return "", false
	}
	dst, err := netip.ParseAddr(f.DstIP)
	if err != nil {
		return "", false
	}

	srcIn := network.Contains(src)
	dstIn := network.Contains(dst)

	switch {
	case srcIn && dstIn:
		return "", false
	case srcIn && !dstIn:
		if isPrivate(dst) {
			return model.FlowTablePrivateUp, true
		}
		return model.FlowTablePublicUp, true
	case dstIn && !srcIn:
		if isPrivate(src) {
			return model.FlowTablePrivateDown, true
		}
		return model.FlowTablePublicDown, true
	default:
		return "", false
	}
}
