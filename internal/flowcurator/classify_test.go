package flowcurator

import (
	"net/netip"
	"testing"

	"github.com/netreveal/topolink/pkg/model"
)

var testNetwork = netip.MustParsePrefix("10.0.0.0/24")

// TestClassify_scenario4 is spec's literal scenario 4: a flow from
// 10.0.0.5 (in N) to 8.8.8.8 (public) lands in publicUS (public_up) and
// nowhere else.
func TestClassify_scenario4(t *testing.T) {
	f := model.Flow{SrcIP: "10.0.0.5", DstIP: "8.8.8.8"}
	table, ok := classify(testNetwork, f)
	if !ok || table != model.FlowTablePublicUp {
		t.Fatalf("classify = (%v, %v), want (public_up, true)", table, ok)
	}
}

func TestClassify_intraLANDiscarded(t *testing.T) {
	f := model.Flow{SrcIP: "10.0.0.5", DstIP: "10.0.0.6"}
	if _, ok := classify(testNetwork, f); ok {
		t.Error("expected intra-LAN flow to be discarded")
	}
}

func TestClassify_neitherEndpointInNetwork(t *testing.T) {
	f := model.Flow{SrcIP: "8.8.8.8", DstIP: "1.1.1.1"}
	if _, ok := classify(testNetwork, f); ok {
		t.Error("expected flow with neither endpoint in N to be discarded")
	}
}

func TestClassify_srcInNetworkDstPrivate(t *testing.T) {
	f := model.Flow{SrcIP: "10.0.0.5", DstIP: "192.168.1.1"}
	table, ok := classify(testNetwork, f)
	if !ok || table != model.FlowTablePrivateUp {
		t.Errorf("classify = (%v, %v), want (private_up, true)", table, ok)
	}
}

func TestClassify_dstInNetworkSrcPrivate(t *testing.T) {
	f := model.Flow{SrcIP: "172.16.5.5", DstIP: "10.0.0.5"}
	table, ok := classify(testNetwork, f)
	if !ok || table != model.FlowTablePrivateDown {
		t.Errorf("classify = (%v, %v), want (private_down, true)", table, ok)
	}
}

func TestClassify_dstInNetworkSrcPublic(t *testing.T) {
	f := model.Flow{SrcIP: "8.8.8.8", DstIP: "10.0.0.5"}
	table, ok := classify(testNetwork, f)
	if !ok || table != model.FlowTablePublicDown {
		t.Errorf("classify = (%v, %v), want (public_down, true)", table, ok)
	}
}

func TestClassify_unparseableAddressSkipped(t *testing.T) {
	f := model.Flow{SrcIP: "not-an-ip", DstIP: "10.0.0.5"}
	if _, ok := classify(testNetwork, f); ok {
		t.Error("expected unparseable address to be discarded")
	}
}
