package poller

import (
	"testing"

	"github.com/netreveal/topolink/pkg/model"
)

func TestSuffixMAC_sixOctets(t *testing.T) {
	got := suffixMAC("0.26.171.255.16.1")
	if got != "00-1a-ab-ff-10-01" {
		t.Errorf("suffixMAC = %q, want 00-1a-ab-ff-10-01", got)
	}
}

func TestSuffixMAC_wrongComponentCount(t *testing.T) {
	if got := suffixMAC("1.2.3"); got != "" {
		t.Errorf("suffixMAC with 3 components = %q, want empty", got)
	}
}

func TestSuffixInt(t *testing.T) {
	if got := suffixInt("42"); got != 42 {
		t.Errorf("suffixInt(42) = %d", got)
	}
	if got := suffixInt("not-a-number"); got != 0 {
		t.Errorf("suffixInt(garbage) = %d, want 0", got)
	}
}

func TestBuildPortShells_dedupesPorts(t *testing.T) {
	macs := []model.MacAddress{
		{Port: 1, MAC: "aa"},
		{Port: 1, MAC: "bb"},
		{Port: 2, MAC: "cc"},
	}
	ports := buildPortShells("10.0.0.1", macs)
	if len(ports) != 2 {
		t.Fatalf("got %d ports, want 2", len(ports))
	}
}

func TestBuildPortShells_carriesPortDescFromJoinedRow(t *testing.T) {
	macs := []model.MacAddress{{Port: 7, MAC: "aa", PortDesc: "GigabitEthernet0/7"}}

	ports := buildPortShells("10.0.0.1", macs)
	if len(ports) != 1 || ports[0].Description != "GigabitEthernet0/7" {
		t.Errorf("ports = %+v, want description GigabitEthernet0/7", ports)
	}
}

func TestBuildPortShells_leavesDescriptionEmptyWhenJoinHadNone(t *testing.T) {
	macs := []model.MacAddress{{Port: 7, MAC: "aa"}}

	ports := buildPortShells("10.0.0.1", macs)
	if len(ports) != 1 || ports[0].Description != "" {
		t.Errorf("ports = %+v, want empty description", ports)
	}
}
