package poller

import (
	"context"
	"strconv"
	"strings"

	"github.com/netreveal/topolink/internal/joinstrategy"
	"github.com/netreveal/topolink/internal/snmpwalk"
	"github.com/netreveal/topolink/pkg/model"
)

// fetchSubTables performs the bulk-walks that make up one switch's raw
// join-strategy input: the FDB (T1) and ifDescr (T4) are always walked;
// the STP bridge-port table (T2) and the bridge-port-to-ifIndex table
// (T3) are walked only when useT2/useT3 say a cached strategy actually
// joins through them, so a replay cycle skips the SNMP round-trips fresh
// discovery would have needed.
func fetchSubTables(ctx context.Context, w *snmpwalk.Walker, target string, useT2, useT3 bool) (joinstrategy.SubTables, error) {
	fdb, err := w.BulkWalk(ctx, target, snmpwalk.OIDFDBPort)
	if err != nil {
		return joinstrategy.SubTables{}, err
	}
	ifDescr, err := w.BulkWalk(ctx, target, snmpwalk.OIDIfDescr)
	if err != nil {
		return joinstrategy.SubTables{}, err
	}

	var stp, bridge []snmpwalk.Varbind
	if useT2 {
		stp, err = w.BulkWalk(ctx, target, snmpwalk.OIDStpPort)
		if err != nil {
			return joinstrategy.SubTables{}, err
		}
	}
	if useT3 {
		bridge, err = w.BulkWalk(ctx, target, snmpwalk.OIDBridgePortIfIndex)
		if err != nil {
			return joinstrategy.SubTables{}, err
		}
	}

	t := joinstrategy.SubTables{
		T1: make([]joinstrategy.T1Row, 0, len(fdb)),
		T2: make([]joinstrategy.T2Row, 0, len(stp)),
		T3: make([]joinstrategy.T3Row, 0, len(bridge)),
		T4: make([]joinstrategy.T4Row, 0, len(ifDescr)),
	}

	for _, v := range fdb {
		mac := suffixMAC(v.OID)
		if mac == "" {
			continue
		}
		t.T1 = append(t.T1, joinstrategy.T1Row{VLAN: 1, MAC: mac, FDBPort: snmpwalk.AsInt(v.Value)})
	}
	for _, v := range stp {
		t.T2 = append(t.T2, joinstrategy.T2Row{BridgePort: suffixInt(v.OID), StpPort: snmpwalk.AsInt(v.Value)})
	}
	for _, v := range bridge {
		t.T3 = append(t.T3, joinstrategy.T3Row{BridgePort: suffixInt(v.OID), IfIndex: snmpwalk.AsInt(v.Value)})
	}
	for _, v := range ifDescr {
		t.T4 = append(t.T4, joinstrategy.T4Row{IfIndex: suffixInt(v.OID), Descr: snmpwalk.AsText(v.Value)})
	}

	return t, nil
}

// suffixInt parses a single-component OID suffix (e.g. a bridge port or
// ifIndex table index) as an integer.
func suffixInt(suffix string) int {
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0
	}
	return n
}

// suffixMAC parses a six-component dotted OID suffix (the FDB table's
// MAC-address index) into a lowercase hyphenated MAC string.
func suffixMAC(suffix string) string {
	parts := strings.Split(suffix, ".")
	if len(parts) != 6 {
		return ""
	}
	out := make([]string, 6)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return ""
		}
		out[i] = strconv.FormatInt(int64(n), 16)
		if len(out[i]) == 1 {
			out[i] = "0" + out[i]
		}
	}
	return strings.Join(out, "-")
}

// buildPortShells derives the switch_ports rows to insert alongside a
// cycle's macaddresses: one row per distinct port number the join
// produced, with the ifDescr each joined row already carried from T4
// regardless of which tier's join path won.
func buildPortShells(switchIP string, macs []model.MacAddress) []model.SwitchPort {
	seen := map[int]bool{}
	var ports []model.SwitchPort
	for _, m := range macs {
		if seen[m.Port] {
			continue
		}
		seen[m.Port] = true
		ports = append(ports, model.SwitchPort{
			SwitchIP:    switchIP,
			Port:        m.Port,
			Description: m.PortDesc,
			Type:        model.PortAccess,
			IsRoot:      model.RootNo,
		})
	}
	return ports
}
