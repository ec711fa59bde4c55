// Package joinstrategy discovers, validates, and replays the per-switch
// plan for joining a switch's four SNMP sub-tables into a single
// (vlan, mac, port, portDesc) row set.
package joinstrategy

import "github.com/netreveal/topolink/pkg/model"

// T1Row is one FDB entry: a learned MAC on a VLAN, with the port number
// the switch's forwarding table attributes it to.
type T1Row struct {
	VLAN    int
	MAC     string
	FDBPort int
}

// T2Row is one STP bridge-port entry: two alternate port identifiers for
// the same physical port.
type T2Row struct {
	BridgePort int
	StpPort    int
}

// T3Row maps a bridge port number to an interface index.
type T3Row struct {
	BridgePort int
	IfIndex    int
}

// T4Row is one ifDescr entry.
type T4Row struct {
	IfIndex int
	Descr   string
}

// SubTables holds one switch's four raw sub-tables as fetched over SNMP,
// before any join strategy has been applied.
type SubTables struct {
	T1 []T1Row
	T2 []T2Row
	T3 []T3Row
	T4 []T4Row
}

// joinedRow is one fully-resolved row produced by any candidate join
// path, before port-number range validation.
type joinedRow struct {
	VLAN int
	MAC  string
	Port int
	Desc string
}

func toMacAddress(switchIP string, r joinedRow) model.MacAddress {
	return model.MacAddress{SwitchIP: switchIP, VLAN: r.VLAN, MAC: r.MAC, Port: r.Port, PortDesc: r.Desc}
}

// portSourceValid reports whether at least 90% of the given port-number
// candidates lie in (0, 999) -- spec's "valid port source" rule.
func portSourceValid(ports []int) bool {
	if len(ports) == 0 {
		return false
	}
	valid := 0
	for _, p := range ports {
		if p > 0 && p < 999 {
			valid++
		}
	}
	return float64(valid)/float64(len(ports)) >= 0.9
}

// joinValid reports whether a candidate adjacency produced at least 75%
// as many rows as the given source table size.
func joinValid(joinedCount, sourceSize int) bool {
	if sourceSize == 0 {
		return false
	}
	return float64(joinedCount)/float64(sourceSize) >= 0.75
}

// outputAccepted reports the final acceptance gate: the joined result's
// row count is at least 75% of |T1| and at least 75% of its rows have a
// port number in (0, 999).
func outputAccepted(rows []joinedRow, t1Size int) bool {
	if t1Size == 0 || len(rows) == 0 {
		return false
	}
	if float64(len(rows))/float64(t1Size) < 0.75 {
		return false
	}
	inRange := 0
	for _, r := range rows {
		if r.Port > 0 && r.Port < 999 {
			inRange++
		}
	}
	return float64(inRange)/float64(len(rows)) >= 0.75
}
