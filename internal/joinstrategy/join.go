package joinstrategy

import "github.com/netreveal/topolink/pkg/model"

// t2Port and t3Port extract the column value a given predicate treats as
// the "port" side for a T2 or T3 row, used to resolve the port-source
// column once a tier has settled on a predicate.
func t2Port(r T2Row, usesStp bool) int {
	if usesStp {
		return r.StpPort
	}
	return r.BridgePort
}

func t3Port(r T3Row, usesIfIndex bool) int {
	if usesIfIndex {
		return r.IfIndex
	}
	return r.BridgePort
}

// joinT1T4 joins T1 directly to T4 on the given predicate (tier 1),
// preferring T1.fdbPort as the reported port number.
func joinT1T4(t1 []T1Row, t4 []T4Row, pred model.JoinPredicate) []joinedRow {
	var out []joinedRow
	for _, r1 := range t1 {
		for _, r4 := range t4 {
			if pred == model.PredT1T4_IfIndex && r1.FDBPort == r4.IfIndex {
				out = append(out, joinedRow{VLAN: r1.VLAN, MAC: r1.MAC, Port: r1.FDBPort, Desc: r4.Descr})
			}
		}
	}
	return out
}

// joinT1T2T4 joins T1 -> T2 -> T4, reporting the T2 column used by the
// T1<->T2 predicate as the port number (tier 2's designated port source).
func joinT1T2T4(t1 []T1Row, t2 []T2Row, t4 []T4Row, pT1T2, pT2T4 model.JoinPredicate) []joinedRow {
	t1UsesStp := pT1T2 == model.PredT1T2_StpPort
	t2UsesStpFor4 := pT2T4 == model.PredT2T4_StpPort

	var out []joinedRow
	for _, r1 := range t1 {
		for _, r2 := range t2 {
			if t1UsesStp {
				if r1.FDBPort != r2.StpPort {
					continue
				}
			} else if r1.FDBPort != r2.BridgePort {
				continue
			}
			for _, r4 := range t4 {
				key := r2.BridgePort
				if t2UsesStpFor4 {
					key = r2.StpPort
				}
				if key != r4.IfIndex {
					continue
				}
				out = append(out, joinedRow{
					VLAN: r1.VLAN, MAC: r1.MAC,
					Port: t2Port(r2, t1UsesStp),
					Desc: r4.Descr,
				})
			}
		}
	}
	return out
}

// joinT1T3T4 joins T1 -> T3 -> T4, reporting the T3 column as the port
// number (tier 3's designated port source).
func joinT1T3T4(t1 []T1Row, t3 []T3Row, t4 []T4Row, pT1T3, pT3T4 model.JoinPredicate) []joinedRow {
	t1UsesIfIndex := pT1T3 == model.PredT1T3_IfIndex
	t3UsesIfIndexFor4 := pT3T4 == model.PredT3T4_IfIndex

	var out []joinedRow
	for _, r1 := range t1 {
		for _, r3 := range t3 {
			if t1UsesIfIndex {
				if r1.FDBPort != r3.IfIndex {
					continue
				}
			} else if r1.FDBPort != r3.BridgePort {
				continue
			}
			for _, r4 := range t4 {
				key := r3.BridgePort
				if t3UsesIfIndexFor4 {
					key = r3.IfIndex
				}
				if key != r4.IfIndex {
					continue
				}
				out = append(out, joinedRow{
					VLAN: r1.VLAN, MAC: r1.MAC,
					Port: t3Port(r3, t1UsesIfIndex),
					Desc: r4.Descr,
				})
			}
		}
	}
	return out
}

// joinFull joins the complete T1 -> T2 -> T3 -> T4 chain, reporting the
// T2 column as the port number.
func joinFull(t1 []T1Row, t2 []T2Row, t3 []T3Row, t4 []T4Row, pT1T2, pT2T3, pT3T4 model.JoinPredicate) []joinedRow {
	t1UsesStp := pT1T2 == model.PredT1T2_StpPort

	var out []joinedRow
	for _, r1 := range t1 {
		for _, r2 := range t2 {
			if t1UsesStp {
				if r1.FDBPort != r2.StpPort {
					continue
				}
			} else if r1.FDBPort != r2.BridgePort {
				continue
			}
			for _, r3 := range t3 {
				if !t2t3Matches(r2, r3, pT2T3) {
					continue
				}
				for _, r4 := range t4 {
					key := r3.BridgePort
					if pT3T4 == model.PredT3T4_IfIndex {
						key = r3.IfIndex
					}
					if key != r4.IfIndex {
						continue
					}
					out = append(out, joinedRow{
						VLAN: r1.VLAN, MAC: r1.MAC,
						Port: t2Port(r2, t1UsesStp),
						Desc: r4.Descr,
					})
				}
			}
		}
	}
	return out
}

func t2t3Matches(r2 T2Row, r3 T3Row, pred model.JoinPredicate) bool {
	switch pred {
	case model.PredT2T3_BridgeBridge:
		return r2.BridgePort == r3.BridgePort
	case model.PredT2T3_BridgeIfIndex:
		return r2.BridgePort == r3.IfIndex
	case model.PredT2T3_StpBridge:
		return r2.StpPort == r3.BridgePort
	case model.PredT2T3_StpIfIndex:
		return r2.StpPort == r3.IfIndex
	default:
		return false
	}
}
