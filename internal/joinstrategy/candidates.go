package joinstrategy

import "github.com/netreveal/topolink/pkg/model"

// adjacency bundles one candidate predicate's join output with the
// bookkeeping Discover needs to check its validity.
type adjacency struct {
	predicate model.JoinPredicate
	rows      int // rows produced by the inner join
	source    int // size of the table rows is measured against: T1 for T1<->*, T4 for T3/T2<->T4, T2 for T2<->T3
}

func (a adjacency) valid() bool { return joinValid(a.rows, a.source) }

// t1t2 evaluates both T1<->T2 predicate candidates (adjacencies 1-2).
func t1t2(t1 []T1Row, t2 []T2Row) []adjacency {
	countStp, countBridge := 0, 0
	for _, r1 := range t1 {
		for _, r2 := range t2 {
			if r1.FDBPort == r2.StpPort {
				countStp++
			}
			if r1.FDBPort == r2.BridgePort {
				countBridge++
			}
		}
	}
	return []adjacency{
		{model.PredT1T2_StpPort, countStp, len(t1)},
		{model.PredT1T2_BridgePort, countBridge, len(t1)},
	}
}

// t2t3 evaluates all four T2<->T3 predicate candidates (adjacencies 3-6).
func t2t3(t2 []T2Row, t3 []T3Row) []adjacency {
	var bb, bi, sb, si int
	for _, r2 := range t2 {
		for _, r3 := range t3 {
			if r2.BridgePort == r3.BridgePort {
				bb++
			}
			if r2.BridgePort == r3.IfIndex {
				bi++
			}
			if r2.StpPort == r3.BridgePort {
				sb++
			}
			if r2.StpPort == r3.IfIndex {
				si++
			}
		}
	}
	return []adjacency{
		{model.PredT2T3_BridgeBridge, bb, len(t2)},
		{model.PredT2T3_BridgeIfIndex, bi, len(t2)},
		{model.PredT2T3_StpBridge, sb, len(t2)},
		{model.PredT2T3_StpIfIndex, si, len(t2)},
	}
}

// t3t4 evaluates both T3<->T4 predicate candidates (adjacencies 7-8).
func t3t4(t3 []T3Row, t4 []T4Row) []adjacency {
	var bridge, ifidx int
	for _, r3 := range t3 {
		for _, r4 := range t4 {
			if r3.BridgePort == r4.IfIndex {
				bridge++
			}
			if r3.IfIndex == r4.IfIndex {
				ifidx++
			}
		}
	}
	return []adjacency{
		{model.PredT3T4_BridgePort, bridge, len(t4)},
		{model.PredT3T4_IfIndex, ifidx, len(t4)},
	}
}

// t2t4 evaluates both T2<->T4 predicate candidates (adjacencies 9-10).
func t2t4(t2 []T2Row, t4 []T4Row) []adjacency {
	var bridge, stp int
	for _, r2 := range t2 {
		for _, r4 := range t4 {
			if r2.BridgePort == r4.IfIndex {
				bridge++
			}
			if r2.StpPort == r4.IfIndex {
				stp++
			}
		}
	}
	return []adjacency{
		{model.PredT2T4_BridgePort, bridge, len(t4)},
		{model.PredT2T4_StpPort, stp, len(t4)},
	}
}

// t1t3 evaluates both T1<->T3 predicate candidates (adjacencies 11-12).
func t1t3(t1 []T1Row, t3 []T3Row) []adjacency {
	var ifidx, bridge int
	for _, r1 := range t1 {
		for _, r3 := range t3 {
			if r1.FDBPort == r3.IfIndex {
				ifidx++
			}
			if r1.FDBPort == r3.BridgePort {
				bridge++
			}
		}
	}
	return []adjacency{
		{model.PredT1T3_IfIndex, ifidx, len(t1)},
		{model.PredT1T3_BridgePort, bridge, len(t1)},
	}
}

// t1t4 evaluates the single T1<->T4 predicate candidate (adjacency 13).
func t1t4(t1 []T1Row, t4 []T4Row) adjacency {
	count := 0
	for _, r1 := range t1 {
		for _, r4 := range t4 {
			if r1.FDBPort == r4.IfIndex {
				count++
			}
		}
	}
	return adjacency{model.PredT1T4_IfIndex, count, len(t1)}
}

// firstValid returns the first adjacency in the slice that passes the
// 75% join-validity rule, matching the predicate candidates' preference
// order within a single adjacency group (e.g. "= T2.stpPort or
// = T2.bridgePort" tries stpPort first).
func firstValid(candidates []adjacency) (adjacency, bool) {
	for _, a := range candidates {
		if a.valid() {
			return a, true
		}
	}
	return adjacency{}, false
}
