package joinstrategy

import (
	"errors"

	"github.com/netreveal/topolink/pkg/model"
)

// ErrInvalidStrategy is returned by Discover when no tier's output
// cleared the 75%-row / 75%-in-range acceptance gate. Replay reports the
// same condition with ok=false instead.
var ErrInvalidStrategy = errors.New("joinstrategy: no valid join strategy found")

// Discover runs the full 13-candidate-adjacency search over one switch's
// sub-tables and returns the winning strategy plus its joined rows. It is
// pure -- no IO -- so it is directly unit-testable against fixed table
// fixtures.
func Discover(switchIP string, t SubTables) (model.JoinStrategy, []model.MacAddress, error) {
	if s, rows, ok := tryT1T4(switchIP, t); ok {
		return s, rows, nil
	}
	if s, rows, ok := tryT1T2T4(switchIP, t); ok {
		return s, rows, nil
	}
	if s, rows, ok := tryT1T3T4(switchIP, t); ok {
		return s, rows, nil
	}
	if s, rows, ok := tryFull(switchIP, t); ok {
		return s, rows, nil
	}
	return model.JoinStrategy{}, nil, ErrInvalidStrategy
}

// tryT1T4 is selection tier 1: T1 joined directly to T4 (adjacency 13),
// port source on T1.fdbPort or T4.ifIndex.
func tryT1T4(switchIP string, t SubTables) (model.JoinStrategy, []model.MacAddress, bool) {
	adj := t1t4(t.T1, t.T4)
	if !adj.valid() {
		return model.JoinStrategy{}, nil, false
	}

	rows := joinT1T4(t.T1, t.T4, adj.predicate)
	portSource := pickPortSource(rows, model.PortSourceT1, model.PortSourceT4)
	if portSource == "" {
		return model.JoinStrategy{}, nil, false
	}
	if !outputAccepted(rows, len(t.T1)) {
		return model.JoinStrategy{}, nil, false
	}

	s := model.JoinStrategy{
		SwitchIP:   switchIP,
		Path:       model.PathT1T4,
		PredT1T4:   adj.predicate,
		PortSource: portSource,
	}
	return s, toMacAddresses(switchIP, rows), true
}

// tryT1T2T4 is selection tier 2: T1 -> T2 -> T4 (adjacencies {1,2} and
// {9,10}), port source on T2.
func tryT1T2T4(switchIP string, t SubTables) (model.JoinStrategy, []model.MacAddress, bool) {
	a12, ok := firstValid(t1t2(t.T1, t.T2))
	if !ok {
		return model.JoinStrategy{}, nil, false
	}
	a24, ok := firstValid(t2t4(t.T2, t.T4))
	if !ok {
		return model.JoinStrategy{}, nil, false
	}

	rows := joinT1T2T4(t.T1, t.T2, t.T4, a12.predicate, a24.predicate)
	portSource := pickPortSource(rows, model.PortSourceT2)
	if portSource == "" {
		return model.JoinStrategy{}, nil, false
	}
	if !outputAccepted(rows, len(t.T1)) {
		return model.JoinStrategy{}, nil, false
	}

	s := model.JoinStrategy{
		SwitchIP:   switchIP,
		Path:       model.PathT1T2T4,
		UseT2:      true,
		PredT1T2:   a12.predicate,
		PredT2T4:   a24.predicate,
		PortSource: portSource,
	}
	return s, toMacAddresses(switchIP, rows), true
}

// tryT1T3T4 is selection tier 3: T1 -> T3 -> T4 (adjacencies {11,12} and
// {7,8}), port source on T3.
func tryT1T3T4(switchIP string, t SubTables) (model.JoinStrategy, []model.MacAddress, bool) {
	a13, ok := firstValid(t1t3(t.T1, t.T3))
	if !ok {
		return model.JoinStrategy{}, nil, false
	}
	a34, ok := firstValid(t3t4(t.T3, t.T4))
	if !ok {
		return model.JoinStrategy{}, nil, false
	}

	rows := joinT1T3T4(t.T1, t.T3, t.T4, a13.predicate, a34.predicate)
	portSource := pickPortSource(rows, model.PortSourceT3)
	if portSource == "" {
		return model.JoinStrategy{}, nil, false
	}
	if !outputAccepted(rows, len(t.T1)) {
		return model.JoinStrategy{}, nil, false
	}

	s := model.JoinStrategy{
		SwitchIP:   switchIP,
		Path:       model.PathT1T3T4,
		UseT3:      true,
		PredT1T3:   a13.predicate,
		PredT3T4:   a34.predicate,
		PortSource: portSource,
	}
	return s, toMacAddresses(switchIP, rows), true
}

// tryFull is selection tier 4: the complete T1 -> T2 -> T3 -> T4 chain
// (adjacencies {1,2}, {3..6}, {7,8}).
func tryFull(switchIP string, t SubTables) (model.JoinStrategy, []model.MacAddress, bool) {
	a12, ok := firstValid(t1t2(t.T1, t.T2))
	if !ok {
		return model.JoinStrategy{}, nil, false
	}
	a23, ok := firstValid(t2t3(t.T2, t.T3))
	if !ok {
		return model.JoinStrategy{}, nil, false
	}
	a34, ok := firstValid(t3t4(t.T3, t.T4))
	if !ok {
		return model.JoinStrategy{}, nil, false
	}

	rows := joinFull(t.T1, t.T2, t.T3, t.T4, a12.predicate, a23.predicate, a34.predicate)
	portSource := pickPortSource(rows, model.PortSourceT2, model.PortSourceT3)
	if portSource == "" {
		return model.JoinStrategy{}, nil, false
	}
	if !outputAccepted(rows, len(t.T1)) {
		return model.JoinStrategy{}, nil, false
	}

	s := model.JoinStrategy{
		SwitchIP:   switchIP,
		Path:       model.PathT1T2T3T4,
		UseT2:      true,
		UseT3:      true,
		PredT1T2:   a12.predicate,
		PredT2T3:   a23.predicate,
		PredT3T4:   a34.predicate,
		PortSource: portSource,
	}
	return s, toMacAddresses(switchIP, rows), true
}

// pickPortSource checks the joined rows' Port values against the 90%
// valid-port-source rule once and, if they pass, returns the first
// candidate table; it returns "" when the rule fails or no candidate is
// given. Later candidates are not checked separately.
func pickPortSource(rows []joinedRow, candidates ...model.PortSourceTable) model.PortSourceTable {
	ports := make([]int, len(rows))
	for i, r := range rows {
		ports[i] = r.Port
	}
	if portSourceValid(ports) && len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func toMacAddresses(switchIP string, rows []joinedRow) []model.MacAddress {
	out := make([]model.MacAddress, len(rows))
	for i, r := range rows {
		out[i] = toMacAddress(switchIP, r)
	}
	return out
}
