package joinstrategy

import "github.com/netreveal/topolink/pkg/model"

// Replay re-executes a cached strategy's predicate chain against freshly
// fetched sub-tables; it fetches nothing itself and joins only the tables
// on the strategy's Path. It returns ok=false if the replay fails structural validation (empty join,
// out-of-range port share), signaling the caller to invalidate the
// strategy and re-run Discover once.
func Replay(s model.JoinStrategy, t SubTables) ([]model.MacAddress, bool) {
	var rows []joinedRow

	switch s.Path {
	case model.PathT1T4:
		rows = joinT1T4(t.T1, t.T4, s.PredT1T4)
	case model.PathT1T2T4:
		rows = joinT1T2T4(t.T1, t.T2, t.T4, s.PredT1T2, s.PredT2T4)
	case model.PathT1T3T4:
		rows = joinT1T3T4(t.T1, t.T3, t.T4, s.PredT1T3, s.PredT3T4)
	case model.PathT1T2T3T4:
		rows = joinFull(t.T1, t.T2, t.T3, t.T4, s.PredT1T2, s.PredT2T3, s.PredT3T4)
	default:
		return nil, false
	}

	if !outputAccepted(rows, len(t.T1)) {
		return nil, false
	}
	return toMacAddresses(s.SwitchIP, rows), true
}
