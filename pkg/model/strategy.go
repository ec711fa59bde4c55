package model

// PortSourceTable names which of the four sub-tables supplies the
// user-facing port number in a join strategy.
type PortSourceTable string

const (
	PortSourceT1 PortSourceTable = "t1" // FDB, fdbPort
	PortSourceT2 PortSourceTable = "t2" // STP bridge port
	PortSourceT3 PortSourceTable = "t3" // bridge port -> ifIndex
	PortSourceT4 PortSourceTable = "t4" // ifDescr, ifIndex
)

// JoinPredicate names which column of each side of an adjacency supplies
// the equi-join key. A strategy is a tagged record, not free-form SQL: the
// replay path switches on these enums rather than interpreting a query
// string, so an invalid predicate is a compile-time-checkable enum value
// rather than a typo buried in SQL text.
type JoinPredicate int

const (
	PredicateNone JoinPredicate = iota

	// T1 <-> T2: T1.fdbPort = T2.stpPort | T2.bridgePort
	PredT1T2_StpPort
	PredT1T2_BridgePort

	// T2 <-> T3: four combinations of {bridgePort,stpPort} x {bridgePort,ifIndex}
	PredT2T3_BridgeBridge
	PredT2T3_BridgeIfIndex
	PredT2T3_StpBridge
	PredT2T3_StpIfIndex

	// T3 <-> T4: T3.bridgePort | T3.ifIndex = T4.ifIndex
	PredT3T4_BridgePort
	PredT3T4_IfIndex

	// T2 <-> T4: T2.bridgePort | T2.stpPort = T4.ifIndex
	PredT2T4_BridgePort
	PredT2T4_StpPort

	// T1 <-> T3: T1.fdbPort = T3.ifIndex | T3.bridgePort
	PredT1T3_IfIndex
	PredT1T3_BridgePort

	// T1 <-> T4: T1.fdbPort = T4.ifIndex
	PredT1T4_IfIndex
)

// JoinPath names which chain of sub-tables a strategy joins, matching the
// four selection-policy tiers in preference order.
type JoinPath string

const (
	PathT1T4     JoinPath = "t1_t4"     // T1 <-> T4 directly
	PathT1T2T4   JoinPath = "t1_t2_t4"  // T1 <-> T2 <-> T4
	PathT1T3T4   JoinPath = "t1_t3_t4"  // T1 <-> T3 <-> T4
	PathT1T2T3T4 JoinPath = "t1_t2_t3_t4"
)

// JoinStrategy is the discovered, cacheable plan for joining one switch's
// four SNMP sub-tables into a single (vlan, mac, port, portDesc) view. It
// is replayed verbatim on subsequent cycles until replay fails structural
// validation, at which point discovery re-runs.
type JoinStrategy struct {
	SwitchIP string

	Path JoinPath

	// UseT2, UseT3 say whether the STP-bridge-port and bridge-port-to-ifIndex
	// sub-tables need to be fetched at all for this switch's path. T1 and T4
	// are always fetched.
	UseT2 bool
	UseT3 bool

	PredT1T2 JoinPredicate
	PredT2T3 JoinPredicate
	PredT3T4 JoinPredicate
	PredT2T4 JoinPredicate
	PredT1T3 JoinPredicate
	PredT1T4 JoinPredicate

	// PortSource names which sub-table's column is read as the final
	// user-facing port number.
	PortSource PortSourceTable
}
