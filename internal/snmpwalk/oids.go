package snmpwalk

// OID subtrees for the poller's walks. Bulk-walking any of these returns
// one varbind per table row; Normalize/AsText/AsInt/AsMAC interpret the
// value according to which column it is.
const (
	// OIDFDBPort is T1: dot1dTpFdbTable, mac -> port. It is walked once
	// per switch with the configured community; the OID carries no VLAN
	// component, so every T1 row is recorded with VLAN 1.
	OIDFDBPort = "1.3.6.1.2.1.17.4.3.1.2" // dot1dTpFdbPort, indexed by MAC

	// OIDStpPort is T2: dot1dStpPortTable, bridgePort -> stpPort mapping.
	OIDStpPort = "1.3.6.1.2.1.17.2.15.1.1" // dot1dStpPort, indexed by bridgePort

	// OIDBridgePortIfIndex is T3: dot1dBasePortIfIndex, bridgePort -> ifIndex.
	OIDBridgePortIfIndex = "1.3.6.1.2.1.17.1.4.1.2"

	// OIDIfDescr is T4: ifDescr, ifIndex -> description.
	OIDIfDescr = "1.3.6.1.2.1.2.2.1.2"

	// OIDDot1dBaseBridgeAddress is the switch's own bridge (management) MAC.
	OIDDot1dBaseBridgeAddress = "1.3.6.1.2.1.17.1.1.0"

	// OIDIpNetToMediaPhysAddress and OIDIpNetToMediaNetAddress together
	// form the gateway's ARP table (ipNetToMediaTable); the trailing
	// index on each varbind is (ifIndex.ip-as-dotted-decimal). No code
	// in this repository walks them.
	OIDIpNetToMediaPhysAddress = "1.3.6.1.2.1.4.22.1.2"
	OIDIpNetToMediaNetAddress  = "1.3.6.1.2.1.4.22.1.3"
)
