// Package query answers the engine's read-only questions: where a MAC
// or IP lives, what a switch port carries, the topology path from a
// switch to the root, and global/per-host NetFlow summaries. Every
// method takes a context.Context and returns typed results or an error;
// none of them mutate the store.
package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/netreveal/topolink/internal/servicelabel"
	"github.com/netreveal/topolink/internal/vendor"
	"github.com/netreveal/topolink/pkg/model"
)

// SwitchStatus is one row of the status() answer.
type SwitchStatus struct {
	IP          string
	Description string
	State       model.SwitchStatus
	TrunkPorts  int
	AccessPorts int
	MAC         string
	Vendor      string
	Stamp       float64
}

// PortInfo describes one switch port, independent of what's on it.
type PortInfo struct {
	SwitchIP    string
	Port        int
	Description string
	Type        model.PortType
	IsRoot      model.RootFlag
}

// AccessHost is one host observation on an ACCESS port, enriched with
// ARP, vendor, hostname, and AP data. Fields are "" / 0 when the
// underlying join found nothing (callers render "N/A", matching the
// original reporting style).
type AccessHost struct {
	Stamp      float64
	SwitchIP   string
	SwitchDesc string
	SwitchMAC  string
	Port       int
	MAC        string
	VLAN       int
	IP         string
	Vendor     string
	Hostname   string
	APName     string
}

// TopologyHop is one edge on the path from a switch up to the inferred
// root: (ParentPort, Switch, RootPort) per spec §4.6.
type TopologyHop struct {
	ParentPort int
	Switch     string
	RootPort   int
}

// PortReport pairs one port's info with whatever ACCESS hosts (or, for
// a TRUNK port, the child switch it leads to) were observed on it.
type PortReport struct {
	Port         PortInfo
	Hosts        []AccessHost
	ChildSwitch  string // non-"" when Port.IsRoot or Port.Type == TRUNK and a child switch hangs off it
}

// SwitchReport is report(switchIP): the switch's status plus every
// port in numeric order.
type SwitchReport struct {
	Status SwitchStatus
	Ports  []PortReport
}

// EndpointStat is one ranked remote-endpoint row from a NetFlow
// summary: total packets/bytes exchanged with RemoteIP:Port over
// Protocol, labeled via the service-label table when a match exists and
// rendered to the nearest binary unit in Formatted.
type EndpointStat struct {
	RemoteIP  string
	Port      int
	Protocol  int
	Label     string
	Packets   int64
	Bytes     int64
	Formatted string
}

// NetflowStats is the answer to netflowGlobalStats/netflowHostStats:
// totals and flow count over the clamped lookback window, the resulting
// average speed, and the top-5 remote endpoints by bytes.
type NetflowStats struct {
	Minutes      float64
	TotalBytes   int64
	TotalPackets int64
	FlowCount    int
	AverageSpeed string
	Top          []EndpointStat
}

// Querier answers every read-only question over the shared database.
type Querier struct {
	db       *sql.DB
	vendors  *vendor.Store
	services *servicelabel.Table
}

// New builds a Querier. services may be nil if no service-label table
// was configured; lookups then always miss.
func New(db *sql.DB, vendors *vendor.Store, services *servicelabel.Table) *Querier {
	return &Querier{db: db, vendors: vendors, services: services}
}

// Status answers status([switchIP]): all switches, or just ip when
// non-empty.
func (q *Querier) Status(ctx context.Context, ip string) ([]SwitchStatus, error) {
	query := `
		SELECT s.switch_ip, s.switch_desc, s.status, s.switch_mac, s.stamp,
			COALESCE((SELECT COUNT(*) FROM switch_ports WHERE switch_ip = s.switch_ip AND port_type = 'TRUNK'), 0),
			COALESCE((SELECT COUNT(*) FROM switch_ports WHERE switch_ip = s.switch_ip AND port_type = 'ACCESS'), 0)
		FROM switches s
	`
	args := []any{}
	if ip != "" {
		query += " WHERE s.switch_ip = ?"
		args = append(args, ip)
	}
	query += " ORDER BY s.switch_ip"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query status: %w", err)
	}
	defer rows.Close()

	var out []SwitchStatus
	for rows.Next() {
		var st SwitchStatus
		var stamp string
		if err := rows.Scan(&st.IP, &st.Description, &st.State, &st.MAC, &stamp, &st.TrunkPorts, &st.AccessPorts); err != nil {
			return nil, fmt.Errorf("scan status row: %w", err)
		}
		st.Stamp = parseStamp(stamp)
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].MAC != "" {
			if name, ok := q.vendors.Lookup(ctx, out[i].MAC); ok {
				out[i].Vendor = name
			}
		}
	}
	return out, nil
}

// Switchport answers switchport(switchIP, portNum): the port's own info
// plus every ACCESS-host observation on it.
func (q *Querier) Switchport(ctx context.Context, switchIP string, port int) (PortInfo, []AccessHost, error) {
	var info PortInfo
	err := q.db.QueryRowContext(ctx, `
		SELECT switch_ip, port_num, port_desc, port_type, is_root
		FROM switch_ports WHERE switch_ip = ? AND port_num = ?
	`, switchIP, port).Scan(&info.SwitchIP, &info.Port, &info.Description, &info.Type, &info.IsRoot)
	if err == sql.ErrNoRows {
		return PortInfo{}, nil, fmt.Errorf("no such port %s/%d", switchIP, port)
	}
	if err != nil {
		return PortInfo{}, nil, fmt.Errorf("query port: %w", err)
	}

	hosts, err := q.accessHosts(ctx, "mac.switch_ip = ? AND mac.port_num = ?", switchIP, port)
	if err != nil {
		return info, nil, err
	}
	return info, hosts, nil
}

// IPSearch answers ipSearch(ip): every ACCESS-port observation whose
// resolved ARP entry matches ip.
func (q *Querier) IPSearch(ctx context.Context, ip string) ([]AccessHost, error) {
	return q.accessHosts(ctx, "arp.ip_addr = ?", ip)
}

// MacSearch answers macSearch(mac): an exact match if mac canonicalizes
// to a complete address, else a substring match, restricted to ACCESS
// ports either way.
func (q *Querier) MacSearch(ctx context.Context, mac string) ([]AccessHost, error) {
	if canon, ok := CanonicalizeMAC(mac); ok {
		return q.accessHosts(ctx, "mac.mac = ?", canon)
	}
	return q.MacSearchPartial(ctx, mac)
}

// MacSearchPartial answers macSearchPartial(substring): a LIKE scan
// over ACCESS-port MACs.
func (q *Querier) MacSearchPartial(ctx context.Context, substr string) ([]AccessHost, error) {
	return q.accessHosts(ctx, "mac.mac LIKE ?", "%"+substr+"%")
}

// accessHosts runs the shared ACCESS-port join with an arbitrary WHERE
// clause and args, then enriches each row with vendor/AP data.
func (q *Querier) accessHosts(ctx context.Context, where string, args ...any) ([]AccessHost, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT mac.stamp, mac.switch_ip, sw.switch_desc, sw.switch_mac, mac.port_num, mac.mac, mac.vlan,
			COALESCE(arp.ip_addr, ''), COALESCE(hn.hostname, '')
		FROM macaddresses mac
			JOIN switches sw ON sw.switch_ip = mac.switch_ip
			JOIN switch_ports sp ON sp.switch_ip = mac.switch_ip AND sp.port_num = mac.port_num AND sp.port_type = 'ACCESS'
			LEFT JOIN arp_entries arp ON arp.mac_addr = mac.mac
			LEFT JOIN hostnames hn ON hn.ip_addr = arp.ip_addr
		WHERE `+where+`
		ORDER BY mac.switch_ip, mac.port_num
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query access hosts: %w", err)
	}
	defer rows.Close()

	var out []AccessHost
	for rows.Next() {
		var h AccessHost
		var stamp string
		if err := rows.Scan(&stamp, &h.SwitchIP, &h.SwitchDesc, &h.SwitchMAC, &h.Port, &h.MAC, &h.VLAN, &h.IP, &h.Hostname); err != nil {
			return nil, fmt.Errorf("scan access host row: %w", err)
		}
		h.Stamp = parseStamp(stamp)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range out {
		if name, ok := q.vendors.Lookup(ctx, out[i].MAC); ok {
			out[i].Vendor = name
		}
		if apName, err := q.apName(ctx, out[i].MAC); err == nil {
			out[i].APName = apName
		}
	}
	return out, nil
}

func (q *Querier) apName(ctx context.Context, mac string) (string, error) {
	var name string
	err := q.db.QueryRowContext(ctx, `SELECT ap_name FROM access_points WHERE ap_mac = ?`, mac).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}

// Topology answers topology(switchIP): the chain of (parentPort,
// switch, rootPort) hops from switchIP up to the inferred root.
func (q *Querier) Topology(ctx context.Context, switchIP string) ([]TopologyHop, error) {
	var hops []TopologyHop
	current := switchIP
	seen := map[string]bool{}

	for {
		if seen[current] {
			return nil, fmt.Errorf("topology cycle detected at %s", current)
		}
		seen[current] = true

		rootPort, err := q.ownRootPort(ctx, current)
		if err != nil {
			return nil, err
		}

		var parentIP string
		var parentPort int
		err = q.db.QueryRowContext(ctx, `
			SELECT switch_padre, port_padre FROM switch_parents WHERE switch_hijo = ?
		`, current).Scan(&parentIP, &parentPort)
		if err == sql.ErrNoRows {
			// current is the root: no outgoing edge.
			hops = append(hops, TopologyHop{ParentPort: 0, Switch: current, RootPort: rootPort})
			return hops, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query switch_parents for %s: %w", current, err)
		}

		hops = append(hops, TopologyHop{ParentPort: parentPort, Switch: current, RootPort: rootPort})
		current = parentIP
	}
}

func (q *Querier) ownRootPort(ctx context.Context, switchIP string) (int, error) {
	var port int
	err := q.db.QueryRowContext(ctx, `
		SELECT port_num FROM switch_ports WHERE switch_ip = ? AND is_root = 'ROOT'
	`, switchIP).Scan(&port)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query root port for %s: %w", switchIP, err)
	}
	return port, nil
}

// Report answers report(switchIP): the switch's status plus every port
// in numeric order, with ACCESS-host detail and child-switch
// annotations for TRUNK/ROOT ports.
func (q *Querier) Report(ctx context.Context, switchIP string) (*SwitchReport, error) {
	statuses, err := q.Status(ctx, switchIP)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("no such switch %s", switchIP)
	}
	if statuses[0].State == model.SwitchOffline {
		return nil, fmt.Errorf("switch %s is offline", switchIP)
	}

	childBySwitch, err := q.childrenByParentPort(ctx, switchIP)
	if err != nil {
		return nil, err
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT port_num, port_desc, port_type, is_root FROM switch_ports
		WHERE switch_ip = ? ORDER BY port_num
	`, switchIP)
	if err != nil {
		return nil, fmt.Errorf("query ports for report: %w", err)
	}
	defer rows.Close()

	var ports []PortInfo
	for rows.Next() {
		var p PortInfo
		p.SwitchIP = switchIP
		if err := rows.Scan(&p.Port, &p.Description, &p.Type, &p.IsRoot); err != nil {
			return nil, fmt.Errorf("scan port row for report: %w", err)
		}
		ports = append(ports, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	report := &SwitchReport{Status: statuses[0]}
	for _, p := range ports {
		pr := PortReport{Port: p, ChildSwitch: childBySwitch[p.Port]}
		if p.Type == model.PortAccess {
			hosts, err := q.accessHosts(ctx, "mac.switch_ip = ? AND mac.port_num = ?", switchIP, p.Port)
			if err != nil {
				return nil, err
			}
			pr.Hosts = hosts
		}
		report.Ports = append(report.Ports, pr)
	}
	return report, nil
}

func (q *Querier) childrenByParentPort(ctx context.Context, switchIP string) (map[int]string, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT switch_hijo, port_padre FROM switch_parents WHERE switch_padre = ?
	`, switchIP)
	if err != nil {
		return nil, fmt.Errorf("query switch_parents children: %w", err)
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var child string
		var port int
		if err := rows.Scan(&child, &port); err != nil {
			return nil, fmt.Errorf("scan child row: %w", err)
		}
		out[port] = child
	}
	return out, rows.Err()
}

func parseStamp(s string) float64 {
	var f float64
	_, _ = fmt.Sscanf(s, "%f", &f)
	return f
}
