package query

import (
	"context"
	"fmt"
	"net/netip"
	"sort"

	"github.com/netreveal/topolink/pkg/model"
)

const (
	minMinutes = 0.33
	maxMinutes = 5.0
	topN       = 5
)

// isUplinkTable reports whether table's "local" endpoint is the source
// column (public_up/private_up) rather than the destination
// (public_down/private_down), per the curator's direction split.
func isUplinkTable(table model.FlowTable) bool {
	return table == model.FlowTablePublicUp || table == model.FlowTablePrivateUp
}

// clampMinutes restricts the lookback window to [0.33, 5.0] minutes, per
// spec §4.6.
func clampMinutes(minutes float64) float64 {
	if minutes < minMinutes {
		return minMinutes
	}
	if minutes > maxMinutes {
		return maxMinutes
	}
	return minutes
}

// NetflowGlobalStats answers netflowGlobalStats(minutes): totals, flow
// count, average speed, and the top-5 remote endpoints by bytes across
// every curated table within the lookback window.
func (q *Querier) NetflowGlobalStats(ctx context.Context, minutes float64) (NetflowStats, error) {
	return q.netflowStats(ctx, "", clampMinutes(minutes))
}

// NetflowHostStats answers netflowHostStats(ip, minutes): the same
// summary restricted to flows where hostIP is the network-of-interest
// endpoint.
func (q *Querier) NetflowHostStats(ctx context.Context, hostIP string, minutes float64) (NetflowStats, error) {
	return q.netflowStats(ctx, hostIP, clampMinutes(minutes))
}

// netflowStats aggregates totals and ranks remote endpoints across all
// four curated tables within minutes of now. hostIP, when non-empty,
// restricts every table to rows where the network-of-interest side
// equals hostIP.
func (q *Querier) netflowStats(ctx context.Context, hostIP string, minutes float64) (NetflowStats, error) {
	stats := NetflowStats{Minutes: minutes}
	endpoints := map[string]*EndpointStat{}

	cutoff := fmt.Sprintf("(strftime('%%s','now') - %f)", minutes*60)

	for _, table := range model.AllCuratedTables {
		remoteCol, localCol := "src_ip", "dst_ip"
		remotePortCol := "src_port"
		if isUplinkTable(table) {
			remoteCol, localCol = "dst_ip", "src_ip"
			remotePortCol = "dst_port"
		}

		query := fmt.Sprintf(`
			SELECT %s, %s, protocol, packets, bytes
			FROM %s
			WHERE CAST(stamp AS REAL) >= %s
		`, remoteCol, remotePortCol, string(table), cutoff)
		args := []any{}
		if hostIP != "" {
			query += fmt.Sprintf(" AND %s = ?", localCol)
			args = append(args, hostIP)
		}

		rows, err := q.db.QueryContext(ctx, query, args...)
		if err != nil {
			return NetflowStats{}, fmt.Errorf("query netflow stats from %s: %w", table, err)
		}

		for rows.Next() {
			var remoteIP string
			var port, protocol int
			var packets, bytes int64
			if err := rows.Scan(&remoteIP, &port, &protocol, &packets, &bytes); err != nil {
				rows.Close()
				return NetflowStats{}, fmt.Errorf("scan netflow row from %s: %w", table, err)
			}
			stats.TotalBytes += bytes
			stats.TotalPackets += packets
			stats.FlowCount++

			key := fmt.Sprintf("%s:%d:%d", remoteIP, port, protocol)
			ep, ok := endpoints[key]
			if !ok {
				ep = &EndpointStat{RemoteIP: remoteIP, Port: port, Protocol: protocol, Label: q.labelFor(remoteIP)}
				endpoints[key] = ep
			}
			ep.Bytes += bytes
			ep.Packets += packets
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return NetflowStats{}, err
		}
		rows.Close()
	}

	out := make([]EndpointStat, 0, len(endpoints))
	for _, ep := range endpoints {
		ep.Formatted = formatBytes(ep.Bytes)
		out = append(out, *ep)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].RemoteIP < out[j].RemoteIP
	})
	if len(out) > topN {
		out = out[:topN]
	}
	stats.Top = out

	seconds := minutes * 60
	if seconds > 0 {
		stats.AverageSpeed = formatSpeed(float64(stats.TotalBytes) * 8 / seconds)
	} else {
		stats.AverageSpeed = formatSpeed(0)
	}

	return stats, nil
}

func (q *Querier) labelFor(ip string) string {
	if q.services == nil {
		return ""
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	return q.services.Lookup(addr)
}

// binaryUnits are applied in order; formatBytes/formatSpeed pick the
// smallest unit whose scaled value is <= 1024 (or "T" if none is), per spec §4.6.
var binaryUnits = []string{"", "K", "M", "G", "T"}

func formatBytes(n int64) string {
	return scaleBinary(float64(n), "B")
}

func formatSpeed(bitsPerSecond float64) string {
	return scaleBinary(bitsPerSecond, "bps")
}

func scaleBinary(v float64, suffix string) string {
	unit := 0
	for v > 1024 && unit < len(binaryUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s%s", v, binaryUnits[unit], suffix)
}
