package poller

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/netreveal/topolink/pkg/model"
)

// Store provides the poller's database operations: per-switch atomic
// rewrites, port classification, join-strategy caching, and the switch
// snapshots topology inference reads. It does not write arp_entries.
type Store struct {
	db *sql.DB
}

// NewStore wraps a *sql.DB for poller use.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertSwitch records a switch's liveness for the current cycle.
func (s *Store) UpsertSwitch(ctx context.Context, tx *sql.Tx, sw model.Switch) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO switches (switch_ip, switch_mac, switch_desc, status, mac_count, stamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(switch_ip) DO UPDATE SET
			switch_mac = excluded.switch_mac,
			switch_desc = excluded.switch_desc,
			status = excluded.status,
			mac_count = excluded.mac_count,
			stamp = excluded.stamp
	`, sw.IP, sw.MAC, sw.Description, string(sw.Status), sw.MACCount, fmt.Sprintf("%f", sw.Stamp))
	return err
}

// UpsertSwitchStandalone upserts one switch's liveness row in its own
// transaction, for callers (the per-switch poll goroutines) that don't
// already hold one.
func (s *Store) UpsertSwitchStandalone(ctx context.Context, sw model.Switch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck
	if err := s.UpsertSwitch(ctx, tx, sw); err != nil {
		return err
	}
	return tx.Commit()
}

// ReplaceSwitchData atomically deletes and rewrites one switch's
// macaddress and switch_port rows in one transaction, first inserting a
// default switches row if none exists (switch_ports references it).
// Classification is not part of this transaction: ClassifyPorts runs
// afterwards and commits separately.
func (s *Store) ReplaceSwitchData(ctx context.Context, switchIP string, macs []model.MacAddress, ports []model.SwitchPort) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO switches (switch_ip) VALUES (?) ON CONFLICT(switch_ip) DO NOTHING
	`, switchIP); err != nil {
		return fmt.Errorf("ensure switch row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM macaddresses WHERE switch_ip = ?`, switchIP); err != nil {
		return fmt.Errorf("delete macaddresses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM switch_ports WHERE switch_ip = ?`, switchIP); err != nil {
		return fmt.Errorf("delete switch_ports: %w", err)
	}

	for _, m := range macs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO macaddresses (stamp, switch_ip, vlan, mac, port_num) VALUES (?, ?, ?, ?, ?)
		`, fmt.Sprintf("%f", m.Stamp), m.SwitchIP, m.VLAN, m.MAC, m.Port); err != nil {
			return fmt.Errorf("insert macaddress: %w", err)
		}
	}

	for _, p := range ports {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO switch_ports (switch_ip, port_num, port_desc, port_type, is_root) VALUES (?, ?, ?, ?, ?)
		`, p.SwitchIP, p.Port, p.Description, string(p.Type), string(p.IsRoot)); err != nil {
			return fmt.Errorf("insert switch_port: %w", err)
		}
	}

	return tx.Commit()
}

// ClassifyPorts applies §4.4's classification rules to every port just
// written for switchIP (invoked immediately after ReplaceSwitchData within
// one poll cycle). It runs outside any transaction: each port's UPDATE
// commits on its own, so readers can see unclassified ports in between.
func (s *Store) ClassifyPorts(ctx context.Context, switchIP, gatewayMAC string, managementMACs map[string]bool, bypass map[int]bool) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT port_num FROM switch_ports WHERE switch_ip = ?
	`, switchIP)
	if err != nil {
		return fmt.Errorf("list ports: %w", err)
	}
	var ports []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return err
		}
		ports = append(ports, p)
	}
	rows.Close()

	for _, port := range ports {
		learned, err := s.learnedMACs(ctx, switchIP, port)
		if err != nil {
			return err
		}

		isRoot := model.RootNo
		if gatewayMAC != "" && learned[gatewayMAC] {
			isRoot = model.RootYes
		}

		portType := model.PortAccess
		if bypass[port] {
			portType = model.PortTrunk
		} else {
			for mac := range learned {
				if managementMACs[mac] {
					portType = model.PortTrunk
					break
				}
			}
		}

		if _, err := s.db.ExecContext(ctx, `
			UPDATE switch_ports SET port_type = ?, is_root = ? WHERE switch_ip = ? AND port_num = ?
		`, string(portType), string(isRoot), switchIP, port); err != nil {
			return fmt.Errorf("classify port %d: %w", port, err)
		}
	}
	return nil
}

func (s *Store) learnedMACs(ctx context.Context, switchIP string, port int) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT mac FROM macaddresses WHERE switch_ip = ? AND port_num = ?
	`, switchIP, port)
	if err != nil {
		return nil, fmt.Errorf("learned macs: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var mac string
		if err := rows.Scan(&mac); err != nil {
			return nil, err
		}
		out[mac] = true
	}
	return out, rows.Err()
}

// LoadStrategy returns the cached join strategy for a switch, if any.
func (s *Store) LoadStrategy(ctx context.Context, switchIP string) (model.JoinStrategy, bool, error) {
	var js model.JoinStrategy
	var useT2, useT3 int
	err := s.db.QueryRowContext(ctx, `
		SELECT switch_ip, path, use_t2, use_t3, pred_t1_t2, pred_t2_t3, pred_t3_t4, pred_t2_t4, pred_t1_t3, pred_t1_t4, port_source
		FROM join_strategies WHERE switch_ip = ?
	`, switchIP).Scan(
		&js.SwitchIP, &js.Path, &useT2, &useT3,
		&js.PredT1T2, &js.PredT2T3, &js.PredT3T4, &js.PredT2T4, &js.PredT1T3, &js.PredT1T4,
		&js.PortSource,
	)
	if err == sql.ErrNoRows {
		return model.JoinStrategy{}, false, nil
	}
	if err != nil {
		return model.JoinStrategy{}, false, fmt.Errorf("load strategy: %w", err)
	}
	js.UseT2 = useT2 != 0
	js.UseT3 = useT3 != 0
	return js, true, nil
}

// SaveStrategy persists a newly discovered or re-validated join strategy.
func (s *Store) SaveStrategy(ctx context.Context, js model.JoinStrategy) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO join_strategies (switch_ip, path, use_t2, use_t3, pred_t1_t2, pred_t2_t3, pred_t3_t4, pred_t2_t4, pred_t1_t3, pred_t1_t4, port_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(switch_ip) DO UPDATE SET
			path = excluded.path, use_t2 = excluded.use_t2, use_t3 = excluded.use_t3,
			pred_t1_t2 = excluded.pred_t1_t2, pred_t2_t3 = excluded.pred_t2_t3, pred_t3_t4 = excluded.pred_t3_t4,
			pred_t2_t4 = excluded.pred_t2_t4, pred_t1_t3 = excluded.pred_t1_t3, pred_t1_t4 = excluded.pred_t1_t4,
			port_source = excluded.port_source
	`, js.SwitchIP, string(js.Path), boolInt(js.UseT2), boolInt(js.UseT3),
		js.PredT1T2, js.PredT2T3, js.PredT3T4, js.PredT2T4, js.PredT1T3, js.PredT1T4, string(js.PortSource))
	return err
}

// InvalidateStrategy removes a switch's cached strategy after a failed
// replay, forcing fresh discovery next attempt.
func (s *Store) InvalidateStrategy(ctx context.Context, switchIP string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM join_strategies WHERE switch_ip = ?`, switchIP)
	return err
}

// OnlineSwitchMACs returns every currently-ONLINE switch's management IP
// and own bridge MAC, the raw material for topology inference's switch
// snapshots.
func (s *Store) OnlineSwitchMACs(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT switch_ip, switch_mac FROM switches WHERE status = ? AND switch_mac != ''
	`, string(model.SwitchOnline))
	if err != nil {
		return nil, fmt.Errorf("online switch macs: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var ip, mac string
		if err := rows.Scan(&ip, &mac); err != nil {
			return nil, err
		}
		out[ip] = mac
	}
	return out, rows.Err()
}

// TrunkPorts returns the non-ROOT TRUNK ports of switchIP with the set
// of MAC addresses learned on each.
func (s *Store) TrunkPorts(ctx context.Context, switchIP string) (map[int]map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT port_num FROM switch_ports WHERE switch_ip = ? AND port_type = ? AND is_root != ?
	`, switchIP, string(model.PortTrunk), string(model.RootYes))
	if err != nil {
		return nil, fmt.Errorf("trunk ports: %w", err)
	}
	var ports []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		ports = append(ports, p)
	}
	rows.Close()

	out := map[int]map[string]bool{}
	for _, port := range ports {
		macs, err := s.learnedMACs(ctx, switchIP, port)
		if err != nil {
			return nil, err
		}
		out[port] = macs
	}
	return out, nil
}

// ReplaceTopology atomically replaces the switch_parents table with a
// freshly inferred edge set.
func (s *Store) ReplaceTopology(ctx context.Context, edges []model.SwitchParent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM switch_parents`); err != nil {
		return fmt.Errorf("delete switch_parents: %w", err)
	}
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO switch_parents (switch_hijo, switch_padre, port_padre, stamp) VALUES (?, ?, ?, ?)
		`, e.Child, e.Parent, e.ParentPort, fmt.Sprintf("%f", e.Stamp)); err != nil {
			return fmt.Errorf("insert switch_parent: %w", err)
		}
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
