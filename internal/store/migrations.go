package store

import "database/sql"

// Migrations returns the engine's full set of versioned schema changes
// as one ascending slice, one version per table family, applied together
// under a single component name.
func Migrations() []Migration {
	return migrations()
}

func migrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "create switch, switch_port, macaddress, arp tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE switches (
						switch_ip    TEXT PRIMARY KEY,
						switch_mac   TEXT NOT NULL DEFAULT '',
						switch_desc  TEXT NOT NULL DEFAULT '',
						status       TEXT NOT NULL DEFAULT 'OFFLINE',
						mac_count    INTEGER NOT NULL DEFAULT 0,
						stamp        TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE TABLE switch_ports (
						switch_ip   TEXT NOT NULL REFERENCES switches(switch_ip) ON DELETE CASCADE,
						port_num    INTEGER NOT NULL,
						port_desc   TEXT NOT NULL DEFAULT '',
						port_type   TEXT NOT NULL DEFAULT 'ACCESS',
						is_root     TEXT NOT NULL DEFAULT '',
						PRIMARY KEY (switch_ip, port_num)
					)`,
					`CREATE TABLE macaddresses (
						stamp       TEXT NOT NULL,
						switch_ip   TEXT NOT NULL,
						vlan        INTEGER NOT NULL DEFAULT 0,
						mac         TEXT NOT NULL,
						port_num    INTEGER NOT NULL,
						PRIMARY KEY (stamp, switch_ip, vlan, mac, port_num)
					)`,
					`CREATE INDEX idx_macaddresses_switch ON macaddresses(switch_ip, port_num)`,
					`CREATE INDEX idx_macaddresses_mac ON macaddresses(mac)`,
					`CREATE TABLE arp_entries (
						if_name     TEXT NOT NULL DEFAULT '',
						vlan        INTEGER NOT NULL DEFAULT 0,
						ip_addr     TEXT NOT NULL,
						mac_addr    TEXT NOT NULL,
						stamp       TEXT NOT NULL DEFAULT '',
						PRIMARY KEY (if_name, vlan, ip_addr, mac_addr)
					)`,
					`CREATE INDEX idx_arp_entries_ip ON arp_entries(ip_addr)`,
					`CREATE INDEX idx_arp_entries_mac ON arp_entries(mac_addr)`,
				}
				return execAll(tx, stmts)
			},
		},
		{
			Version:     2,
			Description: "create site_params, access_points, vendors, hostnames",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE site_params (
						parametro TEXT PRIMARY KEY,
						valor     TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE TABLE access_points (
						ap_mac  TEXT PRIMARY KEY,
						ap_name TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE TABLE vendors (
						half_mac  TEXT PRIMARY KEY,
						el_vendor TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE TABLE hostnames (
						ip_addr  TEXT PRIMARY KEY,
						hostname TEXT NOT NULL DEFAULT '',
						stamp    TEXT NOT NULL DEFAULT ''
					)`,
				}
				return execAll(tx, stmts)
			},
		},
		{
			Version:     3,
			Description: "create join_strategies, switch_parents",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE join_strategies (
						switch_ip    TEXT PRIMARY KEY,
						path         TEXT NOT NULL,
						use_t2       INTEGER NOT NULL DEFAULT 0,
						use_t3       INTEGER NOT NULL DEFAULT 0,
						pred_t1_t2   INTEGER NOT NULL DEFAULT 0,
						pred_t2_t3   INTEGER NOT NULL DEFAULT 0,
						pred_t3_t4   INTEGER NOT NULL DEFAULT 0,
						pred_t2_t4   INTEGER NOT NULL DEFAULT 0,
						pred_t1_t3   INTEGER NOT NULL DEFAULT 0,
						pred_t1_t4   INTEGER NOT NULL DEFAULT 0,
						port_source  TEXT NOT NULL DEFAULT ''
					)`,
					`CREATE TABLE switch_parents (
						switch_hijo  TEXT PRIMARY KEY,
						switch_padre TEXT NOT NULL,
						port_padre   INTEGER NOT NULL,
						stamp        TEXT NOT NULL DEFAULT ''
					)`,
				}
				return execAll(tx, stmts)
			},
		},
		{
			Version:     4,
			Description: "create raw_flows and the four curated flow tables",
			Up: func(tx *sql.Tx) error {
				flowCols := `(
						id        INTEGER PRIMARY KEY AUTOINCREMENT,
						stamp     TEXT NOT NULL,
						src_ip    TEXT NOT NULL,
						dst_ip    TEXT NOT NULL,
						src_port  INTEGER NOT NULL DEFAULT 0,
						dst_port  INTEGER NOT NULL DEFAULT 0,
						protocol  INTEGER NOT NULL DEFAULT 0,
						packets   INTEGER NOT NULL DEFAULT 0,
						bytes     INTEGER NOT NULL DEFAULT 0
					)`
				stmts := []string{
					`CREATE TABLE raw_flows ` + flowCols,
					`CREATE INDEX idx_raw_flows_stamp ON raw_flows(stamp)`,
					`CREATE TABLE public_up ` + flowCols,
					`CREATE TABLE public_down ` + flowCols,
					`CREATE TABLE private_up ` + flowCols,
					`CREATE TABLE private_down ` + flowCols,
				}
				for _, t := range []string{"public_up", "public_down", "private_up", "private_down"} {
					stmts = append(stmts, `CREATE INDEX idx_`+t+`_stamp ON `+t+`(stamp)`)
				}
				return execAll(tx, stmts)
			},
		},
	}
}

func execAll(tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
