package flowcurator

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/netreveal/topolink/pkg/model"
)

// Store provides the flow curator's database operations.
type Store struct {
	db *sql.DB
}

// NewStore wraps a *sql.DB for flow-curator use.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// MaxCuratedStamp returns the maximum stamp across all four curated
// tables, per spec §9's adopted fix for the original's single-table
// read. Returns 0 when every curated table is empty.
func (s *Store) MaxCuratedStamp(ctx context.Context) (float64, error) {
	query := `SELECT MAX(stamp) FROM (
		SELECT MAX(CAST(stamp AS REAL)) AS stamp FROM public_up
		UNION ALL SELECT MAX(CAST(stamp AS REAL)) FROM public_down
		UNION ALL SELECT MAX(CAST(stamp AS REAL)) FROM private_up
		UNION ALL SELECT MAX(CAST(stamp AS REAL)) FROM private_down
	)`
	var stamp sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query).Scan(&stamp); err != nil {
		return 0, fmt.Errorf("max curated stamp: %w", err)
	}
	if !stamp.Valid {
		return 0, nil
	}
	return stamp.Float64, nil
}

// ReadRawSince returns every raw_flows row with stamp strictly greater
// than since, ordered by stamp.
func (s *Store) ReadRawSince(ctx context.Context, since float64) ([]model.Flow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stamp, src_ip, dst_ip, src_port, dst_port, protocol, packets, bytes
		FROM raw_flows WHERE CAST(stamp AS REAL) > ? ORDER BY CAST(stamp AS REAL)
	`, since)
	if err != nil {
		return nil, fmt.Errorf("read raw flows: %w", err)
	}
	defer rows.Close()

	var out []model.Flow
	for rows.Next() {
		var f model.Flow
		var stampStr string
		if err := rows.Scan(&stampStr, &f.SrcIP, &f.DstIP, &f.SrcPort, &f.DstPort, &f.Protocol, &f.Packets, &f.Bytes); err != nil {
			return nil, err
		}
		stamp, err := strconv.ParseFloat(stampStr, 64)
		if err != nil {
			return nil, fmt.Errorf("parse raw flow stamp %q: %w", stampStr, err)
		}
		f.Stamp = stamp
		out = append(out, f)
	}
	return out, rows.Err()
}

// CurateTick atomically prunes every curated table to rows with
// stamp >= cutoff, then inserts the newly classified rows, one
// transaction for all eight statements per spec §4.5 step 5.
func (s *Store) CurateTick(ctx context.Context, cutoff float64, classified map[model.FlowTable][]model.Flow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range model.AllCuratedTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+string(table)+` WHERE CAST(stamp AS REAL) < ?`, cutoff); err != nil {
			return fmt.Errorf("prune %s: %w", table, err)
		}
	}

	for table, rows := range classified {
		for _, f := range rows {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO `+string(table)+` (stamp, src_ip, dst_ip, src_port, dst_port, protocol, packets, bytes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, fmt.Sprintf("%f", f.Stamp), f.SrcIP, f.DstIP, f.SrcPort, f.DstPort, f.Protocol, f.Packets, f.Bytes); err != nil {
				return fmt.Errorf("insert %s row: %w", table, err)
			}
		}
	}

	return tx.Commit()
}

// Compact requests an incremental free-page reclaim, the pure-Go
// auto_vacuum=INCREMENTAL equivalent of the original collector's
// explicit VACUUM call.
func (s *Store) Compact(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `PRAGMA incremental_vacuum`)
	return err
}
