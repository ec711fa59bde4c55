package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/netreveal/topolink/pkg/model"
)

// SyncStaticTables mirrors the site file's access points and recognized
// parameters into the store, so query-layer reads (AP annotation,
// network-of-interest lookups) never need to re-parse the site file.
// Both tables are small and fully replaced on every startup -- access
// points and site params are static within a run (§3's lifecycle note).
func SyncStaticTables(ctx context.Context, db *sql.DB, site *SiteConfig) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM access_points"); err != nil {
		return fmt.Errorf("clear access_points: %w", err)
	}
	for _, ap := range site.AccessPoints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO access_points (ap_mac, ap_name) VALUES (?, ?)
			 ON CONFLICT(ap_mac) DO UPDATE SET ap_name = excluded.ap_name`,
			ap.MAC, ap.Name,
		); err != nil {
			return fmt.Errorf("upsert access point %s: %w", ap.MAC, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM site_params"); err != nil {
		return fmt.Errorf("clear site_params: %w", err)
	}
	for k, v := range site.Params {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO site_params (parametro, valor) VALUES (?, ?)
			 ON CONFLICT(parametro) DO UPDATE SET valor = excluded.valor`,
			k, v,
		); err != nil {
			return fmt.Errorf("upsert site param %s: %w", k, err)
		}
	}

	return tx.Commit()
}

// AccessPointModels converts the parsed site-file entries to the shared
// model type, for callers that want them in memory rather than via a
// round-trip through the store.
func AccessPointModels(site *SiteConfig) []model.AccessPoint {
	out := make([]model.AccessPoint, 0, len(site.AccessPoints))
	for _, ap := range site.AccessPoints {
		out = append(out, model.AccessPoint{MAC: ap.MAC, Name: ap.Name})
	}
	return out
}
