package nameresolver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/netreveal/topolink/pkg/model"
)

// SQLStore persists resolved hostnames to the shared database.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore wraps a *sql.DB for nameresolver use.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// SaveHostnames upserts each (IP, hostname) pair, keeping only the most
// recently resolved name per IP.
func (s *SQLStore) SaveHostnames(ctx context.Context, hostnames []model.Hostname) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, h := range hostnames {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hostnames (ip_addr, hostname, stamp) VALUES (?, ?, ?)
			ON CONFLICT(ip_addr) DO UPDATE SET hostname = excluded.hostname, stamp = excluded.stamp
		`, h.IP, h.Hostname, fmt.Sprintf("%f", h.Stamp)); err != nil {
			return fmt.Errorf("upsert hostname %s: %w", h.IP, err)
		}
	}
	return tx.Commit()
}
