package flowcurator

import (
	"context"
	"database/sql"
	"fmt"
	"net/netip"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/netreveal/topolink/internal/store"
	"github.com/netreveal/topolink/pkg/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	s, err := store.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(context.Background(), "flowcurator_test", store.Migrations()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s.DB()
}

func insertRawFlow(t *testing.T, db *sql.DB, f model.Flow) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO raw_flows (stamp, src_ip, dst_ip, src_port, dst_port, protocol, packets, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, fmt.Sprintf("%f", f.Stamp), f.SrcIP, f.DstIP, f.SrcPort, f.DstPort, f.Protocol, f.Packets, f.Bytes)
	if err != nil {
		t.Fatalf("insertRawFlow: %v", err)
	}
}

func TestCurator_runTick_classifiesAndPersists(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	c := New(Config{
		Network:   netip.MustParsePrefix("10.0.0.0/24"),
		Tick:      time.Second,
		Retention: 300 * time.Second,
	}, s, zap.NewNop())

	now := float64(1_700_000_000)
	insertRawFlow(t, db, model.Flow{Stamp: now, SrcIP: "10.0.0.5", DstIP: "8.8.8.8", Bytes: 1200})

	if err := c.runTick(context.Background()); err != nil {
		t.Fatalf("runTick: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM public_up`).Scan(&count); err != nil {
		t.Fatalf("count public_up: %v", err)
	}
	if count != 1 {
		t.Errorf("public_up count = %d, want 1", count)
	}

	for _, table := range []string{"public_down", "private_up", "private_down"} {
		var other int
		if err := db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&other); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if other != 0 {
			t.Errorf("%s count = %d, want 0", table, other)
		}
	}
}

func TestCurator_runTick_onlyReadsRowsPastWatermark(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	c := New(Config{Network: netip.MustParsePrefix("10.0.0.0/24"), Retention: 300 * time.Second}, s, zap.NewNop())
	ctx := context.Background()

	now := float64(time.Now().Unix())
	insertRawFlow(t, db, model.Flow{Stamp: now, SrcIP: "10.0.0.5", DstIP: "8.8.8.8"})
	if err := c.runTick(ctx); err != nil {
		t.Fatalf("first tick: %v", err)
	}

	insertRawFlow(t, db, model.Flow{Stamp: now - 50, SrcIP: "10.0.0.6", DstIP: "8.8.4.4"})
	if err := c.runTick(ctx); err != nil {
		t.Fatalf("second tick: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM public_up`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("public_up count = %d, want 1 (stale row must not be re-read)", count)
	}
}

func TestCurator_runTick_prunesOldRows(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	c := New(Config{Network: netip.MustParsePrefix("10.0.0.0/24"), Retention: 300 * time.Second}, s, zap.NewNop())
	ctx := context.Background()

	old := float64(time.Now().Add(-1 * time.Hour).Unix())
	if err := s.CurateTick(ctx, 0, map[model.FlowTable][]model.Flow{
		model.FlowTablePublicUp: {{Stamp: old, SrcIP: "10.0.0.5", DstIP: "8.8.8.8"}},
	}); err != nil {
		t.Fatalf("seed old row: %v", err)
	}

	insertRawFlow(t, db, model.Flow{Stamp: float64(time.Now().Unix()), SrcIP: "10.0.0.7", DstIP: "9.9.9.9"})
	if err := c.runTick(ctx); err != nil {
		t.Fatalf("runTick: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM public_up`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("public_up count = %d, want 1 (old row should have been pruned)", count)
	}
}
