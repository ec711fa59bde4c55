package flowcurator

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/netreveal/topolink/internal/metrics"
	"github.com/netreveal/topolink/pkg/model"
)

// ErrTooManyFailures is returned by Run when ten consecutive ticks each
// failed, per spec §4.5's escalation rule.
var ErrTooManyFailures = errors.New("flowcurator: ten consecutive tick failures")

const (
	maxConsecutiveFailures = 10
	compactEveryNTicks     = 10
)

// Config configures one Curator's tick cadence and classification input.
type Config struct {
	Network   netip.Prefix
	Tick      time.Duration
	Retention time.Duration
}

// Curator runs the flow-curation loop on a fixed tick.
type Curator struct {
	cfg    Config
	store  *Store
	logger *zap.Logger
}

// New builds a Curator against the given store and configuration.
func New(cfg Config, store *Store, logger *zap.Logger) *Curator {
	return &Curator{cfg: cfg, store: store, logger: logger}
}

// Run loops ticks until ctx is cancelled or ten consecutive ticks fail.
func (c *Curator) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()

	consecutiveFailures := 0
	tick := 0

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		tick++
		if err := c.runTick(ctx); err != nil {
			consecutiveFailures++
			metrics.FlowCuratorTickErrors.Inc()
			c.logger.Error("flow curator tick failed",
				zap.Error(err), zap.Int("consecutiveFailures", consecutiveFailures))
			if consecutiveFailures >= maxConsecutiveFailures {
				return ErrTooManyFailures
			}
			continue
		}
		consecutiveFailures = 0

		if tick%compactEveryNTicks == 0 {
			if err := c.store.Compact(ctx); err != nil {
				c.logger.Warn("incremental vacuum failed", zap.Error(err))
			}
		}
	}
}

// runTick executes one full curation pass: find the watermark, read new
// raw rows, classify each (skipping rows that fail to parse), and
// atomically prune + insert.
func (c *Curator) runTick(ctx context.Context) error {
	watermark, err := c.store.MaxCuratedStamp(ctx)
	if err != nil {
		return err
	}

	raw, err := c.store.ReadRawSince(ctx, watermark)
	if err != nil {
		return err
	}

	classified := map[model.FlowTable][]model.Flow{}
	for _, f := range raw {
		table, ok := classify(c.cfg.Network, f)
		if !ok {
			continue
		}
		classified[table] = append(classified[table], f)
		metrics.FlowCuratorRowsClassified.WithLabelValues(string(table)).Inc()
	}

	cutoff := float64(time.Now().Add(-c.cfg.Retention).Unix())
	return c.store.CurateTick(ctx, cutoff, classified)
}
