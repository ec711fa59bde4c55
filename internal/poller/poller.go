// Package poller orchestrates one discovery cycle across every
// configured switch: SNMP fetch, join-strategy discovery/replay,
// atomic per-switch rewrite, port classification, and the adaptive
// worker pool that bounds per-cycle concurrency.
package poller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/netreveal/topolink/internal/guard"
	"github.com/netreveal/topolink/internal/joinstrategy"
	"github.com/netreveal/topolink/internal/metrics"
	"github.com/netreveal/topolink/internal/snmpwalk"
	"github.com/netreveal/topolink/pkg/model"
)

// SwitchConfig is one managed switch from the site file.
type SwitchConfig struct {
	IP          string
	Description string
}

// Config holds everything the Poller needs beyond the store: the
// managed switch list, SNMP community, gateway, and bypass overrides.
type Config struct {
	Switches     []SwitchConfig
	Community    string
	GatewayIP    string
	Bypass       map[string]map[int]bool // switchIP -> port -> true
	GuardFile    string
	PollInterval time.Duration
	PoolSeed     int
}

// Poller runs discovery cycles until its context is cancelled or the
// operation-guard file disappears.
type Poller struct {
	cfg     Config
	store   *Store
	logger  *zap.Logger
	climb   *HillClimb
	limiter *rate.Limiter
	halted  atomic.Bool
}

// Halted reports whether topology inference has set the global halt flag
// on a structural ambiguity. Once set it is never cleared automatically;
// an operator must restart the poller after resolving the ambiguity.
func (p *Poller) Halted() bool {
	return p.halted.Load()
}

// New builds a Poller against the given store and configuration.
func New(cfg Config, store *Store, logger *zap.Logger) *Poller {
	return &Poller{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		climb:   NewHillClimb(cfg.PoolSeed),
		limiter: rate.NewLimiter(rate.Limit(50), 50),
	}
}

// Run loops cycles on cfg.PollInterval until ctx is cancelled, the
// operation-guard file disappears, or topology inference sets the global
// halt flag on a structural ambiguity.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if p.cfg.GuardFile != "" && !guard.Present(p.cfg.GuardFile) {
			p.logger.Info("operation guard file absent, exiting")
			return nil
		}
		if p.halted.Load() {
			p.logger.Error("poller halted on structural topology ambiguity, exiting")
			return nil
		}

		cycleID := uuid.New().String()
		start := time.Now()
		online, err := p.runCycle(ctx, cycleID)
		elapsed := time.Since(start)

		if err != nil {
			p.logger.Error("poll cycle failed", zap.String("cycle", cycleID), zap.Error(err))
		} else {
			p.logger.Info("poll cycle complete",
				zap.String("cycle", cycleID),
				zap.Duration("elapsed", elapsed),
				zap.Int("online", online),
				zap.Int("poolSize", p.climb.Size),
			)
		}
		p.climb.Next(elapsed, online)
		metrics.PollCycleDuration.Observe(elapsed.Seconds())
		metrics.PollPoolSize.Set(float64(p.climb.Size))
		metrics.SwitchesOnline.Set(float64(online))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runCycle polls every configured switch (bounded by the current pool
// size), then runs topology inference once all switches have reported.
// It returns the number of switches that came back ONLINE.
func (p *Poller) runCycle(ctx context.Context, cycleID string) (int, error) {
	mgmtMACs, ipToMAC, err := p.resolveManagementMACs(ctx)
	if err != nil {
		p.logger.Warn("could not resolve management MACs", zap.Error(err))
	}
	gatewayMAC, err := bridgeAddress(ctx, snmpwalk.NewARPWalker(p.cfg.Community), p.cfg.GatewayIP)
	if err != nil {
		p.logger.Warn("could not resolve gateway MAC", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.climb.Size)

	results := make(chan bool, len(p.cfg.Switches))
	for _, sw := range p.cfg.Switches {
		sw := sw
		ownMAC := ipToMAC[sw.IP]
		g.Go(func() error {
			if err := p.limiter.Wait(gctx); err != nil {
				return nil //nolint:nilerr
			}
			online, err := p.pollSwitch(gctx, sw, ownMAC, gatewayMAC, mgmtMACs)
			if err != nil {
				p.logger.Warn("switch poll failed", zap.String("switch", sw.IP), zap.Error(err))
			}
			switch {
			case online:
				metrics.SwitchPollResults.WithLabelValues("online").Inc()
			case err != nil:
				metrics.SwitchPollResults.WithLabelValues("strategy_failed").Inc()
			default:
				metrics.SwitchPollResults.WithLabelValues("offline").Inc()
			}
			results <- online
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	online := 0
	for ok := range results {
		if ok {
			online++
		}
	}

	if err := p.runTopology(ctx); err != nil {
		p.logger.Error("topology inference failed", zap.String("cycle", cycleID), zap.Error(err))
	}

	return online, nil
}

// pollSwitch executes the four bulk-walks, discovers or replays the join
// strategy, and atomically rewrites the switch's rows. A fetch failure or
// a strategy that never validates marks the switch OFFLINE for this
// cycle rather than propagating an error up the worker pool.
func (p *Poller) pollSwitch(ctx context.Context, sw SwitchConfig, ownMAC, gatewayMAC string, managementMACs macSet) (bool, error) {
	w := snmpwalk.NewWalker(p.cfg.Community)

	cached, haveCached, err := p.store.LoadStrategy(ctx, sw.IP)
	if err != nil {
		haveCached = false
	}
	useT2, useT3 := true, true
	if haveCached {
		useT2, useT3 = cached.UseT2, cached.UseT3
	}

	tables, err := fetchSubTables(ctx, w, sw.IP, useT2, useT3)
	if err != nil {
		return false, p.store.UpsertSwitchStandalone(ctx, model.Switch{
			IP: sw.IP, MAC: ownMAC, Description: sw.Description, Status: model.SwitchOffline,
			Stamp: float64(time.Now().Unix()),
		})
	}

	macs, err := p.resolveStrategy(ctx, w, sw.IP, tables, cached, haveCached)
	if err != nil {
		return false, p.store.UpsertSwitchStandalone(ctx, model.Switch{
			IP: sw.IP, MAC: ownMAC, Description: sw.Description, Status: model.SwitchOffline,
			Stamp: float64(time.Now().Unix()),
		})
	}

	ports := buildPortShells(sw.IP, macs)
	if err := p.store.ReplaceSwitchData(ctx, sw.IP, macs, ports); err != nil {
		return false, err
	}

	bypass := p.cfg.Bypass[sw.IP]
	if err := p.store.ClassifyPorts(ctx, sw.IP, gatewayMAC, managementMACs, bypass); err != nil {
		return false, err
	}

	distinct := map[string]bool{}
	for _, m := range macs {
		distinct[m.MAC] = true
	}
	if err := p.store.UpsertSwitchStandalone(ctx, model.Switch{
		IP: sw.IP, MAC: ownMAC, Description: sw.Description, Status: model.SwitchOnline,
		MACCount: len(distinct), Stamp: float64(time.Now().Unix()),
	}); err != nil {
		return false, err
	}

	return true, nil
}

// resolveStrategy replays the cached strategy against tables -- fetched by
// the caller using only the sub-tables that strategy actually joins
// through -- if one exists. On replay failure it invalidates the cache,
// re-fetches the full sub-table set (discovery must see every table to
// pick a new tier), and runs discovery once. Giving up returns an error,
// which the caller treats as OFFLINE for this cycle.
func (p *Poller) resolveStrategy(ctx context.Context, w *snmpwalk.Walker, switchIP string, tables joinstrategy.SubTables, cached model.JoinStrategy, haveCached bool) ([]model.MacAddress, error) {
	if haveCached {
		if rows, ok := joinstrategy.Replay(cached, tables); ok {
			return rows, nil
		}
		if err := p.store.InvalidateStrategy(ctx, switchIP); err != nil {
			p.logger.Warn("invalidate strategy failed", zap.String("switch", switchIP), zap.Error(err))
		}
		full, err := fetchSubTables(ctx, w, switchIP, true, true)
		if err != nil {
			return nil, err
		}
		tables = full
	}

	strat, rows, err := joinstrategy.Discover(switchIP, tables)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveStrategy(ctx, strat); err != nil {
		p.logger.Warn("save strategy failed", zap.String("switch", switchIP), zap.Error(err))
	}
	return rows, nil
}
