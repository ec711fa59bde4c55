// Command topolinkd runs the switch-polling, topology-inference, flow-
// curation, and name-resolution workers described by the engine, and
// serves the read-only query layer over HTTP alongside a Prometheus
// metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/netreveal/topolink/internal/config"
	"github.com/netreveal/topolink/internal/flowcurator"
	"github.com/netreveal/topolink/internal/guard"
	"github.com/netreveal/topolink/internal/nameresolver"
	"github.com/netreveal/topolink/internal/poller"
	"github.com/netreveal/topolink/internal/query"
	"github.com/netreveal/topolink/internal/queryapi"
	"github.com/netreveal/topolink/internal/servicelabel"
	"github.com/netreveal/topolink/internal/store"
	"github.com/netreveal/topolink/internal/vendor"
)

func main() {
	configPath := flag.String("config", "", "path to topolink.yaml")
	flag.Parse()

	v, appCfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	site, err := config.LoadSiteFile(appCfg.SiteFile)
	if err != nil {
		logger.Fatal("failed to load site file", zap.String("path", appCfg.SiteFile), zap.Error(err))
	}

	lock, err := guard.AcquireLock(appCfg.LockFile)
	if err != nil {
		logger.Fatal("failed to acquire singleton lock", zap.Error(err))
	}
	defer func() { _ = lock.Release() }()

	db, err := store.New(appCfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", appCfg.DatabasePath), zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(context.Background(), "topolink", store.Migrations()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := db.CheckVersion(context.Background(), appCfg.Version); err != nil {
		logger.Fatal("schema version check failed", zap.Error(err))
	}
	if err := config.SyncStaticTables(context.Background(), db.DB(), site); err != nil {
		logger.Fatal("failed to sync access points / site params", zap.Error(err))
	}

	network, err := netip.ParsePrefix(fmt.Sprintf("%s/%d", site.Network, site.MaskBits))
	if err != nil {
		logger.Fatal("invalid NETWORK/MASKBITS in site file",
			zap.String("network", site.Network), zap.Int("maskbits", site.MaskBits), zap.Error(err))
	}

	bypass := make(map[string]map[int]bool, len(site.Bypasses))
	for _, b := range site.Bypasses {
		if bypass[b.SwitchIP] == nil {
			bypass[b.SwitchIP] = map[int]bool{}
		}
		bypass[b.SwitchIP][b.Port] = true
	}

	switches := make([]poller.SwitchConfig, 0, len(site.Switches))
	for _, sw := range site.Switches {
		switches = append(switches, poller.SwitchConfig{IP: sw.IP, Description: sw.Description})
	}

	services, err := servicelabel.FromConfigEntries(toServiceEntries(site.ServiceLabels))
	if err != nil {
		logger.Fatal("invalid service-label table", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup

	pollerCfg := poller.Config{
		Switches:     switches,
		Community:    site.Community,
		GatewayIP:    site.Gateway,
		Bypass:       bypass,
		GuardFile:    appCfg.GuardFile,
		PollInterval: appCfg.PollInterval,
		PoolSeed:     site.Threads,
	}
	p := poller.New(pollerCfg, poller.NewStore(db.DB()), logger.Named("poller"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := p.Run(ctx); err != nil {
			logger.Error("poller exited with error", zap.Error(err))
		}
	}()

	curatorCfg := flowcurator.Config{
		Network:   network,
		Tick:      appCfg.FlowTick,
		Retention: appCfg.FlowRetention,
	}
	curator := flowcurator.New(curatorCfg, flowcurator.NewStore(db.DB()), logger.Named("flowcurator"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := curator.Run(ctx); err != nil {
			logger.Error("flow curator exited with error", zap.Error(err))
		}
	}()

	if len(appCfg.NameResolverCommand) > 0 {
		resolverCfg := nameresolver.Config{Command: appCfg.NameResolverCommand, Tick: appCfg.NameResolverTick}
		resolver := nameresolver.New(resolverCfg, nameresolver.NewSQLStore(db.DB()), logger.Named("nameresolver"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := resolver.Run(ctx); err != nil {
				logger.Error("name resolver exited with error", zap.Error(err))
			}
		}()
	} else {
		logger.Info("name resolver disabled: no name_resolver_command configured")
	}

	vendors := vendor.NewStore(db.DB())
	querier := query.New(db.DB(), vendors, services)
	queryMux := http.NewServeMux()
	queryapi.New(querier).Routes(queryMux)
	querySrv := &http.Server{
		Addr:    appCfg.QueryAddr,
		Handler: queryMux,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("query api listening", zap.String("addr", appCfg.QueryAddr))
		if err := querySrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("query api server error", zap.Error(err))
		}
	}()

	metricsSrv := &http.Server{
		Addr:    appCfg.MetricsAddr,
		Handler: promhttp.Handler(),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("metrics server listening", zap.String("addr", appCfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	logger.Info("topolinkd started",
		zap.Int("switches", len(switches)),
		zap.String("network", network.String()),
		zap.Int("poolSeed", site.Threads),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping workers")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown error", zap.Error(err))
	}
	if err := querySrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("query api server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("topolinkd stopped")
}

func toServiceEntries(rows []config.ServiceLabelEntry) []servicelabel.ConfigEntry {
	out := make([]servicelabel.ConfigEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, servicelabel.ConfigEntry{Target: r.Target, Label: r.Label})
	}
	return out
}
