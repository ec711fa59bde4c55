// Package nameresolver wraps the external NetBIOS scanner subprocess and
// persists the (IP, hostname) pairs it reports.
package nameresolver

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/netreveal/topolink/internal/metrics"
	"github.com/netreveal/topolink/pkg/model"
)

// nameLine matches one scanner output line: an IPv4 address, whitespace,
// then a NetBIOS name. Extra trailing fields (workgroup, flags) are
// ignored.
var nameLine = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3}){3})\s+(\S+)`)

// Config configures the external scanner invocation and tick cadence.
type Config struct {
	Command []string // argv, e.g. {"nbtscan", "-q", "10.0.0.0/24"}
	Tick    time.Duration
}

// Store persists resolved hostnames.
type Store interface {
	SaveHostnames(ctx context.Context, hostnames []model.Hostname) error
}

// Resolver runs the scanner on a fixed tick and persists its output.
type Resolver struct {
	cfg    Config
	store  Store
	logger *zap.Logger
}

// New builds a Resolver.
func New(cfg Config, store Store, logger *zap.Logger) *Resolver {
	return &Resolver{cfg: cfg, store: store, logger: logger}
}

// Run loops ticks until ctx is cancelled. A failed scan or persist is
// logged and skipped; it never stops the worker, since the external
// scanner's exit status or availability is outside this engine's control.
func (r *Resolver) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		hostnames, err := r.scan(ctx)
		if err != nil {
			metrics.NameResolverScans.WithLabelValues("failed").Inc()
			r.logger.Warn("name scan failed", zap.Error(err))
			continue
		}
		metrics.NameResolverScans.WithLabelValues("ok").Inc()
		if len(hostnames) == 0 {
			continue
		}
		if err := r.store.SaveHostnames(ctx, hostnames); err != nil {
			r.logger.Warn("save hostnames failed", zap.Error(err))
		}
	}
}

// scan invokes the configured external scanner and parses its stdout.
func (r *Resolver) scan(ctx context.Context) ([]model.Hostname, error) {
	if len(r.cfg.Command) == 0 {
		return nil, fmt.Errorf("nameresolver: no scanner command configured")
	}

	cmd := exec.CommandContext(ctx, r.cfg.Command[0], r.cfg.Command[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run %v: %w", r.cfg.Command, err)
	}

	return ParseOutput(out, float64(time.Now().Unix())), nil
}

// ParseOutput extracts (IP, hostname) pairs from the scanner's stdout.
// It is pure so the parsing rule can be tested without a live scanner.
func ParseOutput(out []byte, stamp float64) []model.Hostname {
	var hostnames []model.Hostname
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := nameLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		hostnames = append(hostnames, model.Hostname{IP: m[1], Hostname: m[2], Stamp: stamp})
	}
	return hostnames
}
