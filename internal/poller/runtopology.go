package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/netreveal/topolink/internal/metrics"
	"github.com/netreveal/topolink/internal/topology"
	"github.com/netreveal/topolink/pkg/model"
)

// runTopology rebuilds the switch_parents table from the current cycle's
// ONLINE switches and their TRUNK-port MAC observations. It is a no-op
// (not an error) when fewer than two switches are online, since there is
// nothing to infer.
func (p *Poller) runTopology(ctx context.Context) error {
	ipToMAC, err := p.store.OnlineSwitchMACs(ctx)
	if err != nil {
		return fmt.Errorf("online switch macs: %w", err)
	}
	if len(ipToMAC) < 2 {
		return nil
	}

	macToIP := make(map[string]string, len(ipToMAC))
	for ip, mac := range ipToMAC {
		macToIP[mac] = ip
	}

	switches := make([]topology.Switch, 0, len(ipToMAC))
	for ip := range ipToMAC {
		trunks, err := p.store.TrunkPorts(ctx, ip)
		if err != nil {
			return fmt.Errorf("trunk ports %s: %w", ip, err)
		}

		sees := make(map[int]map[string]bool, len(trunks))
		for port, macs := range trunks {
			others := map[string]bool{}
			for mac := range macs {
				if otherIP, ok := macToIP[mac]; ok && otherIP != ip {
					others[otherIP] = true
				}
			}
			if len(others) > 0 {
				sees[port] = others
			}
		}
		switches = append(switches, topology.Switch{IP: ip, Sees: sees})
	}

	root, _ := topology.FindRoot(switches)
	if root == "" {
		return nil
	}

	edges, err := topology.Infer(switches, root)
	if err != nil {
		switch {
		case errors.Is(err, topology.ErrMaxDepth):
			metrics.TopologyInferenceResults.WithLabelValues("max_depth").Inc()
		case errors.Is(err, topology.ErrStructuralAmbiguity):
			metrics.TopologyInferenceResults.WithLabelValues("ambiguous").Inc()
			p.halted.Store(true)
		}
		return fmt.Errorf("infer topology from root %s: %w", root, err)
	}
	metrics.TopologyInferenceResults.WithLabelValues("ok").Inc()

	stamp := float64(time.Now().Unix())
	rows := make([]model.SwitchParent, len(edges))
	for i, e := range edges {
		rows[i] = model.SwitchParent{Child: e.Child, Parent: e.Parent, ParentPort: e.ParentPort, Stamp: stamp}
	}
	return p.store.ReplaceTopology(ctx, rows)
}
