package poller

import (
	"context"

	"github.com/netreveal/topolink/internal/snmpwalk"
)

// macSet is the set of every managed switch's own bridge (management)
// MAC, used by ClassifyPorts' TRUNK rule: a port carrying any of these
// MACs faces another switch. The set includes the polled switch's own
// MAC; it is not excluded per port.
type macSet map[string]bool

// resolveManagementMACs walks each configured switch's
// dot1dBaseBridgeAddress, returning the full MAC set and a
// switchIP -> own-MAC lookup. Unreachable devices are skipped rather
// than failing the whole resolution -- a switch that is OFFLINE this
// cycle simply contributes nothing.
func (p *Poller) resolveManagementMACs(ctx context.Context) (macSet, map[string]string, error) {
	w := snmpwalk.NewARPWalker(p.cfg.Community)

	macs := macSet{}
	ipToMAC := map[string]string{}
	for _, sw := range p.cfg.Switches {
		mac, err := bridgeAddress(ctx, w, sw.IP)
		if err != nil {
			continue
		}
		macs[mac] = true
		ipToMAC[sw.IP] = mac
	}
	return macs, ipToMAC, nil
}

func bridgeAddress(ctx context.Context, w *snmpwalk.Walker, target string) (string, error) {
	vbs, err := w.BulkWalk(ctx, target, snmpwalk.OIDDot1dBaseBridgeAddress)
	if err != nil {
		return "", err
	}
	for _, v := range vbs {
		if mac := snmpwalk.AsMAC(v.Value); mac != "" {
			return mac, nil
		}
	}
	return "", snmpwalk.ErrOffline
}
