package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SwitchEntry is one managed switch declared between START_SWITCHES and
// END_SWITCHES in the site file.
type SwitchEntry struct {
	IP          string
	Description string
}

// AccessPointEntry is one AP=mac=name line.
type AccessPointEntry struct {
	MAC  string
	Name string
}

// BypassOverride forces TRUNK classification on one (switch, port) pair
// regardless of what the FDB shows, via a "bypass=switchIP=portNum" line.
type BypassOverride struct {
	SwitchIP string
	Port     int
}

// ServiceLabelEntry maps one exact IP or CIDR range to a human service
// name, via a "service=target=label" line.
type ServiceLabelEntry struct {
	Target string // exact IP or CIDR
	Label  string
}

// SiteConfig is the parsed form of the line-oriented site file: the
// network of interest, the gateway to harvest ARP from, the SNMP
// community, adaptive-pool seed, the managed switch list, access points,
// and any bypass overrides.
type SiteConfig struct {
	Network   string
	MaskBits  int
	Gateway   string
	Community string
	Threads   int

	Switches      []SwitchEntry
	AccessPoints  []AccessPointEntry
	Bypasses      []BypassOverride
	ServiceLabels []ServiceLabelEntry

	// Params holds every recognized key=value pair outside the switch
	// fence verbatim, mirroring the siteData table's (parametro, valor)
	// shape so callers can look up keys this parser doesn't interpret.
	Params map[string]string
}

// LoadSiteFile parses the line-oriented configuration file described by
// the engine's external interface: '#'-prefixed comments, a
// START_SWITCHES/END_SWITCHES fence delimiting "ip=description" entries,
// and "key=value" pairs everywhere else. AP, bypass and service lines are
// recognized specially; everything else recognized outside the fence is
// retained verbatim in Params.
func LoadSiteFile(path string) (*SiteConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site file %q: %w", path, err)
	}
	defer f.Close()

	cfg := &SiteConfig{Params: make(map[string]string)}
	inSwitches := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "START_SWITCHES") {
			inSwitches = true
			continue
		}
		if strings.Contains(line, "END_SWITCHES") {
			inSwitches = false
			continue
		}

		key, value, ok := splitKV(line)
		if !ok {
			continue
		}

		if inSwitches {
			cfg.Switches = append(cfg.Switches, SwitchEntry{IP: key, Description: value})
			continue
		}

		switch key {
		case "AP":
			// "AP=aa:bb:cc:dd:ee:ff=APName" -- value itself is "mac=name".
			mac, name, ok := splitKV(value)
			if !ok {
				continue
			}
			cfg.AccessPoints = append(cfg.AccessPoints, AccessPointEntry{
				MAC:  strings.ToLower(strings.ReplaceAll(mac, ":", "-")),
				Name: name,
			})
		case "bypass":
			// "bypass=switchIP=portNum".
			ip, portStr, ok := splitKV(value)
			if !ok {
				continue
			}
			port, err := strconv.Atoi(portStr)
			if err != nil {
				continue
			}
			cfg.Bypasses = append(cfg.Bypasses, BypassOverride{SwitchIP: ip, Port: port})
		case "service":
			// "service=target=label", e.g. "service=10.0.5.10=mail" or
			// "service=203.0.113.0/24=vendor-vpn".
			target, label, ok := splitKV(value)
			if !ok {
				continue
			}
			cfg.ServiceLabels = append(cfg.ServiceLabels, ServiceLabelEntry{Target: target, Label: label})
		case "NETWORK":
			cfg.Network = value
			cfg.Params[key] = value
		case "MASKBITS":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.MaskBits = n
			}
			cfg.Params[key] = value
		case "gateway":
			cfg.Gateway = value
			cfg.Params[key] = value
		case "community":
			cfg.Community = value
			cfg.Params[key] = value
		case "THREADS":
			if n, err := strconv.Atoi(value); err == nil {
				cfg.Threads = n
			}
			cfg.Params[key] = value
		default:
			cfg.Params[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read site file %q: %w", path, err)
	}

	return cfg, nil
}

// splitKV splits "key=value" on the first '=', trimming trailing
// whitespace from the value the way the original line-oriented parser
// trims a trailing newline. Lines without '=' are not a recognized
// key=value pair.
func splitKV(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimRight(line[idx+1:], " \t\r\n"), true
}
