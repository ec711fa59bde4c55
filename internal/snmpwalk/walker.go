// Package snmpwalk executes bulk-walks against SNMP-enabled devices and
// normalizes the returned varbinds, per the engine's SNMP fetch primitive.
package snmpwalk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gosnmp/gosnmp"
)

// ErrOffline is returned when a device could not be reached -- the caller
// reads this as the device being OFFLINE for the current cycle.
var ErrOffline = errors.New("snmpwalk: device unreachable")

// Varbind is one normalized result row from a bulk-walk: the OID suffix
// relative to the walked subtree, and the normalized value.
type Varbind struct {
	OID   string
	Value any
}

// Walker performs SNMPv2c bulk-walks with the timeouts and single-retry
// policy the engine requires.
type Walker struct {
	Community string
	Timeout   time.Duration
	Retries   int
}

// NewWalker builds a Walker configured for switch-table walks (4s timeout,
// one retry), per spec's per-OID timeout defaults.
func NewWalker(community string) *Walker {
	return &Walker{Community: community, Timeout: 4 * time.Second, Retries: 1}
}

// NewARPWalker builds a Walker configured for the gateway's ARP walk (2s
// timeout), per spec's per-OID timeout defaults.
func NewARPWalker(community string) *Walker {
	return &Walker{Community: community, Timeout: 2 * time.Second, Retries: 1}
}

func (w *Walker) connect(target string) (*gosnmp.GoSNMP, error) {
	g := &gosnmp.GoSNMP{
		Target:    target,
		Port:      161,
		Community: w.Community,
		Version:   gosnmp.Version2c,
		Timeout:   w.Timeout,
		Retries:   w.Retries,
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", ErrOffline, target, err)
	}
	return g, nil
}

// BulkWalk walks the given OID subtree on target and returns normalized
// varbinds. A connect or walk failure returns ErrOffline.
func (w *Walker) BulkWalk(ctx context.Context, target, oid string) ([]Varbind, error) {
	g, err := w.connect(target)
	if err != nil {
		return nil, err
	}
	defer func() { _ = g.Conn.Close() }()

	pdus, err := g.BulkWalkAll(oid)
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s on %s: %v", ErrOffline, oid, target, err)
	}

	out := make([]Varbind, 0, len(pdus))
	for _, pdu := range pdus {
		suffix := strings.TrimPrefix(pdu.Name, "."+oid)
		suffix = strings.TrimPrefix(suffix, ".")
		out = append(out, Varbind{OID: suffix, Value: Normalize(pdu)})
	}
	return out, nil
}

// Normalize converts a gosnmp PDU's raw value into the engine's normalized
// form: integers stay integers, OCTET STRING/hex-string values arrive as
// byte slices (callers interpret as UTF-8-with-invalid-bytes-discarded, a
// MAC, or plain text depending on the OID), and TimeTicks become a
// time.Duration.
func Normalize(pdu gosnmp.SnmpPDU) any {
	switch v := pdu.Value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	case int:
		return v
	case int64:
		return int(v)
	case uint:
		return int(v)
	case uint32:
		if pdu.Type == gosnmp.TimeTicks {
			return time.Duration(v) * 10 * time.Millisecond
		}
		return int(v)
	case uint64:
		return int(v)
	default:
		return v
	}
}

// AsText interprets a normalized value as a UTF-8 string, discarding any
// invalid bytes, per the ifName/ifDescr normalization rule.
func AsText(v any) string {
	b, ok := v.([]byte)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r != utf8.RuneError {
			sb.WriteRune(r)
		}
		b = b[size:]
	}
	return sb.String()
}

// AsInt interprets a normalized value as an integer; non-numeric values
// yield 0.
func AsInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case []byte:
		n, err := strconv.Atoi(strings.TrimSpace(string(t)))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// AsMAC interprets a normalized value as six raw bytes and formats it
// lowercase hyphen-separated, or "" if it isn't MAC-shaped.
func AsMAC(v any) string {
	b, ok := v.([]byte)
	if !ok || len(b) != 6 {
		return ""
	}
	parts := make([]string, 6)
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02x", c)
	}
	return strings.Join(parts, "-")
}
