package snmpwalk

import (
	"testing"
	"time"

	"github.com/gosnmp/gosnmp"
)

func TestNormalize_octetString(t *testing.T) {
	pdu := gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: []byte("switch-01")}
	got := Normalize(pdu)
	b, ok := got.([]byte)
	if !ok || string(b) != "switch-01" {
		t.Errorf("Normalize = %v, want []byte(switch-01)", got)
	}
}

func TestNormalize_timeTicks(t *testing.T) {
	pdu := gosnmp.SnmpPDU{Type: gosnmp.TimeTicks, Value: uint32(12345)}
	got, ok := Normalize(pdu).(time.Duration)
	if !ok {
		t.Fatalf("Normalize did not return time.Duration: %v", got)
	}
	want := time.Duration(12345) * 10 * time.Millisecond
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNormalize_integer(t *testing.T) {
	pdu := gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: 42}
	if got := Normalize(pdu); got != 42 {
		t.Errorf("got %v, want 42", got)
	}
}

func TestAsText_discardsInvalidBytes(t *testing.T) {
	invalid := []byte{'e', 't', 'h', 0xff, '0'}
	got := AsText(invalid)
	if got != "eth0" {
		t.Errorf("AsText = %q, want %q", got, "eth0")
	}
}

func TestAsText_validUTF8(t *testing.T) {
	if got := AsText([]byte("GigabitEthernet0/1")); got != "GigabitEthernet0/1" {
		t.Errorf("AsText = %q", got)
	}
}

func TestAsInt_fromBytes(t *testing.T) {
	if got := AsInt([]byte(" 24 ")); got != 24 {
		t.Errorf("AsInt = %d, want 24", got)
	}
}

func TestAsInt_fromInt(t *testing.T) {
	if got := AsInt(7); got != 7 {
		t.Errorf("AsInt = %d, want 7", got)
	}
}

func TestAsMAC_sixBytes(t *testing.T) {
	mac := []byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	if got := AsMAC(mac); got != "aa-bb-cc-dd-ee-ff" {
		t.Errorf("AsMAC = %q", got)
	}
}

func TestAsMAC_wrongLength(t *testing.T) {
	if got := AsMAC([]byte{1, 2, 3}); got != "" {
		t.Errorf("AsMAC = %q, want empty", got)
	}
}

func TestNewWalker_timeouts(t *testing.T) {
	w := NewWalker("public")
	if w.Timeout != 4*time.Second || w.Retries != 1 {
		t.Errorf("NewWalker timeout=%v retries=%d, want 4s/1", w.Timeout, w.Retries)
	}
	arp := NewARPWalker("public")
	if arp.Timeout != 2*time.Second {
		t.Errorf("NewARPWalker timeout=%v, want 2s", arp.Timeout)
	}
}
