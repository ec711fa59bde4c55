package query

import "testing"

func TestCanonicalizeMAC_sixGroupColon(t *testing.T) {
	got, ok := CanonicalizeMAC("AA:BB:CC:DD:EE:FF")
	if !ok || got != "aa-bb-cc-dd-ee-ff" {
		t.Errorf("got (%q, %v)", got, ok)
	}
}

func TestCanonicalizeMAC_threeGroupHyphen(t *testing.T) {
	got, ok := CanonicalizeMAC("aabb-ccdd-eeff")
	if !ok || got != "aa-bb-cc-dd-ee-ff" {
		t.Errorf("got (%q, %v)", got, ok)
	}
}

func TestCanonicalizeMAC_rejectsIncompleteAddress(t *testing.T) {
	if _, ok := CanonicalizeMAC("aa-bb-cc"); ok {
		t.Error("expected incomplete MAC to be rejected")
	}
}

func TestCanonicalizeMAC_rejectsInvalidChars(t *testing.T) {
	if _, ok := CanonicalizeMAC("aa-bb-cc-dd-ee-gg"); ok {
		t.Error("expected invalid hex digit to be rejected")
	}
}

func TestIsPartialMAC_acceptsFragment(t *testing.T) {
	if !IsPartialMAC("aa-bb") {
		t.Error("expected fragment to be accepted")
	}
}

func TestIsPartialMAC_rejectsNonHex(t *testing.T) {
	if IsPartialMAC("zz-yy") {
		t.Error("expected non-hex fragment to be rejected")
	}
}
