package types

import "testing"

func TestFingerprintOrderInsensitive(t *testing.T) {
	a := Customizations{{Group: "Size", Option: "Large"}, {Group: "Crust", Option: "Thin"}}
	b := Customizations{{Group: "crust", Option: "thin"}, {Group: "size", Option: "large"}}

	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprints should match: %q vs %q", a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintDistinguishesSelections(t *testing.T) {
	a := Customizations{{Group: "size", Option: "large"}}
	b := Customizations{{Group: "size", Option: "small"}}

	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("different selections must not collide")
	}
	if (Customizations{}).Fingerprint() != "" {
		t.Fatalf("empty selection should fingerprint to empty string")
	}
}
