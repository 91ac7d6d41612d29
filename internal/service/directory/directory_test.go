package directory

import "testing"

func TestPadCIK(t *testing.T) {
	cases := map[string]string{
		"320193":        "0000320193",
		"0000320193":    "0000320193",
		"CIK 320193":    "0000320193",
		"19617":         "0000019617",
		"":              "",
		"000":           "",
	}
	for in, want := range cases {
		if got := PadCIK(in); got != want {
			t.Fatalf("PadCIK(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("Apple, Inc."); got != "apple inc" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeName("  Wal-Mart   Stores "); got != "wal mart stores" {
		t.Fatalf("got %q", got)
	}
}

func TestStripLegalSuffixes(t *testing.T) {
	cases := map[string]string{
		"apple inc":              "apple",
		"acme holdings corp":     "acme holdings",
		"widget company llc":     "widget",
		"tesla":                  "tesla",
		"co":                     "co", // never strip down to nothing
	}
	for in, want := range cases {
		if got := StripLegalSuffixes(in); got != want {
			t.Fatalf("StripLegalSuffixes(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLookupByCIKAndName(t *testing.T) {
	d := New(nil)
	if tk, ok := d.ByCIK("320193"); !ok || tk != "AAPL" {
		t.Fatalf("fallback seed missing: %q %v", tk, ok)
	}
	if tk, ok := d.ByName("Apple Inc."); !ok || tk != "AAPL" {
		t.Fatalf("name lookup failed: %q %v", tk, ok)
	}
	// legal-suffix retry
	if tk, ok := d.ByName("Microsoft Corporation"); !ok || tk != "MSFT" {
		t.Fatalf("suffix-stripped lookup failed: %q %v", tk, ok)
	}
}

func TestAddIsAdditive(t *testing.T) {
	d := New(nil)
	d.Add("999999", "Example Co", "EXPL")
	if tk, _ := d.ByCIK("999999"); tk != "EXPL" {
		t.Fatalf("add failed")
	}
	// additions never overwrite existing mappings
	d.Add("320193", "Apple Inc.", "WRONG")
	if tk, _ := d.ByCIK("320193"); tk != "AAPL" {
		t.Fatalf("existing mapping overwritten")
	}
}
