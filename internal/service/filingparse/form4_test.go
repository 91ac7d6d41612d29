package filingparse

import (
	"testing"

	"EdgarPull/internal/domain/models"
)

func TestParseForm4Title(t *testing.T) {
	title, ok := ParseForm4Title("4 - Apple Inc. (0000320193) (Issuer)")
	if !ok {
		t.Fatalf("expected parse")
	}
	if title.Company != "Apple Inc." || title.CIK != "0000320193" || title.FilerType != "Issuer" {
		t.Fatalf("unexpected %+v", title)
	}

	title, ok = ParseForm4Title("4/A - Cook Timothy D (0001214156) (Reporting)")
	if !ok || title.Company != "Cook Timothy D" || title.FilerType != "Reporting" {
		t.Fatalf("amended form not parsed: %+v ok=%v", title, ok)
	}

	if _, ok := ParseForm4Title("8-K - Some Corp (0000000001) (Filer)"); ok {
		t.Fatalf("non-form-4 title must not parse")
	}
	if _, ok := ParseForm4Title("garbage"); ok {
		t.Fatalf("garbage title must not parse")
	}
}

func TestExtractInsider(t *testing.T) {
	text := `Name and Address of Reporting Person: Doe Jane A
	 CIK: 0001234567  Relationship of Reporting Person to Issuer: Director`
	name, cik := ExtractInsider(text)
	if name != "Doe Jane A" {
		t.Fatalf("got name %q", name)
	}
	if cik != "0001234567" {
		t.Fatalf("got cik %q", cik)
	}
}

func TestNormalizeInsiderName(t *testing.T) {
	if got := NormalizeInsiderName("4 - Musk Elon"); got != "Musk Elon" {
		t.Fatalf("got %q", got)
	}
	if got := NormalizeInsiderName("  Doe   Jane. "); got != "Doe Jane" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveRoleChain(t *testing.T) {
	// curated override wins
	if got := ResolveRole("Musk Elon", ""); got != "CEO" {
		t.Fatalf("override: got %q", got)
	}
	// content pattern
	if got := ResolveRole("Doe Jane", "Relationship of Reporting Person to Issuer: Director"); got != "Director" {
		t.Fatalf("content: got %q", got)
	}
	// keyword scan
	if got := ResolveRole("Doe Jane", "the Chief Financial Officer executed"); got != "CFO" {
		t.Fatalf("keyword: got %q", got)
	}
	// company-looking filer is the issuer
	if got := ResolveRole("Acme Holdings LLC", ""); got != "Issuer" {
		t.Fatalf("issuer heuristic: got %q", got)
	}
	// generic fallback
	if got := ResolveRole("Doe Jane", "nothing useful here"); got != "Executive" {
		t.Fatalf("fallback: got %q", got)
	}
}

func TestExtractTransaction(t *testing.T) {
	text := `The reporting person purchased 12,500 shares at a price of $45.50 per share.`
	tx := ExtractTransaction(text)
	if tx.Shares != 12500 {
		t.Fatalf("shares %d", tx.Shares)
	}
	if tx.Price.String() != "45.5" {
		t.Fatalf("price %s", tx.Price)
	}
	if tx.TradeType != models.TradeBuy {
		t.Fatalf("type %s", tx.TradeType)
	}
	// derived value = shares * price
	if tx.Value.String() != "568750" {
		t.Fatalf("value %s", tx.Value)
	}
}

func TestExtractTransactionSell(t *testing.T) {
	tx := ExtractTransaction("disposition of 1,000 shares at $10.00")
	if tx.TradeType != models.TradeSell {
		t.Fatalf("type %s", tx.TradeType)
	}
}

func TestExtractTransactionAmbiguous(t *testing.T) {
	tx := ExtractTransaction("acquired then sold shares")
	if tx.TradeType != models.TradeUnknown {
		t.Fatalf("conflicting signals must stay UNKNOWN, got %s", tx.TradeType)
	}
	empty := ExtractTransaction("")
	if empty.Shares != 0 || !empty.Price.IsZero() || !empty.Value.IsZero() {
		t.Fatalf("empty text must yield zero values, got %+v", empty)
	}
}

func TestExtractDocumentDate(t *testing.T) {
	if d, ok := ExtractDocumentDate("Date of Earliest Transaction: 2024-03-04"); !ok || d.Day() != 4 {
		t.Fatalf("got %v ok=%v", d, ok)
	}
	if d, ok := ExtractDocumentDate("FILED AS OF DATE: 20240115"); !ok || d.Day() != 15 {
		t.Fatalf("got %v ok=%v", d, ok)
	}
	if _, ok := ExtractDocumentDate("no dates here"); ok {
		t.Fatalf("expected miss")
	}
}
