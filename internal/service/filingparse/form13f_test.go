package filingparse

import "testing"

func TestParseForm13FTitle(t *testing.T) {
	title, ok := ParseForm13FTitle("13F-HR - BERKSHIRE HATHAWAY INC (0001067983) (Filer)")
	if !ok {
		t.Fatalf("expected parse")
	}
	if title.Variant != "HR" || title.Name != "BERKSHIRE HATHAWAY INC" || title.CIK != "0001067983" {
		t.Fatalf("unexpected %+v", title)
	}

	if title, ok := ParseForm13FTitle("13F-NT - SMALL FUND LP (0001234567)"); !ok || title.Variant != "NT" {
		t.Fatalf("notice variant not parsed: %+v", title)
	}
	if _, ok := ParseForm13FTitle("4 - Apple Inc. (0000320193) (Issuer)"); ok {
		t.Fatalf("form 4 title must not parse as 13F")
	}
}

const infoTableXML = `<?xml version="1.0"?>
<informationTable xmlns="http://www.sec.gov/edgar/document/thirteenf/informationtable">
  <infoTable>
    <nameOfIssuer>APPLE INC</nameOfIssuer>
    <titleOfClass>COM</titleOfClass>
    <cusip>037833100</cusip>
    <value>174300000</value>
    <shrsOrPrnAmt>
      <sshPrnamt>915560382</sshPrnamt>
      <sshPrnamtType>SH</sshPrnamtType>
    </shrsOrPrnAmt>
  </infoTable>
  <infoTable>
    <nameOfIssuer>BANK AMER CORP</nameOfIssuer>
    <titleOfClass>COM</titleOfClass>
    <cusip>060505104</cusip>
    <value>28279000</value>
    <shrsOrPrnAmt>
      <sshPrnamt>1032852006</sshPrnamt>
      <sshPrnamtType>SH</sshPrnamtType>
    </shrsOrPrnAmt>
  </infoTable>
</informationTable>`

func TestParseInfoTable(t *testing.T) {
	holdings := ParseInfoTable([]byte(infoTableXML))
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}
	h := holdings[0]
	if h.NameOfIssuer != "APPLE INC" || h.CUSIP != "037833100" {
		t.Fatalf("unexpected %+v", h)
	}
	if h.ValueThousands != 174300000 || h.Shares != 915560382 {
		t.Fatalf("amounts wrong: %+v", h)
	}
}

func TestParseInfoTableEmbedded(t *testing.T) {
	wrapped := "<SEC-DOCUMENT>junk header\n" + infoTableXML + "\n</SEC-DOCUMENT>"
	holdings := ParseInfoTable([]byte(wrapped))
	if len(holdings) != 2 {
		t.Fatalf("embedded table not found, got %d rows", len(holdings))
	}
}

func TestParseInfoTableAbsent(t *testing.T) {
	if got := ParseInfoTable([]byte("<html><body>no table</body></html>")); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

const holdingsHTML = `<html><body>
<table><tr><td>unrelated</td></tr></table>
<table>
  <tr><th>Name of Issuer</th><th>Title of Class</th><th>CUSIP</th><th>Value (x$1000)</th><th>Shares</th></tr>
  <tr><td>APPLE INC</td><td>COM</td><td>037833100</td><td>1,743</td><td>10,000</td></tr>
  <tr><td>COCA COLA CO</td><td>COM</td><td>191216100</td><td>2,500</td><td>40,000</td></tr>
</table>
</body></html>`

func TestParseHoldingsHTML(t *testing.T) {
	holdings := ParseHoldingsHTML([]byte(holdingsHTML))
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}
	if holdings[0].NameOfIssuer != "APPLE INC" || holdings[0].CUSIP != "037833100" {
		t.Fatalf("unexpected %+v", holdings[0])
	}
	if holdings[0].ValueThousands != 1743 || holdings[0].Shares != 10000 {
		t.Fatalf("numeric stripping failed: %+v", holdings[0])
	}
}

func TestParseHoldingsHTMLNoMatch(t *testing.T) {
	if got := ParseHoldingsHTML([]byte("<html><table><tr><th>foo</th></tr><tr><td>bar</td></tr></table></html>")); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestParseAmount(t *testing.T) {
	if got := parseAmount("1,234,567"); got != 1234567 {
		t.Fatalf("got %d", got)
	}
	if got := parseAmount("$2,500 "); got != 2500 {
		t.Fatalf("got %d", got)
	}
	if got := parseAmount("n/a"); got != 0 {
		t.Fatalf("got %d", got)
	}
}
