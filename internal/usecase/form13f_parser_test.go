package usecase

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const holdingsTableXML = `<informationTable>
  <infoTable>
    <nameOfIssuer>APPLE INC</nameOfIssuer>
    <cusip>037833100</cusip>
    <value>1500</value>
    <shrsOrPrnAmt><sshPrnamt>10000</sshPrnamt></shrsOrPrnAmt>
  </infoTable>
  <infoTable>
    <nameOfIssuer>MICROSOFT CORP</nameOfIssuer>
    <cusip>594918104</cusip>
    <value>500</value>
    <shrsOrPrnAmt><sshPrnamt>2000</sshPrnamt></shrsOrPrnAmt>
  </infoTable>
</informationTable>`

func form13fFeed(base string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>13F-HR - BERKSHIRE HATHAWAY INC (0001067983) (Filer)</title>
    <summary>quarterly holdings report</summary>
    <published>2026-08-14T12:00:00Z</published>
    <link rel="alternate" href="%s/table"/>
  </entry>
  <entry>
    <title>13F-NT - SMALL FUND LP (0001234567) (Filer)</title>
    <summary>notice</summary>
    <published>2026-08-14T12:00:00Z</published>
    <link rel="alternate" href="%s/table"/>
  </entry>
  <entry>
    <title>13F-HR - OPAQUE CAPITAL MGMT LP (0007654321) (Filer)</title>
    <summary>quarterly holdings report</summary>
    <published>2026-08-14T12:00:00Z</published>
    <link rel="alternate" href="%s/notable"/>
  </entry>
</feed>`, base, base, base)
}

func TestInstitutionalHoldingsPipeline(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(form13fFeed(srv.URL)))
	})
	mux.HandleFunc("/table", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(holdingsTableXML))
	})
	mux.HandleFunc("/notable", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>exhibit only, table filed on paper</body></html>"))
	})

	o := newTestOrchestrator(t, srv.URL+"/", OrchestratorConfig{WindowDays: 5})
	holdings, err := o.InstitutionalHoldings(context.Background(), FetchOptions{Range: 15 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(holdings) != 3 {
		t.Fatalf("expected 3 filers, got %d", len(holdings))
	}

	byName := make(map[string]int)
	for i, h := range holdings {
		byName[h.InstitutionName] = i
	}

	brk := holdings[byName["BERKSHIRE HATHAWAY INC"]]
	if brk.Ticker != "BRK.B" {
		t.Fatalf("institution ticker = %q", brk.Ticker)
	}
	if brk.DataUnavailable {
		t.Fatalf("table was served, must not be flagged unavailable")
	}
	if len(brk.Holdings) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(brk.Holdings))
	}
	if brk.TotalSharesHeld != 12000 {
		t.Fatalf("total shares = %d", brk.TotalSharesHeld)
	}
	// 2000 thousand dollars reported, scaled to currency units
	if !brk.TotalValueHeld.Equal(decimal.NewFromInt(2000000)) {
		t.Fatalf("total value = %s", brk.TotalValueHeld)
	}
	if brk.Holdings[0].Ticker != "AAPL" {
		t.Fatalf("position ticker = %q", brk.Holdings[0].Ticker)
	}
	if got := brk.QuarterEnd.Format("2006-01-02"); got != "2026-06-30" {
		t.Fatalf("quarter end = %s", got)
	}

	// A notice filing has no table to fetch.
	nt := holdings[byName["SMALL FUND LP"]]
	if !nt.DataUnavailable || len(nt.Holdings) != 0 {
		t.Fatalf("notice filing must carry no positions: %+v", nt)
	}

	// A report whose document hides the table still yields a record.
	opaque := holdings[byName["OPAQUE CAPITAL MGMT LP"]]
	if !opaque.DataUnavailable {
		t.Fatalf("missing table must set DataUnavailable")
	}
	if opaque.FormType != "13F" {
		t.Fatalf("form type = %q", opaque.FormType)
	}
}
