package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"EdgarPull/internal/domain/models"
)

type stubStorage struct {
	trades []*models.InsiderTrade

	gotTicker string
	gotLimit  int
}

func (s *stubStorage) StoreTrades(context.Context, []*models.InsiderTrade) error { return nil }
func (s *stubStorage) StoreHoldings(context.Context, []*models.InstitutionalHolding) error {
	return nil
}
func (s *stubStorage) QueryTrades(_ context.Context, ticker string, from, to time.Time, limit int) ([]*models.InsiderTrade, error) {
	s.gotTicker, s.gotLimit = ticker, limit
	return s.trades, nil
}
func (s *stubStorage) Health(context.Context) error { return nil }
func (s *stubStorage) Close() error                 { return nil }

func TestArchivedTrades(t *testing.T) {
	st := &stubStorage{trades: []*models.InsiderTrade{{Ticker: "AAPL", InsiderName: "Cook Timothy D"}}}
	h := NewFilingsEchoHandler(nil, nil, nil, nil, st, nil, time.Minute, time.Minute)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/insider-trades/archive?ticker=aapl&range=1m", nil)
	rec := httptest.NewRecorder()

	if err := h.ArchivedTrades(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if st.gotTicker != "AAPL" {
		t.Fatalf("queried ticker %q, want AAPL", st.gotTicker)
	}
	if st.gotLimit != 100 {
		t.Fatalf("limit = %d, want default 100", st.gotLimit)
	}
	if !strings.Contains(rec.Body.String(), "Cook Timothy D") {
		t.Fatalf("body missing archived record: %s", rec.Body.String())
	}
}

func TestArchivedTradesArchiveDisabled(t *testing.T) {
	h := NewFilingsEchoHandler(nil, nil, nil, nil, nil, nil, time.Minute, time.Minute)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/insider-trades/archive?ticker=AAPL", nil)
	rec := httptest.NewRecorder()

	if err := h.ArchivedTrades(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}
