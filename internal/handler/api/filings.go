package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"EdgarPull/internal/domain/models"
	domrepo "EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/feedclient"
	"EdgarPull/internal/service/ratelimit"
	"EdgarPull/internal/usecase"
	xhttp "EdgarPull/pkg/http"
	xlogger "EdgarPull/pkg/logger"
	"EdgarPull/pkg/util"
)

const anonymousUser = "anon"

// FilingsEchoHandler serves the filing collection API over Echo.
type FilingsEchoHandler struct {
	logger  *xlogger.Logger
	orch    *usecase.FilingOrchestrator
	res     domrepo.Resolver
	store   domrepo.FilingStore
	storage domrepo.Storage
	hub     *ProgressHub
	rl      *ratelimit.Limiter

	defaultTTL time.Duration
	paidTTL    time.Duration
}

// NewFilingsEchoHandler creates the handler. store and storage may be nil
// when the corresponding backends are disabled.
func NewFilingsEchoHandler(
	logger *xlogger.Logger,
	orch *usecase.FilingOrchestrator,
	res domrepo.Resolver,
	store domrepo.FilingStore,
	storage domrepo.Storage,
	hub *ProgressHub,
	defaultTTL, paidTTL time.Duration,
) *FilingsEchoHandler {
	return &FilingsEchoHandler{
		logger:     logger,
		orch:       orch,
		res:        res,
		store:      store,
		storage:    storage,
		hub:        hub,
		rl:         ratelimit.New(),
		defaultTTL: defaultTTL,
		paidTTL:    paidTTL,
	}
}

func (h *FilingsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/insider-trades", h.InsiderTrades)
	g.GET("/insider-trades/archive", h.ArchivedTrades)
	g.GET("/institutional-holdings", h.InstitutionalHoldings)
	g.GET("/resolve", h.Resolve)
	if h.hub != nil {
		g.GET("/progress", h.hub.Handle)
	}
}

func (h *FilingsEchoHandler) InsiderTrades(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":trades", 5, 2) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
	}
	req := &models.InsiderTradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	span, err := util.ParseRange(req.Range)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("unrecognized range"))
	}

	userID := req.UserID
	if userID == "" {
		userID = anonymousUser
	}
	storeKey := "trades:" + req.Range + ":" + strconv.Itoa(req.Limit)
	if payload, ok := h.lookupStored(c, userID, "insider_trades", storeKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(payload))
	}

	trades, err := h.orch.InsiderTrades(c.Request().Context(), usecase.FetchOptions{
		Range:    span,
		Paid:     req.Tier == "paid",
		Progress: h.progress(),
	})
	if err != nil {
		return h.fetchError(c, err)
	}
	if len(trades) > req.Limit {
		trades = trades[:req.Limit]
	}

	h.persist(c, userID, "insider_trades", storeKey, req.Tier, trades)
	return xhttp.SuccessResponse(c, trades)
}

// ArchivedTrades serves previously emitted trades from the archive, a warm
// start that never touches the upstream feed.
func (h *FilingsEchoHandler) ArchivedTrades(c echo.Context) error {
	if h.storage == nil {
		return xhttp.DataResponse(c, http.StatusNotImplemented, map[string]string{"error": "archive disabled"})
	}
	req := &models.ArchivedTradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	span, err := util.ParseRange(req.Range)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("unrecognized range"))
	}

	now := time.Now()
	trades, err := h.storage.QueryTrades(c.Request().Context(), strings.ToUpper(req.Ticker), now.Add(-span), now, req.Limit)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("archive query failed", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, xhttp.InternalError("archive query failed"))
	}
	if trades == nil {
		trades = []*models.InsiderTrade{}
	}
	return xhttp.SuccessResponse(c, trades)
}

func (h *FilingsEchoHandler) InstitutionalHoldings(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":holdings", 5, 2) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
	}
	req := &models.HoldingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	span, err := util.ParseRange(req.Range)
	if err != nil {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("unrecognized range"))
	}

	userID := req.UserID
	if userID == "" {
		userID = anonymousUser
	}
	storeKey := "holdings:" + req.Range + ":" + strconv.Itoa(req.Limit)
	if payload, ok := h.lookupStored(c, userID, "institutional_holdings", storeKey); ok {
		return xhttp.SuccessResponse(c, json.RawMessage(payload))
	}

	holdings, err := h.orch.InstitutionalHoldings(c.Request().Context(), usecase.FetchOptions{
		Range:    span,
		Paid:     req.Tier == "paid",
		Progress: h.progress(),
	})
	if err != nil {
		return h.fetchError(c, err)
	}
	if len(holdings) > req.Limit {
		holdings = holdings[:req.Limit]
	}

	h.persist(c, userID, "institutional_holdings", storeKey, req.Tier, holdings)
	return xhttp.SuccessResponse(c, holdings)
}

func (h *FilingsEchoHandler) Resolve(c echo.Context) error {
	req := &models.ResolveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.CIK == "" && req.CompanyName == "" && req.PersonName == "" {
		return xhttp.BadRequestResponse(c, xhttp.BadRequestError("cik, company or person required"))
	}
	ticker := h.res.ResolveTicker(c.Request().Context(), domrepo.ResolveQuery{
		CIK:         req.CIK,
		CompanyName: req.CompanyName,
		PersonName:  req.PersonName,
	})
	return xhttp.SuccessResponse(c, models.ResolveResponse{
		Ticker:   ticker,
		Resolved: ticker != models.TickerUnresolved,
	})
}

// Health reports the state of the optional backends. The service itself is
// healthy as long as it can answer.
func (h *FilingsEchoHandler) Health(c echo.Context) error {
	ctx := c.Request().Context()
	status := map[string]string{"service": "ok"}
	healthy := true
	if h.store != nil {
		status["store"] = "ok"
		if err := h.store.Health(ctx); err != nil {
			status["store"] = err.Error()
			healthy = false
		}
	}
	if h.storage != nil {
		status["storage"] = "ok"
		if err := h.storage.Health(ctx); err != nil {
			status["storage"] = err.Error()
			healthy = false
		}
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	return xhttp.DataResponse(c, code, status)
}

func (h *FilingsEchoHandler) progress() models.ProgressFunc {
	if h.hub == nil {
		return nil
	}
	return h.hub.Broadcast
}

func (h *FilingsEchoHandler) lookupStored(c echo.Context, userID, dataType, key string) ([]byte, bool) {
	if h.store == nil {
		return nil, false
	}
	payload, err := h.store.Get(c.Request().Context(), userID, dataType, key)
	if err != nil {
		if h.logger != nil && err != domrepo.ErrFilingNotCached {
			h.logger.Warn("filing store lookup failed", xlogger.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// persist writes the fresh result back for the user's tier. One credit is
// charged per fresh collection run.
func (h *FilingsEchoHandler) persist(c echo.Context, userID, dataType, key, tier string, result interface{}) {
	if h.store == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	ttl := h.defaultTTL
	if tier == "paid" {
		ttl = h.paidTTL
	}
	if err := h.store.Put(c.Request().Context(), userID, dataType, key, payload, ttl, 1); err != nil && h.logger != nil {
		h.logger.Warn("filing store write failed", xlogger.Error(err))
	}
}

func (h *FilingsEchoHandler) fetchError(c echo.Context, err error) error {
	if h.logger != nil {
		h.logger.Error("filing fetch failed", xlogger.Error(err))
	}
	msg := feedclient.DisplayMessage(err)
	if feedclient.IsRateLimited(err) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, map[string]string{"error": msg})
	}
	return xhttp.AppErrorResponse(c, xhttp.InternalError(msg))
}
