package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sufield/yieldvault/internal/domain"
	"github.com/sufield/yieldvault/internal/ports"
)

// RouterOption configures the router.
type RouterOption func(*handlers)

// WithDecimals sets the asset decimals used for "value" fields (default 0).
func WithDecimals(decimals uint8) RouterOption {
	return func(h *handlers) {
		h.fmt = amountFormatter{decimals: int32(decimals)}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(m http.Handler) RouterOption {
	return func(h *handlers) {
		h.metrics = m
	}
}

// WithLogger sets the request logger. Nil keeps the default.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(h *handlers) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRequestTimeout bounds each request (default 10s).
func WithRequestTimeout(d time.Duration) RouterOption {
	return func(h *handlers) {
		if d > 0 {
			h.timeout = d
		}
	}
}

type handlers struct {
	vault   ports.VaultReader
	fmt     amountFormatter
	metrics http.Handler
	logger  *slog.Logger
	timeout time.Duration
}

// NewRouter builds the read API over vault.
func NewRouter(vault ports.VaultReader, opts ...RouterOption) http.Handler {
	h := &handlers{
		vault:   vault,
		logger:  slog.Default(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Use(middleware.Timeout(h.timeout))

	r.Get("/healthz", h.healthz)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/vault", h.getVault)
		r.Get("/holders/{account}", h.getHolder)
		r.Get("/preview/deposit", h.previewDeposit)
		r.Get("/preview/withdraw", h.previewWithdraw)
	})
	return r
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		h.logger.Warn("httpapi: write error", "error", err)
	}
}

// VaultView is the response of GET /v1/vault.
type VaultView struct {
	Account                 string     `json:"account"`
	Owner                   string     `json:"owner"`
	Asset                   string     `json:"asset"`
	Strategy                string     `json:"strategy,omitempty"`
	StrategyBound           bool       `json:"strategy_bound"`
	IdleBalance             AmountView `json:"idle_balance"`
	TotalManagedValue       AmountView `json:"total_managed_value"`
	TotalShareSupply        AmountView `json:"total_share_supply"`
	TotalDepositedPrincipal AmountView `json:"total_deposited_principal"`
	PricePerShare           string     `json:"price_per_share"`
	LastHarvestTime         *time.Time `json:"last_harvest_time,omitempty"`
}

func (h *handlers) getVault(w http.ResponseWriter, r *http.Request) {
	snap, err := h.vault.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	view := VaultView{
		Account:                 snap.Account.String(),
		Owner:                   snap.Owner.String(),
		Asset:                   snap.Asset,
		Strategy:                snap.Strategy.String(),
		StrategyBound:           snap.StrategyBound,
		IdleBalance:             h.fmt.view(snap.IdleBalance),
		TotalManagedValue:       h.fmt.view(snap.TotalManagedValue),
		TotalShareSupply:        h.fmt.view(snap.TotalShareSupply),
		TotalDepositedPrincipal: h.fmt.view(snap.TotalDepositedPrincipal),
		PricePerShare:           pricePerShare(snap.TotalManagedValue, snap.TotalShareSupply),
	}
	if t := snap.LastHarvestTime; !t.IsZero() {
		view.LastHarvestTime = &t
	}
	h.writeJSON(w, r, http.StatusOK, view)
}

// HolderView is the response of GET /v1/holders/{account}.
type HolderView struct {
	Account     string     `json:"account"`
	Shares      AmountView `json:"shares"`
	MaxWithdraw AmountView `json:"max_withdraw"`
}

func (h *handlers) getHolder(w http.ResponseWriter, r *http.Request) {
	holder, err := domain.NewAccount(chi.URLParam(r, "account"))
	if err != nil {
		h.writeError(w, r, badRequest(err))
		return
	}
	maxOut, err := h.vault.MaxWithdraw(r.Context(), holder)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, HolderView{
		Account:     holder.String(),
		Shares:      h.fmt.view(h.vault.BalanceOf(holder)),
		MaxWithdraw: h.fmt.view(maxOut),
	})
}

// PreviewView is the response of both preview routes.
type PreviewView struct {
	Assets AmountView `json:"assets"`
	Shares AmountView `json:"shares"`
}

func (h *handlers) previewDeposit(w http.ResponseWriter, r *http.Request) {
	assets, err := queryAmount(r, "assets")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	shares, err := h.vault.PreviewDeposit(r.Context(), assets)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, PreviewView{Assets: h.fmt.view(assets), Shares: h.fmt.view(shares)})
}

func (h *handlers) previewWithdraw(w http.ResponseWriter, r *http.Request) {
	shares, err := queryAmount(r, "shares")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	assets, err := h.vault.PreviewWithdraw(r.Context(), shares)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, PreviewView{Assets: h.fmt.view(assets), Shares: h.fmt.view(shares)})
}

type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return e.err.Error() }
func (e errBadRequest) Unwrap() error { return e.err }

func badRequest(err error) error { return errBadRequest{err: err} }

func queryAmount(r *http.Request, name string) (domain.Amount, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, badRequest(errors.New("missing query parameter " + name))
	}
	a, err := domain.ParseAmount(raw)
	if err != nil {
		return 0, badRequest(errors.New("query parameter " + name + " must be a non-negative integer"))
	}
	return a, nil
}

// statusFor maps vault errors onto HTTP status codes.
func statusFor(err error) int {
	var bad errBadRequest
	switch {
	case errors.As(err, &bad),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountOverflow):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSharesOutstanding),
		errors.Is(err, domain.ErrZeroManagedValue):
		return http.StatusConflict
	case errors.Is(err, ports.ErrStrategyOperationFailed),
		errors.Is(err, ports.ErrInsufficientStrategyFunds):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("httpapi: request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	h.writeJSON(w, r, status, errorBody{Error: err.Error(), RequestID: middleware.GetReqID(r.Context())})
}

func (h *handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("httpapi: encode response", "path", r.URL.Path, "error", err)
	}
}

// logRequests writes one Debug line per request.
func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
