//go:build debug

package debug

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	maxRequestBodyBytes = 10 * 1024 // 10KB max for fault injection requests
)

// Server is the debug HTTP server
type Server struct {
	addr         string
	mux          *http.ServeMux
	introspector Introspector
}

// FaultRequest arms faults on the global profile.
type FaultRequest struct {
	FailNextSupplyCode  *uint64 `json:"fail_next_supply_code,omitempty"`
	FailNextRedeemCode  *uint64 `json:"fail_next_redeem_code,omitempty"`
	ShortNextWithdraw   *uint64 `json:"short_next_withdraw,omitempty"`
	FailNextBalanceRead *bool   `json:"fail_next_balance_read,omitempty"`
	FailNextTransfer    *bool   `json:"fail_next_transfer,omitempty"`
}

// Start starts the debug HTTP server (debug build only) on localhost.
// introspector may be nil, in which case /_debug/vault is unavailable.
func Start(introspector Introspector) {
	if !Active.LocalDebugServer {
		return
	}

	srv := newServer(Active.DebugServerAddr, introspector)

	go func() {
		logger := GetLogger()
		logger.Debugf("debug server running on %s; do not use in production", srv.addr)

		httpServer := &http.Server{
			Addr:              srv.addr,
			Handler:           srv.mux,
			ReadHeaderTimeout: 2 * time.Second,
		}

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Debugf("debug server error: %v", err)
		}
	}()
}

func newServer(addr string, introspector Introspector) *Server {
	srv := &Server{
		addr:         addr,
		mux:          http.NewServeMux(),
		introspector: introspector,
	}
	srv.mux.HandleFunc("/_debug/faults", srv.handleFaults)
	srv.mux.HandleFunc("/_debug/faults/reset", srv.handleFaultsReset)
	srv.mux.HandleFunc("/_debug/config", srv.handleConfig)
	srv.mux.HandleFunc("/_debug/vault", srv.handleVault)
	return srv
}

func (s *Server) handleFaults(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, Faults.Snapshot())
	case http.MethodPost:
		s.setFaults(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) setFaults(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger()
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req FaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if req.FailNextSupplyCode != nil {
		if err := Faults.SetFailNextSupply(*req.FailNextSupplyCode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Debugf("fault set: fail_next_supply_code=%d", *req.FailNextSupplyCode)
	}
	if req.FailNextRedeemCode != nil {
		if err := Faults.SetFailNextRedeem(*req.FailNextRedeemCode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Debugf("fault set: fail_next_redeem_code=%d", *req.FailNextRedeemCode)
	}
	if req.ShortNextWithdraw != nil {
		Faults.SetShortNextWithdraw(*req.ShortNextWithdraw)
		logger.Debugf("fault set: short_next_withdraw=%d", *req.ShortNextWithdraw)
	}
	if req.FailNextBalanceRead != nil {
		Faults.SetFailNextBalanceRead(*req.FailNextBalanceRead)
	}
	if req.FailNextTransfer != nil {
		Faults.SetFailNextTransfer(*req.FailNextTransfer)
	}

	writeJSON(w, Faults.Snapshot())
}

func (s *Server) handleFaultsReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	Faults.Reset()
	writeJSON(w, map[string]string{"status": "reset"})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"enabled":            Active.Enabled,
		"local_debug_server": Active.LocalDebugServer,
		"debug_server_addr":  Active.DebugServerAddr,
	})
}

func (s *Server) handleVault(w http.ResponseWriter, r *http.Request) {
	if s.introspector == nil {
		http.Error(w, "vault introspection not available", http.StatusNotImplemented)
		return
	}
	writeJSON(w, s.introspector.SnapshotData(r.Context()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
