// Package server exposes a running backtest scenario over HTTP: order
// submission, a raw-int batch tick endpoint, the latest kernel snapshot,
// and a websocket stream of snapshots taken after every processed tick.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"backtestkernel/internal/metrics"
	"backtestkernel/kernel"
	"backtestkernel/strategy"
)

// snapshotHub fans kernel snapshots out to connected websocket clients. A
// client that subscribes mid-run is replayed the most recently broadcast
// snapshot before joining the live stream, so a dashboard opened after the
// scenario has already started does not sit blank until the next tick.
type snapshotHub struct {
	mu   sync.RWMutex
	subs map[chan kernel.Snapshot]struct{}
	last kernel.Snapshot
	seen bool
}

func newSnapshotHub() *snapshotHub {
	return &snapshotHub{subs: make(map[chan kernel.Snapshot]struct{})}
}

func (h *snapshotHub) subscribe(buffer int) chan kernel.Snapshot {
	ch := make(chan kernel.Snapshot, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	if h.seen {
		ch <- h.last
	}
	h.mu.Unlock()
	return ch
}

func (h *snapshotHub) unsubscribe(ch chan kernel.Snapshot) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *snapshotHub) broadcast(snap kernel.Snapshot) {
	h.mu.Lock()
	h.last = snap
	h.seen = true
	for ch := range h.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *snapshotHub) current() (kernel.Snapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.seen
}

type Server struct {
	client      *strategy.Client
	snapshotHub *snapshotHub
	upgrader    websocket.Upgrader
	authToken   string
	corsOrigins []string
	logger      zerolog.Logger
}

type orderRequest struct {
	OrderID   uint64  `json:"order_id"`
	Kind      string  `json:"kind"`
	Side      string  `json:"side"`
	Qty       float64 `json:"qty"`
	PriceTick int64   `json:"price_tick"`
}

type orderResponse struct {
	Status string `json:"status"`
}

// batchRequest mirrors kernel.Handle.StepBatch's own parameter shape, with
// Sides carried as the 0=buy/1=sell wire encoding rather than side names,
// since a batch of ticks is the one place the kernel's raw integer side
// form is actually meant to cross a boundary.
type batchRequest struct {
	TsMs       []int64   `json:"ts_ms"`
	PriceTicks []int64   `json:"price_tick"`
	Qtys       []float64 `json:"qty"`
	Sides      []int64   `json:"side"`
}

type batchResponse struct {
	Applied int             `json:"applied"`
	Sides   []int64         `json:"side"`
	Final   kernel.Snapshot `json:"final"`
}

type outboundMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// New wraps a strategy client for serving over HTTP; mount Routes to serve
// it. corsOrigins
// is an allow-list checked against the request's Origin header; "*" allows
// any origin.
func New(client *strategy.Client, authToken string, corsOrigins []string, logger zerolog.Logger) *Server {
	return &Server{
		client:      client,
		snapshotHub: newSnapshotHub(),
		upgrader:    websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		authToken:   authToken,
		corsOrigins: corsOrigins,
		logger:      logger,
	}
}

// PublishSnapshot records the latest kernel snapshot and fans it out to any
// connected websocket clients. Callers invoke this after every processed
// tick, from outside the kernel's own call boundary.
func (s *Server) PublishSnapshot(snap kernel.Snapshot) {
	s.snapshotHub.broadcast(snap)
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/orders", s.withCORS(s.withAuth(http.HandlerFunc(s.handleOrder))))
	mux.Handle("/batch", s.withCORS(s.withAuth(http.HandlerFunc(s.handleBatch))))
	mux.Handle("/snapshot", s.withCORS(s.withAuth(http.HandlerFunc(s.handleSnapshot))))
	mux.Handle("/ws/snapshot", s.withCORS(s.withAuth(http.HandlerFunc(s.handleSnapshotStream))))
	return mux
}

// withCORS checks the request's Origin against the server's allow-list
// rather than blindly echoing a single configured value, and marks the
// response as origin-dependent so caches don't share it across origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowed := s.allowedOrigin(r.Header.Get("Origin")); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Backtest-Token")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.corsOrigins {
		if allowed == "*" {
			return "*"
		}
		if allowed == origin {
			return origin
		}
	}
	return ""
}

// withAuth accepts the token from a dedicated header, a bearer header, or a
// query parameter, compared in constant time, and logs+counts rejections
// so an operator watching /metrics can see credential probing.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			metrics.AuthRejectionsTotal.WithLabelValues(r.URL.Path).Inc()
			s.logger.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("rejected request: missing or invalid token")
			s.writeError(w, http.StatusUnauthorized, errors.New("missing or invalid token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractToken(r *http.Request) string {
	if v := r.Header.Get("X-Backtest-Token"); v != "" {
		return v
	}
	if v := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "); v != "" {
		return v
	}
	return r.URL.Query().Get("token")
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}

	order, err := buildOrder(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.client.PlaceOrder(order); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, orderResponse{Status: "accepted"})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}

	sides := make([]kernel.Side, len(req.Sides))
	for i, raw := range req.Sides {
		side, ok := kernel.SideFromInt(raw)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown side value %d at index %d", raw, i))
			return
		}
		sides[i] = side
	}

	if err := s.client.Handle().StepBatch(req.TsMs, req.PriceTicks, req.Qtys, sides); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	final := s.client.Handle().Snapshot()
	s.PublishSnapshot(final)

	echoSides := make([]int64, len(sides))
	for i, side := range sides {
		echoSides[i] = side.Int()
	}
	s.writeJSON(w, http.StatusOK, batchResponse{Applied: len(req.TsMs), Sides: echoSides, Final: final})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	snap, _ := s.snapshotHub.current()
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshotStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.snapshotHub.subscribe(32)
	defer s.snapshotHub.unsubscribe(ch)

	for snap := range ch {
		msg := outboundMessage{Type: "snapshot", Data: snap}
		if err := conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func buildOrder(req orderRequest) (kernel.Order, error) {
	if req.Qty <= 0 {
		return kernel.Order{}, errors.New("qty must be positive")
	}

	side, err := parseSide(req.Side)
	if err != nil {
		return kernel.Order{}, err
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return kernel.Order{}, err
	}

	return kernel.Order{
		OrderID:   req.OrderID,
		Kind:      kind,
		Side:      side,
		Qty:       req.Qty,
		PriceTick: req.PriceTick,
	}, nil
}

// parseSide accepts book-side vocabulary (buy/sell, bid/ask) alongside the
// position-side vocabulary (long/short) a backtest operator is more likely
// to reach for, since this kernel has no book to bid or ask into.
func parseSide(value string) (kernel.Side, error) {
	switch strings.ToLower(value) {
	case "buy", "bid", "b", "long":
		return kernel.Buy, nil
	case "sell", "ask", "s", "short":
		return kernel.Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %s", value)
	}
}

func parseKind(value string) (kernel.OrderKind, error) {
	switch strings.ToLower(value) {
	case "limit", "lmt":
		return kernel.Limit, nil
	case "market", "mkt", "":
		return kernel.Market, nil
	default:
		return 0, fmt.Errorf("unknown order kind %s", value)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.logger.Error().Err(err).Int("status", code).Msg("request failed")
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
