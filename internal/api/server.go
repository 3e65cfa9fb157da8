// Package api exposes the market mood service over HTTP: the aggregation
// endpoint, history queries, snapshot pass-through, the batch scorer, and
// a WebSocket feed of computed snapshots.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"market-mood-lab/internal/aggregation"
	"market-mood-lab/internal/observability"
	"market-mood-lab/internal/query"
	"market-mood-lab/internal/scoring"
	"market-mood-lab/internal/snapshots"
	"market-mood-lab/internal/storage"
)

// History window bounds, in days.
const (
	defaultHistoryDays = 7
	maxHistoryDays     = 365
)

// Server wires the HTTP routes to the aggregation and query components.
type Server struct {
	runner    *aggregation.Runner
	queries   *query.Service
	scorer    *scoring.Scorer
	snapshots *snapshots.Dir
	hub       *Hub

	logger    *log.Logger
	metrics   *observability.Metrics
	startedAt time.Time
}

// Options for creating a Server.
type Options struct {
	Runner    *aggregation.Runner
	Queries   *query.Service
	Scorer    *scoring.Scorer
	Snapshots *snapshots.Dir
	Hub       *Hub
	Logger    *log.Logger
	Metrics   *observability.Metrics
}

// NewServer creates a new Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.DefaultMetrics
	}
	return &Server{
		runner:    opts.Runner,
		queries:   opts.Queries,
		scorer:    opts.Scorer,
		snapshots: opts.Snapshots,
		hub:       opts.Hub,
		logger:    logger,
		metrics:   metrics,
		startedAt: time.Now(),
	}
}

// Routes returns the configured request multiplexer.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /top-movers", s.instrument("/top-movers", s.handleTopMovers))
	mux.HandleFunc("GET /history/market", s.instrument("/history/market", s.handleMarketHistory))
	mux.HandleFunc("GET /history/{symbol}", s.instrument("/history/symbol", s.handleSymbolHistory))
	mux.HandleFunc("GET /sentiment/{symbol}", s.instrument("/sentiment", s.handleSentiment))
	mux.HandleFunc("GET /stock/{symbol}", s.instrument("/stock", s.handleStock))
	mux.HandleFunc("POST /score", s.instrument("/score", s.handleScore))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)

	if s.hub != nil {
		mux.HandleFunc("GET /ws/updates", s.hub.ServeWS)
	}

	return mux
}

// statusRecorder captures the response code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.HTTPRequestDuration.
			WithLabelValues(route, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	}
}

// handleTopMovers runs one aggregation pass and returns the snapshot.
// Persistence failures are logged but do not fail the request; the read
// path always serves whatever was computed.
func (s *Server) handleTopMovers(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, aggregation.ErrPersistence) {
			s.logger.Printf("top-movers: %v", err)
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if s.hub != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			s.hub.Broadcast(data)
		}
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := s.queries.MarketHistory(r.Context(), days)
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleSymbolHistory(w http.ResponseWriter, r *http.Request) {
	days, err := parseDays(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	symbol := r.PathValue("symbol")
	points, err := s.queries.SymbolHistory(r.Context(), symbol, days)
	if err != nil {
		s.writeQueryError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, s.snapshots.Sentiment)
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, s.snapshots.Price)
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request, read func(string) ([]byte, error)) {
	symbol := r.PathValue("symbol")
	data, err := read(symbol)
	if err != nil {
		if errors.Is(err, snapshots.ErrNoSnapshot) {
			s.writeError(w, http.StatusNotFound, fmt.Sprintf("no snapshot for %s", symbol))
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// scoreRequest is one item of the batch scoring request body.
type scoreRequest struct {
	Text string `json:"text"`
}

// handleScore scores an ordered batch of texts without weighting or
// persistence. Output order matches input order.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var reqs []scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: expected a JSON array of {\"text\": ...}")
		return
	}

	texts := make([]string, len(reqs))
	for i, req := range reqs {
		texts[i] = req.Text
	}
	s.writeJSON(w, http.StatusOK, s.scorer.ScoreAll(texts))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusResponse{
		Status: "running",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func parseDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultHistoryDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("days must be an integer, got %q", raw)
	}
	if days < 1 || days > maxHistoryDays {
		return 0, fmt.Errorf("days must be between 1 and %d, got %d", maxHistoryDays, days)
	}
	return days, nil
}

func (s *Server) writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidInput):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
