package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"RailSentinel/internal/model"
	"RailSentinel/internal/optimizer"
	"RailSentinel/internal/store"
)

// Server exposes the recommendation engine over HTTP for programmatic
// callers (dashboards, agents).
type Server struct {
	store      store.Store
	optimizer  *optimizer.Optimizer
	log        zerolog.Logger
	httpServer *http.Server
}

// New builds the server and its routes.
func New(addr string, st store.Store, opt *optimizer.Optimizer, log zerolog.Logger) *Server {
	s := &Server{store: st, optimizer: opt, log: log}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/api/recommendation", s.handleRecommendation).Methods("GET")
	router.HandleFunc("/api/stats/{routeKey}", s.handleStats).Methods("GET")

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRecommendation runs a full analysis for a route against its stored
// history. Query parameters: origin, destination, date (YYYY-MM-DD),
// price; optionally type (train type, any service when omitted).
func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	origin := q.Get("origin")
	destination := q.Get("destination")
	if origin == "" || destination == "" {
		httpError(w, http.StatusBadRequest, "origin and destination are required")
		return
	}

	travelDate, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	price, err := decimal.NewFromString(q.Get("price"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "price must be a decimal number")
		return
	}

	trainType := model.TrainType(q.Get("type"))
	key := model.RouteKey(origin, destination, travelDate, trainType)

	series, err := s.store.PriceSeries(key)
	if err != nil {
		s.log.Error().Err(err).Str("route", key).Msg("load series")
		httpError(w, http.StatusInternalServerError, "failed to load price history")
		return
	}

	res, err := s.optimizer.Analyze(key, price, series, model.DaysUntil(travelDate, time.Now()))
	if err != nil {
		if errors.Is(err, optimizer.ErrInvalidInput) {
			httpError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Str("route", key).Msg("analysis failed")
		httpError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	routeKey := mux.Vars(r)["routeKey"]

	stats, err := s.store.RouteStatistics(routeKey)
	if err != nil {
		s.log.Error().Err(err).Str("route", routeKey).Msg("load statistics")
		httpError(w, http.StatusInternalServerError, "failed to load statistics")
		return
	}
	if stats == nil {
		httpError(w, http.StatusNotFound, "no price history for route")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
