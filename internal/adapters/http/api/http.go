// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/okian/roster/internal/domain/filter"
	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Count(ctx context.Context, c *filter.Criteria) (int, error)
	List(ctx context.Context, c filter.Criteria) ([]model.Player, error)
	Get(ctx context.Context, id int64) (model.Player, error)
	Create(ctx context.Context, pl model.Payload) (model.Player, error)
	Update(ctx context.Context, id int64, pl model.Payload) (model.Player, error)
	Delete(ctx context.Context, id int64) error

	// Stats reports the stored population for /stats.
	Stats(ctx context.Context) (model.Stats, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler

	requestTimeout time.Duration
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRequestTimeout bounds the context of every request. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d >= 0 {
			s.requestTimeout = d
		}
	}
}

// WithLogger sets the logger used by the access log and recovery middleware.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		playersHandler: NewPlayersHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Register attaches all HTTP routes and middleware to r.
func (s *Server) Register(r *mux.Router) {
	// Recovery sits inside metrics and logging so a recovered panic is
	// counted and logged as the 500 it becomes.
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(s.logger))
	r.Use(MetricsMiddleware)
	r.Use(RecoveryMiddleware(s.logger))
	if s.requestTimeout > 0 {
		r.Use(TimeoutMiddleware(s.requestTimeout))
	}

	r.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.healthHandler.MetricsHandler()).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.statsHandler.HandleStats).Methods(http.MethodGet)

	players := r.PathPrefix("/rest/players").Subrouter()
	players.HandleFunc("", s.playersHandler.HandleList).Methods(http.MethodGet)
	players.HandleFunc("", s.playersHandler.HandleCreate).Methods(http.MethodPost)
	players.HandleFunc("/count", s.playersHandler.HandleCount).Methods(http.MethodGet)
	players.HandleFunc("/{id}", s.playersHandler.HandleGet).Methods(http.MethodGet)
	players.HandleFunc("/{id}", s.playersHandler.HandleUpdate).Methods(http.MethodPost)
	players.HandleFunc("/{id}", s.playersHandler.HandleDelete).Methods(http.MethodDelete)
}

// Router builds a fresh router with every route registered.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, errors.New("no such route"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	s.Register(r)
	return r
}

// Error codes carried in errorResponse.Code.
const (
	codeBadRequest = "bad_request"
	codeValidation = "validation_failed"
	codeInvalidID  = "invalid_id"
	codeNotFound   = "not_found"
	codeInternal   = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps domain and adapter errors to a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidID):
		return http.StatusBadRequest, codeInvalidID
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// writeFailure renders err with its mapped status. Internal details are
// not echoed to the client.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}
