// Package server is the REST pin store: list, create and rename pins over JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/OCAP2/pinmap/internal/logging"
	"github.com/OCAP2/pinmap/internal/model"
	"github.com/OCAP2/pinmap/internal/storage"
	"github.com/OCAP2/pinmap/pkg/core"
	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxBodySize = 1 << 20

// ActivityRecorder receives every successful create and rename.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, action string, pin core.Pin, took time.Duration)
}

// Server serves the pin API on top of a storage backend.
type Server struct {
	backend  storage.Backend
	activity ActivityRecorder
	log      *slog.Logger
	router   *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithActivity reports creates and renames to rec.
func WithActivity(rec ActivityRecorder) Option {
	return func(s *Server) {
		s.activity = rec
	}
}

// New creates a server backed by backend.
func New(backend storage.Backend, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		backend: backend,
		log:     logger.With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.Methods(http.MethodGet).Path("/healthcheck").HandlerFunc(s.healthcheck)
	r.Methods(http.MethodGet).Path("/api/pins").HandlerFunc(s.listPins)
	r.Methods(http.MethodPost).Path("/api/pins").HandlerFunc(s.createPin)
	r.Methods(http.MethodPatch).Path("/api/pins/{id:[0-9]+}").HandlerFunc(s.renamePin)
	r.Methods(http.MethodGet).Path("/api/pins/{id:[0-9]+}/history").HandlerFunc(s.pinHistory)
	s.router = r

	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("Shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(logging.WithRequestID(r.Context(), requestID))

		m := httpsnoop.CaptureMetrics(next, w, r)
		s.log.InfoContext(r.Context(), "handled",
			"method", r.Method,
			"url", r.URL,
			"status", m.Code,
			"duration", m.Duration,
		)
	})
}

func (s *Server) healthcheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.StatusResponse{OK: true})
}

func (s *Server) listPins(w http.ResponseWriter, r *http.Request) {
	pins, err := s.backend.ListPins(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to list pins", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list pins")
		return
	}
	if pins == nil {
		pins = []core.Pin{}
	}
	writeJSON(w, http.StatusOK, pins)
}

// createRequest mirrors core.CreatePinRequest with both coordinates required.
type createRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (s *Server) createPin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	pin, err := s.backend.CreatePin(r.Context(), *req.X, *req.Y)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to create pin", "x", *req.X, "y", *req.Y, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create pin")
		return
	}

	s.record(r.Context(), "create", pin, start)
	writeJSON(w, http.StatusOK, core.CreatePinResponse{OK: true, Pin: &pin})
}

func (s *Server) renamePin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Pin not found")
		return
	}

	var req core.RenamePinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	pin, err := s.backend.RenamePin(r.Context(), id, name)
	if errors.Is(err, storage.ErrPinNotFound) {
		writeError(w, http.StatusNotFound, "Pin not found")
		return
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to rename pin", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to rename pin")
		return
	}

	s.record(r.Context(), "rename", pin, start)
	writeJSON(w, http.StatusOK, core.StatusResponse{OK: true})
}

func (s *Server) pinHistory(w http.ResponseWriter, r *http.Request) {
	history, ok := s.backend.(storage.History)
	if !ok {
		writeError(w, http.StatusNotImplemented, "History not available")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Pin not found")
		return
	}

	changes, err := history.Changes(r.Context(), id)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to list pin history", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list pin history")
		return
	}
	if changes == nil {
		changes = []model.PinChange{}
	}
	writeJSON(w, http.StatusOK, changes)
}

func (s *Server) record(ctx context.Context, action string, pin core.Pin, start time.Time) {
	s.log.DebugContext(ctx, "Pin "+action, "id", pin.ID, "name", pin.Name)
	if s.activity != nil {
		s.activity.RecordActivity(ctx, action, pin, time.Since(start))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, core.StatusResponse{OK: false, Error: msg})
}
