// Package api exposes manuscript screening over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/ports"
)

const shutdownGrace = 10 * time.Second

// Screener is the slice of the screening service the API needs.
type Screener interface {
	ScreenText(ctx context.Context, name, text string) (domain.Report, error)
	Checks() []domain.CheckInfo
}

// Options configure the server.
type Options struct {
	MaxBytes       int64
	ReadTimeout    time.Duration
	RequestTimeout time.Duration
	Logger         ports.Logger
}

// Server routes API requests to the screening service.
type Server struct {
	screener Screener
	topics   ports.TopicExtractor
	opts     Options
	router   *chi.Mux
}

// NewServer builds the router.
func NewServer(screener Screener, topics ports.TopicExtractor, opts Options) *Server {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = domain.DefaultMaxInputBytes
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = domain.DefaultReadTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = domain.DefaultRequestTimeout
	}
	s := &Server{screener: screener, topics: topics, opts: opts}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/checks", s.handleChecks)
		r.Post("/screen", s.handleScreen)
		r.Post("/topics", s.handleTopics)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.RequestTimeout + s.opts.ReadTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log().Info("server listening", map[string]interface{}{"addr": addr})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log().Info("server stopped", nil)
	return nil
}

func (s *Server) log() ports.Logger {
	if s.opts.Logger == nil {
		return nopLogger{}
	}
	return s.opts.Logger
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log().Debug("request", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
}

type screenRequest struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"checks": len(s.screener.Checks()),
	})
}

func (s *Server) handleChecks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.screener.Checks())
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	name := req.Name
	if name == "" {
		name = "request"
	}

	report, err := s.screener.ScreenText(r.Context(), name, req.Text)
	if err != nil {
		if ctxErr := r.Context().Err(); ctxErr != nil {
			respondError(w, http.StatusServiceUnavailable, "request cancelled", ctxErr)
			return
		}
		respondError(w, http.StatusInternalServerError, "screening failed", err)
		return
	}
	w.Header().Set("X-Run-ID", report.ID)
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"topics": s.topics.ExtractTopics(req.Text)})
}

// decodeText reads a JSON body carrying manuscript text, enforcing the size
// limit and rejecting empty text.
func (s *Server) decodeText(w http.ResponseWriter, r *http.Request) (screenRequest, bool) {
	var req screenRequest
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, domain.ErrInputTooLarge.Error(), nil)
			return req, false
		}
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return req, false
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, domain.ErrEmptyManuscript.Error(), nil)
		return req, false
	}
	return req, true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]string{
		"error": message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	respondJSON(w, status, response)
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{})        {}
func (nopLogger) Info(string, map[string]interface{})         {}
func (nopLogger) Warn(string, map[string]interface{})         {}
func (nopLogger) Error(string, error, map[string]interface{}) {}
