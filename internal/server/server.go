// Package server exposes a Correlator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pnlcorr/internal/metrics"
	"pnlcorr/internal/pnl"
	"pnlcorr/internal/service"
	"pnlcorr/internal/wire"
)

// Config controls the listener and request limits.
type Config struct {
	Port            int
	MaxBodyBytes    int64
	RateLimit       float64
	RateBurst       int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

const defaultMaxBodyBytes = 256 << 20

// Server routes correlation requests to a Correlator.
type Server struct {
	cfg        Config
	correlator *service.Correlator
	logger     *zap.Logger
	router     chi.Router
}

// Health is the body of GET /healthz.
type Health struct {
	Status    string `json:"status"`
	Series    int    `json:"series"`
	Dates     int    `json:"dates"`
	FirstDate int    `json:"first_date"`
	LastDate  int    `json:"last_date"`
}

// New builds the router. Zero limits fall back to defaults; a zero
// RateLimit disables rate limiting.
func New(cfg Config, correlator *service.Correlator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{cfg: cfg, correlator: correlator, logger: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(logger))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", metrics.Handler())
	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			burst := cfg.RateBurst
			if burst < 1 {
				burst = 1
			}
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst), logger))
		}
		r.Post("/", s.correlate)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort("", strconv.Itoa(s.cfg.Port)),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) correlate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
		return
	}

	out, err := s.correlator.Handle(r.Context(), GetRequestID(r.Context()), body)
	if err != nil {
		writeError(w, StatusCode(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	p := s.correlator.Resident()
	dates := p.Dates()
	render.JSON(w, r, Health{
		Status:    "ok",
		Series:    p.Len(),
		Dates:     len(dates),
		FirstDate: dates[0],
		LastDate:  dates[len(dates)-1],
	})
}

// writeError sends msg as the whole plain text body so clients can show it
// unchanged.
func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, msg)
}

// StatusCode maps a Handle error to an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, wire.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, pnl.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
