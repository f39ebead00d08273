package httpadapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-data-agriculture/internal/domain"
	"github.com/couchcryptid/storm-data-agriculture/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Summarizer computes the agriculture summary of a decoded dataset.
type Summarizer interface {
	Summarize(ctx context.Context, raws []domain.RawClimateRecord) (domain.Summary, error)
}

// Server exposes health, readiness, metrics, and summary HTTP endpoints.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// Option configures optional Server routes.
type Option func(*Server)

// WithSummaryAPI registers POST /v1/summaries, which summarizes a JSON array of
// climate rows synchronously. Request bodies larger than maxBodyBytes are rejected.
func WithSummaryAPI(summarizer Summarizer, maxBodyBytes int64, metrics *observability.Metrics) Option {
	return func(s *Server) {
		s.mux.HandleFunc("POST /v1/summaries", s.handleSummarize(summarizer, maxBodyBytes, metrics))
	}
}

// NewServer creates an HTTP server with /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, logger *slog.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:    mux,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleSummarize(summarizer Summarizer, maxBodyBytes int64, metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		data, err := io.ReadAll(r.Body)
		if err != nil {
			metrics.SummaryRequests.WithLabelValues("invalid").Inc()
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "")
				return
			}
			writeError(w, http.StatusBadRequest, "read request body: "+err.Error(), "")
			return
		}

		raws, err := domain.DecodeDataset(data)
		if err != nil {
			metrics.SummaryRequests.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusBadRequest, err.Error(), "")
			return
		}

		summary, err := summarizer.Summarize(r.Context(), raws)
		if err != nil {
			var missing *domain.MissingFieldError
			if errors.As(err, &missing) {
				metrics.SummaryRequests.WithLabelValues("invalid").Inc()
				writeError(w, http.StatusUnprocessableEntity, err.Error(), string(missing.Field))
				return
			}
			metrics.SummaryRequests.WithLabelValues("error").Inc()
			s.logger.Error("summarize request failed", "error", err)
			writeError(w, http.StatusInternalServerError, "summarize failed", "")
			return
		}

		metrics.SummaryRequests.WithLabelValues("success").Inc()
		sharedobs.WriteJSON(w, http.StatusOK, summary)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, field string) {
	sharedobs.WriteJSON(w, status, errorResponse{Error: msg, Field: field})
}
