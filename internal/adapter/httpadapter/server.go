package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-impact-report/internal/report"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportProvider exposes the most recently built report.
type ReportProvider interface {
	sharedobs.ReadinessChecker
	Report() (report.Report, bool)
}

// Server exposes health, readiness, metrics, and report HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /report, and /report/{question} routes.
func NewServer(addr string, reports ReportProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(reports))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", handleReport(reports))
	mux.HandleFunc("GET /report/{question}", s.handleChart(reports))

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

func handleReport(reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		rep, ok := reports.Report()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "report not ready"})
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// handleChart serves the HTML chart page for one question.
func (s *Server) handleChart(reports ReportProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := reports.Report()
		if !ok {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "report not ready"})
			return
		}
		sec, ok := rep.Section(report.Question(r.PathValue("question")))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown question"})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.WriteChart(w, sec); err != nil {
			s.logger.Error("render chart failed", "question", sec.Question, "error", err)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
