package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// Options wires the server. Exactly one of Analytics and LoadErr is set:
// a failed load switches every route to the fatal error response.
type Options struct {
	Analytics  *services.Analytics
	LoadErr    error
	Logger     *slog.Logger
	TableLimit int
}

func NewServer(opts Options) *Server {
	s := &Server{
		mux:    http.NewServeMux(),
		logger: opts.Logger,
	}

	s.mux.Handle("GET /metrics", promhttp.Handler())

	if opts.LoadErr != nil || opts.Analytics == nil {
		s.setupUnavailableRoutes(handlers.NewUnavailable(opts.LoadErr, opts.Logger))
		return s
	}

	s.setupRoutes(
		handlers.NewPageHandlers(opts.Analytics, opts.Logger, opts.TableLimit),
		handlers.NewAPIHandlers(opts.Analytics, opts.Logger, opts.TableLimit),
		handlers.NewSSEHandlers(opts.Analytics, opts.Logger, opts.TableLimit),
	)
	return s
}

func (s *Server) setupRoutes(page *handlers.PageHandlers, api *handlers.APIHandlers, sse *handlers.SSEHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", page.HandleDashboard)
	s.mux.HandleFunc("GET /health", api.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", api.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/options", api.HandleOptions)
	s.mux.HandleFunc("GET /api/summary", api.HandleSummary)
	s.mux.HandleFunc("GET /api/charts", api.HandleCharts)
	s.mux.HandleFunc("GET /api/records", api.HandleRecords)
	s.mux.HandleFunc("GET /api/export.csv", api.HandleExportCSV)
	s.mux.HandleFunc("GET /api/export.xlsx", api.HandleExportXLSX)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", sse.HandleDashboard)
}

func (s *Server) setupUnavailableRoutes(u *handlers.Unavailable) {
	s.mux.HandleFunc("GET /{$}", u.HandlePage)
	s.mux.HandleFunc("GET /health", u.HandleAPI)
	s.mux.HandleFunc("/admin/", u.HandleAPI)
	s.mux.HandleFunc("/api/", u.HandleAPI)
	s.mux.HandleFunc("/sse/", u.HandleAPI)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
