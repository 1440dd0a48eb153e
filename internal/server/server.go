package server

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basket-dashboard/internal/handlers"
	"basket-dashboard/internal/services"
)

type Server struct {
	analysis    *services.Analysis
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analysis *services.Analysis, logger *slog.Logger, settings handlers.Settings, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analysis:    analysis,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analysis, logger, settings),
		sseHandlers: handlers.NewSSEHandlers(analysis, logger, settings),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// REST API endpoints
	s.mux.HandleFunc("POST /api/dataset", s.apiHandlers.HandleDataset)
	s.mux.HandleFunc("POST /api/mine", s.apiHandlers.HandleMine)
	s.mux.HandleFunc("GET /api/itemsets", s.apiHandlers.HandleItemsets)
	s.mux.HandleFunc("GET /api/rules", s.apiHandlers.HandleRules)
	s.mux.HandleFunc("GET /api/scatter", s.apiHandlers.HandleScatter)
	s.mux.HandleFunc("GET /api/graph", s.apiHandlers.HandleGraph)

	// Datastar SSE endpoints
	s.mux.HandleFunc("POST /sse/mine", s.sseHandlers.HandleMine)
	s.mux.HandleFunc("GET /sse/filter", s.sseHandlers.HandleFilter)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
