package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Research (AI operations)
	mux.HandleFunc("/api/research/identify", s.app.ResearchHandler.IdentifyHandler)
	mux.HandleFunc("/api/research/vectors", s.app.ResearchHandler.VectorsHandler)
	mux.HandleFunc("/api/research/analyze", s.app.ResearchHandler.AnalyzeHandler)
	mux.HandleFunc("/api/research/synthesize", s.app.ResearchHandler.SynthesizeHandler)
	mux.HandleFunc("/api/research/answer", s.app.ResearchHandler.AnswerHandler)
	mux.HandleFunc("/api/research/answer/search", s.app.ResearchHandler.AnswerWithSearchHandler)
	mux.HandleFunc("/api/research/alternatives", s.app.ResearchHandler.AlternativesHandler)
	mux.HandleFunc("/api/research/quote", s.app.ResearchHandler.QuoteHandler)
	mux.HandleFunc("/api/research/price/historical", s.app.ResearchHandler.HistoricalPriceHandler)
	mux.HandleFunc("/api/research/price/future", s.app.ResearchHandler.FuturePriceHandler)
	mux.HandleFunc("/api/research/price/buy-limit", s.app.ResearchHandler.BuyLimitHandler)
	mux.HandleFunc("/api/research/sector", s.app.ResearchHandler.SectorScreenHandler)

	// API routes - Portfolio
	mux.HandleFunc("/api/portfolio", s.handlePortfolioRoute)
	mux.HandleFunc("/api/portfolio/refresh", s.app.PortfolioHandler.RefreshHandler)
	mux.HandleFunc("/api/portfolio/", s.handlePortfolioItemRoutes)

	// API routes - Key/value store (API keys, settings)
	mux.HandleFunc("/api/kv", s.handleKVRoute)
	mux.HandleFunc("/api/kv/", s.app.KVHandler.DeleteHandler)

	// API routes - Status
	mux.HandleFunc("/api/status", s.app.StatusHandler.StatusHandler)
	mux.HandleFunc("/api/status/ai/enable", s.app.StatusHandler.EnableAIHandler)

	// API routes - System
	mux.HandleFunc("/api/watchlist", s.app.APIHandler.WatchlistHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handlePortfolioRoute routes /api/portfolio requests (list and create)
func (s *Server) handlePortfolioRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.PortfolioHandler.ListHandler(w, r)
	case "POST":
		s.app.PortfolioHandler.CreateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePortfolioItemRoutes routes /api/portfolio/{id} requests
func (s *Server) handlePortfolioItemRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.PortfolioHandler.GetHandler(w, r)
	case "PUT":
		s.app.PortfolioHandler.UpdateHandler(w, r)
	case "DELETE":
		s.app.PortfolioHandler.DeleteHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleKVRoute routes /api/kv requests (list and set)
func (s *Server) handleKVRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.app.KVHandler.ListHandler(w, r)
	case "POST":
		s.app.KVHandler.SetHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
