// -----------------------------------------------------------------------
// Research handler - HTTP surface for the AI research operations. Every
// failure from the AI layer is already classified; this layer only maps
// kinds to HTTP statuses and feeds quota failures to the status gate.
// -----------------------------------------------------------------------

package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/ai"
	"github.com/ternarybob/augur/internal/services/status"
)

// quoteReferenceMaxAge bounds how stale a cached quote may be when used as
// the anomaly-guard reference for historical lookups.
const quoteReferenceMaxAge = 24 * time.Hour

type ResearchHandler struct {
	research   *ai.Research
	statusSvc  *status.Service
	quoteCache interfaces.QuoteCache
	markdown   goldmark.Markdown
	logger     arbor.ILogger
}

func NewResearchHandler(research *ai.Research, statusSvc *status.Service, quoteCache interfaces.QuoteCache, logger arbor.ILogger) *ResearchHandler {
	return &ResearchHandler{
		research:   research,
		statusSvc:  statusSvc,
		quoteCache: quoteCache,
		markdown:   goldmark.New(),
		logger:     logger,
	}
}

// requireAI rejects the request when AI features are disabled.
func (h *ResearchHandler) requireAI(w http.ResponseWriter) bool {
	if h.statusSvc != nil && !h.statusSvc.AIEnabled() {
		WriteError(w, http.StatusServiceUnavailable, "AI features are disabled after quota exhaustion; re-enable them in settings")
		return false
	}
	return true
}

// fail observes a classified failure (quota errors flip the AI gate) and
// writes the mapped HTTP response.
func (h *ResearchHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if h.statusSvc != nil {
		h.statusSvc.ObserveError(r.Context(), err)
	}
	WriteClassifiedError(w, err)
}

// renderMarkdown converts model-written markdown to HTML for direct display.
func (h *ResearchHandler) renderMarkdown(source string) string {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(source), &buf); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to render markdown, returning source")
		return source
	}
	return buf.String()
}

// IdentifyHandler handles POST /api/research/identify
func (h *ResearchHandler) IdentifyHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Query string `json:"query"`
		Model string `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		WriteError(w, http.StatusBadRequest, "Missing query")
		return
	}

	result, err := h.research.IdentifyAssets(r.Context(), req.Query, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": result.Data,
		"usage":      result.Usage,
	})
}

// VectorsHandler handles POST /api/research/vectors
func (h *ResearchHandler) VectorsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Asset models.AssetCandidate `json:"asset"`
		Model string                `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Asset.Ticker == "" {
		WriteError(w, http.StatusBadRequest, "Missing asset ticker")
		return
	}

	result, err := h.research.ListAnalysisVectors(r.Context(), req.Asset, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"vectors": result.Data,
		"usage":   result.Usage,
	})
}

// analysisResponse is the rendered form of an analysis returned to the UI.
type analysisResponse struct {
	Summary       string   `json:"summary"`
	FullText      string   `json:"fullText"`
	FullTextHTML  string   `json:"fullTextHtml"`
	Sentiment     string   `json:"sentiment"`
	LimitBuyPrice *float64 `json:"limitBuyPrice,omitempty"`
}

func (h *ResearchHandler) toAnalysisResponse(content models.AnalysisContent) analysisResponse {
	return analysisResponse{
		Summary:       content.Summary,
		FullText:      content.FullText,
		FullTextHTML:  h.renderMarkdown(content.FullText),
		Sentiment:     content.Sentiment,
		LimitBuyPrice: content.LimitBuyPrice,
	}
}

// AnalyzeHandler handles POST /api/research/analyze
func (h *ResearchHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Asset  models.AssetCandidate `json:"asset"`
		Vector models.AnalysisVector `json:"vector"`
		Model  string                `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Asset.Ticker == "" || req.Vector.Title == "" {
		WriteError(w, http.StatusBadRequest, "Missing asset ticker or vector title")
		return
	}

	result, err := h.research.AnalyzeVector(r.Context(), req.Asset, req.Vector, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"analysis": h.toAnalysisResponse(result.Data),
		"usage":    result.Usage,
	})
}

// SynthesizeHandler handles POST /api/research/synthesize
func (h *ResearchHandler) SynthesizeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Asset    models.AssetCandidate    `json:"asset"`
		Sections []models.AnalysisContent `json:"sections"`
		Model    string                   `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Asset.Ticker == "" || len(req.Sections) == 0 {
		WriteError(w, http.StatusBadRequest, "Missing asset ticker or sections")
		return
	}

	result, err := h.research.Synthesize(r.Context(), req.Asset, req.Sections, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"synthesis": h.toAnalysisResponse(result.Data),
		"usage":     result.Usage,
	})
}

// AnswerHandler handles POST /api/research/answer
func (h *ResearchHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Question string           `json:"question"`
		History  []models.Message `json:"history,omitempty"`
		Context  string           `json:"context,omitempty"`
		Model    string           `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Question == "" {
		WriteError(w, http.StatusBadRequest, "Missing question")
		return
	}

	result, err := h.research.Answer(r.Context(), req.Question, req.History, req.Context, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"answer": map[string]interface{}{
			"text":      result.Data.Text,
			"html":      h.renderMarkdown(result.Data.Text),
			"citations": result.Data.Citations,
		},
		"usage": result.Usage,
	})
}

// AnswerWithSearchHandler handles POST /api/research/answer/search
func (h *ResearchHandler) AnswerWithSearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Question string `json:"question"`
		Model    string `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Question == "" {
		WriteError(w, http.StatusBadRequest, "Missing question")
		return
	}

	result, err := h.research.AnswerWithSearch(r.Context(), req.Question, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"answer": map[string]interface{}{
			"text":      result.Data.Text,
			"html":      h.renderMarkdown(result.Data.Text),
			"citations": result.Data.Citations,
		},
		"usage": result.Usage,
	})
}

// AlternativesHandler handles POST /api/research/alternatives
func (h *ResearchHandler) AlternativesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Asset models.AssetCandidate `json:"asset"`
		Model string                `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Asset.Ticker == "" {
		WriteError(w, http.StatusBadRequest, "Missing asset ticker")
		return
	}

	result, err := h.research.Alternatives(r.Context(), req.Asset, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alternatives": result.Data,
		"usage":        result.Usage,
	})
}

// QuoteHandler handles POST /api/research/quote
func (h *ResearchHandler) QuoteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Ticker   string `json:"ticker"`
		Currency string `json:"currency,omitempty"`
		Model    string `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Ticker == "" {
		WriteError(w, http.StatusBadRequest, "Missing ticker")
		return
	}

	ticker := common.ParseTicker(req.Ticker).String()
	currency := req.Currency
	if currency == "" {
		currency = "AUD"
	}

	result, err := h.research.Quote(r.Context(), ticker, currency, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	// Cache the quote so historical lookups have a plausibility reference
	if h.quoteCache != nil {
		quote := result.Data
		if err := h.quoteCache.Save(r.Context(), &quote); err != nil {
			h.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache quote")
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quote": result.Data,
		"usage": result.Usage,
	})
}

// HistoricalPriceHandler handles POST /api/research/price/historical
func (h *ResearchHandler) HistoricalPriceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Ticker   string `json:"ticker"`
		Date     string `json:"date"`
		Currency string `json:"currency,omitempty"`
		Model    string `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Ticker == "" || req.Date == "" {
		WriteError(w, http.StatusBadRequest, "Missing ticker or date")
		return
	}

	ticker := common.ParseTicker(req.Ticker).String()
	currency := req.Currency
	if currency == "" {
		currency = "AUD"
	}

	// Anomaly-guard reference: the most recent cached quote, when fresh.
	// First-time lookups proceed unguarded.
	var currentPrice float64
	if h.quoteCache != nil {
		if cached, err := h.quoteCache.Get(r.Context(), ticker, quoteReferenceMaxAge); err == nil {
			currentPrice = cached.Price
		}
	}

	result, err := h.research.HistoricalPrice(r.Context(), ticker, req.Date, currency, currentPrice, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quote": result.Data,
		"usage": result.Usage,
	})
}

// FuturePriceHandler handles POST /api/research/price/future
func (h *ResearchHandler) FuturePriceHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Ticker   string `json:"ticker"`
		Date     string `json:"date"`
		Currency string `json:"currency,omitempty"`
		Model    string `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Ticker == "" || req.Date == "" {
		WriteError(w, http.StatusBadRequest, "Missing ticker or date")
		return
	}

	ticker := common.ParseTicker(req.Ticker).String()
	currency := req.Currency
	if currency == "" {
		currency = "AUD"
	}

	result, err := h.research.FuturePrice(r.Context(), ticker, req.Date, currency, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quote": result.Data,
		"usage": result.Usage,
	})
}

// BuyLimitHandler handles POST /api/research/price/buy-limit
func (h *ResearchHandler) BuyLimitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Asset     models.AssetCandidate  `json:"asset"`
		Synthesis models.AnalysisContent `json:"synthesis"`
		Model     string                 `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Asset.Ticker == "" || req.Synthesis.Summary == "" {
		WriteError(w, http.StatusBadRequest, "Missing asset ticker or synthesis summary")
		return
	}

	result, err := h.research.BuyLimitPrice(r.Context(), req.Asset, req.Synthesis, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"limitBuyPrice": result.Data,
		"usage":         result.Usage,
	})
}

// SectorScreenHandler handles POST /api/research/sector
func (h *ResearchHandler) SectorScreenHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") || !h.requireAI(w) {
		return
	}

	var req struct {
		Sector   string `json:"sector"`
		Exchange string `json:"exchange,omitempty"`
		Model    string `json:"model,omitempty"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Sector == "" {
		WriteError(w, http.StatusBadRequest, "Missing sector")
		return
	}

	exchange := req.Exchange
	if exchange == "" {
		exchange = common.DefaultExchange
	}

	result, err := h.research.SectorScreen(r.Context(), req.Sector, exchange, req.Model)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"result": result.Data,
		"usage":  result.Usage,
	})
}
