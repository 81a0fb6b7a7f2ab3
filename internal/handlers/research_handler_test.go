package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/aierrors"
	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/ai"
	"github.com/ternarybob/augur/internal/services/events"
	"github.com/ternarybob/augur/internal/services/status"
)

type stubGenerator struct {
	respond func(*ai.GenerateRequest) (*ai.GenerateResult, error)
}

func (s *stubGenerator) GenerateContent(_ context.Context, req *ai.GenerateRequest) (*ai.GenerateResult, error) {
	return s.respond(req)
}

type stubQuoteCache struct {
	mu     sync.Mutex
	quotes map[string]*models.PriceQuote
}

func newStubQuoteCache() *stubQuoteCache {
	return &stubQuoteCache{quotes: make(map[string]*models.PriceQuote)}
}

func (c *stubQuoteCache) Save(_ context.Context, quote *models.PriceQuote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *quote
	c.quotes[quote.Ticker] = &copied
	return nil
}

func (c *stubQuoteCache) Get(_ context.Context, ticker string, _ time.Duration) (*models.PriceQuote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if q, ok := c.quotes[ticker]; ok {
		return q, nil
	}
	return nil, interfaces.ErrKeyNotFound
}

func newTestResearchHandler(respond func(*ai.GenerateRequest) (*ai.GenerateResult, error)) (*ResearchHandler, *status.Service, *stubQuoteCache) {
	logger := common.GetLogger()
	eventSvc := events.NewService(logger)
	statusSvc := status.NewService(eventSvc, logger)
	research := ai.NewResearch(&stubGenerator{respond: respond}, logger)
	cache := newStubQuoteCache()
	return NewResearchHandler(research, statusSvc, cache, logger), statusSvc, cache
}

func quoteJSON(ticker string, price float64) func(*ai.GenerateRequest) (*ai.GenerateResult, error) {
	return func(req *ai.GenerateRequest) (*ai.GenerateResult, error) {
		return &ai.GenerateResult{
			Text:  `{"ticker":"` + ticker + `","price":` + formatPrice(price) + `,"currency":"AUD","date":"2026-08-20"}`,
			Model: "gemini-3-flash-preview",
			Usage: models.Usage{PromptTokens: 10, CandidateTokens: 20, TotalTokens: 30},
		}, nil
	}
}

func formatPrice(p float64) string {
	b, _ := json.Marshal(p)
	return string(b)
}

func TestQuoteHandlerReturnsTypedQuote(t *testing.T) {
	handler, _, cache := newTestResearchHandler(quoteJSON("ASX:BHP", 42.5))

	req := httptest.NewRequest("POST", "/api/research/quote", strings.NewReader(`{"ticker":"bhp"}`))
	rec := httptest.NewRecorder()
	handler.QuoteHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Quote models.PriceQuote `json:"quote"`
		Usage models.Usage      `json:"usage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 42.5, body.Quote.Price)
	assert.Equal(t, 30, body.Usage.TotalTokens)

	// Successful quotes are cached for later plausibility checks
	cached, err := cache.Get(context.Background(), "ASX:BHP", 0)
	require.NoError(t, err)
	assert.Equal(t, 42.5, cached.Price)
}

func TestQuoteHandlerRejectsMissingTicker(t *testing.T) {
	handler, _, _ := newTestResearchHandler(quoteJSON("ASX:BHP", 42.5))

	req := httptest.NewRequest("POST", "/api/research/quote", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.QuoteHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteHandlerQuotaFailureDisablesAI(t *testing.T) {
	handler, statusSvc, _ := newTestResearchHandler(func(req *ai.GenerateRequest) (*ai.GenerateResult, error) {
		return nil, aierrors.Quota("gemini-3-flash-preview", "quota exceeded")
	})

	req := httptest.NewRequest("POST", "/api/research/quote", strings.NewReader(`{"ticker":"BHP"}`))
	rec := httptest.NewRecorder()
	handler.QuoteHandler(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(aierrors.KindQuotaExceeded), body["kind"])
	assert.Equal(t, "gemini-3-flash-preview", body["engine"])

	// Quota exhaustion flips the gate; the next request is refused locally
	assert.False(t, statusSvc.AIEnabled())

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("POST", "/api/research/quote", strings.NewReader(`{"ticker":"BHP"}`))
	handler.QuoteHandler(rec2, req2)
	assert.Equal(t, http.StatusServiceUnavailable, rec2.Code)
}

func TestHistoricalPriceHandlerUsesCachedReference(t *testing.T) {
	handler, _, cache := newTestResearchHandler(quoteJSON("ASX:BHP", 2001))

	// Fresh cached quote of 100 makes a 2001 historical price implausible
	require.NoError(t, cache.Save(context.Background(), &models.PriceQuote{
		Ticker:   "ASX:BHP",
		Price:    100,
		Currency: "AUD",
	}))

	req := httptest.NewRequest("POST", "/api/research/price/historical",
		strings.NewReader(`{"ticker":"BHP","date":"2024-01-15"}`))
	rec := httptest.NewRecorder()
	handler.HistoricalPriceHandler(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(aierrors.KindAnomalousPrice), body["kind"])
	assert.Equal(t, 2001.0, body["price"])
}

func TestHistoricalPriceHandlerUnguardedWithoutCache(t *testing.T) {
	handler, _, _ := newTestResearchHandler(quoteJSON("ASX:BHP", 2001))

	req := httptest.NewRequest("POST", "/api/research/price/historical",
		strings.NewReader(`{"ticker":"BHP","date":"2024-01-15"}`))
	rec := httptest.NewRecorder()
	handler.HistoricalPriceHandler(rec, req)

	// No cached reference, guard is skipped
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeHandlerRendersMarkdown(t *testing.T) {
	handler, _, _ := newTestResearchHandler(func(req *ai.GenerateRequest) (*ai.GenerateResult, error) {
		return &ai.GenerateResult{
			Text:  `{"summary":"Strong balance sheet","fullText":"# Balance Sheet\n\nNet cash position.","sentiment":"positive"}`,
			Model: "gemini-3-flash-preview",
		}, nil
	})

	req := httptest.NewRequest("POST", "/api/research/analyze", strings.NewReader(
		`{"asset":{"name":"BHP Group","ticker":"ASX:BHP"},"vector":{"id":"v1","title":"Balance Sheet"}}`))
	rec := httptest.NewRecorder()
	handler.AnalyzeHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Analysis analysisResponse `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Strong balance sheet", body.Analysis.Summary)
	assert.Contains(t, body.Analysis.FullTextHTML, "<h1")
	assert.Equal(t, "positive", body.Analysis.Sentiment)
}

func TestResearchHandlerMethodNotAllowed(t *testing.T) {
	handler, _, _ := newTestResearchHandler(quoteJSON("ASX:BHP", 42.5))

	req := httptest.NewRequest("GET", "/api/research/quote", nil)
	rec := httptest.NewRecorder()
	handler.QuoteHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
