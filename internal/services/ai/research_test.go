package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/aierrors"
	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/models"
)

// stubGenerator fabricates upstream responses for facade tests. The respond
// function sees the full request so tests can key responses off the prompt.
type stubGenerator struct {
	calls   atomic.Int64
	respond func(request *GenerateRequest) (*GenerateResult, error)
}

func (s *stubGenerator) GenerateContent(_ context.Context, request *GenerateRequest) (*GenerateResult, error) {
	s.calls.Add(1)
	return s.respond(request)
}

func fixedResponse(text string) func(*GenerateRequest) (*GenerateResult, error) {
	return func(*GenerateRequest) (*GenerateResult, error) {
		return &GenerateResult{
			Text:     text,
			Provider: ProviderGemini,
			Model:    "gemini-3-flash-preview",
			Usage:    models.Usage{PromptTokens: 10, CandidateTokens: 20, TotalTokens: 30},
		}, nil
	}
}

func newTestResearch(gen Generator) *Research {
	return NewResearch(gen, common.GetLogger())
}

func TestQuoteReturnsTypedResult(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse(`{"ticker":"ASX:BHP","price":45.10,"currency":"AUD","date":"2026-08-21"}`)}
	research := newTestResearch(gen)

	result, err := research.Quote(context.Background(), "ASX:BHP", "AUD", "")
	require.NoError(t, err)

	assert.Equal(t, "ASX:BHP", result.Data.Ticker)
	assert.Equal(t, 45.10, result.Data.Price)
	assert.Equal(t, "AUD", result.Data.Currency)
	assert.Equal(t, 30, result.Usage.TotalTokens)
	assert.Equal(t, int64(1), gen.calls.Load())
}

func TestQuoteMalformedResponseMakesExactlyOneCall(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse("I cannot provide prices right now.")}
	research := newTestResearch(gen)

	_, err := research.Quote(context.Background(), "ASX:BHP", "AUD", "")
	require.Error(t, err)

	ce, ok := aierrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, aierrors.KindMalformedPayload, ce.Kind)
	assert.Equal(t, int64(1), gen.calls.Load(), "a parse failure must not trigger an upstream retry")
}

func TestQuotaErrorRetainsEngine(t *testing.T) {
	gen := &stubGenerator{respond: func(*GenerateRequest) (*GenerateResult, error) {
		return nil, errors.New("rpc error: code = ResourceExhausted desc = quota exceeded for model")
	}}
	research := newTestResearch(gen)

	_, err := research.Quote(context.Background(), "ASX:BHP", "AUD", "gemini-3-flash-preview")
	require.Error(t, err)

	ce, ok := aierrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, aierrors.KindQuotaExceeded, ce.Kind)
	assert.Equal(t, "gemini-3-flash-preview", ce.Engine)
}

func TestHistoricalPriceRejectsAnomalousValue(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse(`{"ticker":"ASX:BHP","price":2001,"currency":"AUD","date":"2014-06-30"}`)}
	research := newTestResearch(gen)

	_, err := research.HistoricalPrice(context.Background(), "ASX:BHP", "2014-06-30", "AUD", 100, "")
	require.Error(t, err)

	ce, ok := aierrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, aierrors.KindAnomalousPrice, ce.Kind)
	assert.Equal(t, 2001.0, ce.Price)
}

func TestHistoricalPriceSkipsGuardWithoutCurrentPrice(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse(`{"ticker":"ASX:BHP","price":2001,"currency":"AUD","date":"2014-06-30"}`)}
	research := newTestResearch(gen)

	result, err := research.HistoricalPrice(context.Background(), "ASX:BHP", "2014-06-30", "AUD", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2001.0, result.Data.Price)
}

func TestFuturePriceAppliesNoGuard(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse(`{"ticker":"ASX:BHP","price":2001,"currency":"AUD","date":"2030-01-01"}`)}
	research := newTestResearch(gen)

	result, err := research.FuturePrice(context.Background(), "ASX:BHP", "2030-01-01", "AUD", "")
	require.NoError(t, err)
	assert.Equal(t, 2001.0, result.Data.Price)
}

func TestSectorScreenSanitizesMetrics(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse(`{
		"sector": "Materials",
		"commentary": "Commodity prices remain firm.",
		"constituents": [
			{"name": "BHP Group", "ticker": "BHP", "peRatio": "12.5x", "eps": 2.8, "dividendYield": "5.4%", "sectorAvgPeRatio": "14.1", "sectorAvgEps": "N/A", "sectorAvgDividendYield": "4.2%"}
		]
	}`)}
	research := newTestResearch(gen)

	result, err := research.SectorScreen(context.Background(), "Materials", "ASX", "")
	require.NoError(t, err)
	require.Len(t, result.Data.Constituents, 1)

	c := result.Data.Constituents[0]
	assert.Equal(t, 12.5, c.PERatio)
	assert.Equal(t, 2.8, c.EPS)
	assert.Equal(t, 5.4, c.DividendYield)
	assert.Equal(t, 14.1, c.SectorAvgPERatio)
	assert.Equal(t, 0.0, c.SectorAvgEPS)
	assert.Equal(t, 4.2, c.SectorAvgDividendYield)
}

func TestAnalyzeVectorRejectsIncompleteResponse(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse(`{"summary": "Looks fine.", "fullText": "", "sentiment": "positive"}`)}
	research := newTestResearch(gen)

	asset := models.AssetCandidate{Name: "BHP Group", Ticker: "BHP", Exchange: "ASX"}
	vector := models.AnalysisVector{ID: "financial-health", Title: "Financial Health"}

	_, err := research.AnalyzeVector(context.Background(), asset, vector, "")
	require.Error(t, err)

	ce, ok := aierrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, aierrors.KindMalformedPayload, ce.Kind)
}

func TestAnswerWithSearchCarriesCitations(t *testing.T) {
	gen := &stubGenerator{respond: func(*GenerateRequest) (*GenerateResult, error) {
		return &GenerateResult{
			Text:     "BHP closed at $45.10 on 21 Aug 2026.",
			Provider: ProviderGemini,
			Citations: []models.Citation{
				{URI: "https://example.com/asx/bhp", Title: "BHP quote"},
			},
			Usage: models.Usage{TotalTokens: 42},
		}, nil
	}}
	research := newTestResearch(gen)

	result, err := research.AnswerWithSearch(context.Background(), "What did BHP close at?", "")
	require.NoError(t, err)
	assert.Contains(t, result.Data.Text, "45.10")
	require.Len(t, result.Data.Citations, 1)
	assert.Equal(t, "https://example.com/asx/bhp", result.Data.Citations[0].URI)
}

func TestIdentifyAssetsFiltersIncompleteCandidates(t *testing.T) {
	gen := &stubGenerator{respond: fixedResponse(`[
		{"name": "BHP Group", "ticker": "BHP", "exchange": "ASX", "assetType": "equity", "currency": "AUD"},
		{"name": "", "ticker": "XYZ", "exchange": "ASX"},
		{"name": "No Ticker Corp", "ticker": "", "exchange": "ASX"}
	]`)}
	research := newTestResearch(gen)

	result, err := research.IdentifyAssets(context.Background(), "big australian miner", "")
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "BHP", result.Data[0].Ticker)
}

func TestConcurrentFacadeCallsAreIndependent(t *testing.T) {
	// Responses are keyed off the prompt so cross-contamination between
	// concurrent calls would produce a visible mismatch.
	gen := &stubGenerator{respond: func(request *GenerateRequest) (*GenerateResult, error) {
		prompt := request.Messages[0].Content
		ticker := "ASX:BHP"
		if strings.Contains(prompt, "ASX:CBA") {
			ticker = "ASX:CBA"
		}
		return &GenerateResult{
			Text:  fmt.Sprintf(`{"ticker":%q,"price":50,"currency":"AUD","date":"2026-08-21"}`, ticker),
			Usage: models.Usage{TotalTokens: 5},
		}, nil
	}}
	research := newTestResearch(gen)

	const iterations = 50
	var wg sync.WaitGroup
	errs := make(chan error, iterations*2)

	for i := 0; i < iterations; i++ {
		for _, ticker := range []string{"ASX:BHP", "ASX:CBA"} {
			wg.Add(1)
			go func(ticker string) {
				defer wg.Done()
				result, err := research.Quote(context.Background(), ticker, "AUD", "")
				if err != nil {
					errs <- err
					return
				}
				if result.Data.Ticker != ticker {
					errs <- fmt.Errorf("quote for %s returned ticker %s", ticker, result.Data.Ticker)
				}
			}(ticker)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
