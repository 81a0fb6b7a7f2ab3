package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
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

type memPortfolioStorage struct {
	mu        sync.Mutex
	positions map[string]models.Position
}

func newMemPortfolioStorage() *memPortfolioStorage {
	return &memPortfolioStorage{positions: make(map[string]models.Position)}
}

func (m *memPortfolioStorage) Upsert(_ context.Context, position *models.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if position.ID == "" {
		position.ID = uuid.New().String()
	}
	position.Ticker = common.ParseTicker(position.Ticker).String()
	m.positions[position.ID] = *position
	return nil
}

func (m *memPortfolioStorage) Get(_ context.Context, id string) (*models.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return nil, interfaces.ErrPositionNotFound
	}
	return &p, nil
}

func (m *memPortfolioStorage) GetByTicker(_ context.Context, ticker string) (*models.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.positions {
		if p.Ticker == ticker {
			return &p, nil
		}
	}
	return nil, interfaces.ErrPositionNotFound
}

func (m *memPortfolioStorage) List(_ context.Context) ([]models.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPortfolioStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.positions[id]; !ok {
		return interfaces.ErrPositionNotFound
	}
	delete(m.positions, id)
	return nil
}

type memQuoteCache struct {
	mu     sync.Mutex
	quotes map[string]models.PriceQuote
}

func newMemQuoteCache() *memQuoteCache {
	return &memQuoteCache{quotes: make(map[string]models.PriceQuote)}
}

func (m *memQuoteCache) Save(_ context.Context, quote *models.PriceQuote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[quote.Ticker] = *quote
	return nil
}

func (m *memQuoteCache) Get(_ context.Context, ticker string, _ time.Duration) (*models.PriceQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quotes[ticker]
	if !ok {
		return nil, interfaces.ErrKeyNotFound
	}
	return &q, nil
}

type stubQuoter struct {
	respond func(ticker string) (*ai.Result[models.PriceQuote], error)
}

func (s *stubQuoter) Quote(_ context.Context, ticker, _, _ string) (*ai.Result[models.PriceQuote], error) {
	return s.respond(ticker)
}

func newTestService(t *testing.T, quoter Quoter) (*Service, *memPortfolioStorage, *memQuoteCache, *status.Service) {
	t.Helper()

	logger := common.GetLogger()
	eventSvc := events.NewService(logger)
	statusSvc := status.NewService(eventSvc, logger)
	storage := newMemPortfolioStorage()
	cache := newMemQuoteCache()

	svc := NewService(quoter, storage, cache, statusSvc, eventSvc,
		&common.PortfolioConfig{RefreshConcurrency: 2}, logger)
	return svc, storage, cache, statusSvc
}

func TestRefreshQuotesAggregatesAfterAllSettle(t *testing.T) {
	ctx := context.Background()

	quoter := &stubQuoter{respond: func(ticker string) (*ai.Result[models.PriceQuote], error) {
		if ticker == "ASX:FAIL" {
			return nil, aierrors.New(aierrors.KindUpstream, "upstream hiccup")
		}
		return &ai.Result[models.PriceQuote]{
			Data:  models.PriceQuote{Ticker: ticker, Price: 50, Currency: "AUD", Date: "2026-08-21"},
			Usage: models.Usage{PromptTokens: 1, CandidateTokens: 2, TotalTokens: 3},
		}, nil
	}}

	svc, _, cache, _ := newTestService(t, quoter)

	for _, ticker := range []string{"ASX:BHP", "ASX:CBA", "ASX:FAIL", "ASX:WES"} {
		require.NoError(t, svc.AddPosition(ctx, &models.Position{Ticker: ticker, Units: 10}))
	}

	summary, err := svc.RefreshQuotes(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, summary.Results, 4)
	assert.Equal(t, 9, summary.Usage.TotalTokens, "usage sums only over settled successful calls")

	// One failure must not block sibling quotes from being cached
	price, ok := svc.CurrentPrice(ctx, "ASX:BHP", 0)
	require.True(t, ok)
	assert.Equal(t, 50.0, price)
	_, err = cache.Get(ctx, "ASX:FAIL", 0)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}

func TestRefreshQuotesEmptyPortfolio(t *testing.T) {
	svc, _, _, _ := newTestService(t, &stubQuoter{respond: func(string) (*ai.Result[models.PriceQuote], error) {
		return nil, errors.New("should not be called")
	}})

	summary, err := svc.RefreshQuotes(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Equal(t, 0, summary.Succeeded)
}

func TestRefreshQuotesQuotaFailureDisablesAI(t *testing.T) {
	ctx := context.Background()

	quoter := &stubQuoter{respond: func(string) (*ai.Result[models.PriceQuote], error) {
		return nil, aierrors.Quota("gemini-3-flash-preview", "quota exceeded")
	}}

	svc, _, _, statusSvc := newTestService(t, quoter)
	require.NoError(t, svc.AddPosition(ctx, &models.Position{Ticker: "ASX:BHP", Units: 10}))

	summary, err := svc.RefreshQuotes(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)

	assert.False(t, statusSvc.AIEnabled(), "quota exhaustion should disable AI features")

	// A disabled gate blocks the next refresh outright
	_, err = svc.RefreshQuotes(ctx, "")
	require.Error(t, err)

	statusSvc.EnableAI(ctx)
	assert.True(t, statusSvc.AIEnabled())
}

func TestPositionLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService(t, &stubQuoter{})

	position := &models.Position{Ticker: "bhp", Units: 100, CostBasis: 38.5}
	require.NoError(t, svc.AddPosition(ctx, position))
	require.NotEmpty(t, position.ID)

	position.Units = 120
	require.NoError(t, svc.UpdatePosition(ctx, position))

	got, err := svc.GetPosition(ctx, position.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, got.Units)

	require.NoError(t, svc.RemovePosition(ctx, position.ID))
	_, err = svc.GetPosition(ctx, position.ID)
	assert.ErrorIs(t, err, interfaces.ErrPositionNotFound)

	err = svc.UpdatePosition(ctx, &models.Position{})
	assert.Error(t, err)
}
