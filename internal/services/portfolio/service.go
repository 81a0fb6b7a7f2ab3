// -----------------------------------------------------------------------
// Portfolio service - tracked positions and the scheduled quote refresh.
// The refresh fans out one quote call per position, joins all-settle, and
// aggregates usage by reduction over the completed results so no counter
// is shared between in-flight calls.
// -----------------------------------------------------------------------

package portfolio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/ai"
	"github.com/ternarybob/augur/internal/services/status"
)

// Quoter is the slice of the research facade the portfolio service needs.
type Quoter interface {
	Quote(ctx context.Context, ticker, currency, model string) (*ai.Result[models.PriceQuote], error)
}

// Service manages tracked positions and their quote refresh.
type Service struct {
	research     Quoter
	storage      interfaces.PortfolioStorage
	quoteCache   interfaces.QuoteCache
	statusSvc    *status.Service
	eventService interfaces.EventService
	logger       arbor.ILogger
	concurrency  int
}

// NewService creates the portfolio service.
func NewService(
	research Quoter,
	storage interfaces.PortfolioStorage,
	quoteCache interfaces.QuoteCache,
	statusSvc *status.Service,
	eventService interfaces.EventService,
	config *common.PortfolioConfig,
	logger arbor.ILogger,
) *Service {
	concurrency := config.RefreshConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &Service{
		research:     research,
		storage:      storage,
		quoteCache:   quoteCache,
		statusSvc:    statusSvc,
		eventService: eventService,
		logger:       logger,
		concurrency:  concurrency,
	}
}

// AddPosition stores a new tracked position.
func (s *Service) AddPosition(ctx context.Context, position *models.Position) error {
	return s.storage.Upsert(ctx, position)
}

// UpdatePosition updates an existing position.
func (s *Service) UpdatePosition(ctx context.Context, position *models.Position) error {
	if position == nil || position.ID == "" {
		return fmt.Errorf("position requires an id")
	}
	if _, err := s.storage.Get(ctx, position.ID); err != nil {
		return err
	}
	return s.storage.Upsert(ctx, position)
}

// GetPosition returns a position by ID.
func (s *Service) GetPosition(ctx context.Context, id string) (*models.Position, error) {
	return s.storage.Get(ctx, id)
}

// ListPositions returns all tracked positions.
func (s *Service) ListPositions(ctx context.Context) ([]models.Position, error) {
	return s.storage.List(ctx)
}

// RemovePosition deletes a position by ID.
func (s *Service) RemovePosition(ctx context.Context, id string) error {
	return s.storage.Delete(ctx, id)
}

// CurrentPrice returns the cached price for a ticker, if fresh enough.
// Used as the anomaly-guard reference for historical lookups.
func (s *Service) CurrentPrice(ctx context.Context, ticker string, maxAge time.Duration) (float64, bool) {
	quote, err := s.quoteCache.Get(ctx, ticker, maxAge)
	if err != nil {
		return 0, false
	}
	return quote.Price, true
}

// RefreshQuotes fetches a fresh quote for every tracked position. Calls run
// concurrently up to the configured limit; one failure never cancels its
// siblings. Usage and outcome counts are aggregated only after every call
// has settled.
func (s *Service) RefreshQuotes(ctx context.Context, model string) (*models.RefreshSummary, error) {
	if s.statusSvc != nil && !s.statusSvc.AIEnabled() {
		return nil, fmt.Errorf("AI features are disabled (quota exhausted); re-enable before refreshing")
	}

	positions, err := s.storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	summary := &models.RefreshSummary{
		JobID:     uuid.New().String(),
		StartedAt: time.Now(),
		Results:   make([]models.QuoteResult, len(positions)),
	}

	if len(positions) == 0 {
		return summary, nil
	}

	s.logger.Info().
		Str("job_id", summary.JobID).
		Int("positions", len(positions)).
		Int("concurrency", s.concurrency).
		Msg("Starting portfolio quote refresh")

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, position := range positions {
		wg.Add(1)
		go func(i int, position models.Position) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// Each slot of the results slice is owned by exactly one
			// goroutine; aggregation happens after the join.
			summary.Results[i] = s.fetchQuote(ctx, position, model)
		}(i, position)
	}

	wg.Wait()

	for i := range summary.Results {
		result := &summary.Results[i]
		summary.Usage = summary.Usage.Add(result.Usage)
		if result.Err != nil {
			summary.Failed++
			result.Error = result.Err.Error()
			if s.statusSvc != nil {
				s.statusSvc.ObserveError(ctx, result.Err)
			}
			continue
		}
		summary.Succeeded++

		if err := s.quoteCache.Save(ctx, result.Quote); err != nil {
			s.logger.Warn().Err(err).Str("ticker", result.Ticker).Msg("Failed to cache refreshed quote")
		}
		if s.eventService != nil {
			_ = s.eventService.Publish(ctx, interfaces.Event{
				Type:    interfaces.EventQuoteUpdated,
				Payload: result.Quote,
			})
		}
	}

	summary.Duration = time.Since(summary.StartedAt)

	s.logger.Info().
		Str("job_id", summary.JobID).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("total_tokens", summary.Usage.TotalTokens).
		Dur("duration", summary.Duration).
		Msg("Portfolio quote refresh completed")

	if s.eventService != nil {
		_ = s.eventService.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventPortfolioRefreshed,
			Payload: summary,
		})
	}

	return summary, nil
}

func (s *Service) fetchQuote(ctx context.Context, position models.Position, model string) models.QuoteResult {
	currency := position.Currency
	if currency == "" {
		currency = "AUD"
	}

	result, err := s.research.Quote(ctx, position.Ticker, currency, model)
	if err != nil {
		return models.QuoteResult{Ticker: position.Ticker, Err: err}
	}

	quote := result.Data
	return models.QuoteResult{
		Ticker: position.Ticker,
		Quote:  &quote,
		Usage:  result.Usage,
	}
}
