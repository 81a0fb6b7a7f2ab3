package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// cachedQuote is the stored form of a quote with its save time, keyed by
// exchange-qualified ticker.
type cachedQuote struct {
	Ticker  string            `badgerhold:"key"`
	Quote   models.PriceQuote `json:"quote"`
	SavedAt time.Time         `json:"saved_at"`
}

// QuoteCacheStorage implements the QuoteCache interface for Badger
type QuoteCacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewQuoteCacheStorage creates a new QuoteCacheStorage instance
func NewQuoteCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QuoteCache {
	return &QuoteCacheStorage{
		db:     db,
		logger: logger,
	}
}

// Save stores the latest quote for a ticker, replacing any previous one
func (s *QuoteCacheStorage) Save(ctx context.Context, quote *models.PriceQuote) error {
	if quote == nil {
		return fmt.Errorf("quote cannot be nil")
	}

	ticker := common.ParseTicker(quote.Ticker).String()
	if ticker == "" {
		return fmt.Errorf("quote requires a ticker")
	}

	entry := cachedQuote{
		Ticker:  ticker,
		Quote:   *quote,
		SavedAt: time.Now(),
	}

	if err := s.db.Store().Upsert(ticker, &entry); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}
	return nil
}

// Get returns the cached quote for a ticker if one exists no older than
// maxAge (maxAge <= 0 means any age)
func (s *QuoteCacheStorage) Get(ctx context.Context, ticker string, maxAge time.Duration) (*models.PriceQuote, error) {
	normalized := common.ParseTicker(ticker).String()

	var entry cachedQuote
	err := s.db.Store().Get(normalized, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached quote: %w", err)
	}

	if maxAge > 0 && time.Since(entry.SavedAt) > maxAge {
		return nil, interfaces.ErrKeyNotFound
	}

	return &entry.Quote, nil
}
