// Package interfaces defines storage contracts implemented by
// internal/storage and consumed by services, so services stay decoupled
// from the concrete Badger backing.
package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

// ErrKeyNotFound is returned when a key/value lookup finds nothing.
var ErrKeyNotFound = errors.New("key not found")

// ErrPositionNotFound is returned when a portfolio position lookup finds nothing.
var ErrPositionNotFound = errors.New("position not found")

// KeyValuePair is a stored key/value entry (API keys, feature flags).
type KeyValuePair struct {
	Key         string    `badgerhold:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KeyValueStorage provides generic key/value persistence.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, description string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]KeyValuePair, error)
}

// PortfolioStorage persists tracked portfolio positions.
type PortfolioStorage interface {
	Upsert(ctx context.Context, position *models.Position) error
	Get(ctx context.Context, id string) (*models.Position, error)
	GetByTicker(ctx context.Context, ticker string) (*models.Position, error)
	List(ctx context.Context) ([]models.Position, error)
	Delete(ctx context.Context, id string) error
}

// QuoteCache persists the most recent quote per ticker so the anomaly
// guard has a current-price reference and repeated lookups stay cheap.
type QuoteCache interface {
	Save(ctx context.Context, quote *models.PriceQuote) error
	// Get returns the cached quote for a ticker if one exists no older
	// than maxAge (maxAge <= 0 means any age). ErrKeyNotFound otherwise.
	Get(ctx context.Context, ticker string, maxAge time.Duration) (*models.PriceQuote, error)
}
