package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// PortfolioStorage implements the PortfolioStorage interface for Badger
type PortfolioStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPortfolioStorage creates a new PortfolioStorage instance
func NewPortfolioStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PortfolioStorage {
	return &PortfolioStorage{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or updates a position. A missing ID gets a generated one;
// the ticker is normalized to its exchange-qualified form.
func (s *PortfolioStorage) Upsert(ctx context.Context, position *models.Position) error {
	if position == nil {
		return fmt.Errorf("position cannot be nil")
	}

	position.Ticker = common.ParseTicker(position.Ticker).String()
	if position.Ticker == "" {
		return fmt.Errorf("position requires a ticker")
	}

	now := time.Now()
	if position.ID == "" {
		position.ID = uuid.New().String()
		position.CreatedAt = now
	}
	position.UpdatedAt = now

	var existing models.Position
	if err := s.db.Store().Get(position.ID, &existing); err == nil {
		position.CreatedAt = existing.CreatedAt
	}

	if err := s.db.Store().Upsert(position.ID, position); err != nil {
		return fmt.Errorf("failed to upsert position: %w", err)
	}

	s.logger.Debug().
		Str("id", position.ID).
		Str("ticker", position.Ticker).
		Msg("Position upserted")

	return nil
}

// Get retrieves a position by ID
func (s *PortfolioStorage) Get(ctx context.Context, id string) (*models.Position, error) {
	var position models.Position
	err := s.db.Store().Get(id, &position)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrPositionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}
	return &position, nil
}

// GetByTicker retrieves a position by its exchange-qualified ticker
func (s *PortfolioStorage) GetByTicker(ctx context.Context, ticker string) (*models.Position, error) {
	normalized := common.ParseTicker(ticker).String()

	var positions []models.Position
	err := s.db.Store().Find(&positions, badgerhold.Where("Ticker").Eq(normalized).Index("Ticker"))
	if err != nil {
		return nil, fmt.Errorf("failed to find position by ticker: %w", err)
	}
	if len(positions) == 0 {
		return nil, interfaces.ErrPositionNotFound
	}
	return &positions[0], nil
}

// List returns all positions ordered by ticker
func (s *PortfolioStorage) List(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	err := s.db.Store().Find(&positions, badgerhold.Where("ID").Ne("").SortBy("Ticker"))
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	return positions, nil
}

// Delete removes a position by ID
func (s *PortfolioStorage) Delete(ctx context.Context, id string) error {
	err := s.db.Store().Delete(id, &models.Position{})
	if err == badgerhold.ErrNotFound {
		return interfaces.ErrPositionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	return nil
}
