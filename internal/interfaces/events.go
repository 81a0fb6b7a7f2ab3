package interfaces

import "context"

// EventType represents different event types in the system
type EventType string

const (
	// EventQuotaExceeded fires when an upstream provider reports quota
	// exhaustion. Payload is the engine/model identifier string.
	EventQuotaExceeded EventType = "quota_exceeded"
	// EventAIStatusChanged fires when AI features are disabled or re-enabled.
	EventAIStatusChanged EventType = "ai_status_changed"
	// EventPortfolioRefreshed fires when a portfolio quote refresh completes.
	// Payload is a *models.RefreshSummary.
	EventPortfolioRefreshed EventType = "portfolio_refreshed"
	// EventQuoteUpdated fires for each successfully refreshed quote.
	// Payload is a *models.PriceQuote.
	EventQuoteUpdated EventType = "quote_updated"
)

// Event represents a system event
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages the pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes an event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
