package status

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/aierrors"
	"github.com/ternarybob/augur/internal/interfaces"
)

// AIStatus is a snapshot of AI feature availability.
type AIStatus struct {
	Enabled    bool      `json:"enabled"`
	Reason     string    `json:"reason,omitempty"`
	Engine     string    `json:"engine,omitempty"`
	DisabledAt time.Time `json:"disabled_at,omitempty"`
}

// Service tracks whether AI features are available. A quota-exhaustion
// failure disables them process-wide until a user re-enables; all other
// error kinds leave the gate untouched.
type Service struct {
	mu           sync.RWMutex
	status       AIStatus
	eventService interfaces.EventService
	logger       arbor.ILogger
}

// NewService creates a status service with AI features enabled.
func NewService(eventService interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		status:       AIStatus{Enabled: true},
		eventService: eventService,
		logger:       logger,
	}
}

// AIStatus returns the current availability snapshot (thread-safe).
func (s *Service) AIStatus() AIStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// AIEnabled reports whether AI-backed operations may run.
func (s *Service) AIEnabled() bool {
	return s.AIStatus().Enabled
}

// ObserveError inspects a classified failure and disables AI features on
// quota exhaustion. Returns true when the observation flipped the gate.
func (s *Service) ObserveError(ctx context.Context, err error) bool {
	ce, ok := aierrors.AsClassified(err)
	if !ok || ce.Kind != aierrors.KindQuotaExceeded {
		return false
	}

	s.mu.Lock()
	if !s.status.Enabled {
		s.mu.Unlock()
		return false
	}
	s.status = AIStatus{
		Enabled:    false,
		Reason:     ce.Message,
		Engine:     ce.Engine,
		DisabledAt: time.Now(),
	}
	snapshot := s.status
	s.mu.Unlock()

	s.logger.Warn().
		Str("engine", snapshot.Engine).
		Msg("AI features disabled after quota exhaustion")

	if s.eventService != nil {
		_ = s.eventService.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventQuotaExceeded,
			Payload: snapshot.Engine,
		})
		_ = s.eventService.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventAIStatusChanged,
			Payload: snapshot,
		})
	}

	return true
}

// EnableAI re-enables AI features after user intervention.
func (s *Service) EnableAI(ctx context.Context) {
	s.mu.Lock()
	if s.status.Enabled {
		s.mu.Unlock()
		return
	}
	s.status = AIStatus{Enabled: true}
	snapshot := s.status
	s.mu.Unlock()

	s.logger.Info().Msg("AI features re-enabled")

	if s.eventService != nil {
		_ = s.eventService.Publish(ctx, interfaces.Event{
			Type:    interfaces.EventAIStatusChanged,
			Payload: snapshot,
		})
	}
}
