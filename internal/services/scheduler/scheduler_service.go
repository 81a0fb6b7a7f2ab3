package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name      string
	schedule  string
	handler   func(ctx context.Context) error
	cronID    cron.EntryID
	lastRun   *time.Time
	lastError string
	isRunning bool
}

// JobStatus is a read-only snapshot of a registered job.
type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	IsRunning bool       `json:"is_running"`
	LastError string     `json:"last_error,omitempty"`
}

// Service runs registered jobs on cron schedules. A job that is still
// running when its schedule fires again is skipped, not overlapped.
type Service struct {
	cron    *cron.Cron
	logger  arbor.ILogger
	mu      sync.Mutex
	jobs    map[string]*jobEntry
	running bool
}

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// Register adds a named job on a cron schedule. An empty schedule registers
// nothing; the job stays invocable via RunNow only.
func (s *Service) Register(name, schedule string, handler func(ctx context.Context) error) error {
	if name == "" || handler == nil {
		return fmt.Errorf("job requires a name and handler")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	entry := &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
	}

	if schedule != "" {
		cronID, err := s.cron.AddFunc(schedule, func() { s.run(entry) })
		if err != nil {
			return fmt.Errorf("invalid cron schedule %q for job %s: %w", schedule, name, err)
		}
		entry.cronID = cronID
	}

	s.jobs[name] = entry

	s.logger.Info().
		Str("job", name).
		Str("schedule", schedule).
		Msg("Scheduler job registered")

	return nil
}

// RunNow triggers a registered job immediately, subject to the same
// overlap suppression as scheduled runs.
func (s *Service) RunNow(name string) error {
	s.mu.Lock()
	entry, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not registered", name)
	}

	go s.run(entry)
	return nil
}

func (s *Service) run(entry *jobEntry) {
	s.mu.Lock()
	if entry.isRunning {
		s.mu.Unlock()
		s.logger.Warn().
			Str("job", entry.name).
			Msg("Skipping scheduled run, previous run still in progress")
		return
	}
	entry.isRunning = true
	s.mu.Unlock()

	started := time.Now()
	s.logger.Info().Str("job", entry.name).Msg("Scheduler job starting")

	err := entry.handler(context.Background())

	s.mu.Lock()
	entry.isRunning = false
	entry.lastRun = &started
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn().
			Str("job", entry.name).
			Err(err).
			Dur("duration", time.Since(started)).
			Msg("Scheduler job failed")
		return
	}

	s.logger.Info().
		Str("job", entry.name).
		Dur("duration", time.Since(started)).
		Msg("Scheduler job completed")
}

// Start begins executing registered schedules.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop halts the scheduler, waiting for in-flight runs to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// Jobs returns a snapshot of all registered jobs.
func (s *Service) Jobs() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, entry := range s.jobs {
		jobStatus := JobStatus{
			Name:      entry.name,
			Schedule:  entry.schedule,
			LastRun:   entry.lastRun,
			IsRunning: entry.isRunning,
			LastError: entry.lastError,
		}
		if entry.cronID != 0 {
			next := s.cron.Entry(entry.cronID).Next
			if !next.IsZero() {
				jobStatus.NextRun = &next
			}
		}
		out = append(out, jobStatus)
	}
	return out
}
