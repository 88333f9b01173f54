package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a cron runner with named job registration. Jobs that
// are still running when their next tick fires are skipped, and panics
// inside a job never take the process down.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// NewScheduler creates a scheduler with second-precision cron expressions
func NewScheduler(logger *zap.Logger) *Scheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
			cron.Recover(cron.DefaultLogger),
		),
	)
	return &Scheduler{
		cron:   c,
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// AddJob registers a named job under a cron expression
func (s *Scheduler) AddJob(name, cronExpr string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		s.logger.Info("running scheduled job", zap.String("job", name))
		job()
		s.logger.Info("completed scheduled job", zap.String("job", name))
	})
	if err != nil {
		return fmt.Errorf("registering job %q: %w", name, err)
	}

	s.jobs[name] = entryID
	s.logger.Info("scheduled job registered",
		zap.String("job", name),
		zap.String("cron", cronExpr),
	)
	return nil
}

// RemoveJob unregisters a named job
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		s.logger.Info("scheduled job removed", zap.String("job", name))
	}
}

// GetJobNames lists the registered job names
func (s *Scheduler) GetJobNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop halts scheduling and returns a context that is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("scheduler stopping")
	return s.cron.Stop()
}
