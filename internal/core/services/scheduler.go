package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
	"github.com/custodia-labs/tgindex/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// maxHistory is the number of task results kept.
const maxHistory = 100

// Scheduler periodically runs an incremental pass over every source of a
// user. Live events dropped while the session was down are picked up from
// the watermark; documents already indexed are skipped by deduplication.
type Scheduler struct {
	indexer driving.Indexer
	userID  int64

	mu      sync.Mutex
	task    domain.ScheduledTask
	history []domain.TaskResult
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler. An interval <= 0 disables the task.
func NewScheduler(indexer driving.Indexer, userID int64, interval time.Duration) *Scheduler {
	return &Scheduler{
		indexer: indexer,
		userID:  userID,
		task: domain.ScheduledTask{
			ID:       domain.TaskIDCatchUp,
			Name:     "Catch-up indexing",
			Interval: interval,
			Enabled:  interval > 0 && indexer != nil,
		},
	}
}

// Start runs a catch-up pass immediately and then once per interval.
// It blocks until ctx is cancelled or Stop is called, and returns at once
// when the task is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running || !s.task.Enabled {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	interval := s.task.Interval
	s.mu.Unlock()

	logger.Debug("scheduler: catch-up every %s for user %d", interval, s.userID)
	s.runTask(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runTask(ctx)
		}
	}
}

// Stop ends a running Start loop.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)
	return nil
}

// Task returns a copy of the catch-up task state.
func (s *Scheduler) Task() domain.ScheduledTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task
}

// History returns the most recent task results, oldest first.
func (s *Scheduler) History() []domain.TaskResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TaskResult(nil), s.history...)
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
}

// runTask executes one catch-up pass and records its outcome.
func (s *Scheduler) runTask(ctx context.Context) {
	result := domain.TaskResult{
		TaskID:    domain.TaskIDCatchUp,
		StartedAt: time.Now(),
	}

	results, err := s.indexer.IndexAll(ctx, s.userID, 0)
	result.EndedAt = time.Now()
	result.Sources = len(results)
	for i := range results {
		result.ItemsProcessed += results[i].Indexed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		result.Error = err.Error()
		s.task.LastError = result.Error
		logger.Warn("scheduler: catch-up failed: %v", err)
	} else {
		result.Success = true
		s.task.LastError = ""
		s.task.LastSuccess = result.EndedAt
		if result.ItemsProcessed > 0 {
			logger.Info("scheduler: catch-up indexed %d file(s) from %d source(s)", result.ItemsProcessed, result.Sources)
		}
	}

	s.task.LastRun = result.StartedAt
	s.task.NextRun = result.EndedAt.Add(s.task.Interval)

	s.history = append(s.history, result)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
}
