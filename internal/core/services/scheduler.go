package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/core/ports/driving"
	"github.com/lumen-labs/engagekit/internal/logger"
)

// schedulerTick is how often the scheduler checks for due tasks.
const schedulerTick = time.Minute

// historyKeep is how many task results are retained per task.
const historyKeep = 100

// Scheduler runs the recurring background sync pass. Task state and
// execution history are persisted so an interrupted schedule resumes
// where it left off after relaunch.
type Scheduler struct {
	interval    time.Duration
	store       driven.SchedulerStore
	coordinator driving.SyncCoordinator

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler triggering a pass every interval.
func NewScheduler(
	interval time.Duration,
	store driven.SchedulerStore,
	coordinator driving.SyncCoordinator,
) *Scheduler {
	if interval <= 0 {
		interval = domain.DefaultSyncInterval
	}
	return &Scheduler{
		interval:    interval,
		store:       store,
		coordinator: coordinator,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.ensureTask(ctx); err != nil {
		logger.Warn("scheduler: initialising task: %v", err)
	}

	// Check for due tasks immediately on startup
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	// Wait for a running pass to complete
	s.wg.Wait()
	return nil
}

// ensureTask creates or updates the sync task in the store.
func (s *Scheduler) ensureTask(ctx context.Context) error {
	task, err := s.store.GetTask(ctx, domain.TaskIDStateSync)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       domain.TaskIDStateSync,
			Name:     "Engagement State Sync",
			Interval: s.interval,
			Enabled:  true,
			NextRun:  time.Now().Add(s.interval),
		}
	} else if task.Interval != s.interval {
		task.Interval = s.interval
		task.NextRun = time.Now().Add(s.interval)
	}

	return s.store.SaveTask(ctx, task)
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: listing tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single due task.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDStateSync:
			result.ItemsProcessed, err = s.runStateSync(ctx)
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Success = false
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}

		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("scheduler: saving task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("scheduler: recording result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, historyKeep); pruneErr != nil {
			logger.Warn("scheduler: pruning history: %v", pruneErr)
		}
	}()
}

// runStateSync runs one sync pass and counts participants with new data.
func (s *Scheduler) runStateSync(ctx context.Context) (int, error) {
	result, err := s.coordinator.Sync(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, r := range result.Results {
		if r == domain.SyncResultNewData {
			processed++
		}
	}
	if !result.Succeeded() {
		return processed, errors.New("pass completed with participant failures")
	}
	return processed, nil
}
