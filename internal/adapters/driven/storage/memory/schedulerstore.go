package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// Ensure SchedulerStore implements the interface.
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore is an in-memory implementation of driven.SchedulerStore.
type SchedulerStore struct {
	mu      sync.RWMutex
	tasks   map[string]domain.ScheduledTask
	results map[string][]domain.TaskResult
}

// NewSchedulerStore creates an empty in-memory scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{
		tasks:   make(map[string]domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

// GetTask retrieves a scheduled task by ID.
// Returns nil and no error if the task does not exist.
func (s *SchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// ListTasks returns all scheduled tasks.
func (s *SchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]domain.ScheduledTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// SaveTask persists a task's state.
func (s *SchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = *task
	return nil
}

// RecordResult logs a task execution result.
func (s *SchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.TaskID] = append(s.results[result.TaskID], *result)
	return nil
}

// GetTaskHistory returns recent results for a task, most recent first.
func (s *SchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]domain.TaskResult, len(s.results[taskID]))
	copy(history, s.results[taskID])
	sort.Slice(history, func(i, j int) bool {
		return history[i].StartedAt.After(history[j].StartedAt)
	})

	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

// PruneHistory keeps the most recent 'keep' results per task.
func (s *SchedulerStore) PruneHistory(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for taskID, results := range s.results {
		if len(results) <= keep {
			continue
		}
		sort.Slice(results, func(i, j int) bool {
			return results[i].StartedAt.After(results[j].StartedAt)
		})
		s.results[taskID] = results[:keep]
	}
	return nil
}
