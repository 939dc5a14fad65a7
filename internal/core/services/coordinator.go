package services

import (
	"context"
	"sync"
	"time"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/core/ports/driving"
	"github.com/lumen-labs/engagekit/internal/eventqueue"
	"github.com/lumen-labs/engagekit/internal/logger"
)

// Ensure Coordinator implements the interface.
var _ driving.SyncCoordinator = (*Coordinator)(nil)

// Coordinator runs sync passes across all registered participants.
// Participants own disjoint stores and cursor keys, so they run
// concurrently within a pass; passes themselves are serialised, and
// extra triggers during a running pass coalesce into at most one
// pending follow-up pass.
type Coordinator struct {
	pager        *Pager
	participants []driven.SyncParticipant
	queue        *eventqueue.Queue

	// passMu serialises whole passes: two passes must never walk the
	// same cursor keys concurrently.
	passMu sync.Mutex

	mu         sync.Mutex
	running    bool
	pending    bool
	lastResult *driving.PassResult
}

// NewCoordinator creates a coordinator. The event queue is optional;
// when present a PassCompletedEvent is published after every pass.
func NewCoordinator(
	pager *Pager,
	participants []driven.SyncParticipant,
	queue *eventqueue.Queue,
) *Coordinator {
	return &Coordinator{
		pager:        pager,
		participants: participants,
		queue:        queue,
	}
}

// Sync runs one pass and blocks until it completes. Concurrent callers
// queue behind the running pass.
func (c *Coordinator) Sync(ctx context.Context) (*driving.PassResult, error) {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.setRunning(true)
	defer c.setRunning(false)

	result := c.runPass(ctx)

	c.mu.Lock()
	c.lastResult = result
	c.mu.Unlock()

	if c.queue != nil {
		_ = c.queue.Publish(domain.PassCompletedEvent{
			Succeeded:   result.Succeeded(),
			Results:     result.Results,
			CompletedAt: result.CompletedAt,
		})
	}

	return result, ctx.Err()
}

// SyncAsync triggers a pass without waiting. A trigger during a running
// pass coalesces: at most one follow-up pass runs when the current one
// finishes, no matter how many triggers arrived.
func (c *Coordinator) SyncAsync(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	go func() {
		for {
			if _, err := c.Sync(ctx); err != nil {
				logger.Debug("async pass aborted: %v", err)
				return
			}

			c.mu.Lock()
			if !c.pending {
				c.mu.Unlock()
				return
			}
			c.pending = false
			c.mu.Unlock()
		}
	}()
}

// Status reports whether a pass is running and the last completed result.
func (c *Coordinator) Status() driving.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return driving.Status{
		Running:    c.running,
		Pending:    c.pending,
		LastResult: c.lastResult,
	}
}

// runPass pages every participant to its terminal state. A participant
// failing never aborts the others; the aggregate result records the
// partial failure.
func (c *Coordinator) runPass(ctx context.Context) *driving.PassResult {
	logger.Info("starting sync pass across %d participant(s)", len(c.participants))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]domain.SyncResult, len(c.participants))
	)

	for _, participant := range c.participants {
		wg.Add(1)
		go func(p driven.SyncParticipant) {
			defer wg.Done()
			result := c.pager.Run(ctx, p)

			mu.Lock()
			results[p.Name()] = result
			mu.Unlock()

			logger.Debug("%s: terminal result %s", p.Name(), result)
		}(participant)
	}
	wg.Wait()

	result := &driving.PassResult{
		Results:     results,
		CompletedAt: time.Now(),
	}
	logger.Info("sync pass complete, succeeded=%t", result.Succeeded())
	return result
}

// setRunning updates the running flag.
func (c *Coordinator) setRunning(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = running
}
