package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockKV implements driven.KeyValueStore for testing.
type mockKV struct {
	mu      sync.Mutex
	strings map[string]string
	ints    map[string]int
	setErr  error
	deletes []string
}

func newMockKV() *mockKV {
	return &mockKV{
		strings: make(map[string]string),
		ints:    make(map[string]int),
	}
}

func (m *mockKV) GetString(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.strings[key]
	return v, ok
}

func (m *mockKV) SetString(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.strings[key] = value
	return nil
}

func (m *mockKV) GetInt(key string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.ints[key]
	return v, ok
}

func (m *mockKV) SetInt(key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ints[key] = value
	return nil
}

func (m *mockKV) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.strings, key)
	delete(m.ints, key)
	m.deletes = append(m.deletes, key)
	return nil
}

// fakeTransport implements driven.GraphQLClient. The gate channel, when
// set, makes Query block until the test feeds it a token.
type fakeTransport struct {
	mu      sync.Mutex
	queries int
	err     error
	gate    chan struct{}
}

func (t *fakeTransport) Query(ctx context.Context, _ domain.SyncRequest) (json.RawMessage, error) {
	if t.gate != nil {
		select {
		case <-t.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.queries++
	if t.err != nil {
		return nil, t.err
	}
	return json.RawMessage(`{}`), nil
}

func (t *fakeTransport) Mutate(_ context.Context, _ domain.SyncRequest) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func (t *fakeTransport) queryCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.queries
}

// pageStep scripts one ProcessPage outcome.
type pageStep struct {
	changed    bool
	hasNext    bool
	endCursor  string
	err        error
	noPageInfo bool
}

// scriptedParticipant implements driven.SyncParticipant from a list of
// page steps. Once the script runs out the last step repeats.
type scriptedParticipant struct {
	name      string
	cursorKey string
	steps     []pageStep

	mu       sync.Mutex
	requests []string
	idx      int
}

func (p *scriptedParticipant) Name() string      { return p.name }
func (p *scriptedParticipant) CursorKey() string { return p.cursorKey }

func (p *scriptedParticipant) NextRequest(cursor string) domain.SyncRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, cursor)
	return domain.NewSyncRequest("query Test { test }", nil)
}

func (p *scriptedParticipant) ProcessPage(_ context.Context, _ json.RawMessage) (driven.PageResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	step := p.steps[len(p.steps)-1]
	if p.idx < len(p.steps) {
		step = p.steps[p.idx]
	}
	p.idx++

	if step.err != nil {
		return driven.PageResult{}, step.err
	}
	if step.noPageInfo {
		return driven.PageResult{Changed: step.changed}, nil
	}
	return driven.PageResult{
		PageInfo: &domain.PageInfo{HasNextPage: step.hasNext, EndCursor: step.endCursor},
		Changed:  step.changed,
	}, nil
}

func (p *scriptedParticipant) seenCursors() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	cursors := make([]string, len(p.requests))
	copy(cursors, p.requests)
	return cursors
}

// Ensure mocks implement interfaces
var (
	_ driven.KeyValueStore   = (*mockKV)(nil)
	_ driven.GraphQLClient   = (*fakeTransport)(nil)
	_ driven.SyncParticipant = (*scriptedParticipant)(nil)
)

// ==================== Pager Tests ====================

func TestPager_Run_SinglePageNewData(t *testing.T) {
	kv := newMockKV()
	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps:     []pageStep{{changed: true, hasNext: false}},
	}
	pager := NewPager(&fakeTransport{}, kv)

	result := pager.Run(context.Background(), participant)

	assert.Equal(t, domain.SyncResultNewData, result)
	assert.Equal(t, []string{""}, participant.seenCursors())
	// Cursor cleared after pagination exhausted
	assert.Contains(t, kv.deletes, "sync.testCursor")
}

func TestPager_Run_AdvancesCursorAcrossPages(t *testing.T) {
	kv := newMockKV()
	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps: []pageStep{
			{changed: true, hasNext: true, endCursor: "c1"},
			{changed: true, hasNext: true, endCursor: "c2"},
			{changed: true, hasNext: false},
		},
	}
	pager := NewPager(&fakeTransport{}, kv)

	result := pager.Run(context.Background(), participant)

	assert.Equal(t, domain.SyncResultNewData, result)
	assert.Equal(t, []string{"", "c1", "c2"}, participant.seenCursors())

	// The final page clears the cursor
	_, exists := kv.GetString("sync.testCursor")
	assert.False(t, exists)
	assert.Contains(t, kv.deletes, "sync.testCursor")
}

func TestPager_Run_ResumesFromStoredCursor(t *testing.T) {
	kv := newMockKV()
	require.NoError(t, kv.SetString("sync.testCursor", "c5"))

	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps:     []pageStep{{changed: true, hasNext: false}},
	}
	pager := NewPager(&fakeTransport{}, kv)

	pager.Run(context.Background(), participant)

	assert.Equal(t, []string{"c5"}, participant.seenCursors())
}

func TestPager_Run_TransportFailure(t *testing.T) {
	kv := newMockKV()
	require.NoError(t, kv.SetString("sync.testCursor", "c5"))

	participant := &scriptedParticipant{name: "test", cursorKey: "sync.testCursor"}
	pager := NewPager(&fakeTransport{err: errors.New("boom")}, kv)

	result := pager.Run(context.Background(), participant)

	assert.Equal(t, domain.SyncResultFailed, result)
	// The stored cursor survives a failed pass untouched
	cursor, exists := kv.GetString("sync.testCursor")
	assert.True(t, exists)
	assert.Equal(t, "c5", cursor)
}

func TestPager_Run_ProcessPageFailure(t *testing.T) {
	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps:     []pageStep{{err: errors.New("decode failed")}},
	}
	pager := NewPager(&fakeTransport{}, newMockKV())

	result := pager.Run(context.Background(), participant)
	assert.Equal(t, domain.SyncResultFailed, result)
}

func TestPager_Run_MissingPageInfoFails(t *testing.T) {
	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps:     []pageStep{{changed: true, noPageInfo: true}},
	}
	pager := NewPager(&fakeTransport{}, newMockKV())

	result := pager.Run(context.Background(), participant)
	assert.Equal(t, domain.SyncResultFailed, result)
}

func TestPager_Run_UnchangedFirstPageIsNoData(t *testing.T) {
	kv := newMockKV()
	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps:     []pageStep{{changed: false, hasNext: true, endCursor: "c1"}},
	}
	pager := NewPager(&fakeTransport{}, kv)

	result := pager.Run(context.Background(), participant)

	assert.Equal(t, domain.SyncResultNoData, result)
	// No merge happened, so no cursor was written
	_, exists := kv.GetString("sync.testCursor")
	assert.False(t, exists)
}

func TestPager_Run_UnchangedAfterMergeIsNewData(t *testing.T) {
	kv := newMockKV()
	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps: []pageStep{
			{changed: true, hasNext: true, endCursor: "c1"},
			{changed: false, hasNext: true, endCursor: "c2"},
		},
	}
	pager := NewPager(&fakeTransport{}, kv)

	result := pager.Run(context.Background(), participant)

	assert.Equal(t, domain.SyncResultNewData, result)
	// The cursor stays where the last merge left it
	cursor, exists := kv.GetString("sync.testCursor")
	assert.True(t, exists)
	assert.Equal(t, "c1", cursor)
}

func TestPager_Run_CursorWriteFailureIsNonFatal(t *testing.T) {
	kv := newMockKV()
	kv.setErr = errors.New("disk full")

	participant := &scriptedParticipant{
		name:      "test",
		cursorKey: "sync.testCursor",
		steps: []pageStep{
			{changed: true, hasNext: true, endCursor: "c1"},
			{changed: true, hasNext: false},
		},
	}
	pager := NewPager(&fakeTransport{}, kv)

	result := pager.Run(context.Background(), participant)
	assert.Equal(t, domain.SyncResultNewData, result)
}
