package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/eventqueue"
)

func TestWatcher_PublishesConfigChange(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	queue := eventqueue.New()
	defer queue.Close()
	sub, err := queue.Subscribe(4)
	require.NoError(t, err)
	defer sub.Cancel()

	watcher, err := NewWatcher(store, queue)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, store.Save(domain.Settings{
		Endpoint: "https://api.example.com/graphql",
		Verbose:  true,
	}))

	select {
	case event := <-sub.C:
		changed, ok := event.(domain.ConfigChangedEvent)
		require.True(t, ok)
		assert.Equal(t, "https://api.example.com/graphql", changed.Settings.Endpoint)
		assert.True(t, changed.Settings.Verbose)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a ConfigChangedEvent after the settings file changed")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSettingsStore(dir)
	require.NoError(t, err)

	queue := eventqueue.New()
	defer queue.Close()
	sub, err := queue.Subscribe(4)
	require.NoError(t, err)
	defer sub.Cancel()

	watcher, err := NewWatcher(store, queue)
	require.NoError(t, err)
	defer watcher.Close()

	// A sibling file in the config directory is not the settings file
	prefs, err := NewPrefsStore(dir)
	require.NoError(t, err)
	require.NoError(t, prefs.SetString("key", "value"))

	select {
	case event := <-sub.C:
		t.Fatalf("unexpected event %T", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseStopsLoop(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	watcher, err := NewWatcher(store, eventqueue.New())
	require.NoError(t, err)
	assert.NoError(t, watcher.Close())
}
