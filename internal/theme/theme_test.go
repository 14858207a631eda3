package theme

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPreferred(t *testing.T) {
	assert.Equal(t, Light, Preferred(Light, true, true))
	assert.Equal(t, Dark, Preferred("", false, true))
	assert.Equal(t, Light, Preferred("", false, false))
}

func TestToggle(t *testing.T) {
	assert.Equal(t, Dark, Light.Toggle())
	assert.Equal(t, Light, Dark.Toggle())
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "theme.json"))

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(Dark))
	got, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Dark, got)

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"theme": "dark"`)
}

func TestStoreIgnoresUnknownValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"sepia"}`), 0o644))

	_, ok, err := NewStore(path).Load()

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWatchSeesSaveFromAnotherStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.json")
	watcher, err := NewStore(path).Watch(zap.NewNop())
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, NewStore(path).Save(Light))

	select {
	case got := <-watcher.Changes():
		assert.Equal(t, Light, got)
	case <-time.After(5 * time.Second):
		t.Fatal("theme change was not observed")
	}
}
