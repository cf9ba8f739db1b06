package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForReload(t *testing.T, w *Watcher) ReloadEvent {
	t.Helper()
	select {
	case event := <-w.Events():
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for catalog reload")
		return ReloadEvent{}
	}
}

func TestWatcher_ManifestChange(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, KindData, "sample_data", "name = \"v1\"\n")

	catalog, err := LoadCatalog(root)
	require.NoError(t, err)

	watcher, err := NewWatcher(catalog, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	// Give the watches time to register.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("name = \"v2\"\n"), 0o600))

	event := waitForReload(t, watcher)
	assert.Equal(t, 1, event.Assets)

	m, err := catalog.Get(KindData, "sample_data")
	require.NoError(t, err)
	assert.Equal(t, "v2", m.Name)
}

func TestWatcher_NewAsset(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, KindData, "sample_data", "name = \"Sample data\"\n")

	catalog, err := LoadCatalog(root)
	require.NoError(t, err)
	require.Equal(t, 1, catalog.Len())

	watcher, err := NewWatcher(catalog, zap.NewNop())
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	time.Sleep(50 * time.Millisecond)

	// A new asset arrives: directory first, then its manifest.
	assetDir := filepath.Join(root, "data", "reference_data")
	require.NoError(t, os.MkdirAll(assetDir, 0o755))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(assetDir, FileName), []byte("name = \"Reference\"\n"), 0o600))

	deadline := time.After(2 * time.Second)
	for catalog.Len() != 2 {
		select {
		case <-watcher.Events():
		case <-deadline:
			t.Fatalf("catalog never picked up new asset, len=%d", catalog.Len())
		}
	}

	m, err := catalog.Get(KindData, "reference_data")
	require.NoError(t, err)
	assert.Equal(t, "Reference", m.Name)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	catalog, err := LoadCatalog(t.TempDir())
	require.NoError(t, err)

	watcher, err := NewWatcher(catalog, nil)
	require.NoError(t, err)

	watcher.Stop()
	watcher.Stop()
}
