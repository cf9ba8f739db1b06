// Package integration holds end-to-end tests that wire the asset service,
// HTTP API, and workflows together the way the deployed system runs them.
package integration

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/assetd/internal/assets"
	"github.com/fyrsmithlabs/assetd/internal/manifest"
	"github.com/fyrsmithlabs/assetd/internal/store"
)

// writeProjectLayout lays out a project root holding a project.toml and
// manifests for one data asset and one model asset.
func writeProjectLayout(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"project.toml": `project = "integration-demo"

[dev-assets]
branch = "user.producer"
`,
		"data/sample_data/asset_config.toml": `name = "Sample Data"

[annotations]
owner = "pipeline-team"
`,
		"models/sample_model/asset_config.toml": `name = "Sample Model"

[annotations]
framework = "sklearn"
`,
	}

	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// createTestCatalog loads a manifest catalog from a temp project layout.
func createTestCatalog(t *testing.T) *manifest.Catalog {
	t.Helper()

	catalog, err := manifest.LoadCatalog(writeProjectLayout(t))
	require.NoError(t, err, "Should load manifest catalog")
	return catalog
}

// createTestService builds an asset service over an in-memory object
// store and the test catalog.
func createTestService(t *testing.T) (assets.Service, *manifest.Catalog) {
	t.Helper()

	catalog := createTestCatalog(t)

	objects, err := store.New(store.Config{
		BaseURL: fmt.Sprintf("mem://localhost/integration-test/%s", t.Name()),
	})
	require.NoError(t, err, "Should create object store")
	t.Cleanup(func() { _ = objects.Close() })

	svc, err := assets.NewService(nil, objects, catalog, nil, zap.NewNop())
	require.NoError(t, err, "Should create asset service")
	t.Cleanup(func() { _ = svc.Close() })

	return svc, catalog
}
