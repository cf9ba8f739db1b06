package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Catalog holds the manifests of a project, keyed by kind and asset ID.
// It is safe for concurrent use; Reload swaps the whole snapshot.
type Catalog struct {
	root string

	mu     sync.RWMutex
	assets map[Kind]map[string]*Manifest
}

// LoadCatalog scans the asset trees under root and returns the catalog.
// A missing data/ or models/ directory is not an error; projects may
// declare only one kind of asset.
func LoadCatalog(root string) (*Catalog, error) {
	c := &Catalog{root: root}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Root returns the directory the catalog scans.
func (c *Catalog) Root() string {
	return c.root
}

// Reload rescans both asset trees and replaces the catalog contents.
func (c *Catalog) Reload() error {
	assets := map[Kind]map[string]*Manifest{
		KindData:  {},
		KindModel: {},
	}

	for _, kind := range []Kind{KindData, KindModel} {
		dir := filepath.Join(c.root, kind.Dir())
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("scan %s: %w", dir, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name(), FileName)
			if _, err := os.Stat(path); err != nil {
				// Directories without a manifest are not assets.
				continue
			}
			m, err := Load(path, kind)
			if err != nil {
				return err
			}
			assets[kind][m.ID] = m
		}
	}

	c.mu.Lock()
	c.assets = assets
	c.mu.Unlock()
	return nil
}

// Get returns the manifest for an asset, or ErrNotFound.
func (c *Catalog) Get(kind Kind, id string) (*Manifest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.assets[kind][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, kind, id)
	}
	return m, nil
}

// List returns the manifests of one kind, sorted by asset ID.
func (c *Catalog) List(kind Kind) []*Manifest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Manifest, 0, len(c.assets[kind]))
	for _, m := range c.assets[kind] {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Len returns the total number of assets across both kinds.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets[KindData]) + len(c.assets[KindModel])
}

// StaticAnnotations returns a copy of the declared annotations for an
// asset, or an empty map when the asset is not in the catalog. Dynamic
// registration annotations are merged on top by the caller.
func (c *Catalog) StaticAnnotations(kind Kind, id string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := map[string]string{}
	if m, ok := c.assets[kind][id]; ok {
		for k, v := range m.Annotations {
			result[k] = v
		}
	}
	return result
}
