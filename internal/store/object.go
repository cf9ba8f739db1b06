package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
)

// Config configures the URL-addressed object store.
type Config struct {
	// BaseURL addresses the storage root, e.g. "file:///var/lib/assetd"
	// or "mem://localhost/assetd".
	BaseURL string
}

// DefaultConfig returns an in-memory store configuration, suitable for
// tests and demos.
func DefaultConfig() Config {
	return Config{BaseURL: "mem://localhost/assetd"}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if !strings.Contains(c.BaseURL, "://") {
		return fmt.Errorf("%w: base URL %q has no scheme", ErrInvalidConfig, c.BaseURL)
	}
	return nil
}

// objectStore implements Store on the afs abstract file storage service.
type objectStore struct {
	fs      afs.Service
	baseURL string
}

// New creates a URL-addressed object store.
func New(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &objectStore{
		fs:      afs.New(),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

func (s *objectStore) Put(ctx context.Context, key string, value []byte) error {
	keyURL, err := s.urlFor(key)
	if err != nil {
		return err
	}
	if err := s.fs.Upload(ctx, keyURL, 0o644, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *objectStore) Get(ctx context.Context, key string) ([]byte, error) {
	keyURL, err := s.urlFor(key)
	if err != nil {
		return nil, err
	}

	ok, err := s.fs.Exists(ctx, keyURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	data, err := s.fs.DownloadWithURL(ctx, keyURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

func (s *objectStore) Exists(ctx context.Context, key string) (bool, error) {
	keyURL, err := s.urlFor(key)
	if err != nil {
		return false, err
	}

	ok, err := s.fs.Exists(ctx, keyURL)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return ok, nil
}

func (s *objectStore) List(ctx context.Context, prefix string) ([]string, error) {
	prefixURL, err := s.urlFor(prefix)
	if err != nil {
		return nil, err
	}

	ok, err := s.fs.Exists(ctx, prefixURL)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	if !ok {
		return []string{}, nil
	}

	objects, err := s.fs.List(ctx, prefixURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	keys := make([]string, 0, len(objects))
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		key := strings.TrimPrefix(object.URL(), s.baseURL)
		keys = append(keys, strings.TrimPrefix(key, "/"))
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *objectStore) Delete(ctx context.Context, key string) error {
	keyURL, err := s.urlFor(key)
	if err != nil {
		return err
	}

	ok, err := s.fs.Exists(ctx, keyURL)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if !ok {
		return nil
	}

	if err := s.fs.Delete(ctx, keyURL); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *objectStore) Close() error {
	return s.fs.CloseAll()
}

// urlFor maps a key to its storage URL, rejecting keys that would escape
// the root.
func (s *objectStore) urlFor(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q contains parent traversal", ErrInvalidKey, key)
		}
	}
	return url.Join(s.baseURL, key), nil
}
