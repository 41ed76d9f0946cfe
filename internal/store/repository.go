package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Repository loads store settings.
type Repository interface {
	// Get returns the settings of one store, or ErrStoreNotFound.
	Get(ctx context.Context, storeID string) (*Settings, error)

	// List returns the IDs of every known store.
	List(ctx context.Context) ([]string, error)
}

// FileRepository reads one settings file per store from a directory.
// Files are named <storeID>.json, <storeID>.yaml or <storeID>.yml.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a repository over dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

var settingsExtensions = []string{".json", ".yaml", ".yml"}

// Get reads and decodes the settings file of storeID.
func (r *FileRepository) Get(ctx context.Context, storeID string) (*Settings, error) {
	id, err := NormalizeStoreID(storeID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, ext := range settingsExtensions {
		path := filepath.Join(r.dir, id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		format, _ := FormatFromPath(path)
		s, err := Decode(data, format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return withStoreID(s, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, id)
}

// List returns the store IDs of every settings file in the directory.
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.dir, err)
	}

	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFromPath(e.Name()); !ok {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MemoryRepository keeps settings in memory. Put replaces a store's settings
// in place, which makes it the repository of choice in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	settings map[string]*Settings
}

// NewMemoryRepository creates a repository holding the given settings.
func NewMemoryRepository(settings ...*Settings) *MemoryRepository {
	r := &MemoryRepository{settings: make(map[string]*Settings, len(settings))}
	for _, s := range settings {
		r.Put(s)
	}
	return r
}

// Put adds or replaces a store's settings.
func (r *MemoryRepository) Put(s *Settings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[strings.ToLower(s.StoreID)] = s
}

// Delete removes a store.
func (r *MemoryRepository) Delete(storeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.settings, strings.ToLower(storeID))
}

// Get returns a copy of the store's settings.
func (r *MemoryRepository) Get(ctx context.Context, storeID string) (*Settings, error) {
	id, err := NormalizeStoreID(storeID)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, id)
	}
	cp := *s
	return &cp, nil
}

// List returns the stored IDs in sorted order.
func (r *MemoryRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.settings))
	for id := range r.settings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func withStoreID(s *Settings, id string) (*Settings, error) {
	switch strings.ToLower(s.StoreID) {
	case "":
		s.StoreID = id
	case id:
	default:
		return nil, fmt.Errorf("%w: record store id %q does not match %q", ErrInvalidSettings, s.StoreID, id)
	}
	return s, nil
}
