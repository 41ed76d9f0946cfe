package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tournevent/shiprate/pkg/shipping"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Registry caches one calculator per store. Calculators are immutable, so a
// cached one can be shared by concurrent requests until it expires or is
// invalidated.
type Registry struct {
	repo        Repository
	defaults    Defaults
	cache       *gocache.Cache
	loads       singleflight.Group
	concurrency int
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaults sets the values used for settings a store left empty.
func WithDefaults(d Defaults) RegistryOption {
	return func(r *Registry) {
		r.defaults = d
	}
}

// WithCache sets how long calculators are kept and how often expired ones are swept.
// A ttl of gocache.NoExpiration keeps them until invalidated.
func WithCache(ttl, cleanupInterval time.Duration) RegistryOption {
	return func(r *Registry) {
		r.cache = gocache.New(ttl, cleanupInterval)
	}
}

// WithPreloadConcurrency bounds the number of stores Preload loads at once.
func WithPreloadConcurrency(n int) RegistryOption {
	return func(r *Registry) {
		r.concurrency = n
	}
}

// NewRegistry creates a registry backed by repo.
func NewRegistry(repo Repository, opts ...RegistryOption) *Registry {
	r := &Registry{
		repo: repo,
		defaults: Defaults{
			Currency:   "USD",
			Country:    "US",
			WeightUnit: shipping.WeightKG,
		},
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = gocache.New(10*time.Minute, 20*time.Minute)
	}
	return r
}

// loadTimeout bounds a shared settings load.
const loadTimeout = 30 * time.Second

// Calculator returns the store's calculator, loading its settings on a miss.
// Concurrent misses for the same store share one load, which runs detached
// from the cancellation of the caller that started it.
func (r *Registry) Calculator(ctx context.Context, storeID string) (*shipping.Calculator, error) {
	id, err := NormalizeStoreID(storeID)
	if err != nil {
		return nil, err
	}
	if v, ok := r.cache.Get(id); ok {
		return v.(*shipping.Calculator), nil
	}

	v, err, _ := r.loads.Do(id, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		calc, err := r.load(loadCtx, id)
		if err != nil {
			return nil, err
		}
		r.cache.SetDefault(id, calc)
		return calc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*shipping.Calculator), nil
}

// Settings loads a store's settings with defaults applied, bypassing the cache.
func (r *Registry) Settings(ctx context.Context, storeID string) (*Settings, error) {
	s, err := r.repo.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	s.ApplyDefaults(r.defaults)
	return s, nil
}

func (r *Registry) load(ctx context.Context, id string) (*shipping.Calculator, error) {
	s, err := r.Settings(ctx, id)
	if err != nil {
		return nil, err
	}
	calc, err := s.Calculator()
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", id, err)
	}
	return calc, nil
}

// Invalidate drops the cached calculator of a store so its next request
// reloads the settings.
func (r *Registry) Invalidate(storeID string) {
	id, err := NormalizeStoreID(storeID)
	if err != nil {
		return
	}
	r.cache.Delete(id)
}

// Flush drops every cached calculator.
func (r *Registry) Flush() {
	r.cache.Flush()
}

// Count returns the number of cached calculators, including expired ones not
// yet swept.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}

// Cached returns the IDs of the stores with a live cached calculator.
func (r *Registry) Cached() []string {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Preload loads the calculators of storeIDs in parallel, or of every store
// in the repository when storeIDs is empty. A store that fails to load does
// not stop the others; all failures are returned joined.
func (r *Registry) Preload(ctx context.Context, storeIDs ...string) error {
	if len(storeIDs) == 0 {
		ids, err := r.repo.List(ctx)
		if err != nil {
			return err
		}
		storeIDs = ids
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, ctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for _, id := range storeIDs {
		id := id
		g.Go(func() error {
			if _, err := r.Calculator(ctx, id); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	g.Wait()
	return errors.Join(errs...)
}
