// Package cache provides the read-through TTL caches used by the tool
// handlers.  One Service holds an independent key space per entity kind,
// each with its own expiry, and is constructed once at startup and passed
// to whoever needs it.
package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iliyamo/food-ordering-assistant/internal/config"
)

// Kind selects one of the cache key spaces.
type Kind string

const (
	Restaurant Kind = "restaurant"
	Menu       Kind = "menu"
	Item       Kind = "item"
)

// Kinds lists every cache kind.
var Kinds = []Kind{Restaurant, Menu, Item}

// ParseKind converts a string such as "menu" into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown cache kind %q", s)
}

type store struct {
	c      *gocache.Cache
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
}

// Service is a set of TTL caches keyed by Kind.  Expired entries are
// dropped lazily on read and by a background sweep.
type Service struct {
	stores map[Kind]*store
	logger *slog.Logger
}

// KindStats reports usage counters for one kind.
type KindStats struct {
	Keys    int           `json:"keys"`
	Entries []string      `json:"entries"`
	Hits    int64         `json:"hits"`
	Misses  int64         `json:"misses"`
	TTL     time.Duration `json:"ttl"`
}

// NewService builds a Service from cfg.  Non-positive TTLs fall back to the
// defaults of config.LoadCacheConfig.
func NewService(cfg config.CacheConfig) *Service {
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = 2 * time.Minute
	}
	ttls := map[Kind]time.Duration{
		Restaurant: orDefault(cfg.RestaurantTTL, time.Hour),
		Menu:       orDefault(cfg.MenuTTL, 30*time.Minute),
		Item:       orDefault(cfg.ItemTTL, 30*time.Minute),
	}
	s := &Service{
		stores: make(map[Kind]*store, len(ttls)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for k, ttl := range ttls {
		s.stores[k] = &store{c: gocache.New(ttl, sweep), ttl: ttl}
	}
	return s
}

// SetLogger makes GetOrFetch report hits, misses and fetch times at debug
// level.
func (s *Service) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (s *Service) store(kind Kind) *store {
	st, ok := s.stores[kind]
	if !ok {
		panic(fmt.Sprintf("cache: unknown kind %q", kind))
	}
	return st
}

// Get returns the cached value for key, if present and not expired.
func (s *Service) Get(kind Kind, key string) (any, bool) {
	st := s.store(kind)
	v, ok := st.c.Get(key)
	if ok {
		st.hits.Add(1)
	} else {
		st.misses.Add(1)
	}
	return v, ok
}

// Set stores value under key with the kind's TTL.
func (s *Service) Set(kind Kind, key string, value any) {
	s.store(kind).c.SetDefault(key, value)
}

// Invalidate removes key from kind and reports whether it was cached.  An
// empty key clears the whole kind.
func (s *Service) Invalidate(kind Kind, key string) bool {
	st := s.store(kind)
	if key == "" {
		st.c.Flush()
		return true
	}
	_, found := st.c.Get(key)
	st.c.Delete(key)
	return found
}

// InvalidateAll clears every kind.
func (s *Service) InvalidateAll() {
	for _, st := range s.stores {
		st.c.Flush()
	}
}

// Stats returns counters and the live keys of every kind.
func (s *Service) Stats() map[Kind]KindStats {
	out := make(map[Kind]KindStats, len(s.stores))
	for k, st := range s.stores {
		items := st.c.Items()
		entries := make([]string, 0, len(items))
		for key := range items {
			entries = append(entries, key)
		}
		sort.Strings(entries)
		out[k] = KindStats{
			Keys:    len(entries),
			Entries: entries,
			Hits:    st.hits.Load(),
			Misses:  st.misses.Load(),
			TTL:     st.ttl,
		}
	}
	return out
}

// GetOrFetch returns the cached value for key or, on a miss, calls fetch and
// caches its result.  Nil results are returned but not cached, so a lookup
// that found nothing is repeated on the next call.  Errors from fetch are
// returned unchanged and nothing is cached.  Concurrent misses for the same
// key may each call fetch; the last write wins.
func GetOrFetch[T any](ctx context.Context, s *Service, kind Kind, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := s.Get(kind, key); ok {
		if typed, ok := v.(T); ok {
			s.logger.Debug("cache hit", "kind", kind, "key", key)
			return typed, nil
		}
	}
	start := time.Now()
	v, err := fetch(ctx)
	s.logger.Debug("cache miss", "kind", kind, "key", key, "fetch", time.Since(start), "err", err)
	if err != nil {
		var zero T
		return zero, err
	}
	if !isNil(v) {
		s.Set(kind, key, v)
	}
	return v, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
