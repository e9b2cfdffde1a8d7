package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const defaultPreviewTTL = 15 * time.Minute

// Ledger remembers which orders a user has previewed so that createOrder
// can insist on a preview first.  It does not lock prices: the order is
// always re-priced from current catalog data.
type Ledger interface {
	// Record notes a successful preview.
	Record(ctx context.Context, key string) error
	// Take reports whether key was previewed and removes it, so one
	// preview authorizes one order.
	Take(ctx context.Context, key string) (bool, error)
}

// MemoryLedger is a Ledger local to one process.
type MemoryLedger struct {
	mu sync.Mutex
	c  *gocache.Cache
}

// NewMemoryLedger returns a ledger whose entries live for ttl.
func NewMemoryLedger(ttl time.Duration) *MemoryLedger {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	return &MemoryLedger{c: gocache.New(ttl, ttl)}
}

// previewLine is the part of a priced line that identifies an order.
type previewLine struct {
	ItemID         uint64
	Quantity       int
	Customizations []string
}

// fingerprint identifies an order independently of item order and of the
// case of customization names.
func fingerprint(userID string, restaurantID uint64, lines []previewLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		cs := make([]string, 0, len(l.Customizations))
		for _, c := range l.Customizations {
			cs = append(cs, strings.ToLower(strings.TrimSpace(c)))
		}
		sort.Strings(cs)
		parts = append(parts, fmt.Sprintf("%d x%d [%s]", l.ItemID, l.Quantity, strings.Join(cs, ",")))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s|%d|%s", userID, restaurantID, strings.Join(parts, ";"))
}

func (l *MemoryLedger) Record(_ context.Context, key string) error {
	l.c.SetDefault(key, struct{}{})
	return nil
}

func (l *MemoryLedger) Take(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.c.Get(key); !ok {
		return false, nil
	}
	l.c.Delete(key)
	return true, nil
}

// RedisLedger shares previews between replicas.  Entries are plain keys
// under "preview:<fingerprint>" with a TTL.
type RedisLedger struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLedger returns a Ledger backed by rdb.
func NewRedisLedger(rdb *redis.Client, ttl time.Duration) *RedisLedger {
	if ttl <= 0 {
		ttl = defaultPreviewTTL
	}
	return &RedisLedger{rdb: rdb, prefix: "preview", ttl: ttl}
}

func (l *RedisLedger) Record(ctx context.Context, key string) error {
	return l.rdb.Set(ctx, l.prefix+":"+key, 1, l.ttl).Err()
}

// Take uses GETDEL, so two replicas racing on one preview cannot both win.
func (l *RedisLedger) Take(ctx context.Context, key string) (bool, error) {
	err := l.rdb.GetDel(ctx, l.prefix+":"+key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("preview ledger: %w", err)
	}
	return true, nil
}
