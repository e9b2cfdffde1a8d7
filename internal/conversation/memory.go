package conversation

import (
	"context"
	"hash/fnv"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

const stripes = 64

// ring is a fixed-capacity buffer that overwrites its oldest turn when
// full.
type ring struct {
	buf   []model.Turn
	start int
	n     int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]model.Turn, capacity)}
}

func (r *ring) push(t model.Turn) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = t
		r.n++
		return
	}
	r.buf[r.start] = t
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) slice() []model.Turn {
	out := make([]model.Turn, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// MemoryStore keeps histories in process memory.  It is used when Redis is
// not configured or unreachable, and in tests.  Each user's record is a
// go-cache entry whose expiry is reset on every append.
type MemoryStore struct {
	c     *gocache.Cache
	opts  Options
	locks [stripes]sync.Mutex
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore(opts Options) *MemoryStore {
	opts = opts.withDefaults()
	return &MemoryStore{c: gocache.New(opts.TTL, opts.TTL/2), opts: opts}
}

func (s *MemoryStore) lock(userID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return &s.locks[h.Sum32()%stripes]
}

func (s *MemoryStore) History(_ context.Context, userID string) ([]model.Turn, error) {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	v, ok := s.c.Get(userID)
	if !ok {
		return []model.Turn{}, nil
	}
	return v.(*ring).slice(), nil
}

func (s *MemoryStore) Append(_ context.Context, userID string, turns ...model.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	var r *ring
	if v, ok := s.c.Get(userID); ok {
		r = v.(*ring)
	} else {
		r = newRing(s.opts.MaxTurns)
	}
	for _, t := range turns {
		r.push(t)
	}
	s.c.SetDefault(userID, r)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	mu := s.lock(userID)
	mu.Lock()
	defer mu.Unlock()
	s.c.Delete(userID)
	return nil
}
