package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// sweepInterval is how often Record looks for idle keys to evict.
const sweepInterval = time.Minute

// RateLimitMemoryStore is a sliding-window ratelimit.Store for a single
// process. Keys with no request inside their window are evicted.
type RateLimitMemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*hitWindow
	now       func() time.Time
	lastSweep time.Time
}

// hitWindow holds request times for one key, oldest first.
type hitWindow struct {
	hits   []time.Time
	length time.Duration
}

// live drops hits older than the window and returns what is left.
func (w *hitWindow) live(now time.Time) []time.Time {
	cutoff := now.Add(-w.length)
	first := sort.Search(len(w.hits), func(i int) bool { return w.hits[i].After(cutoff) })
	w.hits = w.hits[first:]

	return w.hits
}

func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		windows: make(map[string]*hitWindow),
		now:     time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok {
		w = &hitWindow{}
		s.windows[key] = w
	}

	w.length = window
	w.hits = append(w.live(now), now)

	return int64(len(w.hits)), nil
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}

	s.lastSweep = now

	for key, w := range s.windows {
		if len(w.live(now)) == 0 {
			delete(s.windows, key)
		}
	}
}
