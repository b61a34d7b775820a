// Package store keeps finished backtest runs addressable by id.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"regime-rotation/internal/backtest"
)

// Run is a stored backtest result.
type Run struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"expires_at"`
	Result    *backtest.Result `json:"-"`
}

// Persister writes runs to durable storage.
type Persister interface {
	Save(ctx context.Context, id string, createdAt time.Time, res *backtest.Result) error
}

// RunStore is an in-memory TTL store of backtest runs. Expired runs are
// invisible to Get and removed by a background sweep until Close.
type RunStore struct {
	mu      sync.RWMutex
	runs    map[string]*Run
	ttl     time.Duration
	maxRuns int

	now       func() time.Time
	stop      chan struct{}
	closeOnce sync.Once
}

func NewRunStore(ttl time.Duration, maxRuns int) *RunStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &RunStore{
		runs:    make(map[string]*Run),
		ttl:     ttl,
		maxRuns: maxRuns,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go s.cleanup(sweepInterval(ttl))
	return s
}

func sweepInterval(ttl time.Duration) time.Duration {
	d := ttl / 4
	if d > 5*time.Minute {
		d = 5 * time.Minute
	}
	if d < time.Second {
		d = time.Second
	}
	return d
}

// Put stores res under a new id. When maxRuns is reached the oldest run is
// evicted first.
func (s *RunStore) Put(res *backtest.Result) *Run {
	now := s.now()
	r := &Run{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Result:    res,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxRuns > 0 {
		for len(s.runs) >= s.maxRuns {
			s.evictOldestLocked()
		}
	}
	s.runs[r.ID] = r
	return r
}

// Get retrieves a run if present and not expired.
func (s *RunStore) Get(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok || s.now().After(r.ExpiresAt) {
		return nil, false
	}
	return r, true
}

// List returns the live runs, newest first.
func (s *RunStore) List() []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	out := make([]Run, 0, len(s.runs))
	for _, r := range s.runs {
		if !now.After(r.ExpiresAt) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// Close stops the cleanup goroutine. Stored runs stay readable.
func (s *RunStore) Close() {
	s.closeOnce.Do(func() { close(s.stop) })
}

func (s *RunStore) evictOldestLocked() {
	var oldest *Run
	for _, r := range s.runs {
		if oldest == nil || r.CreatedAt.Before(oldest.CreatedAt) {
			oldest = r
		}
	}
	if oldest != nil {
		delete(s.runs, oldest.ID)
	}
}

func (s *RunStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, r := range s.runs {
		if now.After(r.ExpiresAt) {
			delete(s.runs, id)
		}
	}
}

// cleanup periodically removes expired entries
func (s *RunStore) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}
