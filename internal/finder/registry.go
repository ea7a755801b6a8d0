package finder

import (
	"sync"
	"time"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// Registry keeps one Selector per portal user.  Selectors idle for longer
// than the TTL are dropped by a background janitor.
type Registry struct {
	api        Backend
	thresholds availability.Thresholds
	ttl        time.Duration
	logger     *logging.Logger

	mu        sync.Mutex
	selectors map[int64]*Selector

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewRegistry starts a registry.  A ttl of zero disables expiry.
func NewRegistry(api Backend, th availability.Thresholds, ttl time.Duration, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Default()
	}
	r := &Registry{
		api:        api,
		thresholds: th,
		ttl:        ttl,
		logger:     logger,
		selectors:  make(map[int64]*Selector),
		stop:       make(chan struct{}),
	}
	if ttl > 0 {
		interval := ttl / 2
		if interval < time.Second {
			interval = time.Second
		}
		r.wg.Add(1)
		go r.janitor(interval)
	}
	return r
}

// Get returns the user's selector, creating one if needed.
func (r *Registry) Get(userID int64) *Selector {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.selectors[userID]
	if !ok {
		s = NewSelector(r.api, r.thresholds)
		r.selectors[userID] = s
	}
	return s
}

// Reset discards the user's selector, e.g. on logout.
func (r *Registry) Reset(userID int64) {
	r.mu.Lock()
	delete(r.selectors, userID)
	r.mu.Unlock()
}

// Len returns the number of live selectors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.selectors)
}

// Sweep drops selectors idle since before now minus the TTL and returns how
// many were removed.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.selectors {
		if s.idleSince().Before(cutoff) {
			delete(r.selectors, id)
			n++
		}
	}
	return n
}

func (r *Registry) janitor(interval time.Duration) {
	defer r.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-r.stop:
			return
		case now := <-t.C:
			if n := r.Sweep(now); n > 0 {
				r.logger.Debug("finder: expired idle selectors", "count", n)
			}
		}
	}
}

// Close stops the janitor.  It is safe to call more than once.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()
}
