// Package sessions holds the live portals served over HTTP, one per issued
// token, and the notifications queued for them.
package sessions

import (
	"sync"
	"time"

	"github.com/kalakrut/portal/internal/api/metrics"
	"github.com/kalakrut/portal/internal/core/service"
)

type entry struct {
	portal   *service.Portal
	lastSeen time.Time
}

// Registry maps session ids to portals.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Put stores p under its own id.
func (r *Registry) Put(p *service.Portal) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[p.ID()] = &entry{portal: p, lastSeen: r.now()}
	metrics.ActiveSessions.Set(float64(len(r.entries)))
}

// Get returns the portal for id and marks it as seen.
func (r *Registry) Get(id string) (*service.Portal, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.portal, true
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
	metrics.ActiveSessions.Set(float64(len(r.entries)))
}

// ForUser returns every portal whose current session belongs to userID.
func (r *Registry) ForUser(userID string) []*service.Portal {
	r.mu.Lock()
	portals := make([]*service.Portal, 0, len(r.entries))
	for _, e := range r.entries {
		portals = append(portals, e.portal)
	}
	r.mu.Unlock()

	var out []*service.Portal
	for _, p := range portals {
		if s, ok := p.Session(); ok && s.User.ID == userID {
			out = append(out, p)
		}
	}
	return out
}

// Sweep drops portals not seen for longer than idle and returns their ids.
func (r *Registry) Sweep(idle time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	var removed []string
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed = append(removed, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(r.entries)))
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
