package service

import (
	"sync"

	"github.com/kalakrut/portal/internal/core/domain"
)

// Navigator coalesces view transitions so the latest request wins. A
// transition begun before a newer one can still be settled, but its view is
// never committed.
type Navigator struct {
	mu      sync.Mutex
	current domain.View
	latest  uint64
}

// Transition is a pending navigation handed out by Begin.
type Transition struct {
	nav  *Navigator
	seq  uint64
	View domain.View
}

func NewNavigator(initial domain.View) *Navigator {
	return &Navigator{current: initial}
}

// Begin registers a navigation request and supersedes any in flight.
func (n *Navigator) Begin(view domain.View) Transition {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.latest++
	return Transition{nav: n, seq: n.latest, View: view}
}

// Settle commits the transition if no newer one was begun. It reports whether
// the view became current.
func (t Transition) Settle() bool {
	n := t.nav
	n.mu.Lock()
	defer n.mu.Unlock()

	if t.seq != n.latest {
		return false
	}
	n.current = t.View
	return true
}

// Go begins and immediately settles a transition.
func (n *Navigator) Go(view domain.View) {
	n.Begin(view).Settle()
}

// Reset supersedes everything in flight and sets view.
func (n *Navigator) Reset(view domain.View) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.latest++
	n.current = view
}

func (n *Navigator) Current() domain.View {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.current
}
