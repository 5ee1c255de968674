package metrics

import (
	"context"
	"time"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

type instrumentedStore struct {
	next    ports.DirectoryStore
	backend string
}

// InstrumentStore wraps a DirectoryStore so every call is timed under the
// given backend label. Ping and Update are forwarded when the wrapped store
// supports them.
func InstrumentStore(next ports.DirectoryStore, backend string) ports.DirectoryStore {
	s := &instrumentedStore{next: next, backend: backend}
	p, pinger := next.(ports.Pinger)
	sh, shared := next.(ports.SharedStore)

	switch {
	case shared && pinger:
		return &sharedPingingStore{sharedStore: &sharedStore{instrumentedStore: s, shared: sh}, pinger: p}
	case shared:
		return &sharedStore{instrumentedStore: s, shared: sh}
	case pinger:
		return &pingingStore{instrumentedStore: s, pinger: p}
	}
	return s
}

func (s *instrumentedStore) Load(ctx context.Context) ([]domain.UserRecord, error) {
	start := time.Now()
	recs, err := s.next.Load(ctx)
	s.observe("load", start, err)
	return recs, err
}

func (s *instrumentedStore) Save(ctx context.Context, records []domain.UserRecord) error {
	start := time.Now()
	err := s.next.Save(ctx, records)
	s.observe("save", start, err)
	return err
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DirectoryStoreDuration.WithLabelValues(s.backend, op, result).Observe(time.Since(start).Seconds())
}

type pingingStore struct {
	*instrumentedStore
	pinger ports.Pinger
}

func (s *pingingStore) Ping(ctx context.Context) error {
	return s.pinger.Ping(ctx)
}

type sharedStore struct {
	*instrumentedStore
	shared ports.SharedStore
}

func (s *sharedStore) Update(ctx context.Context, fn func([]domain.UserRecord) ([]domain.UserRecord, error)) error {
	start := time.Now()
	err := s.shared.Update(ctx, fn)
	s.observe("update", start, err)
	return err
}

type sharedPingingStore struct {
	*sharedStore
	pinger ports.Pinger
}

func (s *sharedPingingStore) Ping(ctx context.Context) error {
	return s.pinger.Ping(ctx)
}
