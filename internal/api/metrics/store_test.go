package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

type plainStore struct {
	saveErr error
}

func (s *plainStore) Load(context.Context) ([]domain.UserRecord, error) {
	return []domain.UserRecord{{ID: "a1"}}, nil
}

func (s *plainStore) Save(context.Context, []domain.UserRecord) error { return s.saveErr }

type pingStore struct {
	plainStore
	pinged bool
}

func (s *pingStore) Ping(context.Context) error {
	s.pinged = true
	return nil
}

func TestInstrumentStore_ForwardsCalls(t *testing.T) {
	s := InstrumentStore(&plainStore{}, "test_forward")

	recs, err := s.Load(context.Background())
	if err != nil || len(recs) != 1 {
		t.Fatalf("unexpected load: %v %v", recs, err)
	}
	if err := s.Save(context.Background(), recs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, op := range []string{"load", "save"} {
		if got := sampleCount(t, "test_forward", op); got != 1 {
			t.Errorf("%s: expected 1 observation, got %d", op, got)
		}
	}
}

// sampleCount reads the store histogram for backend/op/ok from the default
// registry.
func sampleCount(t *testing.T, backend, op string) uint64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "portal_directory_store_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["backend"] == backend && labels["op"] == op && labels["result"] == "ok" {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func TestInstrumentStore_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	s := InstrumentStore(&plainStore{saveErr: boom}, "test_error")

	if err := s.Save(context.Background(), nil); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestInstrumentStore_KeepsPinger(t *testing.T) {
	inner := &pingStore{}
	s := InstrumentStore(inner, "test_ping")

	p, ok := s.(ports.Pinger)
	if !ok {
		t.Fatal("wrapped store lost its Ping method")
	}
	if err := p.Ping(context.Background()); err != nil || !inner.pinged {
		t.Errorf("ping not forwarded: err=%v pinged=%v", err, inner.pinged)
	}

	if _, ok := InstrumentStore(&plainStore{}, "test_plain").(ports.Pinger); ok {
		t.Error("store without Ping must not gain one")
	}
}

type sharedPingStore struct {
	pingStore
	updates int
}

func (s *sharedPingStore) Update(_ context.Context, fn func([]domain.UserRecord) ([]domain.UserRecord, error)) error {
	s.updates++
	_, err := fn(nil)
	return err
}

func TestInstrumentStore_KeepsSharedStore(t *testing.T) {
	inner := &sharedPingStore{}
	s := InstrumentStore(inner, "test_shared")

	sh, ok := s.(ports.SharedStore)
	if !ok {
		t.Fatal("wrapped store lost its Update method")
	}
	if _, ok := s.(ports.Pinger); !ok {
		t.Error("wrapped shared store lost its Ping method")
	}
	err := sh.Update(context.Background(), func(recs []domain.UserRecord) ([]domain.UserRecord, error) {
		return recs, nil
	})
	if err != nil || inner.updates != 1 {
		t.Errorf("update not forwarded: err=%v updates=%d", err, inner.updates)
	}
	if got := sampleCount(t, "test_shared", "update"); got != 1 {
		t.Errorf("expected 1 update observation, got %d", got)
	}

	if _, ok := InstrumentStore(&pingStore{}, "test_unshared").(ports.SharedStore); ok {
		t.Error("store without Update must not gain one")
	}
}
