package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// Directory is the in-memory user directory. When a store is attached every
// mutation is written through and only adopted once the write succeeds, so
// memory and store never diverge.
type Directory struct {
	mu      sync.RWMutex
	records []domain.UserRecord
	store   ports.DirectoryStore
	log     zerolog.Logger
	now     func() time.Time
}

var _ ports.UserDirectory = (*Directory)(nil)

// NewDirectory returns an empty directory. store may be nil.
func NewDirectory(store ports.DirectoryStore, log zerolog.Logger) *Directory {
	return &Directory{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Bootstrap fills the directory from the store, or from seeds when the store
// is absent or empty. Seeded passwords are hashed before they are kept.
func (d *Directory) Bootstrap(ctx context.Context, seeds ports.SeedProvider, hasher ports.PasswordHasher) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.store != nil {
		recs, err := d.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap directory: %w", err)
		}
		if len(recs) > 0 {
			d.records = recs
			d.log.Info().Int("records", len(recs)).Msg("directory loaded from store")
			return nil
		}
	}

	if seeds == nil {
		return nil
	}
	users, err := seeds.Users()
	if err != nil {
		return fmt.Errorf("bootstrap directory: %w", err)
	}

	seeded := make([]domain.UserRecord, 0, len(users))
	for _, su := range users {
		rec := su.Record
		if su.Password != "" {
			hash, err := hasher.Hash(su.Password)
			if err != nil {
				return fmt.Errorf("bootstrap directory: seed %s: %w", rec.ID, err)
			}
			rec.PasswordHash = hash
		}
		if rec.ID == "" {
			rec.ID = newUserID()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = d.now()
		}
		seeded = append(seeded, rec)
	}

	// Another process may have seeded the store since the load above.
	err = d.mutateLocked(ctx, func(recs []domain.UserRecord) ([]domain.UserRecord, error) {
		if len(recs) > 0 {
			return nil, errUnchanged
		}
		return seeded, nil
	})
	if err != nil {
		return fmt.Errorf("bootstrap directory: %w", err)
	}
	d.log.Info().Int("records", len(d.records)).Msg("directory seeded")
	return nil
}

// Refresh reloads the directory from its store, picking up writes made by
// other processes sharing it.
func (d *Directory) Refresh(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	recs, err := d.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("refresh directory: %w", err)
	}

	d.mu.Lock()
	d.records = recs
	d.mu.Unlock()
	return nil
}

func (d *Directory) FindByEmail(email string) (domain.UserRecord, bool) {
	return d.first(func(u domain.UserRecord) bool { return u.HasEmail(email) })
}

func (d *Directory) FindByWallet(address string) (domain.UserRecord, bool) {
	return d.first(func(u domain.UserRecord) bool { return u.HasWallet(address) })
}

func (d *Directory) FindByID(id string) (domain.UserRecord, bool) {
	if id == "" {
		return domain.UserRecord{}, false
	}
	return d.first(func(u domain.UserRecord) bool { return u.ID == id })
}

func (d *Directory) Match(pred func(domain.UserRecord) bool) []domain.UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []domain.UserRecord
	for _, u := range d.records {
		if pred(u) {
			out = append(out, u)
		}
	}
	return out
}

func (d *Directory) All() []domain.UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]domain.UserRecord(nil), d.records...)
}

func (d *Directory) Insert(ctx context.Context, rec domain.UserRecord) (domain.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if rec.ID == "" {
		rec.ID = newUserID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = d.now()
	}

	err := d.mutateLocked(ctx, func(recs []domain.UserRecord) ([]domain.UserRecord, error) {
		for _, u := range recs {
			if u.ID == rec.ID {
				return nil, fmt.Errorf("%w: id %s already taken", domain.ErrRegistrationConflict, rec.ID)
			}
			if u.HasEmail(rec.Email) {
				return nil, fmt.Errorf("%w: email already registered", domain.ErrRegistrationConflict)
			}
		}
		return append(recs, rec), nil
	})
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("insert user: %w", err)
	}
	return rec, nil
}

func (d *Directory) Update(ctx context.Context, id string, patch domain.UserPatch) (domain.UserRecord, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var (
		updated domain.UserRecord
		found   bool
	)
	err := d.mutateLocked(ctx, func(recs []domain.UserRecord) ([]domain.UserRecord, error) {
		for i := range recs {
			if recs[i].ID == id {
				patch.Apply(&recs[i])
				updated, found = recs[i], true
				return recs, nil
			}
		}
		return nil, errUnchanged
	})
	if err != nil {
		return domain.UserRecord{}, false, fmt.Errorf("update user: %w", err)
	}
	return updated, found, nil
}

func (d *Directory) Remove(ctx context.Context, pred func(domain.UserRecord) bool) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var removed int
	err := d.mutateLocked(ctx, func(recs []domain.UserRecord) ([]domain.UserRecord, error) {
		kept := make([]domain.UserRecord, 0, len(recs))
		for _, u := range recs {
			if !pred(u) {
				kept = append(kept, u)
			}
		}
		removed = len(recs) - len(kept)
		if removed == 0 {
			return nil, errUnchanged
		}
		return kept, nil
	})
	if err != nil {
		return 0, fmt.Errorf("remove users: %w", err)
	}
	return removed, nil
}

func (d *Directory) first(pred func(domain.UserRecord) bool) (domain.UserRecord, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, u := range d.records {
		if pred(u) {
			return u, true
		}
	}
	return domain.UserRecord{}, false
}

// errUnchanged tells mutateLocked that fn made no change worth writing.
var errUnchanged = errors.New("directory unchanged")

// mutateLocked runs fn on a copy of the latest records and adopts its result
// once the store has it. A shared store supplies the records it holds and
// keeps its lock across fn and the write, so concurrent writers in other
// processes are built upon rather than overwritten. When fn rejects the
// change the records it was shown are adopted as they were. Caller must
// hold mu.
func (d *Directory) mutateLocked(ctx context.Context, fn func([]domain.UserRecord) ([]domain.UserRecord, error)) error {
	var (
		seen, next []domain.UserRecord
		fnErr      error
	)
	apply := func(latest []domain.UserRecord) ([]domain.UserRecord, error) {
		seen = latest
		out, err := fn(append([]domain.UserRecord(nil), latest...))
		if err != nil {
			fnErr = err
			return nil, err
		}
		next = out
		return out, nil
	}

	var err error
	switch store := d.store.(type) {
	case nil:
		_, err = apply(d.records)
	case ports.SharedStore:
		err = store.Update(ctx, apply)
	default:
		var out []domain.UserRecord
		if out, err = apply(d.records); err == nil {
			err = store.Save(ctx, append([]domain.UserRecord(nil), out...))
		}
	}

	if fnErr != nil {
		d.records = seen
		if errors.Is(fnErr, errUnchanged) {
			return nil
		}
		return fnErr
	}
	if err != nil {
		d.log.Error().Err(err).Int("records", len(next)).Msg("directory save failed")
		return err
	}
	d.records = next
	return nil
}

func newUserID() string {
	return "user_" + uuid.NewString()
}
