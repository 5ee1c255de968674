// Package file persists the user directory as a JSON document on disk. A
// sidecar lock file is held across each read-modify-write, so the server and
// portalctl can share one directory file without losing each other's writes.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// CurrentVersion is the document schema version written by Save.
const CurrentVersion = 1

const lockRetry = 50 * time.Millisecond

var ErrLockTimeout = errors.New("directory file is locked")

type document struct {
	Version int                 `json:"version"`
	Users   []domain.UserRecord `json:"users"`
}

// DirectoryStore reads and writes the directory file.
type DirectoryStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

var (
	_ ports.SharedStore = (*DirectoryStore)(nil)
	_ ports.Pinger      = (*DirectoryStore)(nil)
)

func NewDirectoryStore(path string) *DirectoryStore {
	return &DirectoryStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load returns no records, without error, when the file does not exist yet.
func (s *DirectoryStore) Load(ctx context.Context) ([]domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.read()
}

// Save replaces the file atomically via a temp file and rename.
func (s *DirectoryStore) Save(ctx context.Context, records []domain.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.write(records)
}

// Update reads the file, applies fn and writes the result back without
// releasing the lock in between. Every process sharing the file mutates it
// through here.
func (s *DirectoryStore) Update(ctx context.Context, fn func([]domain.UserRecord) ([]domain.UserRecord, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer func() { _ = s.lock.Unlock() }()

	current, err := s.read()
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.write(next)
}

func (s *DirectoryStore) read() ([]domain.UserRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading directory file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing directory file: %w", err)
	}
	return doc.Users, nil
}

func (s *DirectoryStore) write(records []domain.UserRecord) error {
	if records == nil {
		records = []domain.UserRecord{}
	}
	data, err := json.MarshalIndent(document{Version: CurrentVersion, Users: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding directory file: %w", err)
	}

	tmp := s.path + ".tmp"
	// Password hashes live in this file.
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing directory file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing directory file: %w", err)
	}
	return nil
}

// Ping checks that the parent directory is reachable.
func (s *DirectoryStore) Ping(context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	return nil
}

func (s *DirectoryStore) acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	ok, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return fmt.Errorf("locking directory file: %w", err)
	}
	if !ok {
		return ErrLockTimeout
	}
	return nil
}
