package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// DefaultDirectoryKey holds the JSON snapshot of the directory.
const DefaultDirectoryKey = "portal:directory"

// snapshotClient is the part of the redis client the store uses.
type snapshotClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// DirectoryStore keeps the whole directory under a single key.
type DirectoryStore struct {
	client snapshotClient
	key    string
}

var (
	_ ports.DirectoryStore = (*DirectoryStore)(nil)
	_ ports.Pinger         = (*DirectoryStore)(nil)
)

// NewDirectoryStore uses DefaultDirectoryKey when key is empty.
func NewDirectoryStore(client *redis.Client, key string) *DirectoryStore {
	if key == "" {
		key = DefaultDirectoryKey
	}
	return &DirectoryStore{client: client, key: key}
}

func (s *DirectoryStore) Load(ctx context.Context) ([]domain.UserRecord, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}

	var recs []domain.UserRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return recs, nil
}

func (s *DirectoryStore) Save(ctx context.Context, records []domain.UserRecord) error {
	if records == nil {
		records = []domain.UserRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode directory: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}

func (s *DirectoryStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
