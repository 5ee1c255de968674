package ports

import (
	"context"

	"github.com/kalakrut/portal/internal/core/domain"
)

// UserDirectory is the in-process set of user records consulted by session
// resolution. Lookups return the first match.
type UserDirectory interface {
	FindByEmail(email string) (domain.UserRecord, bool)
	FindByWallet(address string) (domain.UserRecord, bool)
	FindByID(id string) (domain.UserRecord, bool)
	// Match returns every record satisfying pred, in directory order.
	Match(pred func(domain.UserRecord) bool) []domain.UserRecord
	All() []domain.UserRecord

	// Insert assigns an id when absent and rejects duplicate ids or emails
	// with domain.ErrRegistrationConflict.
	Insert(ctx context.Context, rec domain.UserRecord) (domain.UserRecord, error)
	// Update merges patch into the record with the given id. A missing id is
	// a no-op reported through the bool.
	Update(ctx context.Context, id string, patch domain.UserPatch) (domain.UserRecord, bool, error)
	// Remove deletes every record matching pred and reports how many went.
	Remove(ctx context.Context, pred func(domain.UserRecord) bool) (int, error)
}

// DirectoryStore is the durable backing for the directory. Save receives the
// full snapshot after every mutation.
type DirectoryStore interface {
	Load(ctx context.Context) ([]domain.UserRecord, error)
	Save(ctx context.Context, records []domain.UserRecord) error
}

// SharedStore is a DirectoryStore other processes may write to concurrently.
// Update hands fn the records as currently stored, holding the store's write
// lock until fn's result is saved. When fn returns an error nothing is
// written and the error is returned unchanged.
type SharedStore interface {
	DirectoryStore
	Update(ctx context.Context, fn func([]domain.UserRecord) ([]domain.UserRecord, error)) error
}

// Pinger is implemented by stores that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
