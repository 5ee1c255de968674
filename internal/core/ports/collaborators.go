package ports

import (
	"context"

	"github.com/kalakrut/portal/internal/core/domain"
)

// WalletConnector establishes a wallet connection. Connect may fail when the
// user rejects or cancels the request.
type WalletConnector interface {
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context)
}

// Notifier accepts one-way user notifications. Implementations must not block
// the caller on delivery.
type Notifier interface {
	Notify(n domain.Notification)
}

// NotificationSink is the final delivery target behind a Notifier.
type NotificationSink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// SeedUser is a seeded directory entry with its plain-text password. The
// password is hashed before the record enters the directory.
type SeedUser struct {
	Record   domain.UserRecord
	Password string
}

// SeedProvider supplies the initial roster and per-role profile templates.
type SeedProvider interface {
	Users() ([]SeedUser, error)
	Templates() (map[domain.Role]domain.Profile, error)
}

// PasswordHasher produces and checks one-way credential hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare reports whether password matches hash.
	Compare(hash, password string) bool
}
