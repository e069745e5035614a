package auth

import (
	"context"
	"time"
)

// UserStore is the single source of truth for whether an account may still
// authenticate, and for its current jurisdiction. Implementations return
// ErrNotFound identically for missing and deactivated accounts so callers
// cannot distinguish the two.
type UserStore interface {
	// FindActiveByID returns the account only when it exists and is active.
	FindActiveByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// OwnershipStore resolves the owning identity of a protected resource.
// Lookups return ErrNotFound when no such resource exists; any other error
// means the check could not be performed and callers must fail closed.
type OwnershipStore interface {
	OwnerOf(ctx context.Context, kind ResourceKind, id string) (string, error)
}
