package identity

import (
	"context"
	"errors"
)

// ErrIdentityNotFound is returned when no identity exists for a username.
// Implementations wrap it so callers can test with errors.Is.
var ErrIdentityNotFound = errors.New("identity not found")

// Service loads identities for the authentication pipeline
type Service interface {
	// LoadIdentity retrieves an identity by username
	LoadIdentity(ctx context.Context, username string) (*Identity, error)
}

// Manager defines the interface for identity management operations
type Manager interface {
	Service

	// CreateIdentity stores a new identity
	CreateIdentity(ctx context.Context, id *Identity) error

	// UpdateIdentity replaces an existing identity
	UpdateIdentity(ctx context.Context, id *Identity) error

	// DeleteIdentity removes an identity by username
	DeleteIdentity(ctx context.Context, username string) error

	// ChangePassword replaces the stored credential for a username.
	// The new password is stored as given; encode it beforehand.
	ChangePassword(ctx context.Context, username, newPassword string) error

	// Exists checks if an identity exists for a username
	Exists(ctx context.Context, username string) (bool, error)
}
