// Package store provides identity.Manager implementations.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"principal/internal/domain/identity"
	apperrors "principal/internal/shared/errors"
)

// MemoryManager is an in-memory identity.Manager keyed by lowercased
// username. It is safe for concurrent use; the stored identities themselves
// are immutable.
type MemoryManager struct {
	mu         sync.RWMutex
	identities map[string]*identity.Identity
}

var _ identity.Manager = (*MemoryManager)(nil)

// NewMemoryManager creates an empty in-memory manager, optionally seeded
// with identities.
func NewMemoryManager(seed ...*identity.Identity) *MemoryManager {
	m := &MemoryManager{
		identities: make(map[string]*identity.Identity, len(seed)),
	}
	for _, id := range seed {
		m.identities[storeKey(id.Username())] = id
	}
	return m
}

func storeKey(username string) string {
	return strings.ToLower(username)
}

// errIdentityNotFound reports a missing username both as the domain sentinel
// (for errors.Is) and as an application not-found error.
func errIdentityNotFound(username string) error {
	return fmt.Errorf("%w: %w", apperrors.NewNotFoundError("identity not found", username), identity.ErrIdentityNotFound)
}

// LoadIdentity retrieves an identity by username
func (m *MemoryManager) LoadIdentity(ctx context.Context, username string) (*identity.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.identities[storeKey(username)]
	if !ok {
		return nil, errIdentityNotFound(username)
	}
	return id, nil
}

// CreateIdentity stores a new identity
func (m *MemoryManager) CreateIdentity(ctx context.Context, id *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := storeKey(id.Username())
	if _, exists := m.identities[key]; exists {
		return apperrors.NewConflictError("identity already exists", id.Username())
	}
	m.identities[key] = id
	return nil
}

// UpdateIdentity replaces an existing identity
func (m *MemoryManager) UpdateIdentity(ctx context.Context, id *identity.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := storeKey(id.Username())
	if _, exists := m.identities[key]; !exists {
		return errIdentityNotFound(id.Username())
	}
	m.identities[key] = id
	return nil
}

// DeleteIdentity removes an identity by username. Deleting a missing
// identity is a no-op.
func (m *MemoryManager) DeleteIdentity(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.identities, storeKey(username))
	return nil
}

// ChangePassword replaces the stored credential for a username, deriving a
// new immutable snapshot from the current one.
func (m *MemoryManager) ChangePassword(ctx context.Context, username, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := storeKey(username)
	current, ok := m.identities[key]
	if !ok {
		return errIdentityNotFound(username)
	}

	updated, err := identity.FromIdentity(current).Password(newPassword).Build()
	if err != nil {
		return err
	}
	m.identities[key] = updated
	return nil
}

// Exists checks if an identity exists for a username
func (m *MemoryManager) Exists(ctx context.Context, username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.identities[storeKey(username)]
	return ok, nil
}
