// Package cache provides Redis-backed principal persistence for session
// sharing across processes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"principal/internal/domain/identity"
	apperrors "principal/internal/shared/errors"
	"principal/internal/shared/logger"
)

const (
	// PrincipalKeyPrefix is the Redis key prefix for cached principals
	PrincipalKeyPrefix = "principal:identity:"
	// PrincipalTTL is the default TTL for cached principals
	PrincipalTTL = 30 * time.Minute
)

// PrincipalStore caches identities in Redis keyed by lowercased username,
// using the identity's JSON wire form. Credentials round-trip unchanged, so
// erase them before storing if the session layer must not hold them.
type PrincipalStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Interface
}

// NewPrincipalStore creates a principal store with default prefix and TTL
func NewPrincipalStore(client *redis.Client, log logger.Interface) *PrincipalStore {
	return NewPrincipalStoreWithConfig(client, log, "", 0)
}

// NewPrincipalStoreWithConfig creates a principal store with custom config
func NewPrincipalStoreWithConfig(client *redis.Client, log logger.Interface, prefix string, ttl time.Duration) *PrincipalStore {
	if prefix == "" {
		prefix = PrincipalKeyPrefix
	}
	if ttl == 0 {
		ttl = PrincipalTTL
	}
	return &PrincipalStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log,
	}
}

// Store caches an identity under its username
func (s *PrincipalStore) Store(ctx context.Context, id *identity.Identity) error {
	if id == nil {
		return errors.New("identity cannot be nil")
	}

	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	key := s.buildKey(id.Username())
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store identity in Redis: %w", err)
	}

	s.logger.Debug("cached principal", "username", id.Username(), "ttl", s.ttl)
	return nil
}

// Get retrieves a cached identity by username. A missing or expired entry
// yields identity.ErrIdentityNotFound.
func (s *PrincipalStore) Get(ctx context.Context, username string) (*identity.Identity, error) {
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}

	data, err := s.client.Get(ctx, s.buildKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %w",
				apperrors.NewNotFoundError("identity not found", username), identity.ErrIdentityNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve identity from Redis: %w", err)
	}

	var id identity.Identity
	if err := json.Unmarshal([]byte(data), &id); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	return &id, nil
}

// Delete evicts a cached identity by username
func (s *PrincipalStore) Delete(ctx context.Context, username string) error {
	if username == "" {
		return errors.New("username cannot be empty")
	}

	if err := s.client.Del(ctx, s.buildKey(username)).Err(); err != nil {
		return fmt.Errorf("failed to delete identity from Redis: %w", err)
	}

	return nil
}

// buildKey constructs the full Redis key
func (s *PrincipalStore) buildKey(username string) string {
	return s.prefix + strings.ToLower(username)
}
