package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"principal/internal/domain/identity"
	apperrors "principal/internal/shared/errors"
	"principal/internal/shared/logger"
)

// nopLogger is a no-op logger for testing.
type nopLogger struct{}

func newNopLogger() logger.Interface { return &nopLogger{} }

func (l *nopLogger) Debug(msg string, args ...any)      {}
func (l *nopLogger) Info(msg string, args ...any)       {}
func (l *nopLogger) Warn(msg string, args ...any)       {}
func (l *nopLogger) Error(msg string, args ...any)      {}
func (l *nopLogger) With(args ...any) logger.Interface  { return l }
func (l *nopLogger) Named(name string) logger.Interface { return l }

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return mr, client
}

func buildIdentity(t *testing.T, username string) *identity.Identity {
	t.Helper()
	id, err := identity.WithUsername(username).Password("koala").Roles("USER", "ADMIN").Build()
	require.NoError(t, err)
	return id
}

func TestPrincipalStore_StoreAndGet(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewPrincipalStore(client, newNopLogger())
	ctx := context.Background()

	rod := buildIdentity(t, "rod")
	require.NoError(t, store.Store(ctx, rod))

	loaded, err := store.Get(ctx, "rod")
	require.NoError(t, err)

	assert.True(t, rod.Equals(loaded))
	assert.Equal(t, rod.Username(), loaded.Username())
	assert.Equal(t, rod.Password(), loaded.Password())
	assert.Equal(t, rod.AuthorityStrings(), loaded.AuthorityStrings())
	assert.Equal(t, rod.Enabled(), loaded.Enabled())
}

func TestPrincipalStore_Get_CaseInsensitiveKey(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewPrincipalStore(client, newNopLogger())
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, buildIdentity(t, "Rod")))

	loaded, err := store.Get(ctx, "rod")
	require.NoError(t, err)
	assert.Equal(t, "Rod", loaded.Username())
}

func TestPrincipalStore_Get_NotFound(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewPrincipalStore(client, newNopLogger())

	_, err := store.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, identity.ErrIdentityNotFound))
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestPrincipalStore_ErasedCredentialRoundTrip(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewPrincipalStore(client, newNopLogger())
	ctx := context.Background()

	erased := buildIdentity(t, "rod").EraseCredentials()
	require.NoError(t, store.Store(ctx, erased))

	loaded, err := store.Get(ctx, "rod")
	require.NoError(t, err)
	assert.False(t, loaded.HasCredentials())
}

func TestPrincipalStore_Delete(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewPrincipalStore(client, newNopLogger())
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, buildIdentity(t, "rod")))
	require.NoError(t, store.Delete(ctx, "rod"))

	_, err := store.Get(ctx, "rod")
	assert.True(t, errors.Is(err, identity.ErrIdentityNotFound))
}

func TestPrincipalStore_TTLExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewPrincipalStoreWithConfig(client, newNopLogger(), "session:", time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, buildIdentity(t, "rod")))
	require.True(t, mr.Exists("session:rod"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "rod")
	assert.True(t, errors.Is(err, identity.ErrIdentityNotFound))
}

func TestPrincipalStore_InputValidation(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewPrincipalStore(client, newNopLogger())
	ctx := context.Background()

	assert.Error(t, store.Store(ctx, nil))
	_, err := store.Get(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, ""))
}
