package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "principal/internal/shared/errors"
)

// roleOneTwo creates the ROLE_ONE/ROLE_TWO authority list used across tests.
func roleOneTwo(t *testing.T) []Authority {
	t.Helper()
	authorities, err := AuthorityList("ROLE_ONE", "ROLE_TWO")
	require.NoError(t, err)
	return authorities
}

func TestNewIdentity(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		wantError bool
	}{
		{"valid username", "rod", false},
		{"empty username", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewIdentity(tt.username, "koala", roleOneTwo(t))

			if tt.wantError {
				assert.Error(t, err)
				assert.True(t, apperrors.IsValidationError(err))
				assert.Nil(t, id)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.username, id.Username())
				assert.Equal(t, "koala", id.Password())
				assert.True(t, id.HasCredentials())
				assert.True(t, id.Enabled())
				assert.True(t, id.AccountNonExpired())
				assert.True(t, id.AccountNonLocked())
				assert.True(t, id.CredentialsNonExpired())
			}
		})
	}
}

func TestReconstructIdentity_AuthorityValidation(t *testing.T) {
	tests := []struct {
		name        string
		authorities []Authority
		wantError   bool
	}{
		{"empty set is allowed", []Authority{}, false},
		{"nil set is rejected", nil, true},
		{"zero element is rejected", []Authority{{}}, true},
		{"zero element among valid ones is rejected", append(mustAuthorities(t, "ROLE_ONE"), Authority{}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			password := "koala"
			_, err := ReconstructIdentity("rod", &password, true, true, true, true, tt.authorities)

			if tt.wantError {
				assert.True(t, apperrors.IsValidationError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func mustAuthorities(t *testing.T, values ...string) []Authority {
	t.Helper()
	authorities, err := AuthorityList(values...)
	require.NoError(t, err)
	return authorities
}

func TestReconstructIdentity_NilPassword(t *testing.T) {
	// A nil password is allowed: it models the state after credential erasure.
	id, err := ReconstructIdentity("rod", nil, true, true, true, true, roleOneTwo(t))
	require.NoError(t, err)
	assert.False(t, id.HasCredentials())
	assert.Equal(t, "", id.Password())
}

func TestIdentity_Equals(t *testing.T) {
	id, err := NewIdentity("rod", "koala", roleOneTwo(t))
	require.NoError(t, err)

	t.Run("same username with different fields is equal", func(t *testing.T) {
		other, err := ReconstructIdentity("rod", nil, false, false, false, false, mustAuthorities(t, "ROLE_X"))
		require.NoError(t, err)
		assert.True(t, id.Equals(other))
	})

	t.Run("different username is not equal", func(t *testing.T) {
		other, err := NewIdentity("bod", "koala", roleOneTwo(t))
		require.NoError(t, err)
		assert.False(t, id.Equals(other))
	})

	t.Run("username comparison is case-sensitive", func(t *testing.T) {
		other, err := NewIdentity("Rod", "koala", roleOneTwo(t))
		require.NoError(t, err)
		assert.False(t, id.Equals(other))
	})

	t.Run("nil is not equal", func(t *testing.T) {
		assert.False(t, id.Equals(nil))
	})

	t.Run("equal to itself", func(t *testing.T) {
		assert.True(t, id.Equals(id))
	})
}

func TestIdentity_UsernameKeyedLookup(t *testing.T) {
	// Principal-keyed containers use Username() as the key, so any variant of
	// the same principal hits the same entry.
	id, err := NewIdentity("rod", "koala", roleOneTwo(t))
	require.NoError(t, err)

	principals := map[string]*Identity{id.Username(): id}

	variant, err := ReconstructIdentity("rod", nil, false, false, false, false, mustAuthorities(t, "ROLE_X"))
	require.NoError(t, err)
	found, ok := principals[variant.Username()]
	require.True(t, ok)
	assert.True(t, found.Equals(variant))

	other, err := NewIdentity("bod", "koala", roleOneTwo(t))
	require.NoError(t, err)
	_, ok = principals[other.Username()]
	assert.False(t, ok)
}

func TestIdentity_Authorities(t *testing.T) {
	t.Run("sorted by canonical string", func(t *testing.T) {
		id, err := NewIdentity("rod", "koala", mustAuthorities(t, "ROLE_TWO", "ROLE_ONE"))
		require.NoError(t, err)
		assert.Equal(t, []string{"ROLE_ONE", "ROLE_TWO"}, id.AuthorityStrings())
	})

	t.Run("duplicates are collapsed", func(t *testing.T) {
		id, err := NewIdentity("rod", "koala", mustAuthorities(t, "ROLE_ONE", "ROLE_ONE", "ROLE_TWO"))
		require.NoError(t, err)
		assert.Equal(t, []string{"ROLE_ONE", "ROLE_TWO"}, id.AuthorityStrings())
	})

	t.Run("returned slice is a defensive copy", func(t *testing.T) {
		id, err := NewIdentity("rod", "koala", roleOneTwo(t))
		require.NoError(t, err)
		authorities := id.Authorities()
		authorities[0] = Authority{}
		assert.Equal(t, []string{"ROLE_ONE", "ROLE_TWO"}, id.AuthorityStrings())
	})

	t.Run("HasAuthority", func(t *testing.T) {
		id, err := NewIdentity("rod", "koala", roleOneTwo(t))
		require.NoError(t, err)
		assert.True(t, id.HasAuthority("ROLE_ONE"))
		assert.False(t, id.HasAuthority("ROLE_X"))
	})
}

func TestIdentity_EraseCredentials(t *testing.T) {
	id, err := NewIdentity("rod", "koala", roleOneTwo(t))
	require.NoError(t, err)

	erased := id.EraseCredentials()
	assert.False(t, erased.HasCredentials())
	assert.Equal(t, "", erased.Password())

	// every other field is unchanged
	assert.Equal(t, id.Username(), erased.Username())
	assert.Equal(t, id.Enabled(), erased.Enabled())
	assert.Equal(t, id.AccountNonExpired(), erased.AccountNonExpired())
	assert.Equal(t, id.AccountNonLocked(), erased.AccountNonLocked())
	assert.Equal(t, id.CredentialsNonExpired(), erased.CredentialsNonExpired())
	assert.Equal(t, id.AuthorityStrings(), erased.AuthorityStrings())

	// the original still carries its credential
	assert.True(t, id.HasCredentials())

	// erasing again is a no-op
	twice := erased.EraseCredentials()
	assert.False(t, twice.HasCredentials())
	assert.True(t, erased.Equals(twice))
}

func TestIdentity_String(t *testing.T) {
	id, err := NewIdentity("rod", "supersecret", roleOneTwo(t))
	require.NoError(t, err)

	str := id.String()
	assert.Contains(t, str, "rod")
	assert.Contains(t, str, "enabled=true")
	assert.Contains(t, str, "ROLE_ONE")
	assert.NotContains(t, str, "supersecret")

	erased := id.EraseCredentials()
	assert.Contains(t, erased.String(), "[ERASED]")
}

func TestIdentity_FlagGetters(t *testing.T) {
	password := "koala"
	id, err := ReconstructIdentity("rod", &password, false, true, false, true, roleOneTwo(t))
	require.NoError(t, err)

	assert.False(t, id.Enabled())
	assert.True(t, id.AccountNonExpired())
	assert.False(t, id.CredentialsNonExpired())
	assert.True(t, id.AccountNonLocked())
}

func TestIdentity_JSONRoundTrip(t *testing.T) {
	t.Run("with credential", func(t *testing.T) {
		password := "koala"
		id, err := ReconstructIdentity("rod", &password, false, true, true, false, roleOneTwo(t))
		require.NoError(t, err)

		data, err := json.Marshal(id)
		require.NoError(t, err)

		var decoded Identity
		require.NoError(t, json.Unmarshal(data, &decoded))

		assert.True(t, id.Equals(&decoded))
		assert.Equal(t, id.Username(), decoded.Username())
		assert.Equal(t, id.Password(), decoded.Password())
		assert.True(t, decoded.HasCredentials())
		assert.Equal(t, id.Enabled(), decoded.Enabled())
		assert.Equal(t, id.AccountNonExpired(), decoded.AccountNonExpired())
		assert.Equal(t, id.AccountNonLocked(), decoded.AccountNonLocked())
		assert.Equal(t, id.CredentialsNonExpired(), decoded.CredentialsNonExpired())
		assert.Equal(t, id.AuthorityStrings(), decoded.AuthorityStrings())
	})

	t.Run("erased credential stays erased", func(t *testing.T) {
		id, err := NewIdentity("rod", "koala", roleOneTwo(t))
		require.NoError(t, err)
		erased := id.EraseCredentials()

		data, err := json.Marshal(erased)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "koala")

		var decoded Identity
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.False(t, decoded.HasCredentials())
	})

	t.Run("missing authorities field decodes as empty set", func(t *testing.T) {
		var decoded Identity
		require.NoError(t, json.Unmarshal([]byte(`{"username":"rod","enabled":true}`), &decoded))
		assert.Empty(t, decoded.Authorities())
		assert.True(t, decoded.Enabled())
	})

	t.Run("decoding an empty username fails", func(t *testing.T) {
		var decoded Identity
		err := json.Unmarshal([]byte(`{"username":"","authorities":[]}`), &decoded)
		assert.True(t, apperrors.IsValidationError(err))
	})
}
