// Package identity models the immutable principal value object used by the
// authentication subsystem: a username, an erasable credential, four account
// flags and a set of granted authorities.
package identity

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	apperrors "principal/internal/shared/errors"
)

// Identity is the immutable principal value object (pure domain model without
// persistence concerns). All fields except the credential are fixed at
// construction; the credential can transition once from present to absent via
// EraseCredentials. An Identity is safe to share across goroutines.
//
// Identity equality is deliberately scoped to the username alone (see Equals),
// which makes the username the key for principal-keyed containers such as
// session caches. Use Username() as the map key.
type Identity struct {
	username              string
	password              *string
	enabled               bool
	accountNonExpired     bool
	accountNonLocked      bool
	credentialsNonExpired bool
	authorities           []Authority
}

// NewIdentity creates an enabled, unlocked, unexpired identity. The password
// may be empty but is considered present; use ReconstructIdentity with a nil
// password for an identity whose credential is absent.
func NewIdentity(username, password string, authorities []Authority) (*Identity, error) {
	return ReconstructIdentity(username, &password, true, true, true, true, authorities)
}

// ReconstructIdentity creates an identity with every field supplied. It is the
// single validated construction path, used by the builder, JSON decoding and
// persistence adapters. A nil password models an erased/absent credential.
func ReconstructIdentity(username string, password *string, enabled, accountNonExpired,
	credentialsNonExpired, accountNonLocked bool, authorities []Authority) (*Identity, error) {
	if username == "" {
		return nil, apperrors.NewValidationError("username cannot be empty")
	}
	sorted, err := sortAuthorities(authorities)
	if err != nil {
		return nil, err
	}

	return &Identity{
		username:              username,
		password:              password,
		enabled:               enabled,
		accountNonExpired:     accountNonExpired,
		accountNonLocked:      accountNonLocked,
		credentialsNonExpired: credentialsNonExpired,
		authorities:           sorted,
	}, nil
}

// sortAuthorities validates, deduplicates and sorts an authority slice by
// canonical string. The input slice is never retained.
func sortAuthorities(authorities []Authority) ([]Authority, error) {
	if authorities == nil {
		return nil, apperrors.NewValidationError("authorities cannot be nil")
	}

	seen := make(map[string]bool, len(authorities))
	sorted := make([]Authority, 0, len(authorities))
	for _, authority := range authorities {
		if authority.IsZero() {
			return nil, apperrors.NewValidationError("authorities cannot contain an empty authority")
		}
		if seen[authority.String()] {
			continue
		}
		seen[authority.String()] = true
		sorted = append(sorted, authority)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	return sorted, nil
}

// Username returns the identity's username
func (i *Identity) Username() string {
	return i.username
}

// Password returns the raw credential, or the empty string when the credential
// is absent. Use HasCredentials to distinguish an empty from an absent one.
func (i *Identity) Password() string {
	if i.password == nil {
		return ""
	}
	return *i.password
}

// HasCredentials reports whether a credential is present
func (i *Identity) HasCredentials() bool {
	return i.password != nil
}

// Enabled reports whether the account is enabled
func (i *Identity) Enabled() bool {
	return i.enabled
}

// AccountNonExpired reports whether the account is not expired
func (i *Identity) AccountNonExpired() bool {
	return i.accountNonExpired
}

// AccountNonLocked reports whether the account is not locked
func (i *Identity) AccountNonLocked() bool {
	return i.accountNonLocked
}

// CredentialsNonExpired reports whether the credential is not expired
func (i *Identity) CredentialsNonExpired() bool {
	return i.credentialsNonExpired
}

// Authorities returns the granted authorities, sorted ascending by canonical
// string. The returned slice is a copy; mutating it does not affect the
// identity.
func (i *Identity) Authorities() []Authority {
	authorities := make([]Authority, len(i.authorities))
	copy(authorities, i.authorities)
	return authorities
}

// AuthorityStrings returns the canonical string form of every granted
// authority, in the same stable order as Authorities.
func (i *Identity) AuthorityStrings() []string {
	values := make([]string, len(i.authorities))
	for idx, authority := range i.authorities {
		values[idx] = authority.String()
	}
	return values
}

// HasAuthority reports whether the identity carries the given authority
func (i *Identity) HasAuthority(value string) bool {
	for _, authority := range i.authorities {
		if authority.String() == value {
			return true
		}
	}
	return false
}

// Equals reports whether two identities refer to the same principal. Only the
// usernames are compared (case-sensitive, exact); credential, flags and
// authorities are deliberately excluded so that variants of the same principal
// compare equal in identity-keyed containers.
func (i *Identity) Equals(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.username == other.username
}

// EraseCredentials returns a copy of the identity with the credential absent
// and every other field unchanged. Erasing an already-absent credential is a
// no-op returning an equivalent identity.
func (i *Identity) EraseCredentials() *Identity {
	erased := *i
	erased.password = nil
	return &erased
}

// String returns a diagnostic representation. The raw credential is never
// included, only whether one is present.
func (i *Identity) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Identity{username=%s", i.username)
	fmt.Fprintf(&sb, ", password=%s", credentialMask(i.password))
	fmt.Fprintf(&sb, ", enabled=%t", i.enabled)
	fmt.Fprintf(&sb, ", accountNonExpired=%t", i.accountNonExpired)
	fmt.Fprintf(&sb, ", accountNonLocked=%t", i.accountNonLocked)
	fmt.Fprintf(&sb, ", credentialsNonExpired=%t", i.credentialsNonExpired)
	fmt.Fprintf(&sb, ", authorities=%v}", i.AuthorityStrings())
	return sb.String()
}

func credentialMask(password *string) string {
	if password == nil {
		return "[ERASED]"
	}
	return "[PROTECTED]"
}

// identityJSON is the wire form used for session/cache persistence
type identityJSON struct {
	Username              string   `json:"username"`
	Password              *string  `json:"password,omitempty"`
	Enabled               bool     `json:"enabled"`
	AccountNonExpired     bool     `json:"account_non_expired"`
	AccountNonLocked      bool     `json:"account_non_locked"`
	CredentialsNonExpired bool     `json:"credentials_non_expired"`
	Authorities           []string `json:"authorities"`
}

// MarshalJSON implements json.Marshaler interface
func (i *Identity) MarshalJSON() ([]byte, error) {
	return json.Marshal(identityJSON{
		Username:              i.username,
		Password:              i.password,
		Enabled:               i.enabled,
		AccountNonExpired:     i.accountNonExpired,
		AccountNonLocked:      i.accountNonLocked,
		CredentialsNonExpired: i.credentialsNonExpired,
		Authorities:           i.AuthorityStrings(),
	})
}

// UnmarshalJSON implements json.Unmarshaler interface. Decoding goes through
// ReconstructIdentity so an invalid identity can never be produced.
func (i *Identity) UnmarshalJSON(data []byte) error {
	var wire identityJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("failed to unmarshal identity: %w", err)
	}

	if wire.Authorities == nil {
		wire.Authorities = []string{}
	}
	authorities, err := AuthorityList(wire.Authorities...)
	if err != nil {
		return err
	}

	decoded, err := ReconstructIdentity(wire.Username, wire.Password, wire.Enabled,
		wire.AccountNonExpired, wire.CredentialsNonExpired, wire.AccountNonLocked, authorities)
	if err != nil {
		return err
	}

	*i = *decoded
	return nil
}
