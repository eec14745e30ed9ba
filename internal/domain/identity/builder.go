package identity

import (
	apperrors "principal/internal/shared/errors"
)

// PasswordEncoder transforms a raw password into its stored form. Encoders are
// injected into the Builder and applied exactly once, at Build time.
type PasswordEncoder func(raw string) string

// Builder accumulates identity fields and emits immutable Identity snapshots.
// It is non-consuming: Build can be called repeatedly, each call reflecting
// only the latest field values. The builder is mutable and not safe for
// concurrent use; callers sharing one across goroutines must synchronize
// externally.
//
// All authority setters replace the accumulated set, they never merge.
type Builder struct {
	username           string
	password           *string
	encoder            PasswordEncoder
	disabled           bool
	accountExpired     bool
	accountLocked      bool
	credentialsExpired bool
	authorities        []Authority
	err                error
}

// NewBuilder creates an empty builder. Flags default to an enabled, unlocked,
// unexpired account; the authority set starts empty.
func NewBuilder() *Builder {
	return &Builder{authorities: []Authority{}}
}

// WithUsername creates a builder pre-populated with a username
func WithUsername(username string) *Builder {
	return NewBuilder().Username(username)
}

// FromIdentity creates a builder mirroring every field of an existing
// identity. Building without further calls reproduces the identity; setters
// override individual fields without respecifying the rest.
func FromIdentity(id *Identity) *Builder {
	return &Builder{
		username:           id.username,
		password:           id.password,
		disabled:           !id.enabled,
		accountExpired:     !id.accountNonExpired,
		accountLocked:      !id.accountNonLocked,
		credentialsExpired: !id.credentialsNonExpired,
		authorities:        id.Authorities(),
	}
}

// Username sets the username, overwriting any previous value
func (b *Builder) Username(username string) *Builder {
	b.username = username
	return b
}

// Password sets the raw password, overwriting any previous value. The value
// is stored as-is; any registered encoder is applied at Build time only.
func (b *Builder) Password(password string) *Builder {
	b.password = &password
	return b
}

// PasswordEncoder registers the encoder applied to the password at Build
// time. A single slot is kept: registering again overwrites the previous
// encoder, so only the last one registered is ever applied, exactly once per
// Build. The encoder is not invoked when no password is set.
func (b *Builder) PasswordEncoder(encoder PasswordEncoder) *Builder {
	b.encoder = encoder
	return b
}

// Authorities replaces the accumulated authority set. A nil slice or a zero
// authority element is invalid; the error is reported by Build.
func (b *Builder) Authorities(authorities []Authority) *Builder {
	if authorities == nil {
		b.err = apperrors.NewValidationError("authorities cannot be nil")
		return b
	}
	replaced := make([]Authority, 0, len(authorities))
	for _, authority := range authorities {
		if authority.IsZero() {
			b.err = apperrors.NewValidationError("authorities cannot contain an empty authority")
			return b
		}
		replaced = append(replaced, authority)
	}
	b.authorities = replaced
	b.err = nil
	return b
}

// AuthorityNames replaces the accumulated authority set from canonical string
// forms. A nil slice or an empty element is invalid; the error is reported by
// Build.
func (b *Builder) AuthorityNames(names []string) *Builder {
	if names == nil {
		b.err = apperrors.NewValidationError("authority names cannot be nil")
		return b
	}
	authorities, err := AuthorityList(names...)
	if err != nil {
		b.err = err
		return b
	}
	b.authorities = authorities
	b.err = nil
	return b
}

// Roles replaces the accumulated authority set from bare role names, applying
// the canonical role prefix to each. A name already carrying the prefix, or
// an empty name, is invalid; the error is reported by Build.
func (b *Builder) Roles(roles ...string) *Builder {
	authorities := make([]Authority, 0, len(roles))
	for _, role := range roles {
		authority, err := RoleAuthority(role)
		if err != nil {
			b.err = err
			return b
		}
		authorities = append(authorities, authority)
	}
	b.authorities = authorities
	b.err = nil
	return b
}

// Disabled sets whether the account is disabled
func (b *Builder) Disabled(disabled bool) *Builder {
	b.disabled = disabled
	return b
}

// AccountExpired sets whether the account is expired
func (b *Builder) AccountExpired(expired bool) *Builder {
	b.accountExpired = expired
	return b
}

// AccountLocked sets whether the account is locked
func (b *Builder) AccountLocked(locked bool) *Builder {
	b.accountLocked = locked
	return b
}

// CredentialsExpired sets whether the credential is expired
func (b *Builder) CredentialsExpired(expired bool) *Builder {
	b.credentialsExpired = expired
	return b
}

// Build validates the accumulated state and returns a new immutable Identity
// snapshot. The builder remains usable; later mutations and Build calls
// produce independent snapshots. The stored password is never mutated, so
// repeated builds never double-encode.
func (b *Builder) Build() (*Identity, error) {
	if b.err != nil {
		return nil, b.err
	}

	password := b.password
	if password != nil && b.encoder != nil {
		encoded := b.encoder(*password)
		password = &encoded
	}

	return ReconstructIdentity(b.username, password, !b.disabled, !b.accountExpired,
		!b.credentialsExpired, !b.accountLocked, b.authorities)
}
