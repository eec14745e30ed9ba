package identity

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "principal/internal/shared/errors"
)

// RolePrefix is the canonical prefix applied to bare role names.
const RolePrefix = "ROLE_"

// Authority is an opaque capability label granted to an identity, such as
// "ROLE_ADMIN" or "documents:read". It is immutable and compared by its
// canonical string value. The zero value is invalid and rejected wherever
// authorities are accepted.
type Authority struct {
	value string
}

// NewAuthority creates an Authority from its canonical string form.
func NewAuthority(value string) (Authority, error) {
	if value == "" {
		return Authority{}, apperrors.NewValidationError("authority value cannot be empty")
	}
	return Authority{value: value}, nil
}

// RoleAuthority creates an Authority from a bare role name by applying the
// canonical role prefix. The name must not already carry the prefix.
func RoleAuthority(role string) (Authority, error) {
	if role == "" {
		return Authority{}, apperrors.NewValidationError("role name cannot be empty")
	}
	if strings.HasPrefix(role, RolePrefix) {
		return Authority{}, apperrors.NewValidationError(
			fmt.Sprintf("role name should not start with %q", RolePrefix), role)
	}
	return Authority{value: RolePrefix + role}, nil
}

// AuthorityList builds an authority slice from canonical string forms.
// Every element must be non-empty.
func AuthorityList(values ...string) ([]Authority, error) {
	authorities := make([]Authority, 0, len(values))
	for _, v := range values {
		authority, err := NewAuthority(v)
		if err != nil {
			return nil, err
		}
		authorities = append(authorities, authority)
	}
	return authorities, nil
}

// String returns the canonical string form of the authority
func (a Authority) String() string {
	return a.value
}

// Equals checks if two authorities carry the same canonical value
func (a Authority) Equals(other Authority) bool {
	return a.value == other.value
}

// IsZero reports whether the authority is the invalid zero value
func (a Authority) IsZero() bool {
	return a.value == ""
}

// MarshalJSON implements json.Marshaler interface
func (a Authority) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value)
}

// UnmarshalJSON implements json.Unmarshaler interface. JSON null decodes to
// an empty string and is rejected like any other empty value.
func (a *Authority) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	authority, err := NewAuthority(value)
	if err != nil {
		return err
	}

	*a = authority
	return nil
}
