package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"principal/internal/domain/identity"
)

// PrincipalClaims carries an identity (minus its credential) inside a signed
// token, so a principal can be rebuilt on the far side without a store lookup.
type PrincipalClaims struct {
	Authorities           []string `json:"authorities"`
	Enabled               bool     `json:"enabled"`
	AccountNonExpired     bool     `json:"account_non_expired"`
	AccountNonLocked      bool     `json:"account_non_locked"`
	CredentialsNonExpired bool     `json:"credentials_non_expired"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies principal tokens with HS256.
type TokenService struct {
	secret     []byte
	expMinutes int
}

func NewTokenService(secret string, expMinutes int) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		expMinutes: expMinutes,
	}
}

// Issue signs a token for the identity. The credential is never embedded.
func (s *TokenService) Issue(id *identity.Identity) (string, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(s.expMinutes) * time.Minute)

	claims := &PrincipalClaims{
		Authorities:           id.AuthorityStrings(),
		Enabled:               id.Enabled(),
		AccountNonExpired:     id.AccountNonExpired(),
		AccountNonLocked:      id.AccountNonLocked(),
		CredentialsNonExpired: id.CredentialsNonExpired(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Username(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign principal token: %w", err)
	}

	return signed, nil
}

// Parse verifies a token and rebuilds the identity it carries. The rebuilt
// identity has an absent credential.
func (s *TokenService) Parse(tokenString string) (*identity.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PrincipalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse principal token: %w", err)
	}

	claims, ok := token.Claims.(*PrincipalClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid principal token")
	}

	authorities := claims.Authorities
	if authorities == nil {
		authorities = []string{}
	}

	return identity.WithUsername(claims.Subject).
		AuthorityNames(authorities).
		Disabled(!claims.Enabled).
		AccountExpired(!claims.AccountNonExpired).
		AccountLocked(!claims.AccountNonLocked).
		CredentialsExpired(!claims.CredentialsNonExpired).
		Build()
}
