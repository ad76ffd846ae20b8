package utils

import (
	"testing"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_SignAndParse(t *testing.T) {
	m := NewTokenManager(JwtConfig{Key: "secret", ExpireHours: 24})
	token, err := m.Sign("5f1d", "userabc123", PrincipalCandidate)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "5f1d", claims.ID)
	assert.Equal(t, "userabc123", claims.Username)
	assert.Equal(t, PrincipalCandidate, claims.Type)
	assert.Equal(t, int64(24*3600), claims.ExpiresAt-claims.IssuedAt)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(JwtConfig{Key: "secret", ExpireHours: -1})
	token, err := m.Sign("5f1d", "admin", PrincipalAdmin)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Equal(t, ErrTokenExpired, err)
}

func TestTokenManager_Invalid(t *testing.T) {
	m := NewTokenManager(JwtConfig{Key: "secret", ExpireHours: 24})
	other := NewTokenManager(JwtConfig{Key: "another", ExpireHours: 24})
	token, err := other.Sign("5f1d", "admin", PrincipalAdmin)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Equal(t, ErrTokenInvalid, err)

	_, err = m.Parse("not-a-token")
	assert.Equal(t, ErrTokenInvalid, err)
}

func TestTokenManager_UnknownType(t *testing.T) {
	claims := TokenClaims{ID: "1", Type: "guest"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	m := NewTokenManager(JwtConfig{Key: "secret", ExpireHours: 24})
	_, err = m.Parse(token)
	assert.Equal(t, ErrTokenInvalid, err)
}
