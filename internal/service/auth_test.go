package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RoundTrip(t *testing.T) {
	auth := NewAuthService(JWTConfig{Secret: "s3cret", ExpiresIn: 1})

	token, err := auth.GenerateToken("kasir01", "operator")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "kasir01", claims.Username)
	assert.Equal(t, "operator", claims.Role)
}

func TestAuthService_RejectsOtherSecret(t *testing.T) {
	issuer := NewAuthService(JWTConfig{Secret: "one", ExpiresIn: 1})
	verifier := NewAuthService(JWTConfig{Secret: "two", ExpiresIn: 1})

	token, err := issuer.GenerateToken("kasir01", "operator")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RejectsExpired(t *testing.T) {
	auth := NewAuthService(JWTConfig{Secret: "s3cret", ExpiresIn: 1})
	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := auth.GenerateToken("kasir01", "operator")
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RejectsNoneAlgorithm(t *testing.T) {
	auth := NewAuthService(JWTConfig{Secret: "s3cret", ExpiresIn: 1})

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "kasir01"})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.ValidateToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_SubjectFallback(t *testing.T) {
	auth := NewAuthService(JWTConfig{Secret: "s3cret", ExpiresIn: 1})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "supervisor",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	claims, err := auth.ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "supervisor", claims.Username)
}

func TestAuthService_RequiresUsername(t *testing.T) {
	auth := NewAuthService(JWTConfig{Secret: "s3cret", ExpiresIn: 1})
	_, err := auth.GenerateToken("  ", "operator")
	assert.Error(t, err)
}
