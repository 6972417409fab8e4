package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, userID string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ParseBearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = ParseBearerToken("")
	assert.Error(t, err)

	_, err = ParseBearerToken("Basic abc")
	assert.Error(t, err)

	_, err = ParseBearerToken("Bearerabc")
	assert.Error(t, err)
}

func TestParseAndValidateToken(t *testing.T) {
	const secret = "test-secret"

	tokenStr := signToken(t, secret, "64f1c0ffee00000000000001", time.Hour)
	claims, err := ParseAndValidateToken(secret, tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "64f1c0ffee00000000000001", claims.UserID)

	_, err = ParseAndValidateToken("wrong-secret", tokenStr)
	assert.Error(t, err)

	expired := signToken(t, secret, "u1", -time.Minute)
	_, err = ParseAndValidateToken(secret, expired)
	assert.Error(t, err)

	_, err = ParseAndValidateToken(secret, "not.a.token")
	assert.Error(t, err)
}
