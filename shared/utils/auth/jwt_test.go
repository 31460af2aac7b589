package utils

import (
	"testing"
	"time"

	"taskhive-backend/shared/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, method jwt.SigningMethod, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(config.GetConfig().JWTSecret))
	require.NoError(t, err)
	return signed
}

func TestValidateSessionToken(t *testing.T) {
	tokenString := signTestToken(t, jwt.SigningMethodHS256, &SessionClaims{
		UserID: "user-1",
		Email:  "jane@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := ValidateSessionToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestValidateSessionTokenRejectsExpired(t *testing.T) {
	tokenString := signTestToken(t, jwt.SigningMethodHS256, &SessionClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := ValidateSessionToken(tokenString)
	assert.Error(t, err)
}

func TestValidateSessionTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateSessionToken("not-a-token")
	assert.Error(t, err)
}
