package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sharewheels/carpool-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{Email: "kofi@example.com", IsAdmin: true}
	user.ID = 42

	tokenString, err := GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := ValidateToken(tokenString)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["id"])
	assert.Equal(t, "kofi@example.com", claims["email"])
	assert.Equal(t, true, claims["isAdmin"])
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	user := &models.User{Email: "kofi@example.com"}
	user.ID = 1
	tokenString, err := GenerateToken(user)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "different-secret")
	_, err = ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}
