package auth

import (
	"testing"

	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	config.Set("JWT_SECRET", "test-secret")

	tok, err := GenerateToken("u-42", "admin")
	require.NoError(t, err)

	claims, err := ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-42", claims.UserID())
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	config.Set("JWT_SECRET", "one")
	tok, err := GenerateToken("u-1", "user")
	require.NoError(t, err)

	config.Set("JWT_SECRET", "two")
	_, err = ValidateToken(tok)
	assert.Error(t, err)

	_, err = ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
