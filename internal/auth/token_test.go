package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("test-secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateAdminToken(token, "test-secret")
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "admin", claims.Subject)
}

func TestValidateAdminToken_WrongKey(t *testing.T) {
	token, err := GenerateAdminToken("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateAdminToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateAdminToken_Expired(t *testing.T) {
	token, err := GenerateAdminToken("test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAdminToken(token, "test-secret")
	assert.Error(t, err)
}

func TestValidateAdminToken_Garbage(t *testing.T) {
	_, err := ValidateAdminToken("not-a-token", "test-secret")
	assert.Error(t, err)
}

func TestKeyHashing(t *testing.T) {
	hash, err := HashKey("super-secret-admin-key")
	require.NoError(t, err)

	assert.True(t, CheckKeyHash("super-secret-admin-key", hash))
	assert.False(t, CheckKeyHash("wrong-key", hash))
	assert.False(t, CheckKeyHash("super-secret-admin-key", "not-a-hash"))
}
