package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medistock/medistock-backend/pkg/config"
	"github.com/medistock/medistock-backend/pkg/errors"
)

func testConfig(accessExpiry time.Duration) *config.JWTConfig {
	return &config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "medistock-test",
	}
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	manager := NewManager(testConfig(15 * time.Minute))

	user := &UserInfo{
		ID:    "user-123",
		Email: "pharmacist@example.com",
		Name:  "Jane Doe",
		Roles: []string{"pharmacist", "store_manager"},
	}

	pair, err := manager.GenerateTokenPair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := manager.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "pharmacist@example.com", claims.Email)
	assert.Equal(t, []string{"pharmacist", "store_manager"}, claims.Roles)
	assert.Equal(t, "medistock-test", claims.Issuer)

	refreshClaims, err := manager.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-123", refreshClaims.UserID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	manager := NewManager(testConfig(-1 * time.Minute))

	pair, err := manager.GenerateTokenPair(&UserInfo{ID: "user-123", Email: "a@b.c"})
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(pair.AccessToken)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	manager := NewManager(testConfig(15 * time.Minute))

	pair, err := manager.GenerateTokenPair(&UserInfo{ID: "user-123", Email: "a@b.c"})
	require.NoError(t, err)

	other := NewManager(&config.JWTConfig{
		Secret:        "different-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "medistock-test",
	})

	_, err = other.ValidateAccessToken(pair.AccessToken)
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	manager := NewManager(testConfig(15 * time.Minute))

	_, err := manager.ValidateAccessToken("not-a-token")
	require.Error(t, err)
}
