package utils

import (
	"testing"
	"time"

	"rideshare-backend/internal/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	user := models.User{ID: "driver-1", Role: models.RoleDriver, CompanyID: "company-1"}

	token, err := GenerateJWT("secret", user, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "driver-1", claims.UserID)
	assert.Equal(t, models.RoleDriver, claims.Role)
	assert.Equal(t, "company-1", claims.CompanyID)
}

func TestValidateRejects(t *testing.T) {
	user := models.User{ID: "rider-1", Role: models.RoleRider}

	token, err := GenerateJWT("secret", user, time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken("other", token)
	require.Error(t, err)

	expired, err := GenerateJWT("secret", user, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateToken("secret", expired)
	require.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "rider-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken("secret", unsigned)
	require.Error(t, err)

	_, err = GenerateJWT("", user, time.Hour)
	require.Error(t, err)
}

func TestGenerateAdminJWT(t *testing.T) {
	token, err := GenerateAdminJWT("secret", "admin")
	require.NoError(t, err)

	claims, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.True(t, claims.ExpiresAt.After(time.Now().Add(300*24*time.Hour)))
}
