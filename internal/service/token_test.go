package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/maslovdev/jobmarket-backend/internal/models"
)

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	assert.NoError(t, err)
	return signed
}

func TestTokenManager_ParseAccess_Success(t *testing.T) {
	manager := NewTokenManager("test-secret")
	userID := uuid.New()

	raw := signedToken(t, "test-secret", jwt.MapClaims{
		"sub":  userID.String(),
		"role": models.RoleWorker,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	parsedID, role, err := manager.ParseAccess(raw)

	assert.NoError(t, err)
	assert.Equal(t, userID, parsedID)
	assert.Equal(t, models.RoleWorker, role)
}

func TestTokenManager_ParseAccess_WrongSecret(t *testing.T) {
	manager := NewTokenManager("test-secret")

	raw := signedToken(t, "other-secret", jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, _, err := manager.ParseAccess(raw)
	assert.Error(t, err)
}

func TestTokenManager_ParseAccess_Expired(t *testing.T) {
	manager := NewTokenManager("test-secret")

	raw := signedToken(t, "test-secret", jwt.MapClaims{
		"sub": uuid.New().String(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, _, err := manager.ParseAccess(raw)
	assert.Error(t, err)
}

func TestTokenManager_ParseAccess_BadSubject(t *testing.T) {
	manager := NewTokenManager("test-secret")

	raw := signedToken(t, "test-secret", jwt.MapClaims{
		"sub": "не-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, _, err := manager.ParseAccess(raw)
	assert.Error(t, err)
}
