package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "organizer@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "organizer@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "session id must be set for revocation")
	assert.False(t, claims.ExpiresAt.IsZero())
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := NewJWTService("test-secret", -1).Generate(uuid.New(), "a@example.com")
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", -1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("test-secret", 1).Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionIDsAreUnique(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	id := uuid.New()

	t1, err := svc.Generate(id, "a@example.com")
	require.NoError(t, err)
	t2, err := svc.Generate(id, "a@example.com")
	require.NoError(t, err)

	c1, err := svc.Validate(t1)
	require.NoError(t, err)
	c2, err := svc.Validate(t2)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID, "each sign-in is its own session")
}
