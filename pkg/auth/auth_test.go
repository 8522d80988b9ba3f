package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Roles: []string{"ADMIN"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-1",
			Issuer:    "questions-service",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	v, err := NewJWTValidator(testSecret, "questions-service")
	require.NoError(t, err)

	t.Run("valid token with bearer prefix", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

		claims, err := v.ValidateToken("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", claims.Subject)
		assert.True(t, claims.HasRole(RoleAdmin))
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := v.ValidateToken("Bearer ")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("expired", func(t *testing.T) {
		c := validClaims()
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()))
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := validClaims()
		c.Issuer = "someone-else"
		_, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		_, err := v.ValidateToken(sign(t, jwt.SigningMethodHS384, []byte(testSecret), validClaims()))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := validClaims()
		c.Subject = ""
		_, err := v.ValidateToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator("", "")
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", SubjectFromContext(ctx))

	ctx = SetUserInContext(ctx, &UserContext{UserID: "u-1", Roles: []string{"ADMIN"}})
	user, ok := GetUserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "u-1", SubjectFromContext(ctx))
}

func TestTokenBucketLimiter(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l := NewTokenBucketLimiter(2, 3).WithClock(func() time.Time { return now })
	t.Cleanup(l.Close)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4"), "burst request %d", i)
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4"))
	assert.True(t, l.Allow(ctx, "5.6.7.8"), "keys are independent")

	now = now.Add(500 * time.Millisecond)
	assert.True(t, l.Allow(ctx, "1.2.3.4"), "one token refilled")
	assert.False(t, l.Allow(ctx, "1.2.3.4"))

	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4"))
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4"), "refill is capped at burst")
}
