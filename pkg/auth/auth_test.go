package auth

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)
	assert.True(t, h.Check("hunter2hunter2", hash))
	assert.False(t, h.Check("hunter3hunter3", hash))

	other, err := h.Hash("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes are salted")

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestTokenManager(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newManager := func(t *testing.T, secret string) *TokenManager {
		m, err := NewTokenManager(JWTConfig{SecretKey: secret, Issuer: "ahkneemay", TTL: time.Hour})
		require.NoError(t, err)
		m.now = func() time.Time { return now }
		return m
	}

	t.Run("issue and validate", func(t *testing.T) {
		m := newManager(t, "secret")
		token, expiresAt, err := m.Issue("alice99")
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Hour), expiresAt)

		claims, err := m.Validate("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, "alice99", claims.Username())
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("expired", func(t *testing.T) {
		m := newManager(t, "secret")
		token, _, err := m.Issue("alice99")
		require.NoError(t, err)

		m.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err = m.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		token, _, err := newManager(t, "other").Issue("alice99")
		require.NoError(t, err)

		_, err = newManager(t, "secret").Validate(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice99",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = newManager(t, "secret").Validate(token)
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := newManager(t, "secret").Validate("Bearer ")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("configuration", func(t *testing.T) {
		_, err := NewTokenManager(JWTConfig{TTL: time.Hour})
		assert.Error(t, err)
		_, err = NewTokenManager(JWTConfig{SecretKey: "s"})
		assert.Error(t, err)
	})
}

func TestSlidingWindowLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	l := NewSlidingWindowLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		allowed, err := l.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow(ctx, "ip:1.2.3.4")
	assert.False(t, allowed)

	allowed, _ = l.Allow(ctx, "ip:5.6.7.8")
	assert.True(t, allowed, "keys are independent")

	now = now.Add(61 * time.Second)
	allowed, _ = l.Allow(ctx, "ip:1.2.3.4")
	assert.True(t, allowed, "window slides")

	require.NoError(t, l.Reset(ctx, "ip:1.2.3.4"))
	assert.Empty(t, l.windows["ip:1.2.3.4"])
}

func TestIPRateLimiter(t *testing.T) {
	ctx := context.Background()
	inner := NewSlidingWindowLimiter(1, time.Minute)
	l := NewIPRateLimiter(inner)

	allowed, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	allowed, _ = l.Allow(ctx, "10.0.0.1")
	assert.False(t, allowed)

	assert.Contains(t, inner.windows, "ip:10.0.0.1")
}

// TestRedisRateLimiter runs against a live server named by REDIS_URL
func TestRedisRateLimiter(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	options, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(options)
	defer client.Close()

	ctx := context.Background()
	l := NewRedisRateLimiter(client, 2, time.Minute, "test-"+time.Now().Format("150405.000"))

	for i := 0; i < 2; i++ {
		allowed, err := l.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, l.Reset(ctx, "ip:1.2.3.4"))
	allowed, err = l.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestUsernameContext(t *testing.T) {
	assert.Empty(t, Username(context.Background()))
	assert.Equal(t, "alice99", Username(WithUsername(context.Background(), "alice99")))
}
