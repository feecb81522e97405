package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coremocks "github.com/cvmatch/cvmatch-backend/mocks/port/core"
)

func timeProviderAt(t time.Time) *coremocks.MockTimeProvider {
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(t)
	return tp
}

func TestJWTTokenService(t *testing.T) {
	issuedAt := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	account := &entity.User{ID: 7, Email: "ana@example.com"}

	t.Run("Issued token round-trips to its subject", func(t *testing.T) {
		svc := NewJWTTokenService("test-secret", time.Hour, timeProviderAt(issuedAt))

		token, err := svc.Issue(account)
		require.NoError(t, err)

		subject, err := svc.Subject(token)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", subject)
	})

	t.Run("Expired token is rejected", func(t *testing.T) {
		issuer := NewJWTTokenService("test-secret", time.Hour, timeProviderAt(issuedAt))
		token, err := issuer.Issue(account)
		require.NoError(t, err)

		later := NewJWTTokenService("test-secret", time.Hour, timeProviderAt(issuedAt.Add(2*time.Hour)))
		_, err = later.Subject(token)

		assert.ErrorIs(t, err, errs.ErrTokenInvalid)
	})

	t.Run("Token signed with a different secret is rejected", func(t *testing.T) {
		issuer := NewJWTTokenService("other-secret", time.Hour, timeProviderAt(issuedAt))
		token, err := issuer.Issue(account)
		require.NoError(t, err)

		svc := NewJWTTokenService("test-secret", time.Hour, timeProviderAt(issuedAt))
		_, err = svc.Subject(token)

		assert.ErrorIs(t, err, errs.ErrTokenInvalid)
	})

	t.Run("Garbage token is rejected", func(t *testing.T) {
		svc := NewJWTTokenService("test-secret", time.Hour, timeProviderAt(issuedAt))

		_, err := svc.Subject("not.a.token")

		assert.ErrorIs(t, err, errs.ErrTokenInvalid)
	})
}

func TestBcryptHasher(t *testing.T) {
	t.Run("Hash verifies against the original password only", func(t *testing.T) {
		hasher := NewBcryptHasher(4)

		hash, err := hasher.Hash("correct horse battery staple")
		require.NoError(t, err)

		assert.True(t, hasher.Verify("correct horse battery staple", hash))
		assert.False(t, hasher.Verify("wrong password", hash))
	})

	t.Run("Out-of-range cost falls back to the default", func(t *testing.T) {
		hasher := NewBcryptHasher(99)

		hash, err := hasher.Hash("password123")
		require.NoError(t, err)
		assert.True(t, hasher.Verify("password123", hash))
	})
}
