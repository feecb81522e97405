package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coremocks "github.com/cvmatch/cvmatch-backend/mocks/port/core"
)

func fixedTimeProvider(t time.Time) *coremocks.MockTimeProvider {
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(t)
	return tp
}

func TestNewUser(t *testing.T) {
	fixedTime := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Valid user creation", func(t *testing.T) {
		user, err := NewUser("Ana@Example.com", "  Ana Silva ", mockTime)

		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.Equal(t, "Ana Silva", user.Name)
		assert.True(t, user.IsActive)
		assert.False(t, user.EmailVerified)
		assert.Equal(t, fixedTime, user.CreatedAt)
	})

	t.Run("Invalid emails are rejected", func(t *testing.T) {
		for _, email := range []string{"", "   ", "not-an-email"} {
			t.Run(email, func(t *testing.T) {
				user, err := NewUser(email, "Ana", mockTime)
				assert.ErrorIs(t, err, errs.ErrInvalidRequest)
				assert.Nil(t, user)
			})
		}
	})
}

func TestUser_EmailVerification(t *testing.T) {
	fixedTime := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	newVerifyingUser := func(t *testing.T) *User {
		user, err := NewUser("ana@example.com", "Ana", mockTime)
		require.NoError(t, err)
		user.StartEmailVerification("tok-123", 24*time.Hour, mockTime)
		return user
	}

	t.Run("Valid token verifies the email", func(t *testing.T) {
		user := newVerifyingUser(t)

		require.NoError(t, user.ConfirmEmail("tok-123", mockTime))
		assert.True(t, user.EmailVerified)
		assert.Empty(t, user.VerificationToken)
		assert.Nil(t, user.VerificationExpires)
	})

	t.Run("Wrong token is rejected", func(t *testing.T) {
		user := newVerifyingUser(t)

		assert.ErrorIs(t, user.ConfirmEmail("tok-999", mockTime), errs.ErrTokenInvalid)
		assert.False(t, user.EmailVerified)
	})

	t.Run("Expired token is rejected", func(t *testing.T) {
		user := newVerifyingUser(t)

		lateTime := fixedTimeProvider(fixedTime.Add(25 * time.Hour))
		assert.ErrorIs(t, user.ConfirmEmail("tok-123", lateTime), errs.ErrTokenExpired)
		assert.False(t, user.EmailVerified)
	})
}

func TestUser_PasswordReset(t *testing.T) {
	fixedTime := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	newResettingUser := func(t *testing.T) *User {
		user, err := NewUser("ana@example.com", "Ana", mockTime)
		require.NoError(t, err)
		user.PasswordHash = "old-hash"
		user.StartPasswordReset("reset-123", time.Hour, mockTime)
		return user
	}

	t.Run("Valid token installs the new hash and clears the token", func(t *testing.T) {
		user := newResettingUser(t)

		require.NoError(t, user.CompletePasswordReset("reset-123", "new-hash", mockTime))
		assert.Equal(t, "new-hash", user.PasswordHash)
		assert.Empty(t, user.ResetToken)

		// Replaying the same token must fail
		assert.ErrorIs(t, user.CompletePasswordReset("reset-123", "other", mockTime), errs.ErrTokenInvalid)
	})

	t.Run("Expired token keeps the old hash", func(t *testing.T) {
		user := newResettingUser(t)

		lateTime := fixedTimeProvider(fixedTime.Add(2 * time.Hour))
		assert.ErrorIs(t, user.CompletePasswordReset("reset-123", "new-hash", lateTime), errs.ErrTokenExpired)
		assert.Equal(t, "old-hash", user.PasswordHash)
	})
}

func TestUser_IsOAuthOnly(t *testing.T) {
	mockTime := fixedTimeProvider(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))

	user, err := NewUser("ana@example.com", "Ana", mockTime)
	require.NoError(t, err)

	assert.False(t, user.IsOAuthOnly())

	user.GoogleID = "google-sub-1"
	assert.True(t, user.IsOAuthOnly())

	user.PasswordHash = "hash"
	assert.False(t, user.IsOAuthOnly())
}
