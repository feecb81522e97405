package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/logger"
	coremocks "github.com/cvmatch/cvmatch-backend/mocks/port/core"
	persistencemocks "github.com/cvmatch/cvmatch-backend/mocks/port/persistence"
	servicemocks "github.com/cvmatch/cvmatch-backend/mocks/port/service"
)

type authMocks struct {
	userRepo *persistencemocks.MockUserRepository
	tokens   *servicemocks.MockTokenService
	hasher   *servicemocks.MockPasswordHasher
	oauth    *servicemocks.MockOAuthProvider
	mailer   *servicemocks.MockMailer
}

func newAuthServiceWithMocks() (*Service, *authMocks) {
	m := &authMocks{
		userRepo: new(persistencemocks.MockUserRepository),
		tokens:   new(servicemocks.MockTokenService),
		hasher:   new(servicemocks.MockPasswordHasher),
		oauth:    new(servicemocks.MockOAuthProvider),
		mailer:   new(servicemocks.MockMailer),
	}
	tp := new(coremocks.MockTimeProvider)
	tp.On("Now").Return(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)).Maybe()
	svc := NewService(m.userRepo, m.tokens, m.hasher, m.oauth, m.mailer, tp, logger.NewNoopLogger())
	return svc, m
}

func activeUser() *entity.User {
	return &entity.User{
		ID:           7,
		Email:        "ana@example.com",
		Name:         "Ana",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
	}
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates the user with a hashed password and verification token", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(nil, errs.ErrUserNotFound)
		m.hasher.On("Hash", "long-enough-pw").Return("$2a$10$hash", nil)
		m.userRepo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.Email == "ana@example.com" && u.PasswordHash == "$2a$10$hash" &&
				u.VerificationToken != "" && u.VerificationExpires != nil
		})).Return(nil)
		m.mailer.On("SendVerificationEmail", ctx, "ana@example.com", "Ana", mock.AnythingOfType("string")).Return(nil)

		user, err := svc.Register(ctx, "Ana@Example.com", "Ana", "long-enough-pw")

		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", user.Email)
		assert.False(t, user.EmailVerified)
		m.mailer.AssertExpectations(t)
	})

	t.Run("Short passwords are rejected without touching the repository", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		_, err := svc.Register(ctx, "ana@example.com", "Ana", "short")

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		m.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(activeUser(), nil)

		_, err := svc.Register(ctx, "ana@example.com", "Ana", "long-enough-pw")

		assert.ErrorIs(t, err, errs.ErrEmailTaken)
	})

	t.Run("Mail delivery failure does not fail the registration", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(nil, errs.ErrUserNotFound)
		m.hasher.On("Hash", "long-enough-pw").Return("$2a$10$hash", nil)
		m.userRepo.On("Create", ctx, mock.Anything).Return(nil)
		m.mailer.On("SendVerificationEmail", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)

		_, err := svc.Register(ctx, "ana@example.com", "Ana", "long-enough-pw")

		assert.NoError(t, err)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid credentials issue a token", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()

		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)
		m.hasher.On("Verify", "pw", user.PasswordHash).Return(true)
		m.tokens.On("Issue", user).Return("jwt-token", nil)

		session, err := svc.Login(ctx, "ana@example.com", "pw")

		require.NoError(t, err)
		assert.Equal(t, "jwt-token", session.Token)
		assert.Equal(t, user, session.User)
	})

	t.Run("Unknown email and wrong password map to the same error", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, errs.ErrUserNotFound)
		_, err := svc.Login(ctx, "nobody@example.com", "pw")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

		user := activeUser()
		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)
		m.hasher.On("Verify", "wrong", user.PasswordHash).Return(false)
		_, err = svc.Login(ctx, "ana@example.com", "wrong")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	})

	t.Run("OAuth-only accounts cannot log in with a password", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()
		user.PasswordHash = ""
		user.GoogleID = "google-sub"

		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)

		_, err := svc.Login(ctx, "ana@example.com", "pw")

		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
		m.hasher.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("Inactive accounts are rejected", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()
		user.IsActive = false

		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)
		m.hasher.On("Verify", "pw", user.PasswordHash).Return(true)

		_, err := svc.Login(ctx, "ana@example.com", "pw")

		assert.ErrorIs(t, err, errs.ErrAccountInactive)
	})
}

func TestService_GoogleCallback(t *testing.T) {
	ctx := context.Background()
	identity := &svcport.OAuthUser{Subject: "google-sub", Email: "ana@example.com", Name: "Ana"}

	t.Run("Known Google identity logs straight in", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()
		user.GoogleID = "google-sub"

		m.oauth.On("Exchange", ctx, "code").Return(identity, nil)
		m.userRepo.On("GetByGoogleID", ctx, "google-sub").Return(user, nil)
		m.tokens.On("Issue", user).Return("jwt-token", nil)

		session, err := svc.GoogleCallback(ctx, "code")

		require.NoError(t, err)
		assert.Equal(t, "jwt-token", session.Token)
	})

	t.Run("Existing local account is linked to the Google identity", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()

		m.oauth.On("Exchange", ctx, "code").Return(identity, nil)
		m.userRepo.On("GetByGoogleID", ctx, "google-sub").Return(nil, errs.ErrUserNotFound)
		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)
		m.userRepo.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.GoogleID == "google-sub" && u.EmailVerified
		})).Return(nil)
		m.tokens.On("Issue", mock.Anything).Return("jwt-token", nil)

		_, err := svc.GoogleCallback(ctx, "code")

		require.NoError(t, err)
		m.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("First login provisions a verified account", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.oauth.On("Exchange", ctx, "code").Return(identity, nil)
		m.userRepo.On("GetByGoogleID", ctx, "google-sub").Return(nil, errs.ErrUserNotFound)
		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(nil, errs.ErrUserNotFound)
		m.userRepo.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.GoogleID == "google-sub" && u.EmailVerified && u.PasswordHash == ""
		})).Return(nil)
		m.tokens.On("Issue", mock.Anything).Return("jwt-token", nil)

		session, err := svc.GoogleCallback(ctx, "code")

		require.NoError(t, err)
		assert.NotEmpty(t, session.Token)
	})
}

func TestService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("Forgot password for an unknown email is a silent no-op", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.userRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, errs.ErrUserNotFound)

		err := svc.ForgotPassword(ctx, "nobody@example.com")

		assert.NoError(t, err)
		m.mailer.AssertNotCalled(t, "SendPasswordResetEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Forgot password stores the token before mailing it", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()

		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)
		m.userRepo.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.ResetToken != "" && u.ResetExpires != nil
		})).Return(nil)
		m.mailer.On("SendPasswordResetEmail", ctx, "ana@example.com", "Ana", mock.AnythingOfType("string")).Return(nil)

		err := svc.ForgotPassword(ctx, "ana@example.com")

		require.NoError(t, err)
		m.mailer.AssertExpectations(t)
	})

	t.Run("Reset with a valid token installs the new hash and clears the token", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()
		expires := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
		user.ResetToken = "reset-token"
		user.ResetExpires = &expires

		m.userRepo.On("GetByResetToken", ctx, "reset-token").Return(user, nil)
		m.hasher.On("Hash", "new-password").Return("$2a$10$new", nil)
		m.userRepo.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.PasswordHash == "$2a$10$new" && u.ResetToken == ""
		})).Return(nil)

		err := svc.ResetPassword(ctx, "reset-token", "new-password")

		assert.NoError(t, err)
	})

	t.Run("Reset with an unknown token is invalid", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.userRepo.On("GetByResetToken", ctx, "bogus").Return(nil, errs.ErrUserNotFound)

		err := svc.ResetPassword(ctx, "bogus", "new-password")

		assert.ErrorIs(t, err, errs.ErrTokenInvalid)
	})

	t.Run("Reset with an expired token fails", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()
		expires := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
		user.ResetToken = "reset-token"
		user.ResetExpires = &expires

		m.userRepo.On("GetByResetToken", ctx, "reset-token").Return(user, nil)
		m.hasher.On("Hash", "new-password").Return("$2a$10$new", nil)

		err := svc.ResetPassword(ctx, "reset-token", "new-password")

		assert.ErrorIs(t, err, errs.ErrTokenExpired)
		m.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid token marks the email verified", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()
		expires := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
		user.VerificationToken = "verify-token"
		user.VerificationExpires = &expires

		m.userRepo.On("GetByVerificationToken", ctx, "verify-token").Return(user, nil)
		m.userRepo.On("Update", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.EmailVerified && u.VerificationToken == ""
		})).Return(nil)

		err := svc.VerifyEmail(ctx, "verify-token")

		assert.NoError(t, err)
	})

	t.Run("Unknown token is invalid", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.userRepo.On("GetByVerificationToken", ctx, "bogus").Return(nil, errs.ErrUserNotFound)

		err := svc.VerifyEmail(ctx, "bogus")

		assert.ErrorIs(t, err, errs.ErrTokenInvalid)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid token resolves to its user", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()

		m.tokens.On("Subject", "jwt-token").Return("ana@example.com", nil)
		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)

		got, err := svc.Authenticate(ctx, "jwt-token")

		require.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("Token for a deleted user is invalid", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()

		m.tokens.On("Subject", "jwt-token").Return("gone@example.com", nil)
		m.userRepo.On("GetByEmail", ctx, "gone@example.com").Return(nil, errs.ErrUserNotFound)

		_, err := svc.Authenticate(ctx, "jwt-token")

		assert.ErrorIs(t, err, errs.ErrTokenInvalid)
	})

	t.Run("Inactive user is rejected", func(t *testing.T) {
		svc, m := newAuthServiceWithMocks()
		user := activeUser()
		user.IsActive = false

		m.tokens.On("Subject", "jwt-token").Return("ana@example.com", nil)
		m.userRepo.On("GetByEmail", ctx, "ana@example.com").Return(user, nil)

		_, err := svc.Authenticate(ctx, "jwt-token")

		assert.ErrorIs(t, err, errs.ErrAccountInactive)
	})
}
