package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/port/persistence"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
)

const (
	// MinPasswordLength is the minimum accepted local-account password length
	MinPasswordLength = 8

	// VerificationTokenTTL bounds how long an emailed verification link stays valid
	VerificationTokenTTL = 24 * time.Hour

	// ResetTokenTTL bounds how long an emailed password-reset link stays valid
	ResetTokenTTL = time.Hour
)

// Session is an authenticated login result
type Session struct {
	Token string
	User  *entity.User
}

// Service implements account registration, login and the email-driven
// verification and password-reset flows
type Service struct {
	userRepo     persistence.UserRepository
	tokens       svcport.TokenService
	hasher       svcport.PasswordHasher
	oauth        svcport.OAuthProvider
	mailer       svcport.Mailer
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates the authentication service
func NewService(
	userRepo persistence.UserRepository,
	tokens svcport.TokenService,
	hasher svcport.PasswordHasher,
	oauth svcport.OAuthProvider,
	mailer svcport.Mailer,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		tokens:       tokens,
		hasher:       hasher,
		oauth:        oauth,
		mailer:       mailer,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Register creates a local account and emails its verification link. Email
// delivery failures are logged but do not fail the registration.
func (s *Service) Register(ctx context.Context, email, name, password string) (*entity.User, error) {
	if len(password) < MinPasswordLength {
		return nil, errs.ErrInvalidRequest
	}

	user, err := entity.NewUser(email, name, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return nil, errs.ErrEmailTaken
	} else if !errors.Is(err, errs.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.StartEmailVerification(uuid.NewString(), VerificationTokenTTL, s.timeProvider)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, user.VerificationToken); err != nil {
		s.logger.Error("Failed to send verification email", map[string]any{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	s.logger.Info("User registered", map[string]any{"user_id": user.ID})
	return user, nil
}

// Login authenticates a local account and issues a bearer token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.IsOAuthOnly() || !s.hasher.Verify(password, user.PasswordHash) {
		return nil, errs.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, errs.ErrAccountInactive
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

// GoogleLoginURL builds the Google consent-screen redirect
func (s *Service) GoogleLoginURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// GoogleCallback exchanges the authorization code and logs the user in,
// provisioning the account on first login. An existing local account with the
// same email is linked to the Google identity.
func (s *Service) GoogleCallback(ctx context.Context, code string) (*Session, error) {
	identity, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByGoogleID(ctx, identity.Subject)
	if errors.Is(err, errs.ErrUserNotFound) {
		user, err = s.linkOrProvision(ctx, identity)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.ErrAccountInactive
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func (s *Service) linkOrProvision(ctx context.Context, identity *svcport.OAuthUser) (*entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, identity.Email)
	if err == nil {
		user.GoogleID = identity.Subject
		user.EmailVerified = true
		user.UpdatedAt = s.timeProvider.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, errs.ErrUserNotFound) {
		return nil, err
	}

	user, err = entity.NewUser(identity.Email, identity.Name, s.timeProvider)
	if err != nil {
		return nil, err
	}
	// Google already verified the address for us
	user.GoogleID = identity.Subject
	user.EmailVerified = true
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User provisioned from Google login", map[string]any{"user_id": user.ID})
	return user, nil
}

// ForgotPassword starts the reset flow. Unknown addresses are ignored so the
// endpoint does not reveal which emails hold accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil
		}
		return err
	}

	user.StartPasswordReset(uuid.NewString(), ResetTokenTTL, s.timeProvider)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, user.ResetToken)
}

// ResetPassword completes the reset flow with the emailed token
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return errs.ErrInvalidRequest
	}

	user, err := s.userRepo.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return errs.ErrTokenInvalid
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := user.CompletePasswordReset(token, hash, s.timeProvider); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user)
}

// VerifyEmail confirms the address behind an emailed verification token
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return errs.ErrTokenInvalid
		}
		return err
	}
	if err := user.ConfirmEmail(token, s.timeProvider); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user)
}

// Authenticate resolves a bearer token to its active user. Used by the
// authentication middleware on every protected request.
func (s *Service) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	email, err := s.tokens.Subject(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			return nil, errs.ErrTokenInvalid
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.ErrAccountInactive
	}
	return user, nil
}
