package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/model"
)

// UserRepository implements persistence.UserRepository using GORM
type UserRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func userToModel(user *entity.User) *model.User {
	return &model.User{
		ID:                  user.ID,
		Email:               user.Email,
		Name:                user.Name,
		PasswordHash:        optional(user.PasswordHash),
		GoogleID:            optional(user.GoogleID),
		IsActive:            user.IsActive,
		EmailVerified:       user.EmailVerified,
		StripeCustomerID:    optional(user.StripeCustomerID),
		VerificationToken:   optional(user.VerificationToken),
		VerificationExpires: user.VerificationExpires,
		ResetToken:          optional(user.ResetToken),
		ResetExpires:        user.ResetExpires,
		CreatedAt:           user.CreatedAt,
		UpdatedAt:           user.UpdatedAt,
	}
}

func userToEntity(m *model.User) *entity.User {
	return &entity.User{
		ID:                  m.ID,
		Email:               m.Email,
		Name:                m.Name,
		PasswordHash:        fromOptional(m.PasswordHash),
		GoogleID:            fromOptional(m.GoogleID),
		IsActive:            m.IsActive,
		EmailVerified:       m.EmailVerified,
		StripeCustomerID:    fromOptional(m.StripeCustomerID),
		VerificationToken:   fromOptional(m.VerificationToken),
		VerificationExpires: m.VerificationExpires,
		ResetToken:          fromOptional(m.ResetToken),
		ResetExpires:        m.ResetExpires,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// handleDatabaseError standardizes database error handling
func (r *UserRepository) handleDatabaseError(operation string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.ErrUserNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"error": err.Error(),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrEmailTaken
	}

	return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, err.Error())
}

// Create persists a new user and backfills the generated id
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := userToModel(user)
	if result := r.db.WithContext(ctx).Create(userModel); result.Error != nil {
		return r.handleDatabaseError("creating user", result.Error)
	}
	user.ID = userModel.ID
	return nil
}

// GetByID retrieves a user by primary key
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	var userModel model.User
	if result := r.db.WithContext(ctx).First(&userModel, id); result.Error != nil {
		return nil, r.handleDatabaseError("getting user by id", result.Error)
	}
	return userToEntity(&userModel), nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&userModel)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user by email", result.Error)
	}
	return userToEntity(&userModel), nil
}

// GetByGoogleID retrieves a user by their Google subject id
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&userModel)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user by google id", result.Error)
	}
	return userToEntity(&userModel), nil
}

// GetByResetToken retrieves the user holding a password-reset token
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).Where("reset_token = ?", token).First(&userModel)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user by reset token", result.Error)
	}
	return userToEntity(&userModel), nil
}

// GetByVerificationToken retrieves the user holding an email-verification token
func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&userModel)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user by verification token", result.Error)
	}
	return userToEntity(&userModel), nil
}

// Update saves all mutable fields of the user. Cleared token columns are
// written as NULL, which is why a full-row save is used instead of Updates.
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	result := r.db.WithContext(ctx).Save(userToModel(user))
	if result.Error != nil {
		return r.handleDatabaseError("updating user", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}
