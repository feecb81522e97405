package persistence

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// UserRepository defines essential methods to interact with user data
type UserRepository interface {
	// Create saves a new user and assigns its ID
	//
	// Possible errors:
	// - ErrEmailTaken: if a user with the same email already exists
	// - ErrDatabaseConnection: if the database connection fails
	Create(ctx context.Context, user *entity.User) error

	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: if no user with the given ID exists
	// - ErrDatabaseConnection: if the database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.User, error)

	// GetByEmail retrieves a user by email (lowercased)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByGoogleID retrieves a user by its OAuth subject id
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)

	// GetByResetToken retrieves the user holding the given password-reset token
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)

	// GetByVerificationToken retrieves the user holding the given
	// email-verification token
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)

	// Update persists changes to an existing user
	Update(ctx context.Context, user *entity.User) error
}
