package user

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/port/persistence"
)

// Profile is a user together with their remaining analysis count
type Profile struct {
	User      *entity.User
	Remaining int
}

// Service serves the account-facing profile operations
type Service struct {
	userRepo     persistence.UserRepository
	creditRepo   persistence.CreditRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates the profile service
func NewService(
	userRepo persistence.UserRepository,
	creditRepo persistence.CreditRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		creditRepo:   creditRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetProfile loads the user's profile with the current credit count
func (s *Service) GetProfile(ctx context.Context, user *entity.User) (*Profile, error) {
	ledger, err := s.creditRepo.GetLedger(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Remaining: ledger.Remaining}, nil
}

// UpdateName changes the user's display name
func (s *Service) UpdateName(ctx context.Context, user *entity.User, name string) error {
	if err := user.Rename(name, s.timeProvider); err != nil {
		return err
	}
	return s.userRepo.Update(ctx, user)
}
