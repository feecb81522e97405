package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/port/persistence"
	svcport "github.com/cvmatch/cvmatch-backend/internal/domain/port/service"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/credit"
)

// VerifyResult is the outcome of a verify-payment call
type VerifyResult struct {
	Paid           bool
	CreditsGranted bool
	Remaining      int
}

// Service drives checkout creation and the two grant paths: the provider
// webhook and the client-initiated verify-payment fallback for lost webhooks.
// Both paths share the credit service's idempotent grant.
type Service struct {
	userRepo persistence.UserRepository
	gateway  svcport.PaymentGateway
	credits  *credit.Service
	logger   coreport.Logger
}

// NewService creates the payment service
func NewService(
	userRepo persistence.UserRepository,
	gateway svcport.PaymentGateway,
	credits *credit.Service,
	logger coreport.Logger,
) *Service {
	return &Service{
		userRepo: userRepo,
		gateway:  gateway,
		credits:  credits,
		logger:   logger,
	}
}

// CreateCheckout opens a provider checkout for one credit package
func (s *Service) CreateCheckout(ctx context.Context, user *entity.User) (*entity.CheckoutSession, error) {
	session, err := s.gateway.CreateCheckoutSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrPaymentProvider, err)
	}
	s.logger.Info("Checkout session created", map[string]any{
		"user_id":    user.ID,
		"session_id": session.ID,
	})
	return session, nil
}

// HandleWebhook verifies the provider signature and grants the purchased
// package on checkout completion. Events the application does not act on are
// acknowledged without side effects.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrInvalidRequest, err)
	}
	if event.Type != svcport.EventCheckoutCompleted {
		return nil
	}

	user, err := s.userRepo.GetByEmail(ctx, event.CustomerEmail)
	if err != nil {
		if errors.Is(err, errs.ErrUserNotFound) {
			s.logger.Error("Webhook for unknown customer", map[string]any{
				"session_id": event.SessionID,
			})
			return errs.ErrUserNotFound
		}
		return err
	}

	result, err := s.credits.GrantPackage(ctx, user.ID, event.SessionID)
	if err != nil {
		return err
	}
	if result.AlreadyGranted {
		return nil
	}
	s.logger.Info("Webhook grant applied", map[string]any{
		"user_id":    user.ID,
		"session_id": event.SessionID,
	})
	return nil
}

// VerifyPayment re-checks a checkout session with the provider and grants the
// package if it was paid. Granting goes through the same idempotent path as
// the webhook, so a session can never be credited twice.
func (s *Service) VerifyPayment(ctx context.Context, user *entity.User, sessionID string) (*VerifyResult, error) {
	if sessionID == "" {
		return nil, errs.ErrInvalidRequest
	}

	session, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrPaymentProvider, err)
	}
	if !session.Paid {
		return &VerifyResult{Paid: false}, nil
	}

	result, err := s.credits.GrantPackage(ctx, user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		Paid:           true,
		CreditsGranted: !result.AlreadyGranted,
		Remaining:      result.Remaining,
	}, nil
}
