package credit

import (
	"context"
	"errors"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/port/persistence"
)

// GrantResult reports the outcome of a package grant
type GrantResult struct {
	// AlreadyGranted is true when the checkout session had been processed
	// before; the ledger was not touched again.
	AlreadyGranted bool
	Remaining      int
}

// Service manages the per-user analysis credit ledger. Grants run inside a
// unit-of-work transaction so the idempotency record and the ledger increment
// commit or roll back together.
type Service struct {
	uow          persistence.UnitOfWork
	creditRepo   persistence.CreditRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates the credit ledger service
func NewService(
	uow persistence.UnitOfWork,
	creditRepo persistence.CreditRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		creditRepo:   creditRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Balance returns the user's remaining analysis count
func (s *Service) Balance(ctx context.Context, userID uint64) (int, error) {
	ledger, err := s.creditRepo.GetLedger(ctx, userID)
	if err != nil {
		return 0, err
	}
	return ledger.Remaining, nil
}

// GrantPackage credits one package for the given checkout session. The grant
// is idempotent on the session id: replayed webhooks and verify-payment calls
// for an already-processed session return AlreadyGranted without a second
// increment.
func (s *Service) GrantPackage(ctx context.Context, userID uint64, sessionID string) (*GrantResult, error) {
	record, err := entity.NewProcessedPaymentSession(sessionID, userID, entity.CreditPackageSize, s.timeProvider.Now())
	if err != nil {
		return nil, err
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := s.uow.Rollback(txCtx); rbErr != nil {
				s.logger.Error("Failed to roll back grant transaction", map[string]any{
					"session_id": sessionID,
					"error":      rbErr.Error(),
				})
			}
		}
	}()

	sessionRepo := s.uow.GetPaymentSessionRepository(txCtx)
	if err := sessionRepo.Create(txCtx, record); err != nil {
		if errors.Is(err, errs.ErrSessionProcessed) {
			remaining, balErr := s.Balance(ctx, userID)
			if balErr != nil {
				return nil, balErr
			}
			s.logger.Info("Checkout session already granted, skipping", map[string]any{
				"user_id":    userID,
				"session_id": sessionID,
			})
			return &GrantResult{AlreadyGranted: true, Remaining: remaining}, nil
		}
		return nil, err
	}

	ledger, err := s.uow.GetCreditRepository(txCtx).Grant(txCtx, userID, entity.CreditPackageSize)
	if err != nil {
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, err
	}
	committed = true

	s.logger.Info("Credit package granted", map[string]any{
		"user_id":    userID,
		"session_id": sessionID,
		"granted":    entity.CreditPackageSize,
		"remaining":  ledger.Remaining,
	})

	return &GrantResult{AlreadyGranted: false, Remaining: ledger.Remaining}, nil
}
