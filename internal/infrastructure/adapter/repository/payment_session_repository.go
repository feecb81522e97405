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

// PaymentSessionRepository implements persistence.PaymentSessionRepository
// using GORM
type PaymentSessionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPaymentSessionRepository creates a new PaymentSessionRepository instance
func NewPaymentSessionRepository(db *gorm.DB, logger coreport.Logger) *PaymentSessionRepository {
	return &PaymentSessionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Exists checks whether the checkout session was already granted
func (r *PaymentSessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	var sessionModel model.ProcessedSession
	result := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&sessionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return true, nil
}

// Create inserts the idempotency record. A unique violation on the session id
// means a concurrent grant won and is reported as ErrSessionProcessed.
func (r *PaymentSessionRepository) Create(ctx context.Context, session *entity.ProcessedPaymentSession) error {
	sessionModel := model.ProcessedSession{
		SessionID:      session.SessionID,
		UserID:         session.UserID,
		CreditsGranted: session.CreditsGranted,
		ProcessedAt:    session.ProcessedAt,
	}
	if result := r.db.WithContext(ctx).Create(&sessionModel); result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Checkout session already processed", map[string]any{
				"session_id": session.SessionID,
			})
			return errs.ErrSessionProcessed
		}
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return nil
}
