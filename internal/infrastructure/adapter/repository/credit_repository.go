package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/model"
)

// CreditRepository implements persistence.CreditRepository using GORM
type CreditRepository struct {
	db           *gorm.DB
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewCreditRepository creates a new CreditRepository instance
func NewCreditRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *CreditRepository {
	return &CreditRepository{
		db:           db,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

func creditToEntity(m *model.UserCredit) *entity.CreditLedger {
	return &entity.CreditLedger{
		UserID:    m.UserID,
		Remaining: m.RemainingAnalyses,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// GetLedger returns the user's ledger, reporting a missing row as an empty
// ledger rather than an error
func (r *CreditRepository) GetLedger(ctx context.Context, userID uint64) (*entity.CreditLedger, error) {
	var creditModel model.UserCredit
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&creditModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &entity.CreditLedger{UserID: userID}, nil
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return creditToEntity(&creditModel), nil
}

// DebitOne consumes one credit with a single conditional decrement. The WHERE
// guard makes concurrent debits safe: the count can never go below zero, and
// with N concurrent calls at most `remaining` of them report success.
func (r *CreditRepository) DebitOne(ctx context.Context, userID uint64) (int, bool, error) {
	result := r.db.WithContext(ctx).Exec(
		"UPDATE user_credits SET remaining_analyses = remaining_analyses - 1, updated_at = ? "+
			"WHERE user_id = ? AND remaining_analyses >= 1",
		r.timeProvider.Now(), userID,
	)
	if result.Error != nil {
		return 0, false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	ledger, err := r.GetLedger(ctx, userID)
	if err != nil {
		return 0, false, err
	}

	if result.RowsAffected == 0 {
		return ledger.Remaining, false, nil
	}

	r.logger.Debug("Credit debited", map[string]any{
		"user_id":   userID,
		"remaining": ledger.Remaining,
	})
	return ledger.Remaining, true, nil
}

// Grant adds credits to the ledger, creating the row lazily. The row is read
// FOR UPDATE so the increment stays consistent within the caller's
// transaction; Grant must therefore run inside a UnitOfWork.
func (r *CreditRepository) Grant(ctx context.Context, userID uint64, amount int) (*entity.CreditLedger, error) {
	if amount <= 0 {
		return nil, errs.ErrInvalidRequest
	}

	now := r.timeProvider.Now()

	var creditModel model.UserCredit
	result := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&creditModel)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
		}
		creditModel = model.UserCredit{
			UserID:            userID,
			RemainingAnalyses: amount,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if createResult := r.db.WithContext(ctx).Create(&creditModel); createResult.Error != nil {
			return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, createResult.Error.Error())
		}
		return creditToEntity(&creditModel), nil
	}

	creditModel.RemainingAnalyses += amount
	creditModel.UpdatedAt = now
	if saveResult := r.db.WithContext(ctx).Save(&creditModel); saveResult.Error != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, saveResult.Error.Error())
	}

	r.logger.Info("Credits granted", map[string]any{
		"user_id":   userID,
		"amount":    amount,
		"remaining": creditModel.RemainingAnalyses,
	})
	return creditToEntity(&creditModel), nil
}
