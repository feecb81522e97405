package persistence

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// PaymentSessionRepository stores idempotency records for processed checkout
// sessions. Insertion and the matching credit grant must share a transaction
// so both fail together.
type PaymentSessionRepository interface {
	// Exists checks whether the checkout session was already granted
	Exists(ctx context.Context, sessionID string) (bool, error)

	// Create inserts the idempotency record
	//
	// Possible errors:
	// - ErrSessionProcessed: if the session id was already recorded
	// - ErrDatabaseConnection: if the database connection fails
	Create(ctx context.Context, session *entity.ProcessedPaymentSession) error
}
