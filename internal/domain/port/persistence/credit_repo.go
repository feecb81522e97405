package persistence

import (
	"context"

	"github.com/cvmatch/cvmatch-backend/internal/domain/entity"
)

// CreditRepository defines methods for the per-user analysis credit ledger
type CreditRepository interface {
	// GetLedger returns the user's ledger. A user without a ledger row is
	// reported as an empty ledger with zero remaining analyses.
	GetLedger(ctx context.Context, userID uint64) (*entity.CreditLedger, error)

	// DebitOne consumes one credit atomically: the decrement only applies when
	// at least one credit remains, so concurrent calls can never drive the
	// count negative. Returns the remaining count after the operation and
	// whether a credit was actually consumed.
	//
	// Possible errors:
	// - ErrDatabaseConnection: if the database connection fails
	DebitOne(ctx context.Context, userID uint64) (remaining int, debited bool, err error)

	// Grant adds credits to the user's ledger, creating the row lazily. The
	// ledger row is locked for the duration of the enclosing transaction, so
	// Grant must run inside a UnitOfWork transaction together with the
	// processed-session insert.
	Grant(ctx context.Context, userID uint64, amount int) (*entity.CreditLedger, error)
}
