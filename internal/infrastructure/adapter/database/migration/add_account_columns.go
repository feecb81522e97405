package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
)

// AddAccountColumns is an additive migration that brings pre-1.1.0 user rows
// up to the current schema: verification and reset token columns plus the
// billing customer reference.
type AddAccountColumns struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAddAccountColumns creates a new migration instance
func NewAddAccountColumns(db *gorm.DB, logger coreport.Logger) *AddAccountColumns {
	return &AddAccountColumns{
		db:     db,
		logger: logger,
	}
}

var accountColumns = []struct {
	name       string
	definition string
}{
	{"verification_token", "varchar(64)"},
	{"verification_expires", "timestamp"},
	{"reset_token", "varchar(64)"},
	{"reset_expires", "timestamp"},
	{"stripe_customer_id", "varchar(64)"},
}

// Run executes the migration
func (m *AddAccountColumns) Run(ctx context.Context) error {
	m.logger.Info("Adding account columns to users table", nil)

	existing, err := m.existingColumns(ctx)
	if err != nil {
		return err
	}

	for _, column := range accountColumns {
		if existing[column.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE users ADD COLUMN %s %s", column.name, column.definition)
		if err := m.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			m.logger.Error("Failed to add column", map[string]any{
				"column": column.name,
				"error":  err.Error(),
			})
			return err
		}
	}

	m.logger.Info("Successfully added account columns to users table", nil)
	return nil
}

// existingColumns reports which of the target columns are already present
func (m *AddAccountColumns) existingColumns(ctx context.Context) (map[string]bool, error) {
	var columns []struct {
		ColumnName string `gorm:"column:column_name"`
	}

	err := m.db.WithContext(ctx).Raw(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_name = 'users'
	`).Scan(&columns).Error
	if err != nil {
		m.logger.Error("Failed to check columns existence", map[string]any{"error": err.Error()})
		return nil, err
	}

	existing := make(map[string]bool, len(columns))
	for _, column := range columns {
		existing[column.ColumnName] = true
	}
	return existing, nil
}
