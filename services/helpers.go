package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/rating-system/repositories"
)

// withTx runs fn inside a transaction, handing it an executor the repositories
// accept. A nil db runs fn without a transaction (exec nil → every repository
// falls back to its own connection); unit tests with fake repositories use
// that path.
func withTx(ctx context.Context, db *sql.DB, fn func(exec repositories.SQLExecutor) error) error {
	if db == nil {
		return fn(nil)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
