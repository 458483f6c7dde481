package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// TxRunner executes a function inside a single transaction: commit on nil,
// rollback on error or panic. Every resolution or correction pass runs
// through here so its writes (ownership, matchup record, audit entry, event
// propagation) land atomically or not at all.
type TxRunner struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewTxRunner(db *sql.DB, logger *slog.Logger) *TxRunner {
	return &TxRunner{db: db, logger: logger}
}

func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			r.logger.Warn("rolling back transaction", slog.Any("error", err))
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	err = fn(tx)
	return err
}
