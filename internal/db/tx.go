package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// RollbackTx rolls back tx and logs any failure other than the transaction
// already being closed. Defer it right after BeginTx.
func RollbackTx(ctx context.Context, tx pgx.Tx) {
	err := tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.WarnContext(ctx, "Failed to rollback transaction", "error", err)
	}
}
