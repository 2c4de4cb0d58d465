package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"OogaLedger/internal/call"
	"OogaLedger/internal/observability"
)

// dedupLookupTimeout bounds the cold-tier lookup so a slow database
// degrades dedup coverage instead of stalling the engine loop.
const dedupLookupTimeout = 500 * time.Millisecond

// PostgresDedup answers "has this call already committed?" from the
// receipt table. It backs the engine's in-memory tier for call IDs
// older than the warmed window.
type PostgresDedup struct {
	db      *sql.DB
	metrics *observability.Metrics
}

func NewPostgresDedup(db *sql.DB, metrics *observability.Metrics) *PostgresDedup {
	return &PostgresDedup{db: db, metrics: metrics}
}

// Seen reports whether callID has a committed receipt. Only successful
// calls count: a failed call may legitimately be retried under the
// same ID.
func (pd *PostgresDedup) Seen(callID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dedupLookupTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if pd.metrics != nil {
			pd.metrics.DedupLookupDur.Observe(time.Since(start).Seconds())
		}
	}()

	var one int
	err := pd.db.QueryRowContext(ctx,
		`SELECT 1 FROM ledger.call_receipts WHERE call_id = $1 AND status = $2 LIMIT 1`,
		callID, call.StatusOK,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dedup lookup %s: %w", callID, err)
	}
	return true, nil
}
