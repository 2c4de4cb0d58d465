// Package persistence is the durable side of the host shell: call
// receipts batched into Postgres, schema migrations, and the queries
// the daemon needs at startup to resume the receipt chain.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"OogaLedger/internal/call"
)

// ReceiptRow is a row in ledger.call_receipts.
type ReceiptRow struct {
	CallID     *string // nil for calls submitted without an ID
	Sequence   int64
	Opcode     string
	Status     string
	Error      string
	Data       []byte
	StateHash  []byte
	PrevHash   []byte
	Received   time.Time
	DurationUs int64
}

// NewReceiptRow converts an engine receipt for persistence.
func NewReceiptRow(r call.Receipt) ReceiptRow {
	row := ReceiptRow{
		Sequence:   r.Sequence,
		Opcode:     r.Opcode,
		Status:     r.Status,
		Error:      r.Error,
		Data:       r.Data,
		StateHash:  append([]byte(nil), r.StateHash[:]...),
		PrevHash:   append([]byte(nil), r.PrevHash[:]...),
		Received:   r.Received,
		DurationUs: r.Duration.Microseconds(),
	}
	if r.CallID != uuid.Nil {
		id := r.CallID.String()
		row.CallID = &id
	}
	return row
}

// ReceiptWriter writes receipts to ledger.call_receipts using
// multi-row INSERTs.
type ReceiptWriter struct {
	db *sql.DB
}

func NewReceiptWriter(db *sql.DB) *ReceiptWriter {
	return &ReceiptWriter{db: db}
}

// WriteBatch inserts rows with one multi-row INSERT inside tx.
// Re-inserting an already persisted sequence is a no-op.
func (w *ReceiptWriter) WriteBatch(ctx context.Context, tx *sql.Tx, rows []ReceiptRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO ledger.call_receipts
		(call_id, sequence, opcode, status, error, data, state_hash, prev_hash, received, duration_us)
		VALUES `

	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*10)

	for i, r := range rows {
		base := i * 10
		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		args = append(args,
			r.CallID, r.Sequence, r.Opcode, r.Status, r.Error,
			r.Data, r.StateHash, r.PrevHash, r.Received, r.DurationUs,
		)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (sequence) DO NOTHING"

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ChainTip is the persisted head of the receipt chain.
type ChainTip struct {
	Sequence  int64
	StateHash []byte
}

// LastReceipt returns the highest-sequence receipt, or nil when the
// table is empty.
func (w *ReceiptWriter) LastReceipt(ctx context.Context) (*ChainTip, error) {
	var tip ChainTip
	err := w.db.QueryRowContext(ctx,
		`SELECT sequence, state_hash FROM ledger.call_receipts ORDER BY sequence DESC LIMIT 1`,
	).Scan(&tip.Sequence, &tip.StateHash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load last receipt: %w", err)
	}
	return &tip, nil
}

// RecentCallIDs returns up to limit successfully processed call IDs,
// newest first, for warming the dedup cache.
func (w *ReceiptWriter) RecentCallIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := w.db.QueryContext(ctx,
		`SELECT call_id FROM ledger.call_receipts
		 WHERE call_id IS NOT NULL AND status = $1
		 ORDER BY sequence DESC LIMIT $2`,
		call.StatusOK, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load recent call ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
