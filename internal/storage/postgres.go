package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PostgresKV stores ledger state in ledger.state, one row per key.
// The table is created by migration 000001_ledger_state.
type PostgresKV struct {
	db *sql.DB
}

func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

// Get returns the stored value, or nil when the key is absent.
func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM ledger.state WHERE key = $1`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state get %q: %w", key, err)
	}
	return value, nil
}

// Apply upserts all puts in a single multi-row INSERT, which Postgres
// executes atomically.
func (p *PostgresKV) Apply(ctx context.Context, puts []Put) error {
	if len(puts) == 0 {
		return nil
	}

	// Collapse repeated keys (last write wins): ON CONFLICT DO UPDATE
	// cannot touch the same row twice in one statement.
	idx := make(map[string]int, len(puts))
	rows := make([]Put, 0, len(puts))
	for _, put := range puts {
		if i, ok := idx[put.Key]; ok {
			rows[i].Value = put.Value
			continue
		}
		idx[put.Key] = len(rows)
		rows = append(rows, put)
	}

	query := `INSERT INTO ledger.state (key, value) VALUES `

	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*2)

	for i, row := range rows {
		base := i * 2
		values = append(values, fmt.Sprintf("($%d, $%d)", base+1, base+2))
		args = append(args, row.Key, row.Value)
	}

	query += strings.Join(values, ", ")
	query += " ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value"

	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("state apply (%d keys): %w", len(rows), err)
	}
	return nil
}
