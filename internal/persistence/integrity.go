package persistence

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
)

// ChainReport summarizes a walk over the persisted receipt chain.
type ChainReport struct {
	Checked       int64  `json:"checked"`
	FirstSequence int64  `json:"first_sequence"`
	LastSequence  int64  `json:"last_sequence"`
	Intact        bool   `json:"intact"`
	BrokenAt      *int64 `json:"broken_at,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

func (r *ChainReport) fail(sequence int64, reason string) {
	if !r.Intact {
		return
	}
	r.Intact = false
	seq := sequence
	r.BrokenAt = &seq
	r.Reason = reason
}

// VerifyChain re-walks every persisted receipt in sequence order and
// checks that the hash chain holds: sequences are contiguous, each
// receipt's prev_hash matches the previous receipt's state_hash, and
// the first receipt (when it is sequence zero) links back to genesis.
// Only the first break is reported.
func VerifyChain(ctx context.Context, db *sql.DB, genesis [32]byte) (ChainReport, error) {
	report := ChainReport{Intact: true}

	rows, err := db.QueryContext(ctx,
		`SELECT sequence, state_hash, prev_hash FROM ledger.call_receipts ORDER BY sequence ASC`)
	if err != nil {
		return report, fmt.Errorf("load receipt chain: %w", err)
	}
	defer rows.Close()

	var (
		prevSequence  int64
		prevStateHash []byte
		first         = true
	)
	for rows.Next() {
		var (
			sequence  int64
			stateHash []byte
			prevHash  []byte
		)
		if err := rows.Scan(&sequence, &stateHash, &prevHash); err != nil {
			return report, fmt.Errorf("scan receipt %d: %w", report.Checked, err)
		}

		if first {
			first = false
			report.FirstSequence = sequence
			if sequence == 0 && !bytes.Equal(prevHash, genesis[:]) {
				report.fail(sequence, "first receipt does not link to genesis")
			}
		} else {
			if sequence != prevSequence+1 {
				report.fail(sequence, fmt.Sprintf("sequence gap: %d follows %d", sequence, prevSequence))
			} else if !bytes.Equal(prevHash, prevStateHash) {
				report.fail(sequence, "prev_hash does not match previous state_hash")
			}
		}

		prevSequence = sequence
		prevStateHash = stateHash
		report.LastSequence = sequence
		report.Checked++
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("walk receipt chain: %w", err)
	}

	return report, nil
}
