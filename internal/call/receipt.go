package call

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"OogaLedger/internal/ledger"
)

// Receipt status values, one per way a call can end.
const (
	StatusOK                  = "ok"
	StatusMissingOperand      = "missing_operand"
	StatusInvalidOpcodeFormat = "invalid_opcode_format"
	StatusUnrecognizedOpcode  = "unrecognized_opcode"
	StatusBalanceOverflow     = "balance_overflow"
	StatusInsufficientBalance = "insufficient_balance"
	StatusStorageError        = "storage_error"
)

// Receipt records the outcome of one executed call: its position in
// the engine's total order, the result or error, and the state-hash
// chain entry covering its committed writes. Receipts are audit
// records kept by the shell; they are never read back to derive
// ledger state.
type Receipt struct {
	CallID   uuid.UUID
	Sequence int64

	// Opcode is the leading input token, verbatim. Empty when the
	// call carried no tokens at all.
	Opcode string

	Status string
	Error  string // diagnostic message, empty on success

	// Data is the query payload returned to the caller.
	Data []byte

	StateHash [32]byte
	PrevHash  [32]byte

	Received time.Time
	Duration time.Duration
}

// StatusForError maps a dispatch error to its receipt status. Errors
// outside the call taxonomy count as storage errors.
func StatusForError(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrMissingOperand):
		return StatusMissingOperand
	case errors.Is(err, ErrInvalidOpcodeFormat):
		return StatusInvalidOpcodeFormat
	case errors.Is(err, ErrUnrecognizedOpcode):
		return StatusUnrecognizedOpcode
	case errors.Is(err, ledger.ErrBalanceOverflow):
		return StatusBalanceOverflow
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return StatusInsufficientBalance
	default:
		return StatusStorageError
	}
}
