package call

import "errors"

// Dispatch-level errors. As with the ledger errors, the diagnostic
// strings are part of the contract.
var (
	// ErrMissingOperand is returned when an operation needs more input
	// tokens than the call carries.
	ErrMissingOperand = errors.New("expected value in list but list is exhausted")

	// ErrInvalidOpcodeFormat is returned when the opcode token does
	// not parse as a base-10 u8.
	ErrInvalidOpcodeFormat = errors.New("invalid opcode format")

	// ErrUnrecognizedOpcode is returned for parseable opcodes with no
	// assigned operation.
	ErrUnrecognizedOpcode = errors.New("unrecognized opcode")
)
