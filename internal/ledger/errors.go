package ledger

import "errors"

// Call-terminal ledger errors. The diagnostic strings are part of the
// module's contract and surface to callers verbatim.
var (
	// ErrBalanceOverflow is returned when a claim would push a balance
	// past 2^128 - 1.
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrInsufficientBalance is returned when an exchange finds less
	// than one OOGA in the caller's balance.
	ErrInsufficientBalance = errors.New("insufficient OOGA balance")
)
