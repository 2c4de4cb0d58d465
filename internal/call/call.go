// Package call defines the unit of work the engine executes: a list
// of string input tokens (opcode first), an opaque incoming-value
// buffer, and the receipt emitted once the call completes.
package call

import (
	"time"

	"github.com/google/uuid"
)

// Call is one submitted operation. Inputs carries the opcode token
// followed by its operands, consumed left to right. Incoming is an
// opaque buffer the dispatcher never inspects.
type Call struct {
	// ID deduplicates redelivered calls. The zero UUID disables
	// duplicate tracking for this call.
	ID uuid.UUID

	Inputs   []string
	Incoming []byte

	// Received is when the shell accepted the call, recorded on the
	// receipt. It never influences execution.
	Received time.Time
}

// Result is the successful outcome of a call. Data is empty for
// mutations and a 16-byte little-endian u128 for queries. Incoming is
// the call's buffer, forwarded unchanged.
type Result struct {
	Data     []byte
	Incoming []byte
}
