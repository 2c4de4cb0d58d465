package call_test

import (
	"errors"
	"fmt"
	"testing"

	"OogaLedger/internal/call"
	"OogaLedger/internal/ledger"
)

// ============================================================================
// Test: ParseOpcode
// ============================================================================

func TestParseOpcode_AssignedValues(t *testing.T) {
	cases := []struct {
		token string
		want  call.Opcode
	}{
		{"0", call.OpInitialize},
		{"1", call.OpClaimOoga},
		{"2", call.OpExchangeOogaForBooga},
		{"3", call.OpQueryOogaBalance},
		{"4", call.OpQueryBoogaBalance},
		{"5", call.OpQueryTotalOoga},
		{"6", call.OpQueryTotalBooga},
	}
	for _, c := range cases {
		got, err := call.ParseOpcode(c.token)
		if err != nil {
			t.Fatalf("parse %q: %v", c.token, err)
		}
		if got != c.want {
			t.Errorf("parse %q: got %d, want %d", c.token, got, c.want)
		}
	}
}

func TestParseOpcode_UnassignedValueParses(t *testing.T) {
	// 7..255 parse fine; rejecting them is the dispatcher's job.
	got, err := call.ParseOpcode("99")
	if err != nil {
		t.Fatalf("parse 99: %v", err)
	}
	if got != call.Opcode(99) {
		t.Errorf("got %d, want 99", got)
	}
	if got.String() != "Unknown" {
		t.Errorf("String(): got %q, want %q", got.String(), "Unknown")
	}
}

func TestParseOpcode_LeadingZeros(t *testing.T) {
	got, err := call.ParseOpcode("007")
	if err != nil {
		t.Fatalf("parse 007: %v", err)
	}
	if got != call.Opcode(7) {
		t.Errorf("got %d, want 7", got)
	}
}

func TestParseOpcode_InvalidFormat(t *testing.T) {
	for _, token := range []string{"", "abc", "1.5", " 1", "1 ", "-1", "256", "300", "0x1", "99999999999999999999"} {
		_, err := call.ParseOpcode(token)
		if !errors.Is(err, call.ErrInvalidOpcodeFormat) {
			t.Errorf("parse %q: got %v, want ErrInvalidOpcodeFormat", token, err)
		}
	}
}

func TestParseOpcode_ErrorMessage(t *testing.T) {
	_, err := call.ParseOpcode("not-a-number")
	if err.Error() != "invalid opcode format" {
		t.Errorf("got %q, want %q", err.Error(), "invalid opcode format")
	}
}

// ============================================================================
// Test: Operands
// ============================================================================

func TestOperands_ShiftInOrder(t *testing.T) {
	ops := call.NewOperands([]string{"1", "alice", "extra"})

	for i, want := range []string{"1", "alice", "extra"} {
		got, err := ops.Shift()
		if err != nil {
			t.Fatalf("shift %d: %v", i, err)
		}
		if got != want {
			t.Errorf("shift %d: got %q, want %q", i, got, want)
		}
	}
	if ops.Remaining() != 0 {
		t.Errorf("remaining: got %d, want 0", ops.Remaining())
	}
}

func TestOperands_ExhaustionFails(t *testing.T) {
	ops := call.NewOperands([]string{"1"})
	ops.Shift()

	_, err := ops.Shift()
	if !errors.Is(err, call.ErrMissingOperand) {
		t.Fatalf("got %v, want ErrMissingOperand", err)
	}
	if err.Error() != "expected value in list but list is exhausted" {
		t.Errorf("message: got %q, want %q", err.Error(), "expected value in list but list is exhausted")
	}
}

func TestOperands_EmptyListFailsImmediately(t *testing.T) {
	ops := call.NewOperands(nil)
	if _, err := ops.Shift(); !errors.Is(err, call.ErrMissingOperand) {
		t.Errorf("got %v, want ErrMissingOperand", err)
	}
}

// ============================================================================
// Test: StatusForError
// ============================================================================

func TestStatusForError_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, call.StatusOK},
		{call.ErrMissingOperand, call.StatusMissingOperand},
		{call.ErrInvalidOpcodeFormat, call.StatusInvalidOpcodeFormat},
		{call.ErrUnrecognizedOpcode, call.StatusUnrecognizedOpcode},
		{ledger.ErrBalanceOverflow, call.StatusBalanceOverflow},
		{ledger.ErrInsufficientBalance, call.StatusInsufficientBalance},
		{errors.New("connection refused"), call.StatusStorageError},
	}
	for _, c := range cases {
		if got := call.StatusForError(c.err); got != c.want {
			t.Errorf("status for %v: got %q, want %q", c.err, got, c.want)
		}
	}
}

func TestStatusForError_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("claim alice: %w", ledger.ErrBalanceOverflow)
	if got := call.StatusForError(wrapped); got != call.StatusBalanceOverflow {
		t.Errorf("got %q, want %q", got, call.StatusBalanceOverflow)
	}
}
