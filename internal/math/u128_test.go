package math_test

import (
	"bytes"
	"math/big"
	"testing"

	u128math "OogaLedger/internal/math"
)

// ============================================================================
// Test: U128ToLE / U128FromLE
// ============================================================================

func TestU128ToLE_Zero(t *testing.T) {
	got := u128math.U128ToLE(big.NewInt(0))
	want := make([]byte, u128math.U128Size)
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestU128ToLE_One(t *testing.T) {
	got := u128math.U128ToLE(big.NewInt(1))
	if got[0] != 1 {
		t.Errorf("lowest byte: got %d, want 1", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i] != 0 {
			t.Errorf("byte %d: got %d, want 0", i, got[i])
		}
	}
}

func TestU128ToLE_LittleEndianOrder(t *testing.T) {
	// 0x0102 encodes low byte first.
	got := u128math.U128ToLE(big.NewInt(0x0102))
	if got[0] != 0x02 || got[1] != 0x01 {
		t.Errorf("got % x, want 02 01 00 ...", got[:2])
	}
}

func TestU128RoundTrip_Max(t *testing.T) {
	max := u128math.MaxU128()
	enc := u128math.U128ToLE(max)
	for i, b := range enc {
		if b != 0xff {
			t.Fatalf("byte %d of max encoding: got %#x, want 0xff", i, b)
		}
	}
	dec := u128math.U128FromLE(enc)
	if dec.Cmp(max) != 0 {
		t.Errorf("round trip: got %s, want %s", dec, max)
	}
}

func TestU128RoundTrip_Arbitrary(t *testing.T) {
	values := []*big.Int{
		big.NewInt(0),
		big.NewInt(1),
		big.NewInt(255),
		big.NewInt(256),
		new(big.Int).SetUint64(1<<64 - 1),
		new(big.Int).Lsh(big.NewInt(1), 64),
		new(big.Int).Lsh(big.NewInt(1), 127),
	}
	for _, v := range values {
		enc := u128math.U128ToLE(v)
		if len(enc) != u128math.U128Size {
			t.Fatalf("encoding of %s: got %d bytes, want %d", v, len(enc), u128math.U128Size)
		}
		dec := u128math.U128FromLE(enc)
		if dec.Cmp(v) != 0 {
			t.Errorf("round trip of %s: got %s", v, dec)
		}
	}
}

func TestU128FromLE_IgnoresTrailingBytes(t *testing.T) {
	enc := append(u128math.U128ToLE(big.NewInt(7)), 0xde, 0xad)
	dec := u128math.U128FromLE(enc)
	if dec.Int64() != 7 {
		t.Errorf("got %s, want 7", dec)
	}
}

// ============================================================================
// Test: WrapU128
// ============================================================================

func TestWrapU128_InRangeUnchanged(t *testing.T) {
	v := big.NewInt(42)
	got := u128math.WrapU128(v)
	if got.Cmp(v) != 0 {
		t.Errorf("got %s, want %s", got, v)
	}
}

func TestWrapU128_OverflowWraps(t *testing.T) {
	// max + 1 wraps to 0, max + 2 wraps to 1.
	over := new(big.Int).Add(u128math.MaxU128(), big.NewInt(2))
	got := u128math.WrapU128(over)
	if got.Int64() != 1 {
		t.Errorf("got %s, want 1", got)
	}
}

func TestWrapU128_NegativeWrapsFromTop(t *testing.T) {
	// 0 - 1 wraps to max, as unsigned subtraction does.
	got := u128math.WrapU128(big.NewInt(-1))
	if got.Cmp(u128math.MaxU128()) != 0 {
		t.Errorf("got %s, want %s", got, u128math.MaxU128())
	}
}

// ============================================================================
// Test: CheckedAddU128
// ============================================================================

func TestCheckedAddU128_NoCarry(t *testing.T) {
	sum, ok := u128math.CheckedAddU128(big.NewInt(1), big.NewInt(2))
	if !ok {
		t.Fatal("1 + 2 should fit")
	}
	if sum.Int64() != 3 {
		t.Errorf("got %s, want 3", sum)
	}
}

func TestCheckedAddU128_CarryAtMax(t *testing.T) {
	_, ok := u128math.CheckedAddU128(u128math.MaxU128(), big.NewInt(1))
	if ok {
		t.Error("max + 1 should overflow")
	}
}

func TestCheckedAddU128_ExactlyMax(t *testing.T) {
	almostMax := new(big.Int).Sub(u128math.MaxU128(), big.NewInt(1))
	sum, ok := u128math.CheckedAddU128(almostMax, big.NewInt(1))
	if !ok {
		t.Fatal("(max-1) + 1 should fit")
	}
	if sum.Cmp(u128math.MaxU128()) != 0 {
		t.Errorf("got %s, want %s", sum, u128math.MaxU128())
	}
}
