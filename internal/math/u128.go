package math

import (
	"fmt"
	"math/big"
)

// U128Size is the width in bytes of an encoded unsigned 128-bit value.
const U128Size = 16

var (
	u128Mod = new(big.Int).Lsh(big.NewInt(1), 128)
	u128Max = new(big.Int).Sub(u128Mod, big.NewInt(1))
)

// MaxU128 returns 2^128 - 1 as a fresh big.Int.
func MaxU128() *big.Int {
	return new(big.Int).Set(u128Max)
}

// WrapU128 reduces v modulo 2^128. Negative inputs wrap from the top
// of the range, matching unsigned wrapping arithmetic.
func WrapU128(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, u128Mod)
}

// CheckedAddU128 returns a+b and whether the sum still fits in 128
// bits. The sum is returned unwrapped either way.
func CheckedAddU128(a, b *big.Int) (*big.Int, bool) {
	sum := new(big.Int).Add(a, b)
	return sum, sum.Cmp(u128Max) <= 0
}

// U128ToLE encodes v as exactly 16 little-endian bytes. Values outside
// [0, 2^128) are wrapped first.
func U128ToLE(v *big.Int) []byte {
	buf := make([]byte, U128Size)
	WrapU128(v).FillBytes(buf)
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}

// U128FromLE decodes the first 16 bytes of b as a little-endian
// unsigned integer. b must hold at least 16 bytes; callers own any
// shorter-value policy.
func U128FromLE(b []byte) *big.Int {
	if len(b) < U128Size {
		panic(fmt.Sprintf("u128 decode: need %d bytes, have %d", U128Size, len(b)))
	}
	be := make([]byte, U128Size)
	for i := 0; i < U128Size; i++ {
		be[i] = b[U128Size-1-i]
	}
	return new(big.Int).SetBytes(be)
}
