// Package ledger implements the two-counter OOGA/BOOGA ledger over a
// host-supplied key/value store. All values are 16-byte little-endian
// u128. Reads are permissive: an absent key or a stored value shorter
// than 16 bytes decodes as zero. Writes always produce the full width.
package ledger

import (
	"context"
	"math/big"

	u128math "OogaLedger/internal/math"
)

// Store is the staged storage view an operation runs against. Get
// returns nil for an absent key. Put buffers a write that becomes
// durable only if the surrounding call commits.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(key string, value []byte)
}

// Ledger exposes typed balance and supply accessors over the raw
// keyed store.
type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) readU128(ctx context.Context, key string) (*big.Int, error) {
	raw, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(raw) < u128math.U128Size {
		return new(big.Int), nil
	}
	return u128math.U128FromLE(raw), nil
}

func (l *Ledger) writeU128(key string, v *big.Int) {
	l.store.Put(key, u128math.U128ToLE(v))
}

// OogaBalance returns the OOGA balance of address.
func (l *Ledger) OogaBalance(ctx context.Context, address string) (*big.Int, error) {
	return l.readU128(ctx, OogaBalanceKey(address))
}

// SetOogaBalance stages the OOGA balance of address.
func (l *Ledger) SetOogaBalance(address string, v *big.Int) {
	l.writeU128(OogaBalanceKey(address), v)
}

// BoogaBalance returns the BOOGA balance of address.
func (l *Ledger) BoogaBalance(ctx context.Context, address string) (*big.Int, error) {
	return l.readU128(ctx, BoogaBalanceKey(address))
}

// SetBoogaBalance stages the BOOGA balance of address.
func (l *Ledger) SetBoogaBalance(address string, v *big.Int) {
	l.writeU128(BoogaBalanceKey(address), v)
}

// TotalOoga returns the global OOGA supply counter.
func (l *Ledger) TotalOoga(ctx context.Context) (*big.Int, error) {
	return l.readU128(ctx, TotalOogaKey)
}

// SetTotalOoga stages the global OOGA supply counter.
func (l *Ledger) SetTotalOoga(v *big.Int) {
	l.writeU128(TotalOogaKey, v)
}

// TotalBooga returns the global BOOGA supply counter.
func (l *Ledger) TotalBooga(ctx context.Context) (*big.Int, error) {
	return l.readU128(ctx, TotalBoogaKey)
}

// SetTotalBooga stages the global BOOGA supply counter.
func (l *Ledger) SetTotalBooga(v *big.Int) {
	l.writeU128(TotalBoogaKey, v)
}
