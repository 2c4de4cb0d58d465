package ledger

import (
	"context"
	"math/big"

	u128math "OogaLedger/internal/math"
)

var one = big.NewInt(1)

// Initialize resets both supply totals to zero. Per-address balances
// are left untouched, so totals written by earlier claims no longer
// cover balances minted before the reset.
func (l *Ledger) Initialize() {
	zero := new(big.Int)
	l.SetTotalOoga(zero)
	l.SetTotalBooga(zero)
}

// ClaimOoga mints one OOGA to address. The balance increment is
// overflow-checked; the supply increment wraps mod 2^128. Nothing is
// staged on error.
func (l *Ledger) ClaimOoga(ctx context.Context, address string) error {
	balance, err := l.OogaBalance(ctx, address)
	if err != nil {
		return err
	}
	newBalance, ok := u128math.CheckedAddU128(balance, one)
	if !ok {
		return ErrBalanceOverflow
	}
	total, err := l.TotalOoga(ctx)
	if err != nil {
		return err
	}

	l.SetTotalOoga(new(big.Int).Add(total, one))
	l.SetOogaBalance(address, newBalance)
	return nil
}

// ExchangeOogaForBooga converts one OOGA into one BOOGA for address:
// the OOGA balance and supply each drop by one, the BOOGA balance and
// supply each rise by one, all wrapping mod 2^128. Every read happens
// before the first write is staged; a failed exchange stages nothing.
func (l *Ledger) ExchangeOogaForBooga(ctx context.Context, address string) error {
	oogaBalance, err := l.OogaBalance(ctx, address)
	if err != nil {
		return err
	}
	if oogaBalance.Cmp(one) < 0 {
		return ErrInsufficientBalance
	}
	boogaBalance, err := l.BoogaBalance(ctx, address)
	if err != nil {
		return err
	}
	totalOoga, err := l.TotalOoga(ctx)
	if err != nil {
		return err
	}
	totalBooga, err := l.TotalBooga(ctx)
	if err != nil {
		return err
	}

	l.SetOogaBalance(address, new(big.Int).Sub(oogaBalance, one))
	l.SetBoogaBalance(address, new(big.Int).Add(boogaBalance, one))
	l.SetTotalOoga(new(big.Int).Sub(totalOoga, one))
	l.SetTotalBooga(new(big.Int).Add(totalBooga, one))
	return nil
}
