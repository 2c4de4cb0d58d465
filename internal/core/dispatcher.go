package core

import (
	"context"

	"OogaLedger/internal/call"
	"OogaLedger/internal/ledger"
	u128math "OogaLedger/internal/math"
)

// Dispatch executes one call against store. The first input token
// selects the operation and the rest are its arguments, consumed left
// to right. Dispatch never commits: the caller owns the staged writes
// and applies them only when the call succeeds.
//
// The incoming value buffer rides along untouched and is returned
// only on success.
func Dispatch(ctx context.Context, store ledger.Store, c call.Call) (call.Result, error) {
	operands := call.NewOperands(c.Inputs)

	token, err := operands.Shift()
	if err != nil {
		return call.Result{}, err
	}
	opcode, err := call.ParseOpcode(token)
	if err != nil {
		return call.Result{}, err
	}

	led := ledger.New(store)
	result := call.Result{}

	switch opcode {
	case call.OpInitialize:
		led.Initialize()

	case call.OpClaimOoga:
		address, err := operands.Shift()
		if err != nil {
			return call.Result{}, err
		}
		if err := led.ClaimOoga(ctx, address); err != nil {
			return call.Result{}, err
		}

	case call.OpExchangeOogaForBooga:
		address, err := operands.Shift()
		if err != nil {
			return call.Result{}, err
		}
		if err := led.ExchangeOogaForBooga(ctx, address); err != nil {
			return call.Result{}, err
		}

	case call.OpQueryOogaBalance:
		address, err := operands.Shift()
		if err != nil {
			return call.Result{}, err
		}
		balance, err := led.OogaBalance(ctx, address)
		if err != nil {
			return call.Result{}, err
		}
		result.Data = u128math.U128ToLE(balance)

	case call.OpQueryBoogaBalance:
		address, err := operands.Shift()
		if err != nil {
			return call.Result{}, err
		}
		balance, err := led.BoogaBalance(ctx, address)
		if err != nil {
			return call.Result{}, err
		}
		result.Data = u128math.U128ToLE(balance)

	case call.OpQueryTotalOoga:
		total, err := led.TotalOoga(ctx)
		if err != nil {
			return call.Result{}, err
		}
		result.Data = u128math.U128ToLE(total)

	case call.OpQueryTotalBooga:
		total, err := led.TotalBooga(ctx)
		if err != nil {
			return call.Result{}, err
		}
		result.Data = u128math.U128ToLE(total)

	default:
		return call.Result{}, call.ErrUnrecognizedOpcode
	}

	result.Incoming = c.Incoming
	return result, nil
}
