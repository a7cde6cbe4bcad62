// Package rebase implements the two supply growth algorithms of the ledger
// behind one Engine interface:
//
//   - Linear mints totalSupply * Rate / Divisor into the stored supply on
//     every epoch transition. Stored balances already reflect the growth, so
//     its projection is the identity.
//   - Compounding never touches the stored supply. It projects a stored
//     balance to epoch e as balance * rate^e / 10^(k*e), deferring the only
//     division to the last step.
package rebase

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

// Engine computes supply growth for one rebase mode.
type Engine interface {
	// Mode reports the algorithm implemented by the engine.
	Mode() vulcan.RebaseMode

	// SupplyIncrease returns the amount to mint into the stored supply when
	// entering epoch. Epoch 0 never grows the supply.
	SupplyIncrease(epoch idx.Epoch, totalSupply u256.Int) (u256.Int, error)

	// Project returns the value a stored amount is reported as at epoch.
	Project(amount u256.Int, epoch idx.Epoch) (u256.Int, error)

	// Deproject returns the smallest stored amount that Project reports as
	// at least amount at epoch.
	Deproject(amount u256.Int, epoch idx.Epoch) (u256.Int, error)
}

// New returns the engine selected by rules.Mode.
func New(rules vulcan.RebaseRules) (Engine, error) {
	switch rules.Mode {
	case vulcan.RebaseLinear:
		return NewLinear(rules.Rate, rules.Divisor)
	case vulcan.RebaseCompounding:
		return NewCompounding(rules.CompoundRate, rules.CompoundExponent, rules.FactorCacheSize)
	default:
		return nil, rules.Mode.Validate()
	}
}

// Linear grows the stored supply by a fixed fraction every epoch.
type Linear struct {
	rate    u256.Int
	divisor u256.Int
}

// NewLinear returns a linear engine growing the supply by rate/divisor per epoch.
func NewLinear(rate, divisor uint64) (*Linear, error) {
	if divisor == 0 {
		return nil, fmt.Errorf("linear rebase: %w", u256.ErrDivisionByZero)
	}
	return &Linear{rate: u256.New(rate), divisor: u256.New(divisor)}, nil
}

// Mode implements Engine.
func (l *Linear) Mode() vulcan.RebaseMode { return vulcan.RebaseLinear }

// SupplyIncrease returns floor(totalSupply * rate / divisor), or zero at
// epoch 0.
func (l *Linear) SupplyIncrease(epoch idx.Epoch, totalSupply u256.Int) (u256.Int, error) {
	if epoch == 0 {
		return u256.Zero(), nil
	}
	grown, err := totalSupply.Mul(l.rate)
	if err != nil {
		return u256.Int{}, err
	}
	return grown.Div(l.divisor)
}

// Project implements Engine. The stored supply is already rebased.
func (l *Linear) Project(amount u256.Int, _ idx.Epoch) (u256.Int, error) {
	return amount, nil
}

// Deproject implements Engine.
func (l *Linear) Deproject(amount u256.Int, _ idx.Epoch) (u256.Int, error) {
	return amount, nil
}
