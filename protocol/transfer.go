package protocol

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-vulcan/ledger"
	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

// ErrInsufficientBalance is returned when the sender cannot cover the
// pre-tax amount. Nothing is modified.
var ErrInsufficientBalance = ledger.ErrInsufficientBalance

type taxLeg struct {
	account string
	rate    uint64
}

// Transfer moves amount (external units) from one account to another.
// Taxable transfers pay each tax leg as amount * rate / 100 of the pre-tax
// amount; the recipient gets the rest. The sender must cover the full
// pre-tax amount. The transfer applies completely or not at all.
//
// amount is in the units balances are reported in. With compounding it is
// converted back to stored units at the current epoch, so an untaxed
// transfer of x raises the recipient's reported balance by x.
func (p *Protocol) Transfer(from, to string, amount u256.Int) (TransferResult, error) {
	return p.transfer(from, to, amount, p.isTaxable(from))
}

// GasTransfer is Transfer without taxes, for node fee payments.
func (p *Protocol) GasTransfer(from, to string, amount u256.Int) (TransferResult, error) {
	return p.transfer(from, to, amount, false)
}

// isTaxable reports whether transfers sent by from are taxed: the special
// tax accounts never pay tax, and taxation stops with rebasing.
func (p *Protocol) isTaxable(from string) bool {
	switch from {
	case p.cfg.TreasuryAccount, p.cfg.FlexAccount, p.cfg.FirePitAccount:
		return false
	}
	return p.rebaseActive
}

func (p *Protocol) taxLegs() []taxLeg {
	return []taxLeg{
		{p.cfg.TreasuryAccount, p.cfg.TreasuryTaxRate},
		{p.cfg.FlexAccount, p.cfg.FlexTaxRate},
		{p.cfg.FirePitAccount, p.cfg.FirePitTaxRate},
	}
}

func (p *Protocol) transfer(from, to string, amount u256.Int, taxed bool) (TransferResult, error) {
	frags, err := p.toFragments(amount)
	if err != nil {
		return TransferResult{}, fmt.Errorf("transfer amount %s: %w", amount, err)
	}
	if !p.store.Has(from) || p.store.FragmentBalance(from).Lt(frags) {
		return TransferResult{}, ErrInsufficientBalance
	}

	moves := make([]ledger.Move, 0, 4)
	net := frags
	if taxed {
		percent := u256.New(vulcan.PercentDivisor)
		for _, leg := range p.taxLegs() {
			if leg.rate == 0 {
				continue
			}
			tax, err := u256.MulDiv(frags, u256.New(leg.rate), percent)
			if err != nil {
				return TransferResult{}, err
			}
			if net, err = net.Sub(tax); err != nil {
				return TransferResult{}, err
			}
			moves = append(moves, ledger.Move{From: from, To: leg.account, Fragments: tax})
		}
	}
	moves = append(moves, ledger.Move{From: from, To: to, Fragments: net})

	if err := p.store.Apply(moves...); err != nil {
		return TransferResult{}, err
	}

	res := TransferResult{Balances: []AccountBalance{p.GetBalance(from), p.GetBalance(to)}}
	p.log.WithFields(logrus.Fields{
		"from":   from,
		"to":     to,
		"amount": amount,
		"taxed":  taxed,
	}).Debug("Transfer")
	return res, nil
}

// toFragments converts an external amount into the fragments that are
// reported as that amount at the current rebase epoch.
func (p *Protocol) toFragments(amount u256.Int) (u256.Int, error) {
	scaled, err := ledger.Scale(amount)
	if err != nil {
		return u256.Int{}, err
	}
	stored, err := p.engine.Deproject(scaled, p.rebaseEpoch)
	if err != nil {
		return u256.Int{}, err
	}
	return ledger.ToFragments(stored, p.store.FragmentsPerUnit())
}
