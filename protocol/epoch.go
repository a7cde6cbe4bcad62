package protocol

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-vulcan/inter/ier"
)

// AdvanceBlock moves the ledger one block forward.
//
// When the block reaches the scheduled burn boundary, the next boundary is
// scheduled and the fire pit is slashed if the slash window covers the
// previous epoch. When the block enters a new epoch, the supply is rebased
// and an epoch record is appended and returned; otherwise the returned
// record is nil. The slash runs before the rebase of the same block.
//
// A failed slash leaves the ledger untouched, so the next call retries the
// same block. A failed rebase is retried on the next block.
func (p *Protocol) AdvanceBlock() (*ier.EpochRecord, error) {
	block := p.block + 1
	epoch := p.epochOf(block)

	if block >= p.nextBurnBlock && p.slasher.Due(epoch) {
		if _, err := p.slasher.Slash(p.store, epoch); err != nil {
			return nil, fmt.Errorf("block %d: %w", block, err)
		}
	}
	if block >= p.nextBurnBlock {
		p.nextBurnBlock += burnIntervalBlocks(p.rules)
	}
	p.block = block

	if epoch <= p.lastEpoch {
		return nil, nil
	}
	if err := p.rebase(epoch); err != nil {
		return nil, fmt.Errorf("epoch %d: %w", epoch, err)
	}
	p.lastEpoch = epoch

	record, err := p.history.Append(p.snapshot(epoch))
	if err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"epoch":  epoch,
		"block":  p.block,
		"supply": p.TotalSupply().Commify(),
		"active": p.rebaseActive,
	}).Debug("New epoch")
	return &record, nil
}

// rebase grows the supply for epoch. Once the supply ceiling would be
// exceeded, rebasing is switched off for good and the supply stays put.
func (p *Protocol) rebase(epoch idx.Epoch) error {
	if !p.rebaseActive || epoch == 0 {
		return nil
	}
	increase, err := p.engine.SupplyIncrease(epoch, p.store.TotalSupply())
	if err != nil {
		return err
	}

	minted := false
	projected, err := p.engine.Project(p.store.TotalSupply(), epoch)
	if err == nil && projected.Lte(p.store.MaxSupply()) {
		if minted, err = p.store.Mint(increase); err != nil {
			return err
		}
	}
	if !minted {
		p.rebaseActive = false
		p.log.WithFields(logrus.Fields{
			"epoch":  epoch,
			"supply": p.TotalSupply().Commify(),
		}).Warn("Supply ceiling reached, rebasing stopped")
		return nil
	}
	p.rebaseEpoch = epoch
	return nil
}

// snapshot builds the record of epoch from the reported values.
func (p *Protocol) snapshot(epoch idx.Epoch) ier.EpochRecord {
	st := p.Status()
	holder := p.GetBalance(p.cfg.HolderAccount).Balance
	return ier.EpochRecord{
		Epoch:             epoch,
		Block:             p.block,
		RebaseActive:      p.rebaseActive,
		TotalSupply:       st.TotalSupply.Big(),
		CirculatingSupply: st.CirculatingSupply.Big(),
		FragmentsPerUnit:  st.FragmentsPerUnit.Big(),
		FirePitBalance:    st.FirePitBalance.Big(),
		SlashCount:        st.SlashCount,
		SlashedTotal:      st.SlashedTotal.Big(),
		HolderBalance:     holder.Big(),
	}
}
