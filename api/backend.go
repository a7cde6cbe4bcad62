package api

import (
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-vulcan/inter/ier"
	"github.com/rony4d/go-vulcan/metrics"
	"github.com/rony4d/go-vulcan/protocol"
	"github.com/rony4d/go-vulcan/utils/u256"
)

// Backend serializes access to a protocol. Reads share the lock; transfers
// and block advances hold it exclusively. Every mutation refreshes the
// metrics.
type Backend struct {
	mu  sync.RWMutex
	p   *protocol.Protocol
	log logrus.FieldLogger
}

// NewBackend wraps p.
func NewBackend(p *protocol.Protocol, log logrus.FieldLogger) *Backend {
	b := &Backend{p: p, log: log.WithField("module", "api")}
	metrics.ReportStatus(p.Status())
	return b
}

func (b *Backend) GetBalance(account string) protocol.AccountBalance {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.p.GetBalance(account)
}

func (b *Backend) BalanceAt(account string, block idx.Block) protocol.AccountBalance {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.p.BalanceAt(account, block)
}

func (b *Backend) TotalSupply() u256.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.p.TotalSupply()
}

func (b *Backend) Status() protocol.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.p.Status()
}

func (b *Backend) EpochRecord(epoch idx.Epoch) (ier.EpochRecord, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.p.EpochRecord(epoch)
}

func (b *Backend) LastEpochRecord() ier.EpochRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.p.LastEpochRecord()
}

// Transfer performs a taxable transfer.
func (b *Backend) Transfer(from, to string, amount u256.Int) (protocol.TransferResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, err := b.p.Transfer(from, to, amount)
	b.afterTransfer(metrics.KindTransfer, err)
	return res, err
}

// GasTransfer performs an untaxed transfer.
func (b *Backend) GasTransfer(from, to string, amount u256.Int) (protocol.TransferResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, err := b.p.GasTransfer(from, to, amount)
	b.afterTransfer(metrics.KindGas, err)
	return res, err
}

func (b *Backend) afterTransfer(kind string, err error) {
	metrics.ReportTransfer(kind, err)
	if err != nil {
		b.log.WithError(err).WithField("kind", kind).Debug("Transfer rejected")
		return
	}
	metrics.ReportStatus(b.p.Status())
}

// AdvanceBlock is the driver tick. It returns the record of the epoch
// entered by the new block, if any.
func (b *Backend) AdvanceBlock() (*ier.EpochRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	record, err := b.p.AdvanceBlock()
	if err != nil {
		return nil, err
	}
	metrics.ReportStatus(b.p.Status())
	return record, nil
}
