// Package protocol composes the ledger store, the rebase engine and the slash
// engine into the Vulcan ledger protocol.
//
// The protocol exposes the call surface used by transports: GetBalance,
// TotalSupply, Transfer, GasTransfer and the driver tick AdvanceBlock. It has
// no clock and performs no I/O besides the injected logger. Callers must
// serialize access: reads may run concurrently with each other, but never
// with Transfer, GasTransfer or AdvanceBlock.
package protocol

import (
	"fmt"
	"io"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-vulcan/inter/ier"
	"github.com/rony4d/go-vulcan/ledger"
	"github.com/rony4d/go-vulcan/rebase"
	"github.com/rony4d/go-vulcan/slash"
	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
	"github.com/rony4d/go-vulcan/vulcan/genesis"
)

// DefaultHistorySize is the number of epoch records kept in memory.
const DefaultHistorySize = 4096

// Option customises a Protocol at construction.
type Option func(*options)

type options struct {
	log         logrus.FieldLogger
	historySize int
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// WithHistorySize bounds the number of retained epoch records.
func WithHistorySize(n int) Option {
	return func(o *options) { o.historySize = n }
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// AccountBalance is a balance in scaled units.
type AccountBalance struct {
	Account string   `json:"account"`
	Balance u256.Int `json:"balance"`
}

// TransferResult carries the sender and recipient balances after a transfer.
type TransferResult struct {
	Balances []AccountBalance `json:"balances"`
}

// Status is a point-in-time summary of the ledger.
type Status struct {
	Block             idx.Block         `json:"block"`
	Epoch             idx.Epoch         `json:"epoch"`
	NextBurnBlock     idx.Block         `json:"nextBurnBlock"`
	RebaseMode        vulcan.RebaseMode `json:"rebaseMode"`
	RebaseActive      bool              `json:"rebaseActive"`
	TotalSupply       u256.Int          `json:"totalSupply"`
	CirculatingSupply u256.Int          `json:"circulatingSupply"`
	FirePitBalance    u256.Int          `json:"firePitBalance"`
	FragmentsPerUnit  u256.Int          `json:"fragmentsPerUnit"`
	SlashCount        uint64            `json:"slashCount"`
	SlashedTotal      u256.Int          `json:"slashedTotal"`
}

// Protocol is the ledger engine.
type Protocol struct {
	rules vulcan.Rules
	cfg   genesis.Config

	store   *ledger.Store
	engine  rebase.Engine
	slasher *slash.Engine
	history *ier.History

	block         idx.Block
	lastEpoch     idx.Epoch
	nextBurnBlock idx.Block

	// rebaseActive latches to false once the supply ceiling is reached.
	rebaseActive bool
	// rebaseEpoch is the last epoch whose growth is reflected in reported
	// values. Compounding projections never run past it.
	rebaseEpoch idx.Epoch

	log logrus.FieldLogger
}

// New builds a protocol at block 0 from rules and the genesis configuration.
// The special accounts are created empty, the genesis balances are seeded,
// and the fire pit receives the unallocated supply.
func New(rules vulcan.Rules, cfg genesis.Config, opts ...Option) (*Protocol, error) {
	o := options{log: discardLogger(), historySize: DefaultHistorySize}
	for _, opt := range opts {
		opt(&o)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := ledger.NewStore(rules.Economy.InitialSupply, rules.Economy.MaxSupply)
	if err != nil {
		return nil, err
	}
	for _, account := range cfg.SpecialAccounts() {
		store.InitAccount(account)
	}
	allocs := make([]ledger.Allocation, 0, len(cfg.Accounts))
	for _, account := range cfg.SortedAccounts() {
		allocs = append(allocs, ledger.Allocation{Account: account, Amount: cfg.Accounts[account]})
	}
	if err := store.InitializeGenesis(allocs, cfg.FirePitAccount); err != nil {
		return nil, err
	}

	engine, err := rebase.New(rules.Rebase)
	if err != nil {
		return nil, err
	}
	history, err := ier.NewHistory(o.historySize)
	if err != nil {
		return nil, err
	}

	var accounting slash.Accounting = slash.Legacy{}
	if cfg.FirepitMod {
		accounting = slash.Revirtualize{}
	}
	slasher := slash.New(slash.Config{
		Enabled:          cfg.SlashFirePit,
		StartEpoch:       cfg.StartSlashEpoch,
		StopEpoch:        cfg.StopSlashEpoch,
		Sink:             cfg.FirePitAccount,
		UseInitialSupply: cfg.SlashUsingInitSupply,
		InitialSupply:    rules.Economy.InitialSupply,
		ThresholdPercent: rules.Economy.BurnSupplyThreshold,
	}, accounting, o.log)

	p := &Protocol{
		rules:         rules.Copy(),
		cfg:           cfg.Copy(),
		store:         store,
		engine:        engine,
		slasher:       slasher,
		history:       history,
		nextBurnBlock: burnIntervalBlocks(rules),
		rebaseActive:  true,
		log:           o.log.WithField("module", "protocol"),
	}

	// epoch 0 is the genesis snapshot
	if _, err := p.history.Append(p.snapshot(0)); err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{
		"rules":      rules.Name,
		"mode":       engine.Mode(),
		"supply":     store.TotalSupply().Commify(),
		"accounting": accounting.Name(),
		"accounts":   len(cfg.Accounts),
	}).Info("Ledger initialized")
	return p, nil
}

func burnIntervalBlocks(rules vulcan.Rules) idx.Block {
	return idx.Block(rules.Epochs.BurnEpochInterval) * rules.Epochs.BlocksPerEpoch
}

// epochOf returns floor(block / BlocksPerEpoch).
func (p *Protocol) epochOf(block idx.Block) idx.Epoch {
	return idx.Epoch(block / p.rules.Epochs.BlocksPerEpoch)
}

// report converts a stored amount into the value reported at epoch.
func (p *Protocol) report(amount u256.Int, epoch idx.Epoch) u256.Int {
	projected, err := p.engine.Project(amount, epoch)
	if err != nil {
		p.log.WithError(err).WithField("epoch", epoch).Warn("Projection failed, reporting stored value")
		return amount
	}
	return projected
}

// GetBalance returns the balance of account in scaled units. Unknown
// accounts have a zero balance.
func (p *Protocol) GetBalance(account string) AccountBalance {
	return AccountBalance{
		Account: account,
		Balance: p.report(p.store.Balance(account), p.rebaseEpoch),
	}
}

// BalanceAt returns the balance of account as it will be reported at block,
// assuming no transfers in between. With linear rebasing the stored supply
// only grows when epochs are actually entered, so this is the current
// balance. With compounding the stored balance is projected to the epoch of
// block, capped at the epoch where rebasing stopped.
func (p *Protocol) BalanceAt(account string, block idx.Block) AccountBalance {
	epoch := p.epochOf(block)
	if !p.rebaseActive && epoch > p.rebaseEpoch {
		epoch = p.rebaseEpoch
	}
	return AccountBalance{
		Account: account,
		Balance: p.report(p.store.Balance(account), epoch),
	}
}

// TotalSupply returns the total supply in scaled units.
func (p *Protocol) TotalSupply() u256.Int {
	return p.report(p.store.TotalSupply(), p.rebaseEpoch)
}

// Block returns the current block.
func (p *Protocol) Block() idx.Block { return p.block }

// Epoch returns the current epoch.
func (p *Protocol) Epoch() idx.Epoch { return p.epochOf(p.block) }

// RebaseActive reports whether rebasing (and with it, taxation) is active.
func (p *Protocol) RebaseActive() bool { return p.rebaseActive }

// SlashStats returns the slash counters.
func (p *Protocol) SlashStats() slash.Stats { return p.slasher.Stats() }

// Rules returns the rules the protocol was built with.
func (p *Protocol) Rules() vulcan.Rules { return p.rules.Copy() }

// Config returns the genesis configuration the protocol was built with.
func (p *Protocol) Config() genesis.Config { return p.cfg.Copy() }

// EpochRecord returns the retained record of epoch.
func (p *Protocol) EpochRecord(epoch idx.Epoch) (ier.EpochRecord, bool) {
	return p.history.Get(epoch)
}

// LastEpochRecord returns the most recent epoch record.
func (p *Protocol) LastEpochRecord() ier.EpochRecord {
	r, _ := p.history.Last()
	return r
}

// Status summarises the ledger.
func (p *Protocol) Status() Status {
	supply := p.TotalSupply()
	firePit := p.GetBalance(p.cfg.FirePitAccount).Balance
	stats := p.slasher.Stats()
	return Status{
		Block:             p.block,
		Epoch:             p.Epoch(),
		NextBurnBlock:     p.nextBurnBlock,
		RebaseMode:        p.engine.Mode(),
		RebaseActive:      p.rebaseActive,
		TotalSupply:       supply,
		CirculatingSupply: circulating(supply, firePit),
		FirePitBalance:    firePit,
		FragmentsPerUnit:  p.store.FragmentsPerUnit(),
		SlashCount:        stats.Count,
		SlashedTotal:      stats.Total,
	}
}

func circulating(supply, firePit u256.Int) u256.Int {
	c, err := supply.Sub(firePit)
	if err != nil {
		return u256.Zero()
	}
	return c
}

func (p *Protocol) String() string {
	return fmt.Sprintf("vulcan{rules=%s block=%d epoch=%d supply=%s}", p.rules.Name, p.block, p.Epoch(), p.TotalSupply().Commify())
}
