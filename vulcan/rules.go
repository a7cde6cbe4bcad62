// Package vulcan defines the protocol rules and constants for the Vulcan
// token ledger.
//
// This package provides:
//   - Network identification constants (MainNet, FakeNet)
//   - Supply constants (initial supply, maximum supply, decimal precision)
//   - Epoch rules (blocks per epoch, block period, burn interval)
//   - Rebase rules (linear per-epoch rate or compounding projection)
//   - Slash threshold parameters
//
// The Rules type serves as the central configuration structure that defines
// every economic parameter of a ledger instance. It is immutable once a
// protocol has been constructed from it.
package vulcan

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-vulcan/utils/u256"
)

// Network identification constants
const (
	// MainNetworkID identifies the production ledger rules.
	MainNetworkID uint64 = 0x7c1

	// FakeNetworkID identifies the accelerated rules used for local
	// simulation and tests.
	FakeNetworkID uint64 = 0x7c3
)

// Economy constants
const (
	// Decimals is the number of fractional digits of a scaled amount.
	Decimals = 18

	// PercentDivisor converts tax and threshold percentages into fractions.
	PercentDivisor uint64 = 100

	// BurnSupplyThreshold is the share (in percent) of the baseline supply the
	// fire pit may keep before it is slashed.
	BurnSupplyThreshold uint64 = 51

	// RebaseRate and RebaseDivisor encode the linear per-epoch growth
	// 1256 / 10^8 (APR 44%, APY 55.27% at 15 minute epochs).
	RebaseRate    uint64 = 1256
	RebaseDivisor uint64 = 100000000

	// CompoundRate encodes (1 + r) * 10^CompoundExponent for the compounding
	// projection.
	CompoundRate     uint64 = 100001256
	CompoundExponent uint64 = 8

	// NullAddress is the default fire pit account.
	NullAddress = "0x0000"
)

// Epoch constants
const (
	// BlockPeriod is the target time between two blocks.
	BlockPeriod = 5 * time.Second

	// EpochDuration is the length of one rebase epoch.
	EpochDuration = 15 * time.Minute

	// BlocksPerEpoch is EpochDuration / BlockPeriod.
	BlocksPerEpoch idx.Block = idx.Block(EpochDuration / BlockPeriod)

	// BurnEpochInterval is the number of epochs between two slash
	// evaluations: 4 epochs per hour, 24 hours, 30 days, 3 months.
	BurnEpochInterval idx.Epoch = 4 * 24 * 30 * 3
)

// RebaseMode selects how supply growth is realised.
type RebaseMode string

const (
	// RebaseLinear mints totalSupply * RebaseRate / RebaseDivisor on every
	// epoch transition.
	RebaseLinear RebaseMode = "linear"

	// RebaseCompounding leaves the stored supply untouched and projects
	// balances at read time with CompoundRate^epoch.
	RebaseCompounding RebaseMode = "compounding"
)

// Validate reports whether m names a known mode.
func (m RebaseMode) Validate() error {
	switch m {
	case RebaseLinear, RebaseCompounding:
		return nil
	default:
		return fmt.Errorf("unknown rebase mode %q (valid: %s, %s)", string(m), RebaseLinear, RebaseCompounding)
	}
}

// Rules describes the complete configuration of a Vulcan ledger.
//
// Rules holds only value types, so a plain assignment already yields an
// independent copy.
type Rules struct {
	Name      string // Rule set identifier (e.g., "main", "fake")
	NetworkID uint64 // Numeric identifier of the rule set

	// Epochs options - block and epoch timing
	Epochs EpochsRules

	// Economy options - supply bounds and slash threshold
	Economy EconomyRules

	// Rebase options - supply growth algorithm
	Rebase RebaseRules
}

// EpochsRules defines how blocks group into epochs.
type EpochsRules struct {
	// BlockPeriod is the wall-clock time between two driver ticks.
	// The ledger itself has no clock; only the block driver reads it.
	BlockPeriod time.Duration

	// BlocksPerEpoch is the number of blocks per epoch (epoch = block / BlocksPerEpoch).
	BlocksPerEpoch idx.Block

	// BurnEpochInterval is the number of epochs between two slash evaluations.
	BurnEpochInterval idx.Epoch
}

// EconomyRules contains the supply parameters of the ledger.
// All amounts are scaled (external units * 10^Decimals).
type EconomyRules struct {
	// InitialSupply is the genesis total supply and the size the fragment
	// space is built for.
	InitialSupply u256.Int

	// MaxSupply is the rebase ceiling. Once a rebase would exceed it,
	// rebasing is disabled permanently.
	MaxSupply u256.Int

	// BurnSupplyThreshold is the percentage of the baseline supply the fire
	// pit may hold before it is slashed.
	BurnSupplyThreshold uint64
}

// RebaseRules selects and parameterises the rebase engine.
type RebaseRules struct {
	// Mode selects linear minting or compounding projection.
	Mode RebaseMode

	// Rate and Divisor define the linear per-epoch growth.
	Rate    uint64
	Divisor uint64

	// CompoundRate and CompoundExponent define the compounding growth
	// factor CompoundRate / 10^CompoundExponent.
	CompoundRate     uint64
	CompoundExponent uint64

	// FactorCacheSize bounds the number of per-epoch compounding factors
	// kept in memory.
	FactorCacheSize int
}

// DecimalRange returns 10^Decimals.
func DecimalRange() u256.Int {
	return u256.MustFromDecimal("1000000000000000000")
}

// InitialSupply returns 330 million tokens, scaled.
func InitialSupply() u256.Int {
	return u256.MustFromDecimal("330000000000000000000000000")
}

// MaxSupply returns 375 billion tokens, scaled.
func MaxSupply() u256.Int {
	return u256.MustFromDecimal("375000000000000000000000000000")
}

// MainNetRules returns the production ledger rules.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Epochs:    DefaultEpochsRules(),
		Economy:   DefaultEconomyRules(),
		Rebase:    DefaultRebaseRules(),
	}
}

// FakeNetRules returns accelerated rules for local simulation:
//   - 4 blocks per epoch instead of 180
//   - a slash evaluation every 8 epochs instead of every quarter
//   - 5 ms block period
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Epochs:    FakeNetEpochsRules(),
		Economy:   DefaultEconomyRules(),
		Rebase:    DefaultRebaseRules(),
	}
}

// DefaultEpochsRules returns the production epoch timing.
func DefaultEpochsRules() EpochsRules {
	return EpochsRules{
		BlockPeriod:       BlockPeriod,
		BlocksPerEpoch:    BlocksPerEpoch,    // 180 blocks of 5s = 15 minutes
		BurnEpochInterval: BurnEpochInterval, // 8640 epochs = one quarter
	}
}

// FakeNetEpochsRules returns accelerated epoch timing.
func FakeNetEpochsRules() EpochsRules {
	return EpochsRules{
		BlockPeriod:       5 * time.Millisecond,
		BlocksPerEpoch:    4,
		BurnEpochInterval: 8,
	}
}

// DefaultEconomyRules returns the production supply bounds.
func DefaultEconomyRules() EconomyRules {
	return EconomyRules{
		InitialSupply:       InitialSupply(),
		MaxSupply:           MaxSupply(),
		BurnSupplyThreshold: BurnSupplyThreshold,
	}
}

// DefaultRebaseRules returns linear rebasing with the production rates.
func DefaultRebaseRules() RebaseRules {
	return RebaseRules{
		Mode:             RebaseLinear,
		Rate:             RebaseRate,
		Divisor:          RebaseDivisor,
		CompoundRate:     CompoundRate,
		CompoundExponent: CompoundExponent,
		FactorCacheSize:  1024,
	}
}

// Validate checks the rules for values the ledger cannot work with.
func (r Rules) Validate() error {
	if r.Epochs.BlocksPerEpoch == 0 {
		return fmt.Errorf("rules %q: blocks per epoch must be positive", r.Name)
	}
	if r.Epochs.BurnEpochInterval == 0 {
		return fmt.Errorf("rules %q: burn epoch interval must be positive", r.Name)
	}
	if r.Economy.InitialSupply.IsZero() {
		return fmt.Errorf("rules %q: initial supply must be positive", r.Name)
	}
	if r.Economy.InitialSupply.Gt(r.Economy.MaxSupply) {
		return fmt.Errorf("rules %q: initial supply %s exceeds max supply %s", r.Name,
			r.Economy.InitialSupply, r.Economy.MaxSupply)
	}
	if r.Economy.BurnSupplyThreshold > PercentDivisor {
		return fmt.Errorf("rules %q: burn threshold %d%% exceeds 100%%", r.Name, r.Economy.BurnSupplyThreshold)
	}
	if r.Rebase.Divisor == 0 {
		return fmt.Errorf("rules %q: rebase divisor must be positive", r.Name)
	}
	return r.Rebase.Mode.Validate()
}

// Copy returns an independent copy of the rules.
func (r Rules) Copy() Rules {
	cp := r
	return cp
}

// String returns a JSON representation of Rules for debugging and logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
