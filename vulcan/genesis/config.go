// Package genesis defines the construction-time configuration of a Vulcan
// ledger: the special accounts, the tax rates, the slash window and strategy
// flags, and the genesis balances.
//
// Key concepts:
//   - Treasury and flex accounts receive their share of every taxed transfer.
//   - The fire pit (sink) account holds all unallocated genesis supply,
//     receives its own tax share, and is the only account that is slashed.
//   - The holder account is a monitored account reported in epoch records.
//
// A Config is immutable once a protocol has been built from it. It is
// typically loaded from the [Genesis] section of a TOML file, or generated
// programmatically with FakeConfig for simulations.
package genesis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-vulcan/utils/u256"
	"github.com/rony4d/go-vulcan/vulcan"
)

var (
	ErrTaxRate      = errors.New("genesis: tax rates exceed 100%")
	ErrSlashWindow  = errors.New("genesis: slash window start is after stop")
	ErrMissingRole  = errors.New("genesis: special account not set")
	ErrDuplicateKey = errors.New("genesis: special accounts must be distinct")
	ErrSinkGenesis  = errors.New("genesis: fire pit cannot hold a genesis balance")
)

// Config is the static configuration consumed at ledger construction.
type Config struct {
	// Special accounts
	TreasuryAccount string // Receives the treasury tax leg
	FlexAccount     string // Receives the flex tax leg
	FirePitAccount  string // Sink: unallocated supply, fire pit tax leg, slash target
	HolderAccount   string // Monitored in epoch records

	// Tax rates in percent of the pre-tax amount
	TreasuryTaxRate uint64
	FlexTaxRate     uint64
	FirePitTaxRate  uint64

	// Slash window (inclusive), compared against the epoch preceding a burn boundary
	StartSlashEpoch idx.Epoch
	StopSlashEpoch  idx.Epoch

	// Scenario flags
	SlashFirePit         bool // Enable slashing
	FirepitMod           bool // Re-virtualize total fragments on burn instead of the legacy accounting
	SlashUsingInitSupply bool // Use the initial supply as the threshold baseline instead of circulating supply

	// Accounts maps account identifiers to genesis balances in external
	// (unscaled) units.
	Accounts map[string]u256.Int
}

// DefaultConfig returns a configuration without taxes or slashing, with the
// fire pit at the null address and no genesis accounts.
func DefaultConfig() Config {
	return Config{
		TreasuryAccount: "0xTreasury",
		FlexAccount:     "0xFlex",
		FirePitAccount:  vulcan.NullAddress,
		HolderAccount:   "0xDemo1",
		StartSlashEpoch: 0,
		StopSlashEpoch:  0,
		Accounts:        map[string]u256.Int{},
	}
}

// FakeConfig returns the configuration used by the simulator: taxed
// transfers, slashing over the first two years, and a funded treasury.
func FakeConfig() Config {
	cfg := DefaultConfig()
	cfg.TreasuryTaxRate = 2
	cfg.FlexTaxRate = 1
	cfg.FirePitTaxRate = 1
	cfg.SlashFirePit = true
	cfg.StartSlashEpoch = 1
	cfg.StopSlashEpoch = 2 * 35040
	cfg.Accounts = map[string]u256.Int{
		"0xTreasury":    u256.New(100000000),
		"0xSacrificers": u256.New(50000000),
		"0xNodeOwners":  u256.New(10000000),
	}
	return cfg
}

// TaxRateSum returns the combined tax percentage.
func (c Config) TaxRateSum() uint64 {
	return c.TreasuryTaxRate + c.FlexTaxRate + c.FirePitTaxRate
}

// SpecialAccounts returns the role accounts in a fixed order: treasury,
// flex, fire pit, holder. An empty holder is omitted.
func (c Config) SpecialAccounts() []string {
	accounts := []string{c.TreasuryAccount, c.FlexAccount, c.FirePitAccount}
	if c.HolderAccount != "" {
		accounts = append(accounts, c.HolderAccount)
	}
	return accounts
}

// SortedAccounts returns the genesis account identifiers in lexical order.
func (c Config) SortedAccounts() []string {
	keys := make([]string, 0, len(c.Accounts))
	for k := range c.Accounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	if c.TreasuryAccount == "" || c.FlexAccount == "" || c.FirePitAccount == "" {
		return ErrMissingRole
	}
	if c.TreasuryAccount == c.FlexAccount || c.TreasuryAccount == c.FirePitAccount || c.FlexAccount == c.FirePitAccount {
		return ErrDuplicateKey
	}
	if c.TreasuryTaxRate > vulcan.PercentDivisor || c.FlexTaxRate > vulcan.PercentDivisor ||
		c.FirePitTaxRate > vulcan.PercentDivisor || c.TaxRateSum() > vulcan.PercentDivisor {
		return fmt.Errorf("%w: %d+%d+%d", ErrTaxRate, c.TreasuryTaxRate, c.FlexTaxRate, c.FirePitTaxRate)
	}
	if c.StartSlashEpoch > c.StopSlashEpoch {
		return fmt.Errorf("%w: %d > %d", ErrSlashWindow, c.StartSlashEpoch, c.StopSlashEpoch)
	}
	if _, ok := c.Accounts[c.FirePitAccount]; ok {
		return ErrSinkGenesis
	}
	return nil
}

// Copy returns a copy that does not share the Accounts map.
func (c Config) Copy() Config {
	cp := c
	cp.Accounts = make(map[string]u256.Int, len(c.Accounts))
	for k, v := range c.Accounts {
		cp.Accounts[k] = v
	}
	return cp
}
