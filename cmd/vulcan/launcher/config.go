package launcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-vulcan/integration"
	"github.com/rony4d/go-vulcan/vulcan"
	"github.com/rony4d/go-vulcan/vulcan/genesis"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Config aggregates everything the launcher needs to build and serve a ledger.
type Config struct {
	Node    NodeConfig
	Ledger  LedgerConfig
	Genesis genesis.Config
}

type NodeConfig struct {
	RPC       RPCConfig
	Metrics   MetricsConfig
	Logging   LoggingConfig
	SentryDSN string
}

type RPCConfig struct {
	HTTPEnabled bool
	HTTPAddr    string
	HTTPPort    int
	Timeout     time.Duration
}

type MetricsConfig struct {
	Enabled  bool
	HTTPAddr string
	HTTPPort int
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
}

type LedgerConfig struct {
	Network       string
	Preset        string
	BlockInterval time.Duration
	RebaseMode    string
	HistorySize   int
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

// defaultConfig creates the config object from DefaultConfig in defaults.go,
// which keeps this file in sync with the documented defaults.

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			RPC: RPCConfig{
				HTTPEnabled: d.RPC.EnableHTTP,
				HTTPAddr:    d.RPC.HTTPAddr,
				HTTPPort:    d.RPC.HTTPPort,
				Timeout:     d.RPC.Timeout,
			},
			Metrics: MetricsConfig{
				Enabled:  d.Metrics.Enable,
				HTTPAddr: d.Metrics.HTTPAddr,
				HTTPPort: d.Metrics.HTTPPort,
			},
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
			},
		},
		Ledger: LedgerConfig{
			Network:       d.Ledger.Network,
			BlockInterval: d.Ledger.BlockInterval,
			RebaseMode:    d.Ledger.RebaseMode,
			HistorySize:   d.Ledger.HistorySize,
		},
		Genesis: genesis.DefaultConfig(),
	}
}

// MakeAllConfigs merges, in order: defaults, the fake network defaults when
// --fakenet is set, the config file, the selected preset, and the remaining
// CLI overrides.

func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if ctx.GlobalBool("fakenet") {
		cfg.Ledger.Network = "fake"
		cfg.Ledger.BlockInterval = vulcan.FakeNetEpochsRules().BlockPeriod
		cfg.Genesis = genesis.FakeConfig()
	}

	if file := ctx.GlobalString("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}

	if ctx.GlobalIsSet("preset") {
		cfg.Ledger.Preset = ctx.GlobalString("preset")
	}
	if cfg.Ledger.Preset != "" {
		if err := applyPreset(&cfg, cfg.Ledger.Preset); err != nil {
			return Config{}, err
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rules returns the ledger rules selected by the configuration.
func (c Config) Rules() vulcan.Rules {
	rules := vulcan.MainNetRules()
	if c.Ledger.Network == "fake" {
		rules = vulcan.FakeNetRules()
	}
	rules.Rebase.Mode = vulcan.RebaseMode(c.Ledger.RebaseMode)
	return rules
}

// Validate checks the values that only the launcher interprets; the ledger
// validates the rest on construction.
func (c Config) Validate() error {
	switch c.Ledger.Network {
	case "main", "fake":
	default:
		return fmt.Errorf("unknown network %q (valid: main, fake)", c.Ledger.Network)
	}
	if c.Ledger.BlockInterval <= 0 {
		return fmt.Errorf("block interval must be positive, got %v", c.Ledger.BlockInterval)
	}
	if err := vulcan.RebaseMode(c.Ledger.RebaseMode).Validate(); err != nil {
		return err
	}
	if _, err := logLevel(c.Node.Logging.Verbosity); err != nil {
		return err
	}
	return c.Genesis.Validate()
}

// -----------------------------------------------------------------------------
// Config-file / CLI wiring
// -----------------------------------------------------------------------------

func loadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}

// dumpConfig writes cfg as TOML.
func dumpConfig(w io.Writer, cfg Config) error {
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func applyPreset(cfg *Config, name string) error {
	preset, err := integration.GetPresetByName(name)
	if err != nil {
		return err
	}
	rules := cfg.Rules()
	integration.ApplyPreset(&rules, &cfg.Genesis, preset)
	cfg.Ledger.RebaseMode = string(rules.Rebase.Mode)
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalBool("http") {
		cfg.Node.RPC.HTTPEnabled = true
	}
	if ctx.GlobalIsSet("http.addr") {
		cfg.Node.RPC.HTTPAddr = ctx.GlobalString("http.addr")
	}
	if ctx.GlobalIsSet("http.port") {
		cfg.Node.RPC.HTTPPort = ctx.GlobalInt("http.port")
	}
	if ctx.GlobalIsSet("rpc.timeout") {
		cfg.Node.RPC.Timeout = ctx.GlobalDuration("rpc.timeout")
	}

	if ctx.GlobalBool("metrics") {
		cfg.Node.Metrics.Enabled = true
	}
	if ctx.GlobalIsSet("metrics.addr") {
		cfg.Node.Metrics.HTTPAddr = ctx.GlobalString("metrics.addr")
	}
	if ctx.GlobalIsSet("metrics.port") {
		cfg.Node.Metrics.HTTPPort = ctx.GlobalInt("metrics.port")
	}

	if ctx.GlobalIsSet("log.format") {
		cfg.Node.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.GlobalInt("log.verbosity")
	}
	if ctx.GlobalIsSet("log.color") {
		cfg.Node.Logging.Color = ctx.GlobalBool("log.color")
	}
	if ctx.GlobalIsSet("sentry.dsn") {
		cfg.Node.SentryDSN = ctx.GlobalString("sentry.dsn")
	}

	if ctx.GlobalIsSet("block.interval") {
		cfg.Ledger.BlockInterval = ctx.GlobalDuration("block.interval")
	}
	if ctx.GlobalIsSet("rebase.mode") {
		cfg.Ledger.RebaseMode = ctx.GlobalString("rebase.mode")
	}
	if ctx.GlobalIsSet("history.size") {
		cfg.Ledger.HistorySize = ctx.GlobalInt("history.size")
	}

	if ctx.GlobalIsSet("holder") {
		cfg.Genesis.HolderAccount = ctx.GlobalString("holder")
	}
	if ctx.GlobalIsSet("slash") {
		cfg.Genesis.SlashFirePit = ctx.GlobalBool("slash")
	}
	if ctx.GlobalIsSet("slash.start") {
		cfg.Genesis.StartSlashEpoch = idx.Epoch(ctx.GlobalUint64("slash.start"))
	}
	if ctx.GlobalIsSet("slash.stop") {
		cfg.Genesis.StopSlashEpoch = idx.Epoch(ctx.GlobalUint64("slash.stop"))
	}
	if ctx.GlobalIsSet("slash.firepitmod") {
		cfg.Genesis.FirepitMod = ctx.GlobalBool("slash.firepitmod")
	}
	if ctx.GlobalIsSet("slash.initsupply") {
		cfg.Genesis.SlashUsingInitSupply = ctx.GlobalBool("slash.initsupply")
	}

	if ctx.GlobalIsSet("tax.treasury") {
		cfg.Genesis.TreasuryTaxRate = ctx.GlobalUint64("tax.treasury")
	}
	if ctx.GlobalIsSet("tax.flex") {
		cfg.Genesis.FlexTaxRate = ctx.GlobalUint64("tax.flex")
	}
	if ctx.GlobalIsSet("tax.firepit") {
		cfg.Genesis.FirePitTaxRate = ctx.GlobalUint64("tax.firepit")
	}
}
