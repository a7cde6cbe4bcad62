package launcher

import "time"

// Defaults bundles the baseline configuration values the launcher uses
// before the config file and flags override them.

type Defaults struct {
	Ledger  LedgerDefaults
	RPC     RPCDefaults
	Metrics MetricsDefaults
	Logging LoggingDefaults
}

// LedgerDefaults captures the ledger instance settings.
type LedgerDefaults struct {
	Network       string        //	Rule set: "main" (180 blocks per epoch) or "fake" (4 blocks per epoch, 8-epoch burn interval).
	BlockInterval time.Duration //	Time between two driver ticks. Each tick advances the ledger by exactly one block.
	RebaseMode    string        //	"linear" mints a fixed share of the supply every epoch, "compounding" projects balances at query time.
	HistorySize   int           //	Number of epoch records kept in memory for vulcan_epochRecord.
}

// RPCDefaults captures the HTTP JSON-RPC options.
type RPCDefaults struct {
	EnableHTTP bool          //	Toggle for the JSON-RPC HTTP server.
	HTTPAddr   string        //	IP/interface the HTTP server binds to (127.0.0.1 keeps it local-only).
	HTTPPort   int           //	TCP port clients connect to for HTTP RPC.
	Timeout    time.Duration //	Read and write timeout of the HTTP servers.
}

type MetricsDefaults struct {
	Enable   bool   //	Toggle for the Prometheus endpoint at /metrics.
	HTTPAddr string //	IP/interface the metrics server binds to.
	HTTPPort int    //	TCP port of the metrics server.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	logrus level (0=panic, 1=fatal, 2=error, 3=warn, 4=info, 5=debug, 6=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs (helpful on terminals, best disabled when piping to files).
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Ledger: LedgerDefaults{
			Network:       "main",
			BlockInterval: 5 * time.Second,
			RebaseMode:    "linear",
			HistorySize:   4096,
		},
		RPC: RPCDefaults{
			EnableHTTP: true,
			HTTPAddr:   "127.0.0.1",
			HTTPPort:   18545,
			Timeout:    30 * time.Second,
		},
		Metrics: MetricsDefaults{
			Enable:   false,
			HTTPAddr: "127.0.0.1",
			HTTPPort: 6060,
		},
		Logging: LoggingDefaults{
			Verbosity: 4,
			Format:    "text",
			Color:     false,
		},
	}
}
