package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags shared across commands.

func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "TOML configuration file",
		},
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.IntFlag{
			Name:  "log.verbosity",
			Usage: "Logging verbosity (0=panic,1=fatal,2=error,3=warn,4=info,5=debug,6=trace)",
			Value: 4,
		},
		cli.BoolFlag{
			Name:  "log.color",
			Usage: "Enable colored log output",
		},
		cli.StringFlag{
			Name:  "sentry.dsn",
			Usage: "Sentry DSN; error and fatal log entries are reported when set",
		},
	}
}

// RPCFlags covers the HTTP JSON-RPC and metrics endpoints.
func RPCFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "http",
			Usage: "Enable HTTP JSON-RPC server",
		},
		cli.StringFlag{
			Name:  "http.addr",
			Usage: "HTTP-RPC server listening interface",
			Value: "127.0.0.1",
		},
		cli.IntFlag{
			Name:  "http.port",
			Usage: "HTTP-RPC server listening port",
			Value: 18545,
		},
		cli.BoolFlag{
			Name:  "metrics",
			Usage: "Enable collection of Prometheus-compatible metrics",
		},
		cli.StringFlag{
			Name:  "metrics.addr",
			Usage: "Metrics server listening interface",
			Value: "127.0.0.1",
		},
		cli.IntFlag{
			Name:  "metrics.port",
			Usage: "Metrics server listening port",
			Value: 6060,
		},
		cli.DurationFlag{
			Name:  "rpc.timeout",
			Usage: "Read and write timeout of the HTTP servers",
			Value: 30 * time.Second,
		},
	}
}
