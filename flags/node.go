package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// LedgerFlags holds the knobs of the local ledger instance: block pacing,
// rebase mode and the fire pit slashing schedule.

func LedgerFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "preset",
			Usage: "Scenario preset (legacy|firepit-mod|init-supply|compounding)",
		},
		cli.DurationFlag{
			Name:  "block.interval",
			Usage: "Time between blocks produced by the driver",
			Value: 5 * time.Second,
		},
		cli.StringFlag{
			Name:  "rebase.mode",
			Usage: "Rebase mode (linear|compounding)",
			Value: "linear",
		},
		cli.IntFlag{
			Name:  "history.size",
			Usage: "Number of epoch records kept in memory",
			Value: 4096,
		},
		cli.StringFlag{
			Name:  "holder",
			Usage: "Account whose balance is tracked in epoch records",
		},
		cli.BoolFlag{
			Name:  "slash",
			Usage: "Enable fire pit slashing",
		},
		cli.Uint64Flag{
			Name:  "slash.start",
			Usage: "First epoch of the slash window",
		},
		cli.Uint64Flag{
			Name:  "slash.stop",
			Usage: "Last epoch of the slash window",
		},
		cli.BoolFlag{
			Name:  "slash.firepitmod",
			Usage: "Burn without changing the fragments per unit",
		},
		cli.BoolFlag{
			Name:  "slash.initsupply",
			Usage: "Measure the fire pit against the initial supply instead of the circulating supply",
		},
	}
}

// SimulateFlags drives the offline simulation command.
func SimulateFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "epochs",
			Usage: "Number of epochs to simulate",
			Value: 100,
		},
		cli.Uint64Flag{
			Name:  "report.interval",
			Usage: "Log a report line every this many epochs",
			Value: 10,
		},
	}
}
