package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags selects the rule set.

func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.BoolFlag{
			Name:  "fakenet",
			Usage: "Use the fake network rules (short epochs, 8-epoch burn interval)",
		},
	}
}

// TaxFlags isolates the transfer tax rates, in percent of the transferred amount.
func TaxFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "tax.treasury",
			Usage: "Treasury tax rate (percent)",
		},
		cli.Uint64Flag{
			Name:  "tax.flex",
			Usage: "Flex tax rate (percent)",
		},
		cli.Uint64Flag{
			Name:  "tax.firepit",
			Usage: "Fire pit tax rate (percent)",
		},
	}
}

// AllFlags returns every flag of the main command.
func AllFlags() []cli.Flag {
	var all []cli.Flag
	all = append(all, CommonFlags()...)
	all = append(all, RPCFlags()...)
	all = append(all, NetworkFlags()...)
	all = append(all, LedgerFlags()...)
	all = append(all, TaxFlags()...)
	return all
}
