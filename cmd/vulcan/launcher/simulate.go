package launcher

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-vulcan/flags"
	"github.com/rony4d/go-vulcan/protocol"
	"github.com/rony4d/go-vulcan/utils/u256"
)

var simulateCommand = cli.Command{
	Action:    simulate,
	Name:      "simulate",
	Usage:     "Advance a fresh ledger through a number of epochs as fast as possible",
	ArgsUsage: "",
	Flags:     flags.SimulateFlags(),
	Description: `
The simulate command builds the ledger from the same configuration as the
node, then advances it block by block without any clock. A report line is
logged every --report.interval epochs and the final status is printed as
JSON.`,
}

func simulate(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := makeLogger(cfg.Node.Logging, cfg.Node.SentryDSN, os.Stderr)
	if err != nil {
		return err
	}
	st, err := runSimulation(cfg, idx.Epoch(ctx.Uint64("epochs")), ctx.Uint64("report.interval"), log)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.App.Writer, string(out))
	return err
}

// runSimulation advances a new ledger until it reaches epoch and returns
// its final status.
func runSimulation(cfg Config, epoch idx.Epoch, interval uint64, log logrus.FieldLogger) (protocol.Status, error) {
	p, err := protocol.New(cfg.Rules(), cfg.Genesis,
		protocol.WithLogger(log),
		protocol.WithHistorySize(cfg.Ledger.HistorySize),
	)
	if err != nil {
		return protocol.Status{}, err
	}
	for p.Epoch() < epoch {
		record, err := p.AdvanceBlock()
		if err != nil {
			return protocol.Status{}, err
		}
		if record == nil || interval == 0 || uint64(record.Epoch)%interval != 0 {
			continue
		}
		log.WithFields(logrus.Fields{
			"epoch":   record.Epoch,
			"block":   record.Block,
			"supply":  commify(record.TotalSupply),
			"firepit": commify(record.FirePitBalance),
			"slashes": record.SlashCount,
			"rebase":  record.RebaseActive,
		}).Info("Simulated epoch")
	}
	return p.Status(), nil
}

func commify(v *big.Int) string {
	n, err := u256.FromBig(v)
	if err != nil {
		return v.String()
	}
	return n.Commify()
}
