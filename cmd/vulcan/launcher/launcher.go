package launcher

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-vulcan/flags"
)

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp("the Vulcan rebasing token ledger")
	app.Flags = flags.AllFlags()
	app.Action = runNode
	app.Commands = []cli.Command{
		simulateCommand,
		dumpConfigCommand,
	}
	return app
}

var dumpConfigCommand = cli.Command{
	Action:      dumpConfigAction,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "",
	Description: `The dumpconfig command shows configuration values as TOML.`,
}

func dumpConfigAction(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	return dumpConfig(ctx.App.Writer, cfg)
}

// Launch parses args and runs the selected command. Without a command it
// starts a node and blocks until SIGINT or SIGTERM.
func Launch(args []string) error {
	return app.Run(args)
}

func runNode(ctx *cli.Context) error {
	if args := ctx.Args(); len(args) > 0 {
		return cli.NewExitError("invalid command: "+args[0], 1)
	}
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := makeLogger(cfg.Node.Logging, cfg.Node.SentryDSN, os.Stderr)
	if err != nil {
		return err
	}
	node, err := NewNode(cfg, log)
	if err != nil {
		return err
	}
	if err := node.Start(); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"network":  cfg.Ledger.Network,
		"mode":     cfg.Ledger.RebaseMode,
		"interval": cfg.Ledger.BlockInterval,
	}).Info("Vulcan ledger started")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	<-sigc
	log.Info("Got interrupt, shutting down...")
	node.Stop()
	return nil
}
