// Package main runs the spreadscan node: a cross-exchange spread
// discovery pipeline with a JSON API and an asynchronous worker mode.
package main

import (
	"os"
	goruntime "runtime"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/cexline/spreadscan/cmd/spreadscan/flags"
	"github.com/cexline/spreadscan/node"
)

var log = logrus.WithField("prefix", "main")

var appFlags = []cli.Flag{
	flags.APIHostFlag,
	flags.APIPortFlag,
	flags.AllowedOriginsFlag,
	flags.MonitoringPortFlag,
	flags.ChunkSizeFlag,
	flags.ThresholdFlag,
	flags.IntervalFlag,
	flags.OHLCTTLFlag,
	flags.ChunkSleepFlag,
	flags.ConcurrencyFlag,
	flags.VerbosityFlag,
	flags.InMemoryCatalogFlag,
}

func startNode(cliCtx *cli.Context) error {
	n, err := node.New(cliCtx)
	if err != nil {
		return err
	}
	n.Start()
	return nil
}

func startWorker(cliCtx *cli.Context) error {
	n, err := node.NewWorker(cliCtx)
	if err != nil {
		return err
	}
	n.Start()
	return nil
}

func main() {
	app := cli.App{
		Name:   "spreadscan",
		Usage:  "discovers historical cross-exchange price spreads for arbitrable crypto pairs",
		Action: startNode,
		Flags:  appFlags,
		Commands: []*cli.Command{
			{
				Name:   "worker",
				Usage:  "runs a task worker without the JSON API",
				Flags:  appFlags,
				Action: startWorker,
			},
		},
		Before: func(cliCtx *cli.Context) error {
			goruntime.GOMAXPROCS(goruntime.NumCPU())
			level, err := logrus.ParseLevel(cliCtx.String(flags.VerbosityFlag.Name))
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}
	app.CustomAppHelpTemplate = usageTemplate

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
