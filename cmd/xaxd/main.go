package main

import (
	stdlog "log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "xaxd",
		Usage:   "external address translation decision daemon",
		Version: Version,
		Commands: []*cli.Command{
			upCommand,
			ctlCommand,
			logsCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		stdlog.Fatalf("%v", err)
	}
}
