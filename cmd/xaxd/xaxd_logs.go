package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"xaxlib-go/pkg/log"
	"xaxlib-go/pkg/management"
	"xaxlib-go/pkg/xaxd"
)

var logsCommand = &cli.Command{
	Name:        "logs",
	Usage:       "shows recent daemon log entries",
	UsageText:   "xaxd logs [options]",
	Description: "Asks a running daemon for its recent logs, or reads the log database directly when the daemon is down.",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to the configuration file"},
		&cli.IntFlag{Name: "n", Value: 20, Usage: "number of entries to show"},
	},
	Action: logsCmd,
}

func logsCmd(c *cli.Context) error {
	cfg, err := xaxd.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	n := c.Int("n")

	// Prefer the live daemon; fall back to the database for post-mortems.
	client := management.NewClient(cfg.ManagementSocket)
	if reply, err := client.SendCommand(fmt.Sprintf("logs %d", n)); err == nil {
		fmt.Println(reply)
		return nil
	}

	if err := log.Init(cfg.LogDB, cfg.Debug); err != nil {
		return err
	}
	defer log.Close()
	entries, err := log.GetLastNLogs(n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e)
	}
	return nil
}
