package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"xaxlib-go/pkg/management"
	"xaxlib-go/pkg/xaxd"
)

var ctlCommand = &cli.Command{
	Name:        "ctl",
	Usage:       "controls a running daemon via the management socket",
	UsageText:   "xaxd ctl [options] <command> [args...]",
	Description: "Sends a command (status, stats, logs, help, ...) to a running daemon.",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to the configuration file"},
		&cli.StringFlag{Name: "socket", Usage: "management socket path (overrides config)"},
	},
	Action: ctlCmd,
}

func ctlCmd(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no command given, try: xaxd ctl help")
	}

	socket := c.String("socket")
	if socket == "" {
		cfg, err := xaxd.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}
		socket = cfg.ManagementSocket
	}

	client := management.NewClient(socket)
	reply, err := client.SendCommand(strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
