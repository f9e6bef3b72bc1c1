package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"xaxlib-go/pkg/log"
	"xaxlib-go/pkg/xaxd"
)

var upCommand = &cli.Command{
	Name:        "up",
	Usage:       "starts the decision daemon",
	UsageText:   "xaxd up [options]",
	Description: "Loads the configuration and serves translation requests until interrupted.",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "path to the configuration file"},
		&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
	},
	Action: upCmd,
}

func upCmd(c *cli.Context) error {
	cfg, err := xaxd.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}

	log.MustInit(cfg.LogDB, cfg.Debug)
	defer log.Close()
	log.Printf("starting xaxd %s (built %s)", Version, BuildTime)
	if cfg.ConfigFile != "" {
		log.Printf("using config file %s", cfg.ConfigFile)
	}

	server, err := xaxd.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	sig := <-sigChan
	log.Printf("received signal %s, shutting down", sig)

	server.Stop()
	log.Printf("xaxd has been shut down")
	return nil
}
