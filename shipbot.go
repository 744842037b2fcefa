package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/shipbot/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "shipbot",
		Usage:   "Webhook bot that keeps PR release notes, QA labels, and release tags in sync with Shortcut stories",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "shipbot.toml",
			},
		},
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.ConfigCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
