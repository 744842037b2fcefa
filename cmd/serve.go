package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/shipbot/internal/api"
	"github.com/shipbot/internal/config"
	"github.com/shipbot/internal/effects"
	"github.com/shipbot/internal/github"
	"github.com/shipbot/internal/qa"
	"github.com/shipbot/internal/shortcut"
	"github.com/shipbot/internal/slack"
)

// ServeCommand returns the CLI command for starting the webhook server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the webhook server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the webhook server (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			port := cfg.Server.Port
			if c.IsSet("port") {
				port = c.Int("port")
			}

			server := buildServer(cfg, port)
			fmt.Printf("Starting shipbot webhook server on port %d...\n", port)
			return server.Start()
		},
	}
}

// buildServer wires the GitHub and Shortcut clients, the QA engine, and
// the effect registry into an API server.
func buildServer(cfg *config.Config, port int) *api.Server {
	host := github.NewClient(cfg.GitHub.APIURL, cfg.GitHub.Token)
	stories := shortcut.NewClient(cfg.Shortcut.APIURL, cfg.Shortcut.Token, cfg.Shortcut.Workspace)
	notifier := slack.NewSender()

	engine := qa.NewEngine(host, stories, cfg.GitHub.Org, cfg.Shortcut.ReadyStateID)

	registry := effects.NewRegistry(
		effects.NewUpdatePRStories(engine),
		effects.NewRenameTitle(host, cfg.Effects.RenameRepos),
		effects.NewTagRelease(host, cfg.Effects.ReleaseRepos, cfg.Effects.VersionDefaults),
		effects.NewNotifyDeployment(engine, host, notifier, cfg.Slack.StagingWebhookURL, cfg.Slack.ProductionWebhookURL),
		effects.NewTagReleaseGradle(host, cfg.Effects.GradleRepos),
		effects.NewResyncReleaseNotes(engine, host, cfg.Effects.ResyncRepos),
	)

	return api.NewServer(port, registry, engine, cfg.Shortcut.QAStateID, cfg.Shortcut.ReadyStateID)
}
