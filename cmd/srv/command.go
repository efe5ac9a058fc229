package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "quest-escrow"
	s.app.Usage = "Quest escrow and reward distribution ledger"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config.toml",
			Usage:   "Path to the TOML config file, environment variables override it",
			EnvVars: []string{"CONFIG_FILE"},
		},
	}
	s.app.Before = func(cctx *cli.Context) error {
		if err := s.loadConfig(cctx.String("config")); err != nil {
			return err
		}

		s.loadLogger()
		return nil
	}
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Serve every ledger operation over HTTP and the prometheus metrics.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Run only this migrator, even if it already ran",
				},
			},
			Description: `Create the tables, then run every pending versioned migrator.`,
		},
		{
			Action:   s.startReconcile,
			Name:     "reconcile",
			Usage:    "Compare the stored obligations with the active quests",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "fix",
					Usage: "Rebuild the obligations when they do not match",
				},
			},
			Description: `Detect drift between the per asset obligations and a full scan of the active quests.`,
		},
		{
			Action:   s.startWatch,
			Name:     "watch",
			Usage:    "Log the ledger events published to kafka",
			Category: "Worker",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "group",
					Value: "ledger-watcher",
					Usage: "Kafka consumer group",
				},
			},
			Description: `Subscribe to the ledger event topic and log every event.`,
		},
	}
}
