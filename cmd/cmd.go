// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the run-history database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// updateCommand runs the full scoring and playlist generation pipeline.
func updateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "update",
		Aliases: []string{"up"},
		Usage:   "Score the library and regenerate playlists",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Compute and save snapshots without writing playlist files",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Regenerate playlist files regardless of the update cadence",
			},
			&cli.BoolFlag{
				Name:  "totals",
				Usage: "Print collection totals after the run",
				Value: true,
			},
		},
		Action: r.Update,
	}
}

// statsCommand prints collection rollups.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Collection statistics",
		Commands: []*cli.Command{
			{
				Name:  "totals",
				Usage: "Print the collection-wide summary",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.StatsTotals,
			},
			{
				Name:  "groups",
				Usage: "Print per-group summaries for one partition",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "partition",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of groups to print",
						Value: 25,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.StatsGroups,
			},
		},
	}
}

// insightsCommand prints the insight reports.
func insightsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "insights",
		Aliases: []string{"in"},
		Usage:   "Print insight reports over the collection",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "lines",
				Usage: "Maximum lines per report before truncation",
				Value: 15,
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Save full reports under the output directory",
			},
		},
		Action: r.Insights,
	}
}

// browseCommand launches the interactive stats browser.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui", "ui"},
		Usage:   "Browse collection statistics interactively",
		Flags: []cli.Flag{
			configFlag(),
		},
		Action: r.Browse,
	}
}

// historyCommand lists recorded runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded update runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}
