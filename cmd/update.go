package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/ajmeyer/rotation/internal/formatter"
	"github.com/ajmeyer/rotation/internal/tasks"
)

// Update runs the full pipeline: score, rate, favorite, resample, and
// materialize the generated playlists.
func (r *Runner) Update(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	engine, closer, err := r.newEngine(config)
	if err != nil {
		return err
	}
	defer closer()

	result, err := engine.Update(ctx, tasks.UpdateOpts{
		DryRun:      cmd.Bool("dry-run"),
		ForceUpdate: cmd.Bool("force"),
	})
	if err != nil {
		return err
	}

	for _, report := range result.DiffReports {
		r.writePlain("%s\n", report)
	}

	if len(result.Materialized) == 0 {
		r.writePlainln("all playlists up to date")
	} else {
		for _, name := range result.Materialized {
			r.writePlain("updated %q (%d tracks)\n", name, len(result.Playlists[name]))
		}
	}

	if cmd.Bool("totals") {
		r.writePlainHeader(result.SourcePlaylist)
		r.writePlain("%s", formatter.TotalsToText(result.Totals))
	}

	return nil
}
