package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ajmeyer/rotation/internal/formatter"
	"github.com/ajmeyer/rotation/internal/shared"
)

// History lists recorded update runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if config.Database.Path == "" {
		return fmt.Errorf("%w: no database path configured", shared.ErrInvalidConfig)
	}

	history, db, err := r.openHistory(config)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := history.ListRuns(cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return r.writePlainln("no runs recorded yet")
	}

	if cmd.Bool("json") {
		return r.writeJSON(runs, true)
	}
	return r.writePlain("%s", formatter.RunsToText(runs))
}
