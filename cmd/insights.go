package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ajmeyer/rotation/internal/formatter"
)

// Insights prints every insight report, truncated for the console, and
// optionally saves the full reports to disk.
func (r *Runner) Insights(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	engine, closer, err := r.newEngine(config)
	if err != nil {
		return err
	}
	defer closer()

	insights, err := engine.Insights(ctx, time.Now())
	if err != nil {
		return err
	}

	maxLines := cmd.Int("lines")
	for _, insight := range insights {
		r.writePlain("%s\n", formatter.RenderInsight(insight.Title, insight.Lines, maxLines))
	}

	if cmd.Bool("save") {
		if err := engine.WriteInsights(insights); err != nil {
			return err
		}
		r.writePlainln("saved %d reports under %s", len(insights), config.Library.OutputDir)
	}

	return nil
}
