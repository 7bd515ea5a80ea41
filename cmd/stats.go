package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ajmeyer/rotation/internal/formatter"
	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/stats"
)

// StatsTotals prints the collection-wide summary.
func (r *Runner) StatsTotals(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	engine, closer, err := r.newEngine(config)
	if err != nil {
		return err
	}
	defer closer()

	items, _, err := engine.Collection(ctx, time.Now())
	if err != nil {
		return err
	}

	totals, err := stats.NewGroupSummary(config.Library.SourcePlaylist, items)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(totals, cmd.Bool("pretty"))
	}

	r.writePlainHeader(totals.Name)
	return r.writePlain("%s", formatter.TotalsToText(totals))
}

// StatsGroups prints the per-group summaries for one partition.
func (r *Runner) StatsGroups(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	partition := cmd.StringArg("partition")
	if partition == "" {
		names := make([]string, 0)
		for _, k := range stats.StandardKeys() {
			names = append(names, k.Name)
		}
		return fmt.Errorf("%w: partition required (one of %s)",
			shared.ErrMissingArgument, strings.Join(names, ", "))
	}

	engine, closer, err := r.newEngine(config)
	if err != nil {
		return err
	}
	defer closer()

	items, _, err := engine.Collection(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, k := range stats.StandardKeys() {
		if k.Name != partition {
			continue
		}
		grouping, err := stats.GroupBy(k.Name, items, k.Key)
		if err != nil {
			return err
		}
		if cmd.Bool("json") {
			return r.writeJSON(grouping.Groups, true)
		}
		r.writePlainHeader(grouping.Name)
		return r.writePlain("%s", formatter.GroupsToText(grouping, cmd.Int("limit")))
	}

	return fmt.Errorf("%w: unknown partition %q", shared.ErrInvalidFlag, partition)
}
