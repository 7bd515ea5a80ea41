package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/ajmeyer/rotation/internal/shared"
	"github.com/ajmeyer/rotation/internal/stats"
	"github.com/ajmeyer/rotation/internal/ui"
)

// Browse launches the interactive stats browser.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/rotation-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, closer, err := r.newEngine(config)
	if err != nil {
		return err
	}
	defer closer()

	model := ui.NewModel(func() ([]stats.Grouping, error) {
		items, _, err := engine.Collection(ctx, time.Now())
		if err != nil {
			return nil, err
		}

		totals, err := stats.NewGroupSummary(config.Library.SourcePlaylist, items)
		if err != nil {
			return nil, err
		}

		groupings, err := stats.StandardGroupings(items)
		if err != nil {
			return nil, err
		}
		return append([]stats.Grouping{{Name: "totals", Groups: []stats.GroupSummary{totals}}}, groupings...), nil
	})

	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return model.Err()
}
