package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ajmeyer/rotation/internal/stats"
)

var (
	_ list.Item = groupingItem{}
	_ list.Item = groupItem{}
)

// groupingItem wraps [stats.Grouping] to implement [list.Item].
type groupingItem struct {
	grouping stats.Grouping
}

func (i groupingItem) FilterValue() string { return i.grouping.Name }
func (i groupingItem) Title() string       { return i.grouping.Name }
func (i groupingItem) Description() string {
	return fmt.Sprintf("%d groups", len(i.grouping.Groups))
}

// groupItem wraps [stats.GroupSummary] to implement [list.Item].
type groupItem struct {
	group stats.GroupSummary
}

func (i groupItem) FilterValue() string { return i.group.Name }
func (i groupItem) Title() string       { return i.group.Name }
func (i groupItem) Description() string {
	return fmt.Sprintf("%.2f avg score • %.2f★ • %d items",
		i.group.Score.Mean, i.group.Rating.Mean, i.group.Count)
}
