package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ajmeyer/rotation/internal/formatter"
	"github.com/ajmeyer/rotation/internal/stats"
)

// ViewState identifies the active view.
type ViewState int

const (
	GroupingListView ViewState = iota
	GroupListView
	DetailView
)

// Loader computes the groupings shown by the browser. It runs off the Init
// command, keeping the first frame responsive for large collections.
type Loader func() ([]stats.Grouping, error)

// groupingsLoadedMsg carries the Loader's result into the Update loop.
type groupingsLoadedMsg struct {
	groupings []stats.Grouping
	err       error
}

// Model is the bubbletea model driving the stats browser.
type Model struct {
	load Loader
	view ViewState

	groupings []stats.Grouping
	selected  stats.GroupSummary

	groupingList list.Model
	groupList    list.Model

	help   help.Model
	keys   keyMap
	width  int
	height int
	err    error
}

var _ tea.Model = (*Model)(nil)

// NewModel creates the browser over a grouping loader.
func NewModel(load Loader) *Model {
	return &Model{
		load: load,
		view: GroupingListView,
		help: help.New(),
		keys: newKeyMap(),
	}
}

// Init kicks off the grouping computation.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		groupings, err := m.load()
		return groupingsLoadedMsg{groupings: groupings, err: err}
	}
}

// Update handles messages and transitions between views.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.groupingList.SetSize(m.width-4, m.height-8)
		m.groupList.SetSize(m.width-4, m.height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case GroupingListView:
			return m.handleGroupingListKeys(msg)
		case GroupListView:
			return m.handleGroupListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case groupingsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.groupings = msg.groupings
		items := make([]list.Item, len(msg.groupings))
		for i, g := range msg.groupings {
			items[i] = groupingItem{grouping: g}
		}
		m.groupingList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.groupingList.Title = "Library Stats"
		m.groupingList.SetSize(m.width-4, m.height-8)
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case GroupingListView:
		return m.renderGroupingList()
	case GroupListView:
		return m.renderGroupList()
	case DetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleGroupingListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.groupingList.SelectedItem()
		if selected != nil {
			if g, ok := selected.(groupingItem); ok {
				m.openGrouping(g.grouping)
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.groupingList, cmd = m.groupingList.Update(msg)
	return m, cmd
}

func (m *Model) handleGroupListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = GroupingListView
		return m, nil
	case "enter":
		selected := m.groupList.SelectedItem()
		if selected != nil {
			if g, ok := selected.(groupItem); ok {
				m.selected = g.group
				m.view = DetailView
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.groupList, cmd = m.groupList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = GroupListView
		return m, nil
	}
	return m, nil
}

func (m *Model) openGrouping(grouping stats.Grouping) {
	items := make([]list.Item, len(grouping.Groups))
	for i, g := range grouping.Groups {
		items[i] = groupItem{group: g}
	}
	m.groupList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.groupList.Title = fmt.Sprintf("Groups in '%s'", grouping.Name)
	m.groupList.SetSize(m.width-4, m.height-8)
	m.view = GroupListView
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case GroupingListView:
		m.groupingList, cmd = m.groupingList.Update(msg)
	case GroupListView:
		m.groupList, cmd = m.groupList.Update(msg)
	}
	return m, cmd
}

func (m *Model) renderGroupingList() string {
	if m.groupings == nil {
		return styles.help.Render("Computing collection stats...")
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.groupingList.View(), helpView)
}

func (m *Model) renderGroupList() string {
	detailKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "details"),
	)
	helpKeys := []key.Binding{detailKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.groupList.View(), helpView)
}

func (m *Model) renderDetail() string {
	title := styles.title.Render(fmt.Sprintf("%s (%d items)", m.selected.Name, m.selected.Count))
	body := formatter.TotalsToText(m.selected)

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, body, helpView)
}

// Err reports the load failure, if any, after the program exits.
func (m *Model) Err() error {
	return m.err
}
