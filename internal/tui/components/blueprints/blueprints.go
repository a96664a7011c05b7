package blueprints

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/models"
)

type OpenMsg struct {
	ID string
}

type DeleteMsg struct {
	ID    string
	Title string
}

type RefreshMsg struct{}

type Item struct {
	Summary models.BlueprintSummary
}

func (i Item) Title() string { return i.Summary.Title }
func (i Item) Description() string {
	return fmt.Sprintf("%s | %s", i.Summary.CreatedAt.Local().Format(constants.DateFormat), i.Summary.PitchSummary)
}
func (i Item) FilterValue() string { return i.Summary.Title + " " + i.Summary.Idea }

type KeyMap struct {
	Open    key.Binding
	Delete  key.Binding
	Refresh key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []models.BlueprintSummary, width, height int) Model {
	l := list.New(toItems(items), list.NewDefaultDelegate(), width, height)
	l.Title = "My Blueprints"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Delete, keys.Refresh}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Open, keys.Delete, keys.Refresh}
	}

	return Model{list: l, keys: keys}
}

func toItems(summaries []models.BlueprintSummary) []list.Item {
	items := make([]list.Item, len(summaries))
	for i, s := range summaries {
		items[i] = Item{Summary: s}
	}
	return items
}

func (m *Model) SetBlueprints(summaries []models.BlueprintSummary) {
	m.list.SetItems(toItems(summaries))
}

func (m Model) Len() int { return len(m.list.Items()) }

// Filtering reports whether the list is capturing keys for its filter.
func (m Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Open):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return OpenMsg{ID: i.Summary.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteMsg{ID: i.Summary.ID, Title: i.Summary.Title} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, func() tea.Msg { return RefreshMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No blueprints yet.\n  Save a plan from the results screen to keep it here."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
