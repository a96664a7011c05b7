package results

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/genie/internal/export"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/tui/theme"
)

type Tab int

const (
	TabSummary Tab = iota
	TabAudience
	TabAdvantage
	TabRoadmap
)

var tabNames = []string{"Summary", "Audience", "Advantage", "Roadmap"}

func (t Tab) String() string { return tabNames[t] }

// ToggleMsg asks for a roadmap item to be checked or unchecked.
type ToggleMsg struct {
	Key string
}

type KeyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle item"),
		),
	}
}

type item struct {
	key   string
	text  string
	phase string
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	styles   theme.Styles
	plan     *models.StartupPlan
	checked  map[string]bool
	items    []item
	tab      Tab
	cursor   int
	width    int
	height   int
}

func New(styles theme.Styles, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		styles:   styles,
		checked:  map[string]bool{},
	}
}

func (m Model) Tab() Tab { return m.tab }

func (m Model) Keys() KeyMap { return m.keys }

func (m *Model) SetStyles(styles theme.Styles) {
	m.styles = styles
	m.Render()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetPlan shows plan starting on the summary tab.
func (m *Model) SetPlan(plan models.StartupPlan, checked map[string]bool) {
	m.plan = &plan
	m.tab = TabSummary
	m.cursor = 0
	m.items = nil
	for i, f := range plan.MVPFeatures.MustHave {
		m.items = append(m.items, item{key: export.ChecklistKey("must", i), text: f, phase: "must"})
	}
	for i, f := range plan.MVPFeatures.Optional {
		m.items = append(m.items, item{key: export.ChecklistKey("optional", i), text: f, phase: "optional"})
	}
	m.SetChecked(checked)
}

func (m *Model) SetChecked(checked map[string]bool) {
	m.checked = checked
	if m.checked == nil {
		m.checked = map[string]bool{}
	}
	m.Render()
}

func (m *Model) SetOffset(offset int) { m.viewport.SetYOffset(offset) }

func (m Model) Offset() int { return m.viewport.YOffset }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % Tab(len(tabNames))
			m.Render()
			return m, nil
		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab - 1 + Tab(len(tabNames))) % Tab(len(tabNames))
			m.Render()
			return m, nil
		}
		if m.tab == TabRoadmap && len(m.items) > 0 {
			switch {
			case key.Matches(msg, m.keys.Up):
				m.cursor = max(m.cursor-1, 0)
				m.Render()
				return m, nil
			case key.Matches(msg, m.keys.Down):
				m.cursor = min(m.cursor+1, len(m.items)-1)
				m.Render()
				return m, nil
			case key.Matches(msg, m.keys.Toggle):
				k := m.items[m.cursor].key
				return m, func() tea.Msg { return ToggleMsg{Key: k} }
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.plan == nil {
		return "No plan yet. Describe an idea to generate one."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), m.viewport.View())
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range tabNames {
		if m.tab == Tab(i) {
			tabs = append(tabs, m.styles.ActiveTab.Render(title))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// Render rebuilds the viewport content for the active tab.
func (m *Model) Render() {
	if m.plan == nil {
		m.viewport.SetContent("")
		return
	}

	var content string
	switch m.tab {
	case TabSummary:
		content = m.markdown(export.Summary(*m.plan))
	case TabAudience:
		content = m.markdown(export.Audience(*m.plan))
	case TabAdvantage:
		content = m.markdown(export.Advantage(*m.plan))
	case TabRoadmap:
		content = m.roadmap()
	}
	m.viewport.SetContent(content)
}

func (m *Model) markdown(md string) string {
	out, err := export.Render(md, m.width, m.styles.Dark)
	if err != nil {
		logger.Debug("Falling back to plain markdown", "error", err)
		return md
	}
	return out
}

func (m *Model) roadmap() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("The Execution Plan") + "\n\n")
	phase := ""
	done := 0
	for i, it := range m.items {
		if it.phase != phase {
			phase = it.phase
			heading := "Phase 1: Foundation (Must-Haves)"
			if phase == "optional" {
				heading = "\nPhase 2: Growth (Upcoming)"
			}
			b.WriteString(m.styles.Subtitle.Render(heading) + "\n")
		}
		mark := "[ ]"
		text := m.styles.Text.Render(it.text)
		if m.checked[it.key] {
			mark = m.styles.Success.Render("[x]")
			text = m.styles.Muted.Strikethrough(true).Render(it.text)
			done++
		}
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Accent.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, mark, text)
	}
	if len(m.items) == 0 {
		b.WriteString(m.styles.Muted.Render("No milestones in this plan."))
		return b.String()
	}
	fmt.Fprintf(&b, "\n%s\n", m.styles.Muted.Render(fmt.Sprintf("%d of %d milestones done", done, len(m.items))))
	return b.String()
}
