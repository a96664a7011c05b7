package loading

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/tui/theme"
)

// ceiling is where the progress bar settles until the plan arrives.
const ceiling = 0.95

type messageTickMsg struct{ gen int }

type insightTickMsg struct{ gen int }

type progressTickMsg struct{ gen int }

type Model struct {
	spinner  spinner.Model
	progress progress.Model
	styles   theme.Styles
	message  int
	insight  int
	percent  float64
	active   bool
	gen      int
	width    int
	height   int
}

func New(styles theme.Styles) Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	m := Model{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	m.SetStyles(styles)
	return m
}

func (m *Model) SetStyles(styles theme.Styles) {
	m.styles = styles
	m.spinner.Style = styles.Accent
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = min(max(width-20, 10), 60)
}

func (m Model) Active() bool { return m.active }

func (m Model) Percent() float64 { return m.percent }

// Start resets the screen and returns the tick commands. Ticks from an
// earlier run are ignored.
func (m *Model) Start() tea.Cmd {
	m.gen++
	m.active = true
	m.message = 0
	m.insight = 0
	m.percent = 0
	return tea.Batch(
		m.spinner.Tick,
		tick(constants.LoadingMessageTick, messageTickMsg{gen: m.gen}),
		tick(constants.LoadingInsightTick, insightTickMsg{gen: m.gen}),
		tick(constants.LoadingProgressTick, progressTickMsg{gen: m.gen}),
	)
}

func (m *Model) Stop() {
	m.active = false
	m.gen++
}

func tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.active {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case messageTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.message = (m.message + 1) % len(constants.LoadingMessages)
		return m, tick(constants.LoadingMessageTick, msg)
	case insightTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.insight = (m.insight + 1) % len(constants.LoadingInsights)
		return m, tick(constants.LoadingInsightTick, msg)
	case progressTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		// approaches the ceiling without reaching it
		m.percent += (ceiling - m.percent) * 0.08
		return m, tick(constants.LoadingProgressTick, msg)
	}
	return m, nil
}

func (m Model) Message() string { return constants.LoadingMessages[m.message] }

func (m Model) Insight() string { return constants.LoadingInsights[m.insight] }

func (m Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Title.Render("Synthesizing your blueprint"),
		"",
		m.spinner.View()+" "+m.styles.Text.Render(m.Message()),
		"",
		m.progress.ViewAs(m.percent),
		"",
		m.styles.Muted.Render("Insight: ")+m.styles.Quote.Render(m.Insight()),
	)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}
