package tui

import (
	"math/rand/v2"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/controller"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/tui/components/blueprints"
	"github.com/julianstephens/genie/internal/tui/components/loading"
	"github.com/julianstephens/genie/internal/tui/components/results"
	"github.com/julianstephens/genie/internal/tui/theme"
)

type ProfileTab int

const (
	TabBlueprints ProfileTab = iota
	TabSettings
	TabUsage
)

var profileTabNames = []string{"My Blueprints", "Account Settings", "Usage"}

type createFocus int

const (
	focusIdea createFocus = iota
	focusName
	focusRole
)

type Config struct {
	// ExportDir receives Markdown exports. Empty means the working directory.
	ExportDir string
}

type Model struct {
	ctrl   *controller.Controller
	cfg    Config
	keys   KeyMap
	help   help.Model
	styles theme.Styles

	// mirrors of controller state, used to detect transitions
	view          constants.View
	theme         models.Theme
	planRev       uint64
	notice        controller.Notice
	blueprintSeen []models.BlueprintSummary

	form           *huh.Form
	FormError      string
	authForm       *AuthFormModel
	onboardingForm *OnboardingFormModel
	accountForm    *AccountFormModel
	editing        bool

	idea      textarea.Model
	name      textinput.Model
	role      textinput.Model
	focus     createFocus
	roleIndex int

	results    results.Model
	blueprints blueprints.Model
	loading    loading.Model

	quote         constants.Quote
	profileTab    ProfileTab
	pendingDelete *blueprints.DeleteMsg
	status        string
	quitting      bool
	width         int
	height        int
}

func NewModel(ctrl *controller.Controller, cfg Config) Model {
	styles := theme.New(ctrl.Theme())

	idea := textarea.New()
	idea.Placeholder = "Describe the problem, who has it, and how you would solve it..."
	idea.ShowLineNumbers = false
	idea.CharLimit = 2000

	name := textinput.New()
	name.Placeholder = "Your name"
	name.Prompt = "Founder: "

	role := textinput.New()
	role.Placeholder = constants.DefaultRole
	role.Prompt = "Role:    "

	m := Model{
		ctrl:       ctrl,
		cfg:        cfg,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		styles:     styles,
		view:       ctrl.View(),
		theme:      ctrl.Theme(),
		idea:       idea,
		name:       name,
		role:       role,
		results:    results.New(styles, 0, 0),
		blueprints: blueprints.New(nil, 0, 0),
		loading:    loading.New(styles),
		quote:      randomQuote(),
	}
	return m
}

func randomQuote() constants.Quote {
	return constants.Quotes[rand.IntN(len(constants.Quotes))]
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctrl.Start(), m.ctrl.Watch())
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.ForceQuit, m.keys.Theme, m.keys.Help}
	switch m.view {
	case constants.ViewWelcome:
		keys = append(keys, m.keys.SignIn, m.keys.Register)
	case constants.ViewLogin, constants.ViewRegister:
		keys = append(keys, m.keys.Switch, m.keys.GitHub, m.keys.Google, m.keys.Back)
	case constants.ViewDashboard:
		keys = append(keys, m.keys.NewProject, m.keys.Sample, m.keys.Profile)
	case constants.ViewCreate:
		keys = append(keys, m.keys.Submit, m.keys.Tab, m.keys.Back)
	case constants.ViewResults:
		keys = append(keys, m.keys.Save, m.keys.Export, m.keys.NewProject)
	case constants.ViewProfile:
		keys = append(keys, m.keys.Tab, m.keys.Back)
	}
	if !m.notice.Empty() {
		keys = append(keys, m.keys.Dismiss)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.ForceQuit, m.keys.Quit, m.keys.Theme, m.keys.Dismiss, m.keys.Help, m.keys.Back}

	var actions []key.Binding
	switch m.view {
	case constants.ViewWelcome:
		actions = []key.Binding{m.keys.SignIn, m.keys.Register}
	case constants.ViewLogin, constants.ViewRegister:
		actions = []key.Binding{m.keys.Switch, m.keys.GitHub, m.keys.Google}
	case constants.ViewDashboard:
		actions = []key.Binding{m.keys.NewProject, m.keys.Sample, m.keys.Profile, m.keys.Logout}
	case constants.ViewCreate:
		actions = []key.Binding{m.keys.Submit, m.keys.Tab, m.keys.ShiftTab, m.keys.CycleRole}
	case constants.ViewResults:
		rk := m.results.Keys()
		actions = []key.Binding{rk.NextTab, rk.PrevTab, rk.Toggle, m.keys.Save, m.keys.Export, m.keys.NewProject}
	case constants.ViewProfile:
		actions = []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Edit, m.keys.Logout}
	}
	return [][]key.Binding{global, actions}
}

// inForm reports whether key presses belong to a huh form or a text input.
func (m Model) inForm() bool {
	switch m.view {
	case constants.ViewLogin, constants.ViewRegister, constants.ViewOnboarding, constants.ViewCreate:
		return true
	case constants.ViewProfile:
		return m.editing || m.blueprints.Filtering()
	}
	return false
}
