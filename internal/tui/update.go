package tui

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/controller"
	"github.com/julianstephens/genie/internal/export"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/tui/components/blueprints"
	"github.com/julianstephens/genie/internal/tui/components/results"
	"github.com/julianstephens/genie/internal/tui/theme"
)

type noticeExpiredMsg struct{ notice controller.Notice }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		cmds = append(cmds, m.updateWidgets(msg))

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case noticeExpiredMsg:
		if m.ctrl.Notice() == msg.notice {
			m.ctrl.DismissNotice()
		}

	case blueprints.OpenMsg:
		cmds = append(cmds, m.ctrl.OpenBlueprint(msg.ID))
	case blueprints.DeleteMsg:
		m.pendingDelete = &msg
	case blueprints.RefreshMsg:
		cmds = append(cmds, m.ctrl.RefreshBlueprints())
	case results.ToggleMsg:
		m.ctrl.ToggleChecked(msg.Key)
		m.results.SetChecked(m.ctrl.CheckedItems())

	default:
		cmds = append(cmds, m.ctrl.Update(msg))
		var cmd tea.Cmd
		m.loading, cmd = m.loading.Update(msg)
		cmds = append(cmds, cmd, m.updateWidgets(msg))
	}

	if m.quitting {
		return m, tea.Quit
	}
	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

// sync reconciles the screen widgets with the controller after every message.
func (m *Model) sync() tea.Cmd {
	var cmds []tea.Cmd

	if t := m.ctrl.Theme(); t != m.theme {
		m.theme = t
		m.styles = theme.New(t)
		m.results.SetStyles(m.styles)
		m.loading.SetStyles(m.styles)
		if m.form != nil {
			m.form = m.form.WithTheme(theme.Form(t))
		}
	}

	if rev := m.ctrl.PlanRevision(); rev != m.planRev {
		m.planRev = rev
		if plan, ok := m.ctrl.Plan(); ok {
			m.results.SetPlan(plan, m.ctrl.CheckedItems())
		}
	}

	if v := m.ctrl.View(); v != m.view {
		cmds = append(cmds, m.enterView(v))
	}

	if n := m.ctrl.Notice(); n != m.notice {
		m.notice = n
		if n.Kind == controller.NoticeInfo || n.Kind == controller.NoticeGeneration {
			cmds = append(cmds, tea.Tick(constants.NoticeTTL, func(time.Time) tea.Msg {
				return noticeExpiredMsg{notice: n}
			}))
		}
	}

	if bps := m.ctrl.Blueprints(); !sameBlueprints(bps, m.blueprintSeen) {
		m.blueprintSeen = bps
		m.blueprints.SetBlueprints(bps)
	}

	if m.view == constants.ViewResults {
		m.ctrl.SetScroll(m.results.Offset())
	}
	return tea.Batch(cmds...)
}

func sameBlueprints(a, b []models.BlueprintSummary) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Title != b[i].Title {
			return false
		}
	}
	return true
}

func (m *Model) enterView(v constants.View) tea.Cmd {
	prev := m.view
	m.view = v
	m.status = ""
	m.form = nil
	m.FormError = ""
	m.editing = false
	m.pendingDelete = nil
	if prev == constants.ViewLoading {
		m.loading.Stop()
	}

	switch v {
	case constants.ViewLogin, constants.ViewRegister:
		fm := &AuthFormModel{Remember: true}
		if m.authForm != nil && (prev == constants.ViewLogin || prev == constants.ViewRegister) {
			fm.Email = m.authForm.Email
			fm.Remember = m.authForm.Remember
		}
		m.authForm = fm
		m.form = NewAuthForm(fm, v == constants.ViewRegister, m.theme)
		return m.initForm()
	case constants.ViewOnboarding:
		p := m.ctrl.Profile()
		m.onboardingForm = &OnboardingFormModel{Name: p.FullName, Role: p.Role}
		m.form = NewOnboardingForm(m.onboardingForm, m.theme)
		return m.initForm()
	case constants.ViewDashboard:
		m.quote = randomQuote()
	case constants.ViewCreate:
		return m.resetCreate()
	case constants.ViewLoading:
		return m.loading.Start()
	case constants.ViewResults:
		m.results.SetOffset(m.ctrl.ScrollTop())
	case constants.ViewProfile:
		m.profileTab = TabBlueprints
	}
	return nil
}

func (m *Model) initForm() tea.Cmd {
	if m.width > 0 {
		m.form = m.form.WithWidth(min(m.width-4, 64))
	}
	return m.form.Init()
}

func (m *Model) resetCreate() tea.Cmd {
	p := m.ctrl.Profile()
	m.idea.SetValue(m.ctrl.Idea())
	m.name.SetValue(p.FullName)
	m.role.SetValue(p.Role)
	m.roleIndex = 0
	return m.focusCreate(focusIdea)
}

func (m *Model) focusCreate(f createFocus) tea.Cmd {
	m.focus = f
	m.idea.Blur()
	m.name.Blur()
	m.role.Blur()
	switch f {
	case focusName:
		return m.name.Focus()
	case focusRole:
		return m.role.Focus()
	default:
		return m.idea.Focus()
	}
}

func (m *Model) resize() {
	w := max(m.width-4, 20)
	h := max(m.height-8, 5)
	m.results.SetSize(w, h-1)
	m.blueprints.SetSize(w, h-2)
	m.loading.SetSize(w, h)
	m.idea.SetWidth(min(w, 90))
	m.idea.SetHeight(6)
	if m.form != nil {
		m.form = m.form.WithWidth(min(w, 64))
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.quit()
		return nil
	case key.Matches(msg, m.keys.Theme):
		if err := m.ctrl.ToggleTheme(); err != nil {
			m.status = "Theme could not be saved: " + err.Error()
		}
		return nil
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissNotice()
		return nil
	}

	if m.pendingDelete != nil {
		return m.handleConfirmDelete(msg)
	}

	if !m.inForm() {
		switch {
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return nil
		case key.Matches(msg, m.keys.Quit) && m.view != constants.ViewLoading:
			m.quit()
			return nil
		}
	}

	switch m.view {
	case constants.ViewWelcome:
		return m.handleWelcomeKey(msg)
	case constants.ViewLogin, constants.ViewRegister:
		return m.handleAuthKey(msg)
	case constants.ViewOnboarding:
		return m.updateForm(msg)
	case constants.ViewDashboard:
		return m.handleDashboardKey(msg)
	case constants.ViewCreate:
		return m.handleCreateKey(msg)
	case constants.ViewResults:
		return m.handleResultsKey(msg)
	case constants.ViewProfile:
		return m.handleProfileKey(msg)
	}
	return nil
}

func (m *Model) quit() {
	m.quitting = true
	m.ctrl.Close()
}

func (m *Model) handleConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		return m.ctrl.DeleteBlueprint(id)
	case key.Matches(msg, m.keys.Cancel):
		m.pendingDelete = nil
	}
	return nil
}

func (m *Model) handleWelcomeKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.SignIn):
		return m.ctrl.Navigate(constants.ViewLogin)
	case key.Matches(msg, m.keys.Register):
		return m.ctrl.Navigate(constants.ViewRegister)
	}
	return nil
}

func (m *Model) handleAuthKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		if _, ok := m.ctrl.OAuthChallenge(); ok {
			m.ctrl.CancelOAuth()
			return nil
		}
		return m.ctrl.Navigate(constants.ViewWelcome)
	case key.Matches(msg, m.keys.Switch):
		if target, ok := m.ctrl.Notice().Suggestion(); ok {
			return m.ctrl.Navigate(target)
		}
		if m.view == constants.ViewLogin {
			return m.ctrl.Navigate(constants.ViewRegister)
		}
		return m.ctrl.Navigate(constants.ViewLogin)
	case key.Matches(msg, m.keys.GitHub):
		return m.ctrl.BeginOAuth(auth.ProviderGitHub)
	case key.Matches(msg, m.keys.Google):
		return m.ctrl.BeginOAuth(auth.ProviderGoogle)
	}
	return m.updateForm(msg)
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.NewProject):
		return m.ctrl.NewProject()
	case key.Matches(msg, m.keys.Sample):
		m.ctrl.ShowSample()
	case key.Matches(msg, m.keys.Profile):
		return m.ctrl.Navigate(constants.ViewProfile)
	case key.Matches(msg, m.keys.Logout):
		return m.ctrl.Logout()
	}
	return nil
}

func (m *Model) handleCreateKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.ctrl.Navigate(constants.ViewDashboard)
	case key.Matches(msg, m.keys.Submit):
		return m.submitIdea()
	case key.Matches(msg, m.keys.Tab):
		return m.focusCreate((m.focus + 1) % 3)
	case key.Matches(msg, m.keys.ShiftTab):
		return m.focusCreate((m.focus + 2) % 3)
	case key.Matches(msg, m.keys.CycleRole):
		m.roleIndex = (m.roleIndex + 1) % len(constants.Roles)
		m.role.SetValue(constants.Roles[m.roleIndex])
		return nil
	case key.Matches(msg, m.keys.Enter) && m.focus != focusIdea:
		return m.submitIdea()
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusIdea:
		m.idea, cmd = m.idea.Update(msg)
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusRole:
		m.role, cmd = m.role.Update(msg)
	}
	return cmd
}

func (m *Model) submitIdea() tea.Cmd {
	if !m.ctrl.CanSubmit(m.idea.Value(), m.name.Value()) {
		if m.ctrl.Busy() {
			return nil
		}
		m.status = "Describe your idea in at least 10 characters and add your name."
		return nil
	}
	return m.ctrl.SubmitIdea(m.idea.Value(), m.name.Value(), m.role.Value())
}

func (m *Model) handleResultsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.ctrl.Navigate(constants.ViewDashboard)
	case key.Matches(msg, m.keys.Save):
		return m.ctrl.SaveBlueprint()
	case key.Matches(msg, m.keys.Export):
		m.exportPlan()
		return nil
	case key.Matches(msg, m.keys.NewProject):
		return m.ctrl.NewProject()
	case key.Matches(msg, m.keys.Profile):
		return m.ctrl.Navigate(constants.ViewProfile)
	}
	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return cmd
}

func (m *Model) exportPlan() {
	plan, ok := m.ctrl.Plan()
	if !ok {
		return
	}
	opts := export.Options{
		Idea:      m.ctrl.Idea(),
		CreatedAt: time.Now(),
		Checked:   m.ctrl.CheckedItems(),
	}
	if m.ctrl.LoggedIn() {
		p := m.ctrl.Profile()
		opts.FounderName = p.FullName
		opts.FounderRole = p.Role
	}
	path := filepath.Join(m.cfg.ExportDir, export.FileName(plan.Title()))
	if err := export.WriteFile(path, plan, opts); err != nil {
		logger.Warn("Export failed", "path", path, "error", err)
		m.status = "Export failed: " + err.Error()
		return
	}
	logger.Info("Blueprint exported", "path", path)
	m.status = "Exported to " + path
}

func (m *Model) handleProfileKey(msg tea.KeyMsg) tea.Cmd {
	if m.editing {
		if key.Matches(msg, m.keys.Back) {
			m.editing = false
			m.form = nil
			m.FormError = ""
			return nil
		}
		return m.updateForm(msg)
	}

	if !m.blueprints.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m.ctrl.Navigate(constants.ViewDashboard)
		case key.Matches(msg, m.keys.Tab):
			m.profileTab = (m.profileTab + 1) % ProfileTab(len(profileTabNames))
			return nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.profileTab = (m.profileTab + ProfileTab(len(profileTabNames)) - 1) % ProfileTab(len(profileTabNames))
			return nil
		case key.Matches(msg, m.keys.Logout):
			return m.ctrl.Logout()
		}
	}

	switch m.profileTab {
	case TabBlueprints:
		var cmd tea.Cmd
		m.blueprints, cmd = m.blueprints.Update(msg)
		return cmd
	case TabSettings:
		if key.Matches(msg, m.keys.Edit) {
			return m.beginEdit()
		}
	}
	return nil
}

func (m *Model) beginEdit() tea.Cmd {
	p := m.ctrl.Profile()
	m.accountForm = &AccountFormModel{Name: p.FullName, Role: p.Role, Bio: p.Bio}
	m.form = NewAccountForm(m.accountForm, m.theme)
	m.editing = true
	return m.initForm()
}

// updateWidgets forwards non-key messages to whatever is on screen.
func (m *Model) updateWidgets(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.view {
	case constants.ViewLogin, constants.ViewRegister, constants.ViewOnboarding:
		return m.updateForm(msg)
	case constants.ViewProfile:
		if m.editing {
			return m.updateForm(msg)
		}
		m.blueprints, cmd = m.blueprints.Update(msg)
	case constants.ViewCreate:
		var c1, c2, c3 tea.Cmd
		m.idea, c1 = m.idea.Update(msg)
		m.name, c2 = m.name.Update(msg)
		m.role, c3 = m.role.Update(msg)
		cmd = tea.Batch(c1, c2, c3)
	case constants.ViewResults:
		m.results, cmd = m.results.Update(msg)
	}
	return cmd
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	if m.form == nil {
		return nil
	}
	var cmds []tea.Cmd

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		cmds = append(cmds, m.submitForm())
	case huh.StateAborted:
		m.FormError = ""
		m.form = nil
		m.editing = false
	}
	return tea.Batch(cmds...)
}

func (m *Model) submitForm() tea.Cmd {
	switch m.view {
	case constants.ViewLogin, constants.ViewRegister:
		creds := auth.Credentials{
			Email:    strings.TrimSpace(m.authForm.Email),
			Password: m.authForm.Password,
			Remember: m.authForm.Remember,
		}
		var cmd tea.Cmd
		if m.view == constants.ViewRegister {
			cmd = m.ctrl.Register(creds)
		} else {
			cmd = m.ctrl.Authenticate(creds)
		}
		if cmd == nil {
			m.FormError = "A sign-in is already in progress."
		} else {
			m.FormError = ""
		}
		// a fresh form keeps the values for a retry
		m.authForm.Password = ""
		m.form = NewAuthForm(m.authForm, m.view == constants.ViewRegister, m.theme)
		return tea.Batch(cmd, m.initForm())

	case constants.ViewOnboarding:
		cmd := m.ctrl.CompleteOnboarding(m.onboardingForm.Name, m.onboardingForm.Role)
		if cmd == nil {
			m.FormError = "Your session has ended. Sign in again to continue."
			m.form = NewOnboardingForm(m.onboardingForm, m.theme)
			return m.initForm()
		}
		return cmd

	case constants.ViewProfile:
		fm := m.accountForm
		m.editing = false
		m.form = nil
		p := m.ctrl.Profile()
		p.FullName = strings.TrimSpace(fm.Name)
		p.Role = strings.TrimSpace(fm.Role)
		p.Bio = fm.Bio
		cmds := []tea.Cmd{m.ctrl.SaveProfile(p)}
		if path := strings.TrimSpace(fm.AvatarPath); path != "" {
			cmds = append(cmds, m.ctrl.SetAvatar(expandHome(path)))
		}
		return tea.Batch(cmds...)
	}
	return nil
}
