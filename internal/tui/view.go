package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/controller"
	"github.com/julianstephens/genie/internal/vision"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.view {
	case constants.ViewSplash:
		return m.viewSplash()
	case constants.ViewWelcome:
		content = m.viewWelcome()
	case constants.ViewLogin, constants.ViewRegister:
		content = m.viewAuth()
	case constants.ViewOnboarding:
		content = m.viewOnboarding()
	case constants.ViewDashboard:
		content = m.viewDashboard()
	case constants.ViewCreate:
		content = m.viewCreate()
	case constants.ViewLoading:
		content = m.loading.View()
	case constants.ViewResults:
		content = m.viewResults()
	case constants.ViewProfile:
		content = m.viewProfile()
	}

	if m.pendingDelete != nil {
		content = m.viewConfirmDelete()
	}

	parts := []string{m.viewHeader()}
	if n := m.viewNotice(); n != "" {
		parts = append(parts, n)
	}
	parts = append(parts, content)
	if m.status != "" {
		parts = append(parts, m.styles.Muted.Render(m.status))
	}
	parts = append(parts, m.help.View(m))
	return m.styles.Doc.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewHeader() string {
	left := m.styles.Title.Render("✦ " + constants.DisplayName)
	right := m.styles.Muted.Render(string(m.theme) + " theme")
	if m.ctrl.LoggedIn() {
		p := m.ctrl.Profile()
		right = m.styles.Text.Render(p.DisplayName()) + m.styles.Muted.Render(" · "+p.Role+" · ") + right
	}
	gap := max(m.width-4-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right + "\n"
}

func (m Model) viewNotice() string {
	n := m.notice
	if n.Empty() {
		return ""
	}
	var style lipgloss.Style
	switch n.Kind {
	case controller.NoticeGeneration:
		style = m.styles.Banner
	case controller.NoticeInvalidCredentials, controller.NoticeAccountExists, controller.NoticeError:
		style = m.styles.Danger
	case controller.NoticeVerificationPending, controller.NoticeProfile:
		style = m.styles.Warning
	default:
		style = m.styles.Success
	}
	text := style.Render(n.Text)
	if target, ok := n.Suggestion(); ok {
		label := "sign in"
		if target == constants.ViewRegister {
			label = "create an account"
		}
		text += m.styles.Muted.Render(fmt.Sprintf("  [ctrl+n] %s", label))
	}
	return text + "\n"
}

func (m Model) centered(content string) string {
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width-4, max(m.height-8, 1), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewSplash() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Title.Render("✦ "+constants.DisplayName+" ✦"),
		"",
		m.styles.Muted.Render("Summoning your strategic co-founder..."),
	)
	if m.width <= 0 || m.height <= 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewWelcome() string {
	return m.centered(lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Title.Render("Turn a spark into a startup blueprint."),
		"",
		m.styles.Text.Render("Describe an idea. Get personas, a SWOT, competitors,"),
		m.styles.Text.Render("revenue models and an MVP roadmap in under a minute."),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.Button.Render("[enter] Sign in"),
			"  ",
			m.styles.InactiveTab.Render("[r] Create account"),
		),
	))
}

func (m Model) viewAuth() string {
	title := "Welcome back"
	sub := "Sign in to your founder workspace."
	if m.view == constants.ViewRegister {
		title = "Create your account"
		sub = "Your blueprints are saved to your account."
	}

	parts := []string{
		m.styles.Subtitle.Render(title),
		m.styles.Muted.Render(sub),
		"",
	}

	if ch, ok := m.ctrl.OAuthChallenge(); ok {
		parts = append(parts, m.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Text.Render("Continue with "+ch.Provider),
			"",
			"Visit   "+m.styles.Accent.Render(ch.VerificationURI),
			"Enter   "+m.styles.Title.Render(ch.UserCode),
			"",
			m.styles.Muted.Render("Waiting for approval... [esc] cancel"),
		)))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	if m.form != nil {
		parts = append(parts, m.form.View())
	}
	if m.FormError != "" {
		parts = append(parts, m.styles.Danger.Render(m.FormError))
	}
	if m.ctrl.Busy() {
		parts = append(parts, m.styles.Muted.Render("Signing in..."))
	}
	parts = append(parts, "", m.styles.Muted.Render("Or continue with [ctrl+g] GitHub · [ctrl+o] Google"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewOnboarding() string {
	parts := []string{
		m.styles.Subtitle.Render("Let's set up your founder profile"),
		m.styles.Muted.Render("This helps tailor every blueprint to you."),
		"",
	}
	if m.form != nil {
		parts = append(parts, m.form.View())
	}
	if m.FormError != "" {
		parts = append(parts, m.styles.Danger.Render(m.FormError))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewDashboard() string {
	p := m.ctrl.Profile()
	greeting := m.styles.Subtitle.Render("Welcome back, " + p.DisplayName())
	if art := avatarArt(p.AvatarRef, 8); art != "" {
		greeting = lipgloss.JoinHorizontal(lipgloss.Center, art, "  ", greeting)
	}

	quote := m.styles.Quote.Render(fmt.Sprintf("“%s”\n- %s", m.quote.Text, m.quote.Author)) +
		"\n" + m.styles.Muted.Render("  #"+m.quote.Category)

	actions := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Button.Render("[n] New Project"),
		"  ",
		m.styles.InactiveTab.Render("[s] View Sample"),
		"  ",
		m.styles.InactiveTab.Render("[p] Profile"),
	)

	recent := []string{m.styles.Subtitle.Render("Recent blueprints")}
	bps := m.ctrl.Blueprints()
	if len(bps) == 0 {
		recent = append(recent, m.styles.Muted.Render("Nothing saved yet."))
	}
	for i, bp := range bps {
		if i == 3 {
			recent = append(recent, m.styles.Muted.Render(fmt.Sprintf("+ %d more on your profile", len(bps)-3)))
			break
		}
		recent = append(recent, fmt.Sprintf("• %s %s", m.styles.Text.Render(bp.Title),
			m.styles.Muted.Render(bp.CreatedAt.Local().Format(constants.DateFormat))))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		greeting,
		"",
		quote,
		"",
		actions,
		"",
		lipgloss.JoinVertical(lipgloss.Left, recent...),
	)
}

func (m Model) viewCreate() string {
	idea := m.idea.Value()
	strength := vision.Strength(idea)

	var color lipgloss.Color
	switch vision.Level(strength) {
	case 0:
		color = m.styles.Palette.Danger
	case 1:
		color = m.styles.Palette.Warning
	case 2:
		color = m.styles.Palette.Accent
	default:
		color = m.styles.Palette.Success
	}
	meter := progress.New(progress.WithSolidFill(string(color)), progress.WithoutPercentage())
	meter.Width = min(max(m.width-30, 10), 50)

	button := m.styles.ButtonOff.Render(vision.SubmitLabel(strength))
	if m.ctrl.CanSubmit(idea, m.name.Value()) {
		button = m.styles.Button.Render(vision.SubmitLabel(strength))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Subtitle.Render("Describe your vision"),
		m.styles.Muted.Render("The more context you give, the sharper the blueprint."),
		"",
		m.idea.View(),
		"",
		m.styles.Muted.Render("Vision strength ")+meter.ViewAs(float64(strength)/100)+
			m.styles.Muted.Render(fmt.Sprintf(" %d%%", strength)),
		m.styles.Warning.Render(vision.Tip(idea, time.Now())),
		"",
		m.name.View(),
		m.role.View(),
		"",
		button+m.styles.Muted.Render("  [ctrl+s]"),
	)
}

func (m Model) viewResults() string {
	header := m.styles.Subtitle.Render("Your startup blueprint")
	if id := m.ctrl.SavedBlueprintID(); id != "" {
		header += m.styles.Success.Render("  ✓ saved")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.results.View())
}

func (m Model) viewProfile() string {
	var tabs []string
	for i, title := range profileTabNames {
		if m.profileTab == ProfileTab(i) {
			tabs = append(tabs, m.styles.ActiveTab.Render(title))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(title))
		}
	}

	var body string
	switch m.profileTab {
	case TabBlueprints:
		body = m.blueprints.View()
	case TabSettings:
		body = m.viewSettings()
	case TabUsage:
		body = m.viewUsage()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		"",
		body,
	)
}

func (m Model) viewSettings() string {
	if m.editing && m.form != nil {
		parts := []string{m.form.View()}
		if m.FormError != "" {
			parts = append(parts, m.styles.Danger.Render(m.FormError))
		}
		parts = append(parts, m.styles.Muted.Render("[esc] discard changes"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	p := m.ctrl.Profile()
	bio := p.Bio
	if strings.TrimSpace(bio) == "" {
		bio = m.styles.Muted.Render("No bio yet.")
	}
	email := ""
	if s, ok := m.ctrl.Session(); ok {
		email = s.Email
	}

	details := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Subtitle.Render(p.DisplayName()),
		m.styles.Muted.Render(p.Role),
		m.styles.Muted.Render(email),
		"",
		m.styles.Text.Render(bio),
	)
	if art := avatarArt(p.AvatarRef, 16); art != "" {
		details = lipgloss.JoinHorizontal(lipgloss.Top, art, "  ", details)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Card.Render(details),
		"",
		m.styles.Text.Render("Theme: "+string(m.theme))+m.styles.Muted.Render("  [ctrl+t] toggle"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			m.styles.Button.Render("[e] Edit profile"),
			"  ",
			m.styles.Danger.Render("[L] Sign out"),
		),
	)
}

func (m Model) viewUsage() string {
	bps := m.ctrl.Blueprints()
	rows := []string{
		m.styles.Text.Render(fmt.Sprintf("Blueprints saved   %d", len(bps))),
	}
	if len(bps) > 0 {
		newest := bps[0].CreatedAt
		oldest := bps[len(bps)-1].CreatedAt
		rows = append(rows,
			m.styles.Text.Render("Latest blueprint   "+newest.Local().Format(constants.DateFormat)),
			m.styles.Text.Render("First blueprint    "+oldest.Local().Format(constants.DateFormat)),
		)
	}
	if s, ok := m.ctrl.Session(); ok {
		rows = append(rows, m.styles.Text.Render("Signed in with     "+s.Provider))
	}
	rows = append(rows,
		"",
		m.styles.Subtitle.Render("Plan: Founder (free)"),
		m.styles.Muted.Render("Manage Tier is not available in the terminal edition."),
	)
	return m.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) viewConfirmDelete() string {
	return m.centered(lipgloss.JoinVertical(lipgloss.Center,
		m.styles.Danger.Render(fmt.Sprintf("Delete %q?", m.pendingDelete.Title)),
		m.styles.Muted.Render("This cannot be undone."),
		"",
		"[y] Yes",
		"[n] No",
	))
}
