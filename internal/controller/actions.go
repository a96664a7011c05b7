package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/avatar"
	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

// Start shows the splash screen and looks up an existing session. A valid
// session goes straight to the dashboard; otherwise the splash gives way to
// the welcome screen once the delay elapses.
func (c *Controller) Start() tea.Cmd {
	c.setView(constants.ViewSplash)
	token := c.begin(actStart)
	ap := c.deps.Auth
	return tea.Batch(
		func() tea.Msg {
			sess, err := ap.CurrentSession(context.Background())
			return sessionMsg{token: token, session: sess, err: err}
		},
		tea.Tick(c.deps.SplashDelay, func(time.Time) tea.Msg {
			return splashDoneMsg{token: token}
		}),
	)
}

// Watch delivers auth state changes. The returned command must be re-issued
// after each event, which Update does.
func (c *Controller) Watch() tea.Cmd {
	if c.events == nil {
		c.events, c.unsubscribe = c.deps.Auth.Subscribe()
	}
	events := c.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return authEventMsg{event: ev}
	}
}

// Navigate switches to target. Screens that need a session redirect to
// login without one, and loading can only be reached by submitting an idea.
func (c *Controller) Navigate(target constants.View) tea.Cmd {
	if !target.Navigable() {
		logger.Debug("Ignoring navigation", "target", target)
		return nil
	}
	if target == constants.ViewResults && c.plan == nil {
		target = constants.ViewCreate
	}
	if target.RequiresSession() && !c.LoggedIn() {
		target = constants.ViewLogin
	}

	c.supersede(viewActions...)
	c.notice = Notice{}
	c.setView(target)

	switch target {
	case constants.ViewDashboard, constants.ViewProfile:
		return c.RefreshBlueprints()
	}
	return nil
}

// CanSubmit reports whether an idea can be submitted right now.
func (c *Controller) CanSubmit(idea, name string) bool {
	return len([]rune(strings.TrimSpace(idea))) >= constants.MinIdeaLength &&
		strings.TrimSpace(name) != "" &&
		!c.inFlight(actGenerate)
}

// SubmitIdea moves to the loading screen and asks the generator for a plan.
// A failed generation shows the fallback plan after a short delay.
func (c *Controller) SubmitIdea(idea, name, role string) tea.Cmd {
	if !c.CanSubmit(idea, name) {
		return nil
	}
	token := c.begin(actGenerate)

	c.notice = Notice{}
	c.clearPlan()
	c.idea = strings.TrimSpace(idea)
	c.profile.FullName = strings.TrimSpace(name)
	c.profile.Role = roleOrDefault(role)
	c.setView(constants.ViewLoading)

	req := generator.Request{Idea: c.idea, FounderName: c.profile.FullName, FounderRole: c.profile.Role}
	gen := c.deps.Generator
	logger.Info("Generating plan", "token", token, "idea_length", len(req.Idea))
	return func() tea.Msg {
		plan, err := gen.Generate(context.Background(), req)
		return generatedMsg{token: token, plan: plan, err: err}
	}
}

// Authenticate signs in with email and password.
func (c *Controller) Authenticate(creds auth.Credentials) tea.Cmd {
	return c.authenticate(creds, false)
}

// Register creates an account and signs in.
func (c *Controller) Register(creds auth.Credentials) tea.Cmd {
	return c.authenticate(creds, true)
}

func (c *Controller) authenticate(creds auth.Credentials, register bool) tea.Cmd {
	if c.inFlight(actAuth) || c.inFlight(actOAuth) {
		return nil
	}
	token := c.begin(actAuth)
	c.notice = Notice{}

	ap, records := c.deps.Auth, c.deps.Records
	return func() tea.Msg {
		ctx := context.Background()
		var (
			sess models.Session
			err  error
		)
		if register {
			sess, err = ap.SignUp(ctx, creds)
		} else {
			sess, err = ap.SignIn(ctx, creds)
		}
		if err != nil {
			return authMsg{action: actAuth, token: token, err: err}
		}
		return authMsg{action: actAuth, token: token, session: sess, account: fetchAccount(records, sess.UserID)}
	}
}

// BeginOAuth starts a device-code sign-in with provider. Once the challenge
// is known it is exposed by OAuthChallenge while the controller waits for
// the founder to approve it.
func (c *Controller) BeginOAuth(provider string) tea.Cmd {
	if c.inFlight(actAuth) || c.inFlight(actOAuth) {
		return nil
	}
	c.stopOAuth()
	token := c.begin(actOAuth)
	c.notice = Notice{}

	ctx, cancel := context.WithCancel(context.Background())
	c.authCtx, c.cancelAuth = ctx, cancel
	ap := c.deps.Auth
	return func() tea.Msg {
		ch, err := ap.BeginOAuth(ctx, provider)
		return oauthStartedMsg{token: token, challenge: ch, err: err}
	}
}

// CancelOAuth abandons a pending device-code sign-in.
func (c *Controller) CancelOAuth() {
	c.supersede(actOAuth)
}

func (c *Controller) completeOAuth(token uint64, ch auth.Challenge) tea.Cmd {
	ctx := c.authCtx
	if ctx == nil {
		ctx = context.Background()
	}
	ap, records := c.deps.Auth, c.deps.Records
	return func() tea.Msg {
		sess, err := ap.CompleteOAuth(ctx, ch)
		if err != nil {
			return authMsg{action: actOAuth, token: token, err: err}
		}
		return authMsg{action: actOAuth, token: token, session: sess, account: fetchAccount(records, sess.UserID)}
	}
}

// CompleteOnboarding records the founder's name and role and moves on to
// the dashboard right away. Saving the profile is best effort.
func (c *Controller) CompleteOnboarding(name, role string) tea.Cmd {
	name = strings.TrimSpace(name)
	if name == "" || !c.LoggedIn() {
		return nil
	}

	c.profile.UserID = c.session.UserID
	c.profile.FullName = name
	c.profile.Role = roleOrDefault(role)
	c.profile.UpdatedAt = c.now().UTC()
	if c.profile.AvatarRef == "" {
		if png, err := avatar.Initials(name, constants.AvatarSize); err == nil {
			c.profile.AvatarRef = avatar.DataURI(png)
		} else {
			logger.Debug("Failed to draw initials avatar", "error", err)
		}
	}
	c.cacheProfile()
	c.notice = Notice{}
	c.setView(constants.ViewDashboard)
	return tea.Batch(c.persistProfile(false), c.RefreshBlueprints())
}

// SaveProfile stores edits made in account settings.
func (c *Controller) SaveProfile(p models.Profile) tea.Cmd {
	if !c.LoggedIn() {
		return nil
	}
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		c.notice = Notice{Kind: NoticeError, Text: "Your name cannot be empty."}
		return nil
	}
	p.UserID = c.session.UserID
	p.Role = roleOrDefault(p.Role)
	p.Bio = strings.TrimSpace(p.Bio)
	if p.AvatarRef == "" {
		p.AvatarRef = c.profile.AvatarRef
	}
	p.UpdatedAt = c.now().UTC()

	c.profile = p
	c.cacheProfile()
	return c.persistProfile(true)
}

// SetAvatar replaces the profile picture with the image at path.
func (c *Controller) SetAvatar(path string) tea.Cmd {
	if !c.LoggedIn() {
		return nil
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	token := c.begin(actAvatar)
	return func() tea.Msg {
		uri, err := avatar.FromFile(path)
		return avatarMsg{token: token, uri: uri, err: err}
	}
}

func (c *Controller) persistProfile(announce bool) tea.Cmd {
	token := c.begin(actSaveProfile)
	p, records := c.profile, c.deps.Records
	return func() tea.Msg {
		return profileSavedMsg{token: token, announce: announce, err: records.SaveProfile(p)}
	}
}

func (c *Controller) loadProfile() tea.Cmd {
	token := c.begin(actProfile)
	userID, records := c.session.UserID, c.deps.Records
	return func() tea.Msg {
		return profileMsg{token: token, userID: userID, account: fetchAccount(records, userID)}
	}
}

// Logout forgets the session and everything derived from it, lands on the
// welcome screen and signs out of the auth provider.
func (c *Controller) Logout() tea.Cmd {
	userID := ""
	if c.session != nil {
		userID = c.session.UserID
	}
	c.clearSession()
	c.setView(constants.ViewWelcome)
	logger.Info("Signed out", "user_id", userID)

	ap := c.deps.Auth
	return func() tea.Msg {
		return signedOutMsg{err: ap.SignOut(context.Background())}
	}
}

func (c *Controller) clearSession() {
	c.stopOAuth()
	c.seq++
	c.pending = make(map[action]uint64)

	c.session = nil
	c.profile = emptyProfile()
	c.clearPlan()
	c.blueprints = nil
	c.deleted = make(map[string]bool)
	c.notice = Notice{}

	c.prefs.ClearSession()
	_ = c.savePrefs()
}

// ToggleTheme flips between light and dark and persists the choice. On a
// write error the theme is left unchanged.
func (c *Controller) ToggleTheme() error {
	prev := c.prefs.Theme
	c.prefs.Theme = prev.Toggle()
	if err := c.deps.Prefs.Save(c.prefs); err != nil {
		c.prefs.Theme = prev
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// ShowSample displays the built-in demo plan.
func (c *Controller) ShowSample() {
	c.supersede(viewActions...)
	c.notice = Notice{}
	c.setPlan(generator.Fallback(), generator.SampleIdea, "")
	c.setView(constants.ViewResults)
}

// NewProject discards the active plan and opens the idea form.
func (c *Controller) NewProject() tea.Cmd {
	c.clearPlan()
	return c.Navigate(constants.ViewCreate)
}

// SaveBlueprint stores the active plan for the signed-in founder.
func (c *Controller) SaveBlueprint() tea.Cmd {
	if c.plan == nil {
		return nil
	}
	if !c.LoggedIn() {
		c.notice = info("Sign in to save blueprints.")
		return nil
	}
	if c.savedID != "" {
		c.notice = info("This blueprint is already saved.")
		return nil
	}
	if c.inFlight(actSaveBlueprint) {
		return nil
	}

	bp := models.Blueprint{
		ID:        uuid.NewString(),
		UserID:    c.session.UserID,
		Title:     c.plan.Title(),
		Idea:      c.idea,
		Plan:      c.plan.Clone(),
		CreatedAt: c.now().UTC(),
	}
	token := c.begin(actSaveBlueprint)
	rev, records := c.planRev, c.deps.Records
	return func() tea.Msg {
		if err := records.SaveBlueprint(bp); err != nil {
			return blueprintSavedMsg{token: token, err: err}
		}
		list, err := records.ListBlueprints(bp.UserID)
		return blueprintSavedMsg{token: token, rev: rev, summary: bp.Summary(), list: list, listErr: err}
	}
}

// RefreshBlueprints reloads the saved blueprint list.
func (c *Controller) RefreshBlueprints() tea.Cmd {
	if !c.LoggedIn() {
		return nil
	}
	token := c.begin(actBlueprints)
	userID, records := c.session.UserID, c.deps.Records
	return func() tea.Msg {
		list, err := records.ListBlueprints(userID)
		return blueprintsMsg{token: token, list: list, err: err}
	}
}

// OpenBlueprint loads a saved blueprint as the active plan and shows it.
func (c *Controller) OpenBlueprint(id string) tea.Cmd {
	if !c.LoggedIn() || id == "" {
		return nil
	}
	token := c.begin(actOpen)
	records := c.deps.Records
	return func() tea.Msg {
		bp, err := records.GetBlueprint(id)
		return blueprintOpenedMsg{token: token, id: id, blueprint: bp, err: err}
	}
}

// DeleteBlueprint removes a saved blueprint. The id leaves the list at once
// and unknown ids are not an error.
func (c *Controller) DeleteBlueprint(id string) tea.Cmd {
	if !c.LoggedIn() || id == "" {
		return nil
	}
	c.deleted[id] = true
	c.blueprints = dedupe(c.blueprints, c.deleted)
	if c.savedID == id {
		c.savedID = ""
	}

	token := c.begin(actDelete)
	userID, records := c.session.UserID, c.deps.Records
	return func() tea.Msg {
		if err := records.DeleteBlueprint(id); err != nil {
			return blueprintDeletedMsg{token: token, id: id, err: err}
		}
		list, err := records.ListBlueprints(userID)
		return blueprintDeletedMsg{token: token, id: id, list: list, listErr: err}
	}
}

type accountData struct {
	profile       models.Profile
	hasProfile    bool
	profileErr    error
	blueprints    []models.BlueprintSummary
	blueprintsErr error
}

// fetchAccount loads the profile and blueprint list concurrently. A missing
// profile is not an error.
func fetchAccount(records Records, userID string) accountData {
	var (
		d accountData
		g errgroup.Group
	)
	g.Go(func() error {
		p, err := records.GetProfile(userID)
		switch {
		case err == nil:
			d.profile, d.hasProfile = p, true
		case errors.Is(err, storage.ErrNotFound):
		default:
			d.profileErr = err
		}
		return nil
	})
	g.Go(func() error {
		list, err := records.ListBlueprints(userID)
		if err != nil {
			return fmt.Errorf("failed to list blueprints: %w", err)
		}
		d.blueprints = list
		return nil
	})
	d.blueprintsErr = g.Wait()
	return d
}

func roleOrDefault(role string) string {
	if role = strings.TrimSpace(role); role != "" {
		return role
	}
	return constants.DefaultRole
}

// dedupe keeps the first entry for each id and drops deleted ids.
func dedupe(list []models.BlueprintSummary, deleted map[string]bool) []models.BlueprintSummary {
	seen := make(map[string]bool, len(list))
	out := make([]models.BlueprintSummary, 0, len(list))
	for _, bp := range list {
		if seen[bp.ID] || deleted[bp.ID] {
			continue
		}
		seen[bp.ID] = true
		out = append(out, bp)
	}
	return out
}
