// Package controller owns the active screen, plan, session and profile and
// arbitrates every transition between screens.
//
// Operations return tea.Cmds; their completions come back as messages that
// must be passed to Update on the bubbletea event loop. Every asynchronous
// action carries a token from a monotonically increasing counter and a
// completion is only applied while its token is still current.
package controller

import (
	"context"
	"time"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/prefs"
)

// Records is the part of the record store the controller reads and writes.
type Records interface {
	GetProfile(userID string) (models.Profile, error)
	SaveProfile(profile models.Profile) error
	SaveBlueprint(bp models.Blueprint) error
	GetBlueprint(id string) (models.Blueprint, error)
	ListBlueprints(userID string) ([]models.BlueprintSummary, error)
	DeleteBlueprint(id string) error
}

type Deps struct {
	Auth      auth.Provider
	Generator generator.Generator
	Records   Records
	Prefs     prefs.Store
	// Now defaults to time.Now.
	Now func() time.Time
	// Zero delays use constants.SplashDelay and constants.FallbackDelay.
	SplashDelay   time.Duration
	FallbackDelay time.Duration
}

type action int

const (
	actStart action = iota
	actGenerate
	actAuth
	actOAuth
	actOpen
	actProfile
	actSaveProfile
	actAvatar
	actBlueprints
	actSaveBlueprint
	actDelete
)

// Navigation supersedes these; the rest only touch data and survive it.
var viewActions = []action{actStart, actGenerate, actAuth, actOAuth, actOpen}

func (a action) String() string {
	return [...]string{
		"start", "generate", "auth", "oauth", "open-blueprint", "profile",
		"save-profile", "avatar", "blueprints", "save-blueprint", "delete-blueprint",
	}[a]
}

type Controller struct {
	deps Deps
	now  func() time.Time

	view   constants.View
	scroll int
	notice Notice

	session *models.Session
	profile models.Profile
	prefs   models.Preferences

	plan    *models.StartupPlan
	planRev uint64
	idea    string
	savedID string
	checked map[string]bool

	blueprints []models.BlueprintSummary
	deleted    map[string]bool

	challenge   *auth.Challenge
	authCtx     context.Context
	cancelAuth  context.CancelFunc
	events      <-chan auth.Event
	unsubscribe func()

	seq     uint64
	pending map[action]uint64
}

// New builds a controller and reads the persisted preferences. A prefs read
// error is logged and defaults are used.
func New(deps Deps) *Controller {
	c := &Controller{
		deps:    deps,
		now:     deps.Now,
		view:    constants.ViewSplash,
		profile: emptyProfile(),
		checked: make(map[string]bool),
		deleted: make(map[string]bool),
		pending: make(map[action]uint64),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.deps.SplashDelay == 0 {
		c.deps.SplashDelay = constants.SplashDelay
	}
	if c.deps.FallbackDelay == 0 {
		c.deps.FallbackDelay = constants.FallbackDelay
	}
	if c.deps.Generator == nil {
		c.deps.Generator = generator.Unavailable{}
	}

	p, err := deps.Prefs.Load()
	if err != nil {
		logger.Warn("Failed to load preferences, using defaults", "error", err)
	}
	c.prefs = p
	if c.prefs.Theme != models.ThemeDark {
		c.prefs.Theme = models.ThemeLight
	}
	return c
}

func emptyProfile() models.Profile {
	return models.Profile{Role: constants.DefaultRole}
}

func (c *Controller) View() constants.View { return c.view }

// Plan returns a copy of the active plan.
func (c *Controller) Plan() (models.StartupPlan, bool) {
	if c.plan == nil {
		return models.StartupPlan{}, false
	}
	return c.plan.Clone(), true
}

// Idea is the text that produced the active plan.
func (c *Controller) Idea() string { return c.idea }

// PlanRevision changes every time the current plan is replaced or cleared.
func (c *Controller) PlanRevision() uint64 { return c.planRev }

func (c *Controller) Session() (models.Session, bool) {
	if !c.LoggedIn() {
		return models.Session{}, false
	}
	return *c.session, true
}

func (c *Controller) LoggedIn() bool { return c.session.Valid(c.now()) }

func (c *Controller) Profile() models.Profile { return c.profile }

func (c *Controller) Theme() models.Theme { return c.prefs.Theme }

func (c *Controller) Notice() Notice { return c.notice }

func (c *Controller) DismissNotice() { c.notice = Notice{} }

func (c *Controller) Blueprints() []models.BlueprintSummary {
	return append([]models.BlueprintSummary(nil), c.blueprints...)
}

// Busy reports whether an idea submission or sign-in is outstanding.
func (c *Controller) Busy() bool {
	return c.inFlight(actGenerate) || c.inFlight(actAuth) || c.inFlight(actOAuth)
}

func (c *Controller) ScrollTop() int { return c.scroll }

func (c *Controller) SetScroll(offset int) { c.scroll = max(offset, 0) }

// OAuthChallenge is the device code the founder has to approve, if any.
func (c *Controller) OAuthChallenge() (auth.Challenge, bool) {
	if c.challenge == nil {
		return auth.Challenge{}, false
	}
	return *c.challenge, true
}

// Checked reports whether the roadmap checklist item key is ticked.
func (c *Controller) Checked(key string) bool { return c.checked[key] }

func (c *Controller) CheckedItems() map[string]bool {
	out := make(map[string]bool, len(c.checked))
	for k, v := range c.checked {
		if v {
			out[k] = true
		}
	}
	return out
}

func (c *Controller) ToggleChecked(key string) { c.checked[key] = !c.checked[key] }

// SavedBlueprintID is the id the active plan was saved or opened as.
func (c *Controller) SavedBlueprintID() string { return c.savedID }

// begin starts action a and returns its token, superseding any earlier one.
func (c *Controller) begin(a action) uint64 {
	c.seq++
	c.pending[a] = c.seq
	return c.seq
}

func (c *Controller) inFlight(a action) bool { return c.pending[a] != 0 }

func (c *Controller) current(a action, token uint64) bool {
	if token != 0 && c.pending[a] == token {
		return true
	}
	logger.Debug("Discarding stale completion", "action", a, "token", token, "current", c.pending[a])
	return false
}

func (c *Controller) finish(a action) { delete(c.pending, a) }

func (c *Controller) supersede(actions ...action) {
	for _, a := range actions {
		delete(c.pending, a)
		if a == actOAuth {
			c.stopOAuth()
		}
	}
}

func (c *Controller) stopOAuth() {
	if c.cancelAuth != nil {
		c.cancelAuth()
		c.cancelAuth = nil
	}
	c.authCtx = nil
	c.challenge = nil
}

func (c *Controller) setView(v constants.View) {
	if v != c.view {
		logger.Debug("View changed", "from", c.view, "to", v)
	}
	c.view = v
	c.scroll = 0
}

func (c *Controller) setPlan(plan models.StartupPlan, idea, savedID string) {
	plan.Normalize()
	p := plan.Clone()
	c.plan = &p
	c.planRev++
	c.idea = idea
	c.savedID = savedID
	c.checked = make(map[string]bool)
}

func (c *Controller) savePrefs() error {
	if err := c.deps.Prefs.Save(c.prefs); err != nil {
		logger.Warn("Failed to save preferences", "error", err)
		return err
	}
	return nil
}

func (c *Controller) cacheProfile() {
	c.prefs.CachedName = c.profile.FullName
	c.prefs.CachedRole = c.profile.Role
	c.prefs.CachedBio = c.profile.Bio
	c.prefs.CachedAvatar = c.profile.AvatarRef
	_ = c.savePrefs()
}

func (c *Controller) clearPlan() {
	c.plan = nil
	c.planRev++
	c.idea = ""
	c.savedID = ""
	c.checked = make(map[string]bool)
}

// Close cancels any outstanding sign-in poll and stops watching auth events.
func (c *Controller) Close() {
	c.stopOAuth()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
