package controller

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

type sessionMsg struct {
	token   uint64
	session models.Session
	err     error
}

type splashDoneMsg struct{ token uint64 }

type generatedMsg struct {
	token uint64
	plan  models.StartupPlan
	err   error
}

type revealMsg struct{ token uint64 }

type authMsg struct {
	action  action
	token   uint64
	session models.Session
	account accountData
	err     error
}

type oauthStartedMsg struct {
	token     uint64
	challenge auth.Challenge
	err       error
}

type authEventMsg struct{ event auth.Event }

type signedOutMsg struct{ err error }

type profileMsg struct {
	token   uint64
	userID  string
	account accountData
}

type profileSavedMsg struct {
	token    uint64
	announce bool
	err      error
}

type avatarMsg struct {
	token uint64
	uri   string
	err   error
}

type blueprintsMsg struct {
	token uint64
	list  []models.BlueprintSummary
	err   error
}

type blueprintSavedMsg struct {
	token   uint64
	rev     uint64
	summary models.BlueprintSummary
	list    []models.BlueprintSummary
	listErr error
	err     error
}

type blueprintOpenedMsg struct {
	token     uint64
	id        string
	blueprint models.Blueprint
	err       error
}

type blueprintDeletedMsg struct {
	token   uint64
	id      string
	list    []models.BlueprintSummary
	listErr error
	err     error
}

// Update applies an async completion. Messages that do not belong to the
// controller are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case sessionMsg:
		return c.onSession(msg)
	case splashDoneMsg:
		if c.current(actStart, msg.token) && c.view == constants.ViewSplash {
			c.setView(constants.ViewWelcome)
		}
	case generatedMsg:
		return c.onGenerated(msg)
	case revealMsg:
		if c.current(actGenerate, msg.token) {
			c.finish(actGenerate)
			c.setView(constants.ViewResults)
		}
	case authMsg:
		return c.onAuth(msg)
	case oauthStartedMsg:
		return c.onOAuthStarted(msg)
	case authEventMsg:
		return c.onAuthEvent(msg)
	case signedOutMsg:
		if msg.err != nil {
			logger.Warn("Sign out did not complete", "error", msg.err)
		}
	case profileMsg:
		if !c.current(actProfile, msg.token) {
			return nil
		}
		c.finish(actProfile)
		c.applyAccount(msg.userID, msg.account, c.view == constants.ViewDashboard)
	case profileSavedMsg:
		if !c.current(actSaveProfile, msg.token) {
			return nil
		}
		c.finish(actSaveProfile)
		if msg.err != nil {
			logger.Warn("Failed to save profile", "error", msg.err)
			c.notice = Notice{Kind: NoticeProfile, Text: "Your profile could not be saved. You can retry from Account Settings."}
		} else if msg.announce {
			c.notice = info("Profile saved.")
		}
	case avatarMsg:
		if !c.current(actAvatar, msg.token) {
			return nil
		}
		c.finish(actAvatar)
		if msg.err != nil {
			c.notice = Notice{Kind: NoticeError, Text: "That image could not be used: " + msg.err.Error()}
			return nil
		}
		c.profile.AvatarRef = msg.uri
		c.profile.UpdatedAt = c.now().UTC()
		c.cacheProfile()
		return c.persistProfile(true)
	case blueprintsMsg:
		if !c.current(actBlueprints, msg.token) {
			return nil
		}
		c.finish(actBlueprints)
		if msg.err != nil {
			logger.Warn("Failed to list blueprints", "error", msg.err)
			c.notice = Notice{Kind: NoticeError, Text: "Your blueprints could not be loaded."}
			return nil
		}
		c.blueprints = dedupe(msg.list, c.deleted)
	case blueprintSavedMsg:
		return c.onBlueprintSaved(msg)
	case blueprintOpenedMsg:
		return c.onBlueprintOpened(msg)
	case blueprintDeletedMsg:
		return c.onBlueprintDeleted(msg)
	}
	return nil
}

func (c *Controller) onSession(msg sessionMsg) tea.Cmd {
	if !c.current(actStart, msg.token) {
		return nil
	}
	if msg.err != nil || !msg.session.Valid(c.now()) {
		if msg.err != nil && !errors.Is(msg.err, auth.ErrNoSession) {
			logger.Warn("Session lookup failed", "error", msg.err)
		}
		if c.prefs.SessionActive {
			// local flags are only a cache of the external session
			logger.Debug("Clearing stale session flags")
			c.prefs.ClearSession()
			_ = c.savePrefs()
		}
		return nil
	}

	c.finish(actStart)
	c.signedIn(msg.session)
	c.profile = c.cachedProfile(msg.session.UserID)
	c.setView(constants.ViewDashboard)
	return c.loadProfile()
}

func (c *Controller) onGenerated(msg generatedMsg) tea.Cmd {
	if !c.current(actGenerate, msg.token) {
		return nil
	}
	if msg.err == nil {
		c.finish(actGenerate)
		c.setPlan(msg.plan, c.idea, "")
		c.setView(constants.ViewResults)
		logger.Info("Plan generated", "token", msg.token)
		return nil
	}

	var genErr *generator.Error
	reason := msg.err.Error()
	if errors.As(msg.err, &genErr) {
		reason = genErr.Reason
	}
	logger.Warn("Generation failed, using fallback plan", "token", msg.token, "reason", reason)

	c.setPlan(generator.Fallback(), c.idea, "")
	c.notice = noticeFor(generator.ErrGenerationFailed)
	token := msg.token
	return tea.Tick(c.deps.FallbackDelay, func(time.Time) tea.Msg {
		return revealMsg{token: token}
	})
}

func (c *Controller) onAuth(msg authMsg) tea.Cmd {
	if !c.current(msg.action, msg.token) {
		return c.abandonSignIn(msg)
	}
	c.finish(msg.action)
	if msg.action == actOAuth {
		c.stopOAuth()
	}
	if msg.err != nil {
		c.notice = noticeFor(msg.err)
		logger.Info("Sign in failed", "kind", c.notice.Kind, "error", msg.err)
		return nil
	}

	c.signedIn(msg.session)
	c.applyAccount(msg.session.UserID, msg.account, true)
	return nil
}

// abandonSignIn ends a provider session that completed after the founder
// backed out of signing in or signed out.
func (c *Controller) abandonSignIn(msg authMsg) tea.Cmd {
	if msg.err != nil || msg.session.UserID == "" || c.session != nil {
		return nil
	}
	logger.Info("Ending abandoned sign in", "user_id", msg.session.UserID)
	ap := c.deps.Auth
	return func() tea.Msg {
		return signedOutMsg{err: ap.SignOut(context.Background())}
	}
}

func (c *Controller) onOAuthStarted(msg oauthStartedMsg) tea.Cmd {
	if !c.current(actOAuth, msg.token) {
		return nil
	}
	if msg.err != nil {
		c.finish(actOAuth)
		c.stopOAuth()
		c.notice = noticeFor(msg.err)
		return nil
	}
	ch := msg.challenge
	c.challenge = &ch
	return c.completeOAuth(msg.token, ch)
}

func (c *Controller) onAuthEvent(msg authEventMsg) tea.Cmd {
	if msg.event.Kind == auth.EventSignedOut && c.session != nil {
		logger.Info("Session ended elsewhere")
		c.clearSession()
		c.setView(constants.ViewWelcome)
		c.notice = info("You have been signed out.")
	}
	return c.Watch()
}

func (c *Controller) onBlueprintSaved(msg blueprintSavedMsg) tea.Cmd {
	if !c.current(actSaveBlueprint, msg.token) {
		return nil
	}
	c.finish(actSaveBlueprint)
	if msg.err != nil {
		logger.Warn("Failed to save blueprint", "error", msg.err)
		c.notice = Notice{Kind: NoticeError, Text: "The blueprint could not be saved."}
		return nil
	}
	if msg.rev == c.planRev {
		c.savedID = msg.summary.ID
	}
	if msg.listErr != nil {
		logger.Warn("Failed to list blueprints", "error", msg.listErr)
		c.blueprints = dedupe(append([]models.BlueprintSummary{msg.summary}, c.blueprints...), c.deleted)
	} else {
		c.blueprints = dedupe(msg.list, c.deleted)
	}
	c.notice = info("Blueprint saved.")
	return nil
}

func (c *Controller) onBlueprintOpened(msg blueprintOpenedMsg) tea.Cmd {
	if !c.current(actOpen, msg.token) {
		return nil
	}
	c.finish(actOpen)
	switch {
	case errors.Is(msg.err, storage.ErrNotFound):
		c.deleted[msg.id] = true
		c.blueprints = dedupe(c.blueprints, c.deleted)
		c.notice = info("That blueprint no longer exists.")
	case msg.err != nil:
		logger.Warn("Failed to open blueprint", "id", msg.id, "error", msg.err)
		c.notice = Notice{Kind: NoticeError, Text: "The blueprint could not be opened."}
	default:
		c.notice = Notice{}
		c.setPlan(msg.blueprint.Plan, msg.blueprint.Idea, msg.blueprint.ID)
		c.setView(constants.ViewResults)
	}
	return nil
}

func (c *Controller) onBlueprintDeleted(msg blueprintDeletedMsg) tea.Cmd {
	if !c.current(actDelete, msg.token) {
		return nil
	}
	c.finish(actDelete)
	if msg.err != nil {
		logger.Warn("Failed to delete blueprint", "id", msg.id, "error", msg.err)
		delete(c.deleted, msg.id)
		c.notice = Notice{Kind: NoticeError, Text: "The blueprint could not be deleted."}
		return c.RefreshBlueprints()
	}
	if msg.listErr != nil {
		logger.Warn("Failed to list blueprints", "error", msg.listErr)
		return nil
	}
	c.blueprints = dedupe(msg.list, c.deleted)
	return nil
}

func (c *Controller) signedIn(sess models.Session) {
	c.session = &sess
	c.prefs.SessionActive = true
	c.prefs.Remember = sess.Remember
	_ = c.savePrefs()
}

// applyAccount installs freshly fetched account data. With route set the
// founder is sent to onboarding or the dashboard depending on whether a
// profile exists.
func (c *Controller) applyAccount(userID string, d accountData, route bool) {
	if d.blueprintsErr != nil {
		logger.Warn("Failed to list blueprints", "error", d.blueprintsErr)
	} else {
		c.blueprints = dedupe(d.blueprints, c.deleted)
	}

	switch {
	case d.profileErr != nil:
		logger.Warn("Failed to fetch profile", "user_id", userID, "error", d.profileErr)
		c.notice = Notice{Kind: NoticeProfile, Text: "Your profile could not be loaded. Confirm your details to continue."}
		c.profile = c.cachedProfile(userID)
		if route {
			c.setView(constants.ViewOnboarding)
		}
	case !d.hasProfile:
		c.profile = models.Profile{UserID: userID, Role: constants.DefaultRole}
		if route {
			c.setView(constants.ViewOnboarding)
		}
	default:
		c.profile = d.profile
		c.profile.Role = roleOrDefault(c.profile.Role)
		c.cacheProfile()
		if route {
			c.setView(constants.ViewDashboard)
		}
	}
}

func (c *Controller) cachedProfile(userID string) models.Profile {
	return models.Profile{
		UserID:    userID,
		FullName:  c.prefs.CachedName,
		Role:      roleOrDefault(c.prefs.CachedRole),
		Bio:       c.prefs.CachedBio,
		AvatarRef: c.prefs.CachedAvatar,
	}
}
