package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/backup"
	"github.com/julianstephens/genie/internal/export"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/prefs"
	"github.com/julianstephens/genie/internal/storage"
	"github.com/julianstephens/genie/internal/storage/postgres"
)

type Context struct {
	Store     storage.Provider
	Auth      *auth.Service
	Generator generator.Generator
	Prefs     prefs.Store
	ConfigDir string

	// Out and In default to stdout and stdin.
	Out io.Writer
	In  io.Reader
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Writer exposes the output stream for commands that render tables or files.
func (c *Context) Writer() io.Writer { return c.out() }

// Confirm asks a yes/no question on In. Anything but y/yes is a no.
func (c *Context) Confirm(question string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	c.Printf("%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// IsSQLite reports whether the store is the local file backend.
func (c *Context) IsSQLite() bool {
	return !postgres.IsConnString(c.Store.GetConfigPath())
}

// PerformAutomaticBackup snapshots the local store. Failures are logged and
// never block the caller.
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Session returns the remembered session or auth.ErrNoSession.
func (c *Context) Session(ctx context.Context) (models.Session, error) {
	return c.Auth.CurrentSession(ctx)
}

// Profile returns the signed-in founder's profile. A missing profile yields
// an empty one carrying the user id.
func (c *Context) Profile(ctx context.Context) (models.Session, models.Profile, error) {
	sess, err := c.Session(ctx)
	if err != nil {
		return models.Session{}, models.Profile{}, err
	}
	p, err := c.Store.GetProfile(sess.UserID)
	if err != nil {
		if !IsNotFound(err) {
			return sess, models.Profile{}, fmt.Errorf("failed to load profile: %w", err)
		}
		p = models.Profile{UserID: sess.UserID}
	}
	return sess, p, nil
}

// UpdatePrefs applies fn to the stored preferences and saves them.
func (c *Context) UpdatePrefs(fn func(*models.Preferences)) error {
	p, err := c.Prefs.Load()
	if err != nil {
		logger.Warn("Preferences unreadable, starting from defaults", "error", err)
		p = models.DefaultPreferences()
	}
	fn(&p)
	if err := c.Prefs.Save(p); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// CacheProfile mirrors the profile into the preferences for offline display.
func (c *Context) CacheProfile(p models.Profile) error {
	return c.UpdatePrefs(func(prefs *models.Preferences) {
		prefs.CachedName = p.FullName
		prefs.CachedRole = p.Role
		prefs.CachedBio = p.Bio
		prefs.CachedAvatar = p.AvatarRef
	})
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool { return errors.Is(err, storage.ErrNotFound) }

// PrintMarkdown writes md to Out, styled for the terminal unless raw is set.
// The glamour style follows the saved theme.
func (c *Context) PrintMarkdown(md string, raw bool) {
	if !raw {
		dark := false
		if p, err := c.Prefs.Load(); err == nil {
			dark = p.Theme == models.ThemeDark
		}
		rendered, err := export.Render(md, 100, dark)
		if err == nil {
			c.Printf("%s", rendered)
			return
		}
		logger.Debug("Markdown rendering failed, printing raw", "error", err)
	}
	c.Printf("%s", md)
}
