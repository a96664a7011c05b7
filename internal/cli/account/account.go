package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/models"
)

// promptPassword asks for a password on the terminal when none was passed.
var promptPassword = func(title string) (string, error) {
	var pw string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&pw).
		Run()
	return pw, err
}

func password(flag, title string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	pw, err := promptPassword(title)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return pw, nil
}

// signedIn records the new session in the preferences and warms the profile cache.
func signedIn(ctx *cli.Context, sess models.Session) error {
	if err := ctx.UpdatePrefs(func(p *models.Preferences) {
		p.SessionActive = true
		p.Remember = true
	}); err != nil {
		return err
	}

	profile, err := ctx.Store.GetProfile(sess.UserID)
	switch {
	case err == nil:
		ctx.Printf("✓ Signed in as %s (%s)\n", profile.DisplayName(), sess.Email)
		return ctx.CacheProfile(profile)
	case cli.IsNotFound(err):
		ctx.Printf("✓ Signed in as %s\n", sess.Email)
		ctx.Println("  Set up your founder profile with 'genie profile set --name \"Your Name\"'")
		return nil
	default:
		ctx.Printf("✓ Signed in as %s (profile unavailable: %v)\n", sess.Email, err)
		return nil
	}
}

type RegisterCmd struct {
	Email    string `arg:"" help:"Email address."`
	Password string `env:"GENIE_PASSWORD" help:"Password (prompted when omitted)."`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	pw, err := password(c.Password, "Choose a password")
	if err != nil {
		return err
	}
	sess, err := ctx.Auth.SignUp(context.Background(), auth.Credentials{Email: c.Email, Password: pw, Remember: true})
	if errors.Is(err, auth.ErrConfirmationPending) {
		ctx.Printf("✓ Account created for %s\n", c.Email)
		ctx.Printf("  Confirmation is required before signing in: genie account confirm %s\n", c.Email)
		return nil
	}
	if err != nil {
		return err
	}
	return signedIn(ctx, sess)
}

type LoginCmd struct {
	Email    string `arg:"" optional:"" help:"Email address. Omit when signing in with --provider."`
	Password string `env:"GENIE_PASSWORD" help:"Password (prompted when omitted)."`
	Provider string `enum:"email,github,google" default:"email" help:"Sign-in provider (${enum})."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if c.Provider != auth.ProviderEmail {
		return c.oauth(ctx)
	}
	if strings.TrimSpace(c.Email) == "" {
		return errors.New("an email address is required")
	}
	pw, err := password(c.Password, "Password")
	if err != nil {
		return err
	}
	sess, err := ctx.Auth.SignIn(context.Background(), auth.Credentials{Email: c.Email, Password: pw, Remember: true})
	if err != nil {
		return err
	}
	return signedIn(ctx, sess)
}

func (c *LoginCmd) oauth(ctx *cli.Context) error {
	bg := context.Background()
	ch, err := ctx.Auth.BeginOAuth(bg, c.Provider)
	if err != nil {
		return err
	}
	ctx.Printf("Open %s and enter the code %s\n", ch.VerificationURI, ch.UserCode)
	ctx.Printf("Waiting for approval (expires %s)...\n", ch.ExpiresAt.Local().Format("15:04:05"))

	sess, err := ctx.Auth.CompleteOAuth(bg, ch)
	if err != nil {
		return err
	}
	return signedIn(ctx, sess)
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Auth.SignOut(context.Background()); err != nil {
		return err
	}
	if err := ctx.UpdatePrefs(func(p *models.Preferences) { p.ClearSession() }); err != nil {
		return err
	}
	ctx.Println("✓ Signed out")
	return nil
}

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if errors.Is(err, auth.ErrNoSession) {
		ctx.Println("Not signed in.")
		return nil
	}
	if err != nil {
		return err
	}
	ctx.Printf("Signed in as %s via %s\n", sess.Email, sess.Provider)
	if !sess.ExpiresAt.IsZero() {
		ctx.Printf("Session expires %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// ConfirmCmd marks an email account as confirmed. It stands in for the
// confirmation link a hosted provider would send.
type ConfirmCmd struct {
	Email string `arg:"" help:"Email address to confirm."`
}

func (c *ConfirmCmd) Run(ctx *cli.Context) error {
	if err := ctx.Auth.ConfirmEmail(c.Email); err != nil {
		return err
	}
	ctx.Printf("✓ %s confirmed, you can now sign in\n", c.Email)
	return nil
}
