package tui

import (
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/tui/theme"
)

type AuthFormModel struct {
	Email    string
	Password string
	Remember bool
}

type OnboardingFormModel struct {
	Name string
	Role string
}

type AccountFormModel struct {
	Name       string
	Role       string
	Bio        string
	AvatarPath string
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// NewAuthForm creates the sign-in form, or the sign-up form when register is set.
func NewAuthForm(fm *AuthFormModel, register bool, t models.Theme) *huh.Form {
	password := huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&fm.Password).
		Validate(required("password"))
	if register {
		password = password.
			Description("At least 6 characters").
			Validate(func(s string) error {
				if len(s) < 6 {
					return fmt.Errorf("password must be at least 6 characters")
				}
				return nil
			})
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&fm.Email).
				Validate(func(s string) error {
					if _, err := mail.ParseAddress(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),
			password,
			huh.NewConfirm().
				Title("Remember me").
				Affirmative("Yes").
				Negative("No").
				Value(&fm.Remember),
		),
	).WithTheme(theme.Form(t)).WithShowHelp(false)
}

// NewOnboardingForm asks a new founder for a name and role.
func NewOnboardingForm(fm *OnboardingFormModel, t models.Theme) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What should we call you?").
				Value(&fm.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Your role").
				Description("Pick a suggestion or type your own").
				Suggestions(constants.Roles).
				Value(&fm.Role),
		),
	).WithTheme(theme.Form(t)).WithShowHelp(false)
}

// NewAccountForm edits the profile shown on the Account Settings tab.
func NewAccountForm(fm *AccountFormModel, t models.Theme) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Value(&fm.Name).
				Validate(required("name")),
			huh.NewInput().
				Title("Role").
				Suggestions(constants.Roles).
				Value(&fm.Role),
			huh.NewText().
				Title("Bio").
				CharLimit(400).
				Value(&fm.Bio),
			huh.NewInput().
				Title("Avatar image").
				Description("Path to a png, jpeg, gif or webp file (optional)").
				Value(&fm.AvatarPath).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					info, err := os.Stat(expandHome(s))
					if err != nil {
						return fmt.Errorf("file not found")
					}
					if info.Size() > constants.MaxAvatarBytes {
						return fmt.Errorf("image must be 5MB or smaller")
					}
					return nil
				}),
		),
	).WithTheme(theme.Form(t)).WithShowHelp(false)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
