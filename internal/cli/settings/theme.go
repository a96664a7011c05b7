package settings

import (
	"fmt"

	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/models"
)

type ThemeCmd struct {
	Theme string `arg:"" optional:"" help:"light, dark or toggle. Prints the current theme when omitted."`
}

func (c *ThemeCmd) Run(ctx *cli.Context) error {
	p, err := ctx.Prefs.Load()
	if err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}
	if c.Theme == "" {
		ctx.Printf("Theme: %s\n", p.Theme)
		return nil
	}

	var next models.Theme
	switch c.Theme {
	case "toggle":
		next = p.Theme.Toggle()
	case string(models.ThemeLight), string(models.ThemeDark):
		next = models.Theme(c.Theme)
	default:
		return fmt.Errorf("unknown theme %q, want light, dark or toggle", c.Theme)
	}
	if err := ctx.UpdatePrefs(func(p *models.Preferences) { p.Theme = next }); err != nil {
		return err
	}
	ctx.Printf("✓ Theme set to %s\n", next)
	return nil
}
