package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/controller"
	"github.com/julianstephens/genie/internal/tui"
)

type TuiCmd struct {
	ExportDir string `help:"Directory that Markdown exports are written to." type:"path" default:"."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	ctrl := controller.New(controller.Deps{
		Auth:      ctx.Auth,
		Generator: ctx.Generator,
		Records:   ctx.Store,
		Prefs:     ctx.Prefs,
	})
	defer ctrl.Close()

	p := tea.NewProgram(tui.NewModel(ctrl, tui.Config{ExportDir: c.ExportDir}), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("alas, there's been an error: %w", err)
	}
	return nil
}
