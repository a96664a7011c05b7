package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/genie/internal/backup"
	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/keyring"
)

type checkLevel int

const (
	levelFail checkLevel = iota
	levelWarn
)

type check struct {
	name  string
	level checkLevel
	// needsStore checks are skipped while the database is unreachable.
	needsStore bool
	run        func(*cli.Context) error
	// detail, when set, is printed under a passing check.
	detail func(*cli.Context) string
}

var checks = []check{
	{name: "Database reachable", run: checkStore},
	{name: "Schema version", needsStore: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsStore: true, run: checkMigrations},
	{name: "Backups present", level: levelWarn, run: checkBackups},
	{name: "Preferences readable", run: checkPrefs},
	{name: "OS keyring", level: levelWarn, run: checkKeyring},
	{name: "Gemini API key", level: levelWarn, run: checkAPIKey, detail: generatorModel},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	if ctx.ConfigDir != "" {
		ctx.Printf("Config directory: %s\n", ctx.ConfigDir)
	}
	ctx.Println()

	failures := 0
	storeOK := true
	for i, c := range checks {
		if c.needsStore && !storeOK {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if c.detail != nil {
				if d := c.detail(ctx); d != "" {
					ctx.Printf("   %s\n", d)
				}
			}
		case c.level == levelWarn:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failures++
		}
		// the first check is the store itself
		if i == 0 && err != nil {
			storeOK = false
		}
	}

	ctx.Println()
	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkStore(ctx *cli.Context) error {
	return ctx.Store.Load()
}

func checkSchemaVersion(ctx *cli.Context) error {
	r, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	return r.Validate(context.Background())
}

func checkMigrations(ctx *cli.Context) error {
	r, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	n, err := r.Pending(context.Background())
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%d pending migration(s), run 'genie migrate'", n)
	}
	return nil
}

func checkBackups(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	list, err := mgr.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no backups in %s, run 'genie backup create'", mgr.Dir())
	}
	if age := time.Since(list[0].CreatedAt); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func checkPrefs(ctx *cli.Context) error {
	_, err := ctx.Prefs.Load()
	return err
}

func checkKeyring(*cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("not available, remember-me and stored API keys are disabled")
	}
	return nil
}

func checkAPIKey(ctx *cli.Context) error {
	if _, ok := ctx.Generator.(generator.Unavailable); ok || ctx.Generator == nil {
		return errors.New("not configured, generation falls back to the demo blueprint")
	}
	return nil
}

func generatorModel(ctx *cli.Context) string {
	if g, ok := ctx.Generator.(*generator.Gemini); ok {
		return "Model: " + g.Model()
	}
	return ""
}
