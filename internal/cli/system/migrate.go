package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/migration"
)

// migrator is implemented by both store backends.
type migrator interface {
	Migrator() (*migration.Runner, error)
}

func runnerFor(ctx *cli.Context) (*migration.Runner, error) {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil, fmt.Errorf("store %T does not support migrations", ctx.Store)
	}
	return m.Migrator()
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	runner, err := runnerFor(ctx)
	if err != nil {
		return err
	}
	count, err := runner.Apply(context.Background(), func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
