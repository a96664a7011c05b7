package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/cli/account"
	"github.com/julianstephens/genie/internal/cli/backups"
	"github.com/julianstephens/genie/internal/cli/blueprints"
	"github.com/julianstephens/genie/internal/cli/plans"
	"github.com/julianstephens/genie/internal/cli/settings"
	"github.com/julianstephens/genie/internal/cli/system"
	"github.com/julianstephens/genie/internal/constants"
	apperrors "github.com/julianstephens/genie/internal/errors"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/keyring"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/prefs"
	"github.com/julianstephens/genie/internal/storage"
	"github.com/julianstephens/genie/internal/storage/postgres"
	"github.com/julianstephens/genie/internal/storage/sqlite"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite file path or PostgreSQL connection string. PostgreSQL credentials must NOT be embedded here; use GENIE_DB_CONNECTION, .pgpass or 'genie key set-db' instead." type:"string" env:"GENIE_DB" default:"${default_config}"`
	Debug   bool   `help:"Enable debug logging."`

	Model               string `help:"Gemini model used for generation." env:"GENIE_MODEL" default:"${default_model}"`
	APIKey              string `name:"api-key" help:"Gemini API key. Falls back to the OS keyring." env:"GEMINI_API_KEY,API_KEY"`
	RequireConfirmation bool   `help:"Hold new email accounts until they are confirmed." env:"GENIE_REQUIRE_CONFIRMATION"`
	GoogleClientID      string `name:"google-client-id" help:"OAuth client id for Google sign-in." env:"GENIE_GOOGLE_CLIENT_ID"`
	GitHubClientID      string `name:"github-client-id" help:"OAuth client id for GitHub sign-in." env:"GENIE_GITHUB_CLIENT_ID"`

	Init     system.InitCmd    `cmd:"" help:"Initialize genie storage."`
	Migrate  system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Generate plans.GenerateCmd `cmd:"" help:"Generate a startup blueprint from an idea."`
	Sample   plans.SampleCmd   `cmd:"" help:"Print the demo blueprint."`

	Blueprints struct {
		List   blueprints.ListCmd   `cmd:"" help:"List saved blueprints." default:"1"`
		Show   blueprints.ShowCmd   `cmd:"" help:"Show a saved blueprint."`
		Export blueprints.ExportCmd `cmd:"" help:"Export a blueprint to Markdown."`
		Delete blueprints.DeleteCmd `cmd:"" help:"Delete a saved blueprint."`
	} `cmd:"" help:"Manage saved blueprints."`
	Account struct {
		Register account.RegisterCmd `cmd:"" help:"Create an account."`
		Login    account.LoginCmd    `cmd:"" help:"Sign in."`
		Logout   account.LogoutCmd   `cmd:"" help:"Sign out and forget the remembered session."`
		Status   account.StatusCmd   `cmd:"" help:"Show who is signed in." default:"1"`
		Confirm  account.ConfirmCmd  `cmd:"" help:"Confirm a pending email account."`
	} `cmd:"" help:"Manage your account and session."`
	Profile struct {
		Show account.ProfileShowCmd `cmd:"" help:"Show your founder profile." default:"1"`
		Set  account.ProfileSetCmd  `cmd:"" help:"Update your founder profile."`
	} `cmd:"" help:"Manage your founder profile."`
	Theme  settings.ThemeCmd `cmd:"" help:"Show or change the color theme."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Key struct {
		SetAPIKey    system.KeySetAPIKeyCmd    `cmd:"" name:"set-api-key" help:"Store the Gemini API key in the OS keyring."`
		DeleteAPIKey system.KeyDeleteAPIKeyCmd `cmd:"" name:"delete-api-key" help:"Remove the Gemini API key from the OS keyring."`
		SetDB        system.KeySetDBCmd        `cmd:"" name:"set-db" help:"Store a PostgreSQL connection string in the OS keyring."`
		Status       system.KeyStatusCmd       `cmd:"" help:"Show what is stored in the OS keyring." default:"1"`
	} `cmd:"" help:"Manage secrets in the OS keyring."`
}

// Commands that must run without a loaded store: they create it, diagnose it,
// replace it or never touch it.
var skipLoad = map[string]bool{
	"init":    true,
	"doctor":  true,
	"key":     true,
	"theme":   true,
	"sample":  true,
	"backup":  true,
	"migrate": true,
	"tui":     true,
}

func main() {
	envErrs := loadDotEnv()

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description(constants.DisplayName+": turn a startup idea into a structured plan"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
			"default_model":  constants.DefaultModel,
		},
	)
	command := strings.Fields(kctx.Command())[0]

	store, configDir, err := openStore()
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: configDir,
		Stderr:    command != "tui",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	for _, err := range envErrs {
		logger.Warn("Ignoring unreadable .env file", "error", err)
	}
	logger.Debug("Starting", "command", kctx.Command(), "store", storeKind(store))

	appCtx := &cli.Context{
		Store: store,
		Auth: auth.NewService(store, auth.Config{
			RequireConfirmation: CLI.RequireConfirmation,
			ClientIDs: map[string]string{
				auth.ProviderGoogle: CLI.GoogleClientID,
				auth.ProviderGitHub: CLI.GitHubClientID,
			},
		}),
		Generator: newGenerator(),
		Prefs:     prefs.NewFileStore(filepath.Join(configDir, constants.PrefsFileName)),
		ConfigDir: configDir,
	}
	defer store.Close()

	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
	}

	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// loadDotEnv reads .env from the working directory, then from the config
// directory. Variables already set win. Missing files are not errors.
func loadDotEnv() []error {
	var errs []error
	for _, path := range []string{".env", filepath.Join(expandHome(filepath.Dir(constants.DefaultConfigPath)), ".env")} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errs
}

// openStore picks the backend. An explicit --config wins, then
// GENIE_DB_CONNECTION, then a connection string in the OS keyring, then the
// default SQLite file.
func openStore() (storage.Provider, string, error) {
	defaultDir := expandHome(filepath.Dir(constants.DefaultConfigPath))

	if CLI.Config != constants.DefaultConfigPath {
		if postgres.IsConnString(CLI.Config) || strings.Contains(CLI.Config, "host=") {
			if err := postgres.ValidateConnString(CLI.Config); err != nil {
				return nil, "", err
			}
			return postgres.New(CLI.Config), defaultDir, nil
		}
		path := expandHome(CLI.Config)
		return sqlite.NewStore(path), filepath.Dir(path), nil
	}

	if dsn := strings.TrimSpace(os.Getenv("GENIE_DB_CONNECTION")); dsn != "" {
		return postgres.NewTrusted(dsn), defaultDir, nil
	}
	if dsn, err := keyring.GetConnectionString(); err == nil && dsn != "" {
		return postgres.NewTrusted(dsn), defaultDir, nil
	}

	path := expandHome(constants.DefaultConfigPath)
	return sqlite.NewStore(path), filepath.Dir(path), nil
}

// newGenerator builds the Gemini client. Without an API key every generation
// fails and the demo blueprint is used.
func newGenerator() generator.Generator {
	key := strings.TrimSpace(CLI.APIKey)
	if key == "" {
		if k, err := keyring.GetAPIKey(); err == nil {
			key = k
		}
	}
	if key == "" {
		logger.Info("No Gemini API key configured, generation will use the demo blueprint")
		return generator.Unavailable{}
	}
	g, err := generator.NewGemini(context.Background(), generator.GeminiConfig{APIKey: key, Model: CLI.Model})
	if err != nil {
		logger.Warn("Failed to create Gemini client", "error", err)
		return generator.Unavailable{}
	}
	return g
}

func storeKind(s storage.Provider) string {
	if _, ok := s.(*postgres.Store); ok {
		return "postgres"
	}
	return "sqlite"
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
