package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/keyring"
	"github.com/julianstephens/genie/internal/storage"
	"github.com/julianstephens/genie/internal/storage/postgres"
)

// KeySetAPIKeyCmd stores the Gemini API key in the OS keyring.
type KeySetAPIKeyCmd struct {
	Key string `arg:"" help:"Gemini API key."`
}

func (cmd *KeySetAPIKeyCmd) Run(ctx *cli.Context) error {
	if err := keyring.SetAPIKey(strings.TrimSpace(cmd.Key)); err != nil {
		return err
	}
	ctx.Println("✓ API key stored in OS keyring")
	return nil
}

type KeyDeleteAPIKeyCmd struct{}

func (cmd *KeyDeleteAPIKeyCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring")
		}
		return err
	}
	ctx.Println("✓ API key deleted from OS keyring")
	return nil
}

// KeySetDBCmd stores a PostgreSQL connection string in the OS keyring.
type KeySetDBCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in keyring."`
}

func (cmd *KeySetDBCmd) Run(ctx *cli.Context) error {
	connStr := strings.TrimSpace(cmd.ConnectionString)
	if !postgres.IsConnString(connStr) && !strings.Contains(connStr, "host=") {
		return errors.New("connection string must be a valid PostgreSQL connection string")
	}

	if err := postgres.ValidateConnString(connStr); err != nil {
		if !errors.Is(err, storage.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		// the keyring is encrypted, so an embedded password is tolerated here
		ctx.Println("⚠️  Warning: connection string contains embedded credentials.")
		ctx.Println("   It will be stored as-is in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(connStr); err != nil {
		return err
	}
	ctx.Println("✓ Connection string stored in OS keyring")
	ctx.Println("  genie uses it whenever --config is not given")
	return nil
}

type KeyStatusCmd struct{}

func (cmd *KeyStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")

	report := func(what string, get func() (string, error), mask func(string) string) {
		v, err := get()
		switch {
		case err == nil:
			ctx.Printf("✓ %s: %s\n", what, mask(v))
		case errors.Is(err, keyring.ErrNotFound):
			ctx.Printf("ℹ %s: not stored\n", what)
		default:
			ctx.Printf("⚠ %s: %v\n", what, err)
		}
	}
	report("API key", keyring.GetAPIKey, maskSecret)
	report("Connection string", keyring.GetConnectionString, maskPassword)
	report("Remembered session", keyring.GetSessionToken, func(string) string { return "present" })
	return nil
}

// maskSecret keeps the last four characters.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}

// maskPassword hides the password of a URL or key=value connection string.
func maskPassword(connStr string) string {
	if postgres.IsConnString(connStr) {
		scheme, rest, _ := strings.Cut(connStr, "://")
		if at := strings.LastIndex(rest, "@"); at != -1 {
			if user, _, ok := strings.Cut(rest[:at], ":"); ok {
				return scheme + "://" + user + ":****" + rest[at:]
			}
		}
		return connStr
	}

	parts := strings.Fields(connStr)
	for i, part := range parts {
		if strings.HasPrefix(part, "password=") {
			parts[i] = "password=****"
		}
	}
	return strings.Join(parts, " ")
}
