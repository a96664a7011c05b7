package storage

import (
	"errors"
	"time"

	"github.com/julianstephens/genie/internal/models"
)

var (
	// ErrNotFound is returned when a profile, account or blueprint does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAccountExists is returned when an account with the same email is already stored.
	ErrAccountExists = errors.New("account already exists")
	// ErrNotInitialized is returned by Load when the store has never been initialized.
	ErrNotInitialized = errors.New("storage not initialized, run 'genie init' first")
	// ErrInvalidConnectionString is returned for unparsable PostgreSQL DSNs.
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	// ErrEmbeddedCredentials is returned when a DSN carries a password.
	ErrEmbeddedCredentials = errors.New("connection string must not contain a password")
)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error

	// Accounts
	CreateAccount(models.Account) error
	GetAccount(id string) (models.Account, error)
	GetAccountByEmail(email string) (models.Account, error)
	ConfirmAccount(id string, at time.Time) error

	// Profiles
	GetProfile(userID string) (models.Profile, error)
	// SaveProfile inserts or replaces the profile for profile.UserID.
	SaveProfile(models.Profile) error

	// Blueprints
	SaveBlueprint(models.Blueprint) error
	GetBlueprint(id string) (models.Blueprint, error)
	// ListBlueprints returns the user's blueprints, most recent first.
	ListBlueprints(userID string) ([]models.BlueprintSummary, error)
	// DeleteBlueprint removes the blueprint. Unknown ids are not an error.
	DeleteBlueprint(id string) error

	// Utils
	GetConfigPath() string
}
