package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/genie/internal/constants"
)

var (
	// ErrNotFound is returned when the requested entry is not stored.
	ErrNotFound = errors.New("entry not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached.
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(user string) (string, error) {
	v, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return v, nil
}

func set(user, value, what string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if err := keyring.Set(constants.AppName, user, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", what, err)
	}
	return nil
}

func del(user, what string) error {
	if err := keyring.Delete(constants.AppName, user); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", what, err)
	}
	return nil
}

// GetSessionToken returns the remembered session token.
func GetSessionToken() (string, error) { return get(constants.KeyringSessionUser) }

func SetSessionToken(token string) error {
	return set(constants.KeyringSessionUser, token, "session token")
}

// DeleteSessionToken forgets the remembered session. A missing entry is not an error.
func DeleteSessionToken() error {
	if err := del(constants.KeyringSessionUser, "session token"); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func GetAPIKey() (string, error) { return get(constants.KeyringAPIKeyUser) }

func SetAPIKey(key string) error { return set(constants.KeyringAPIKeyUser, key, "API key") }

func DeleteAPIKey() error { return del(constants.KeyringAPIKeyUser, "API key") }

// GetConnectionString returns the stored PostgreSQL connection string.
func GetConnectionString() (string, error) { return get(constants.KeyringDBUser) }

func SetConnectionString(connStr string) error {
	return set(constants.KeyringDBUser, connStr, "connection string")
}

// IsAvailable reports whether the OS keyring answers a lookup.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "availability-check")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
