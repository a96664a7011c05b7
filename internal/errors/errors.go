package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/keyring"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/storage"
)

// Format renders err with the "Error: " prefix used by every command.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests the next step for errors the user can fix themselves.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, storage.ErrNotInitialized):
		return "run 'genie init' to create the local store"
	case stderrors.Is(err, storage.ErrEmbeddedCredentials):
		return "remove the password from the DSN and use GENIE_DB_CONNECTION, .pgpass or 'genie key set-db'"
	case stderrors.Is(err, auth.ErrNoSession):
		return "sign in with 'genie account login'"
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		return "check the email and password, or create an account with 'genie account register'"
	case stderrors.Is(err, auth.ErrAccountExists):
		return "that email already has an account, sign in with 'genie account login'"
	case stderrors.Is(err, auth.ErrConfirmationPending):
		return "confirm the address with 'genie account confirm <email>'"
	case stderrors.Is(err, keyring.ErrKeyringUnavailable):
		return "no OS keyring detected, pass --api-key or set GEMINI_API_KEY"
	case stderrors.Is(err, generator.ErrGenerationFailed):
		return "'genie sample' prints the demo blueprint without network access"
	}
	return ""
}

// Fatal prints err with its hint and exits with status 1.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "       hint: %s\n", hint)
	}
	os.Exit(1)
}
