// Package auth signs founders in and out and owns the authoritative session.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/genie/internal/models"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountExists       = errors.New("an account with this email already exists")
	ErrConfirmationPending = errors.New("email confirmation pending")
	ErrUnsupportedProvider = errors.New("unsupported sign-in provider")
	ErrNoSession           = errors.New("no active session")
	ErrUnverifiedEmail     = errors.New("the provider has no verified email address for this account")
)

// Providers that can be passed to BeginOAuth.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

type Credentials struct {
	Email    string
	Password string
	Remember bool
}

// Challenge is an in-progress device authorization. The founder visits
// VerificationURI and enters UserCode, then CompleteOAuth finishes sign-in.
type Challenge struct {
	Provider        string
	VerificationURI string
	UserCode        string
	ExpiresAt       time.Time

	deviceCode string
	interval   int64
}

type EventKind int

const (
	EventSignedIn EventKind = iota
	EventSignedOut
)

func (k EventKind) String() string {
	if k == EventSignedIn {
		return "signed-in"
	}
	return "signed-out"
}

// Event is an auth-state-change notification. Session is nil on sign out.
type Event struct {
	Kind    EventKind
	Session *models.Session
}

// Provider is the hosted-auth port used by the controller and the CLI.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (models.Session, error)
	SignUp(ctx context.Context, creds Credentials) (models.Session, error)
	BeginOAuth(ctx context.Context, provider string) (Challenge, error)
	CompleteOAuth(ctx context.Context, ch Challenge) (models.Session, error)
	// CurrentSession returns ErrNoSession when nobody is signed in.
	CurrentSession(ctx context.Context) (models.Session, error)
	SignOut(ctx context.Context) error
	// Subscribe delivers state changes until the returned cancel func is called.
	Subscribe() (<-chan Event, func())
}
