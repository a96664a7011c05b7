package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/keyring"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

const minPasswordLength = 6

// Accounts is the part of storage.Provider the service needs.
type Accounts interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	CreateAccount(models.Account) error
	GetAccount(id string) (models.Account, error)
	GetAccountByEmail(email string) (models.Account, error)
	ConfirmAccount(id string, at time.Time) error
}

// TokenStore persists the remember-me token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// KeyringTokens keeps the remember-me token in the OS keyring.
type KeyringTokens struct{}

func (KeyringTokens) Load() (string, error) { return keyring.GetSessionToken() }
func (KeyringTokens) Save(token string) error { return keyring.SetSessionToken(token) }
func (KeyringTokens) Clear() error { return keyring.DeleteSessionToken() }

// MemoryTokens keeps the token for the life of the process.
type MemoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokens) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", keyring.ErrNotFound
	}
	return m.token, nil
}

func (m *MemoryTokens) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

type Config struct {
	// RequireConfirmation holds new email accounts until ConfirmEmail is called.
	RequireConfirmation bool
	// ClientIDs maps provider name to OAuth client id. Providers without an id are unsupported.
	ClientIDs map[string]string
	// Endpoints overrides the built-in provider endpoints.
	Endpoints  map[string]OAuthEndpoint
	Tokens     TokenStore
	HTTPClient *http.Client
	Now        func() time.Time
}

type Service struct {
	store  Accounts
	cfg    Config
	now    func() time.Time
	tokens TokenStore

	mu      sync.Mutex
	secret  []byte
	current *models.Session

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan Event
}

var _ Provider = (*Service)(nil)

func NewService(store Accounts, cfg Config) *Service {
	s := &Service{
		store:  store,
		cfg:    cfg,
		now:    cfg.Now,
		tokens: cfg.Tokens,
		subs:   make(map[int]chan Event),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.tokens == nil {
		s.tokens = KeyringTokens{}
	}
	return s
}

type claims struct {
	Email    string `json:"email"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

func (s *Service) SignIn(ctx context.Context, creds Credentials) (models.Session, error) {
	acct, err := s.store.GetAccountByEmail(normalizeEmail(creds.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to look up account: %w", err)
	}
	if acct.PasswordHash == "" {
		// created through OAuth, no password to check
		return models.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(creds.Password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	if s.cfg.RequireConfirmation && acct.ConfirmedAt == nil {
		return models.Session{}, ErrConfirmationPending
	}
	return s.issue(acct, creds.Remember)
}

func (s *Service) SignUp(ctx context.Context, creds Credentials) (models.Session, error) {
	email := normalizeEmail(creds.Email)
	if !strings.Contains(email, "@") {
		return models.Session{}, fmt.Errorf("%q is not a valid email address", creds.Email)
	}
	if len(creds.Password) < minPasswordLength {
		return models.Session{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now()
	acct := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Provider:     ProviderEmail,
		CreatedAt:    now,
	}
	if !s.cfg.RequireConfirmation {
		acct.ConfirmedAt = &now
	}
	if err := s.store.CreateAccount(acct); err != nil {
		if errors.Is(err, storage.ErrAccountExists) {
			return models.Session{}, ErrAccountExists
		}
		return models.Session{}, fmt.Errorf("failed to create account: %w", err)
	}
	logger.Info("Account created", "user_id", acct.ID, "confirmation_required", s.cfg.RequireConfirmation)

	if s.cfg.RequireConfirmation {
		return models.Session{}, ErrConfirmationPending
	}
	return s.issue(acct, creds.Remember)
}

// ConfirmEmail marks the account for email as confirmed.
func (s *Service) ConfirmEmail(email string) error {
	acct, err := s.store.GetAccountByEmail(normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to find account %s: %w", email, err)
	}
	return s.store.ConfirmAccount(acct.ID, s.now())
}

func (s *Service) CurrentSession(ctx context.Context) (models.Session, error) {
	s.mu.Lock()
	if s.current.Valid(s.now()) {
		sess := *s.current
		s.mu.Unlock()
		return sess, nil
	}
	s.current = nil
	s.mu.Unlock()

	token, err := s.tokens.Load()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Remembered session unavailable", "error", err)
		}
		return models.Session{}, ErrNoSession
	}

	sess, err := s.verify(token)
	if err != nil {
		logger.Info("Discarding remembered session", "reason", err)
		if err := s.tokens.Clear(); err != nil {
			logger.Warn("Failed to clear remembered session", "error", err)
		}
		return models.Session{}, ErrNoSession
	}
	if _, err := s.store.GetAccount(sess.UserID); err != nil {
		logger.Info("Remembered session refers to a missing account", "user_id", sess.UserID)
		return models.Session{}, ErrNoSession
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.publish(Event{Kind: EventSignedIn, Session: &sess})
	return sess, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	err := s.tokens.Clear()
	s.publish(Event{Kind: EventSignedOut})
	if err != nil {
		return fmt.Errorf("failed to forget remembered session: %w", err)
	}
	return nil
}

func (s *Service) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, 8)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// publish never blocks; slow subscribers miss events.
func (s *Service) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			logger.Debug("Dropping auth event for slow subscriber", "subscriber", id, "event", ev.Kind)
		}
	}
}

func (s *Service) issue(acct models.Account, remember bool) (models.Session, error) {
	secret, err := s.signingSecret()
	if err != nil {
		return models.Session{}, err
	}

	now := s.now()
	expires := now.Add(constants.SessionTTL)
	c := claims{
		Email:    acct.Email,
		Provider: acct.Provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppName,
			Subject:   acct.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to sign session: %w", err)
	}

	sess := models.Session{
		UserID:    acct.ID,
		Email:     acct.Email,
		Token:     token,
		Provider:  acct.Provider,
		ExpiresAt: expires.Truncate(time.Second),
		Remember:  remember,
	}

	if remember {
		if err := s.tokens.Save(token); err != nil {
			logger.Warn("Failed to remember session", "error", err)
		}
	} else if err := s.tokens.Clear(); err != nil {
		logger.Debug("Failed to clear previous remembered session", "error", err)
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	logger.Info("Signed in", "user_id", acct.ID, "provider", acct.Provider, "remember", remember)
	s.publish(Event{Kind: EventSignedIn, Session: &sess})
	return sess, nil
}

func (s *Service) verify(token string) (models.Session, error) {
	secret, err := s.signingSecret()
	if err != nil {
		return models.Session{}, err
	}
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.AppName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to parse session token: %w", err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return models.Session{}, fmt.Errorf("invalid session token")
	}
	return models.Session{
		UserID:    c.Subject,
		Email:     c.Email,
		Token:     token,
		Provider:  c.Provider,
		ExpiresAt: c.ExpiresAt.Time,
		Remember:  true,
	}, nil
}

// signingSecret loads the HS256 key from settings, generating it on first use.
func (s *Service) signingSecret() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.secret != nil {
		return s.secret, nil
	}

	v, err := s.store.GetSetting(constants.SettingJWTSecret)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate signing secret: %w", err)
		}
		v = hex.EncodeToString(buf)
		if err := s.store.SetSetting(constants.SettingJWTSecret, v); err != nil {
			return nil, fmt.Errorf("failed to store signing secret: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to read signing secret: %w", err)
	}
	s.secret = []byte(v)
	return s.secret, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
