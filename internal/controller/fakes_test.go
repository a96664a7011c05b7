package controller

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeAuth struct {
	mu       sync.Mutex
	accounts map[string]string // email -> password
	ids      map[string]string // email -> user id
	current  *models.Session
	err      error // returned by every sign-in call when set
	signIns  int
	signOuts int
	oauth    auth.Challenge
	subs     []chan auth.Event
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{accounts: map[string]string{}, ids: map[string]string{}}
}

func (f *fakeAuth) add(email, password, id string) {
	f.accounts[email] = password
	f.ids[email] = id
}

func (f *fakeAuth) session(email string, remember bool) models.Session {
	return models.Session{
		UserID:    f.ids[email],
		Email:     email,
		Token:     "token-" + f.ids[email],
		Provider:  auth.ProviderEmail,
		ExpiresAt: testNow.Add(time.Hour),
		Remember:  remember,
	}
}

func (f *fakeAuth) SignIn(ctx context.Context, creds auth.Credentials) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns++
	if f.err != nil {
		return models.Session{}, f.err
	}
	if pw, ok := f.accounts[creds.Email]; !ok || pw != creds.Password {
		return models.Session{}, auth.ErrInvalidCredentials
	}
	return f.signedIn(f.session(creds.Email, creds.Remember)), nil
}

// signedIn records s as the provider's session, as the real service does
// before the caller sees the result. Callers hold f.mu.
func (f *fakeAuth) signedIn(s models.Session) models.Session {
	f.current = &s
	return s
}

func (f *fakeAuth) SignUp(ctx context.Context, creds auth.Credentials) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns++
	if f.err != nil {
		return models.Session{}, f.err
	}
	if _, ok := f.accounts[creds.Email]; ok {
		return models.Session{}, auth.ErrAccountExists
	}
	f.add(creds.Email, creds.Password, "user-"+creds.Email)
	return f.signedIn(f.session(creds.Email, creds.Remember)), nil
}

func (f *fakeAuth) BeginOAuth(ctx context.Context, provider string) (auth.Challenge, error) {
	if provider != auth.ProviderGitHub {
		return auth.Challenge{}, auth.ErrUnsupportedProvider
	}
	f.oauth = auth.Challenge{Provider: provider, VerificationURI: "https://github.com/login/device", UserCode: "WDJB-MJHT"}
	return f.oauth, nil
}

func (f *fakeAuth) CompleteOAuth(ctx context.Context, ch auth.Challenge) (models.Session, error) {
	if ch.UserCode != f.oauth.UserCode {
		return models.Session{}, errors.New("unknown challenge")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.add("octo@example.com", "", "user-octo")
	s := f.session("octo@example.com", true)
	s.Provider = auth.ProviderGitHub
	return f.signedIn(s), nil
}

func (f *fakeAuth) hasSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current != nil
}

func (f *fakeAuth) CurrentSession(ctx context.Context) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return models.Session{}, auth.ErrNoSession
	}
	return *f.current, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	f.current = nil
	return nil
}

func (f *fakeAuth) Subscribe() (<-chan auth.Event, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan auth.Event, 1)
	f.subs = append(f.subs, ch)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }
}

type fakeRecords struct {
	mu         sync.Mutex
	profiles   map[string]models.Profile
	blueprints map[string]models.Blueprint
	profileErr error
	saveErr    error
	listErr    error
	saves      int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{profiles: map[string]models.Profile{}, blueprints: map[string]models.Blueprint{}}
}

func (r *fakeRecords) GetProfile(userID string) (models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.profileErr != nil {
		return models.Profile{}, r.profileErr
	}
	p, ok := r.profiles[userID]
	if !ok {
		return models.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (r *fakeRecords) SaveProfile(p models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.profiles[p.UserID] = p
	return nil
}

func (r *fakeRecords) SaveBlueprint(bp models.Blueprint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blueprints[bp.ID] = bp
	return nil
}

func (r *fakeRecords) GetBlueprint(id string) (models.Blueprint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bp, ok := r.blueprints[id]
	if !ok {
		return models.Blueprint{}, storage.ErrNotFound
	}
	return bp, nil
}

func (r *fakeRecords) ListBlueprints(userID string) ([]models.BlueprintSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.BlueprintSummary
	for _, bp := range r.blueprints {
		if bp.UserID == userID {
			out = append(out, bp.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRecords) DeleteBlueprint(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blueprints, id)
	return nil
}

var _ Records = storage.Provider(nil)
