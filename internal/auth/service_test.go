package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"
	"golang.org/x/oauth2"

	"github.com/julianstephens/genie/internal/keyring"
	"github.com/julianstephens/genie/internal/storage/sqlite"
)

type memTokens = MemoryTokens

func setupService(t *testing.T, cfg Config) (*Service, *sqlite.Store, *memTokens) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens := &memTokens{}
	if cfg.Tokens == nil {
		cfg.Tokens = tokens
	}
	return NewService(store, cfg), store, tokens
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := setupService(t, Config{})

	sess, err := svc.SignUp(ctx, Credentials{Email: "Dana@Example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if sess.Email != "dana@example.com" || sess.Token == "" || sess.Provider != ProviderEmail {
		t.Errorf("SignUp() session = %+v", sess)
	}
	if _, err := tokens.Load(); err == nil {
		t.Error("token remembered without remember-me")
	}

	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{"correct password", Credentials{Email: "dana@example.com", Password: "secret123"}, nil},
		{"email is case-insensitive", Credentials{Email: " DANA@example.com ", Password: "secret123"}, nil},
		{"wrong password", Credentials{Email: "dana@example.com", Password: "nope-nope"}, ErrInvalidCredentials},
		{"unknown email", Credentials{Email: "nobody@example.com", Password: "secret123"}, ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.SignIn(ctx, tt.creds)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SignIn() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.UserID != sess.UserID {
				t.Errorf("SignIn() user = %s, want %s", got.UserID, sess.UserID)
			}
		})
	}
}

func TestSignUpExistingEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, Config{})

	if _, err := svc.SignUp(ctx, Credentials{Email: "dana@example.com", Password: "secret123"}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.SignUp(ctx, Credentials{Email: "DANA@example.com", Password: "another1"})
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("SignUp(existing) error = %v, want ErrAccountExists", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _ := setupService(t, Config{})
	if _, err := svc.SignUp(context.Background(), Credentials{Email: "not-an-email", Password: "secret123"}); err == nil {
		t.Error("expected error for invalid email")
	}
	if _, err := svc.SignUp(context.Background(), Credentials{Email: "a@b.c", Password: "123"}); err == nil {
		t.Error("expected error for short password")
	}
}

func TestConfirmationPending(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupService(t, Config{RequireConfirmation: true})
	creds := Credentials{Email: "dana@example.com", Password: "secret123"}

	if _, err := svc.SignUp(ctx, creds); !errors.Is(err, ErrConfirmationPending) {
		t.Fatalf("SignUp() error = %v, want ErrConfirmationPending", err)
	}
	if _, err := svc.SignIn(ctx, creds); !errors.Is(err, ErrConfirmationPending) {
		t.Fatalf("SignIn() before confirm error = %v, want ErrConfirmationPending", err)
	}
	if err := svc.ConfirmEmail("dana@example.com"); err != nil {
		t.Fatalf("ConfirmEmail() error = %v", err)
	}
	if _, err := svc.SignIn(ctx, creds); err != nil {
		t.Fatalf("SignIn() after confirm error = %v", err)
	}
}

func TestRememberedSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	svc, store, tokens := setupService(t, Config{Now: clock})
	sess, err := svc.SignUp(ctx, Credentials{Email: "dana@example.com", Password: "secret123", Remember: true})
	if err != nil {
		t.Fatal(err)
	}
	if tok, _ := tokens.Load(); tok != sess.Token {
		t.Fatal("remember-me did not persist the token")
	}

	t.Run("restored by a new process", func(t *testing.T) {
		fresh := NewService(store, Config{Tokens: tokens, Now: clock})
		got, err := fresh.CurrentSession(ctx)
		if err != nil {
			t.Fatalf("CurrentSession() error = %v", err)
		}
		if got.UserID != sess.UserID || got.Email != sess.Email {
			t.Errorf("CurrentSession() = %+v, want user %s", got, sess.UserID)
		}
	})

	t.Run("expired token is discarded", func(t *testing.T) {
		later := func() time.Time { return now.Add(8 * 24 * time.Hour) }
		fresh := NewService(store, Config{Tokens: tokens, Now: later})
		if _, err := fresh.CurrentSession(ctx); !errors.Is(err, ErrNoSession) {
			t.Fatalf("CurrentSession() error = %v, want ErrNoSession", err)
		}
		if _, err := tokens.Load(); err == nil {
			t.Error("expired token was not cleared")
		}
	})
}

func TestTamperedTokenRejected(t *testing.T) {
	ctx := context.Background()
	svc, store, tokens := setupService(t, Config{})
	if _, err := svc.SignUp(ctx, Credentials{Email: "dana@example.com", Password: "secret123", Remember: true}); err != nil {
		t.Fatal(err)
	}
	tok, _ := tokens.Load()
	tokens.Save(tok[:len(tok)-2] + "xx")

	fresh := NewService(store, Config{Tokens: tokens})
	if _, err := fresh.CurrentSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("CurrentSession() error = %v, want ErrNoSession", err)
	}
}

func TestSignOutAndEvents(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := setupService(t, Config{})
	events, cancel := svc.Subscribe()
	defer cancel()

	if _, err := svc.SignUp(ctx, Credentials{Email: "dana@example.com", Password: "secret123", Remember: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CurrentSession(ctx); err != nil {
		t.Fatalf("CurrentSession() after sign up error = %v", err)
	}
	if err := svc.SignOut(ctx); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := svc.CurrentSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("CurrentSession() after sign out error = %v, want ErrNoSession", err)
	}
	if _, err := tokens.Load(); err == nil {
		t.Error("sign out left the remembered token")
	}

	want := []EventKind{EventSignedIn, EventSignedOut}
	for _, k := range want {
		select {
		case ev := <-events:
			if ev.Kind != k {
				t.Errorf("event = %v, want %v", ev.Kind, k)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %v", k)
		}
	}

	cancel()
	cancel()
	if _, ok := <-events; ok {
		t.Error("channel still open after cancel")
	}
}

func TestKeyringTokens(t *testing.T) {
	gokeyring.MockInit()
	var ts KeyringTokens

	if _, err := ts.Load(); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("Load() on empty keyring error = %v, want ErrNotFound", err)
	}
	if err := ts.Save("tok"); err != nil {
		t.Fatal(err)
	}
	if got, _ := ts.Load(); got != "tok" {
		t.Errorf("Load() = %q, want tok", got)
	}
	if err := ts.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := ts.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestOAuthUnsupported(t *testing.T) {
	svc, _, _ := setupService(t, Config{})
	for _, p := range []string{ProviderGoogle, "myspace"} {
		if _, err := svc.BeginOAuth(context.Background(), p); !errors.Is(err, ErrUnsupportedProvider) {
			t.Errorf("BeginOAuth(%s) error = %v, want ErrUnsupportedProvider", p, err)
		}
	}
}

// oauthServer fakes a device-flow provider whose user-info endpoint answers
// with emails.
func oauthServer(t *testing.T, emails string) Config {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/device", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"device_code":      "dev-123",
			"user_code":        "ABCD-EFGH",
			"verification_uri": "https://example.com/activate",
			"expires_in":       600,
			"interval":         1,
		})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1", "token_type": "bearer"})
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(emails))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return Config{
		ClientIDs: map[string]string{ProviderGitHub: "client-1"},
		Endpoints: map[string]OAuthEndpoint{
			ProviderGitHub: {
				Endpoint: oauth2.Endpoint{
					AuthURL:       srv.URL + "/auth",
					TokenURL:      srv.URL + "/token",
					DeviceAuthURL: srv.URL + "/device",
				},
				UserInfoURL: srv.URL + "/emails",
			},
		},
		HTTPClient: srv.Client(),
	}
}

func TestOAuthDeviceFlow(t *testing.T) {
	svc, store, tokens := setupService(t, oauthServer(t,
		`[{"email":"old@example.com","primary":false,"verified":true},{"email":"Dana@Example.com","primary":true,"verified":true}]`))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ch, err := svc.BeginOAuth(ctx, ProviderGitHub)
	if err != nil {
		t.Fatalf("BeginOAuth() error = %v", err)
	}
	if ch.UserCode != "ABCD-EFGH" || ch.VerificationURI != "https://example.com/activate" {
		t.Errorf("challenge = %+v", ch)
	}

	sess, err := svc.CompleteOAuth(ctx, ch)
	if err != nil {
		t.Fatalf("CompleteOAuth() error = %v", err)
	}
	if sess.Email != "dana@example.com" || sess.Provider != ProviderGitHub || !sess.Remember {
		t.Errorf("session = %+v", sess)
	}
	if tok, _ := tokens.Load(); tok != sess.Token {
		t.Error("OAuth sign-in should always be remembered")
	}
	acct, err := store.GetAccountByEmail("dana@example.com")
	if err != nil || acct.Provider != ProviderGitHub || acct.ConfirmedAt == nil {
		t.Errorf("account = %+v, %v", acct, err)
	}

	if _, err := svc.SignIn(ctx, Credentials{Email: "dana@example.com", Password: ""}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("password sign-in to OAuth account error = %v, want ErrInvalidCredentials", err)
	}

	// a second device sign-in reuses the account
	ch, err = svc.BeginOAuth(ctx, ProviderGitHub)
	if err != nil {
		t.Fatal(err)
	}
	again, err := svc.CompleteOAuth(ctx, ch)
	if err != nil || again.UserID != sess.UserID {
		t.Errorf("second sign-in = %+v, %v; want user %s", again, err, sess.UserID)
	}
}

func TestOAuthEmailSelection(t *testing.T) {
	tests := []struct {
		name    string
		emails  string
		want    string
		wantErr error
	}{
		{
			name:   "verified secondary when primary is unverified",
			emails: `[{"email":"dana@example.com","primary":true,"verified":false},{"email":"dana@work.example","primary":false,"verified":true}]`,
			want:   "dana@work.example",
		},
		{
			name:    "no verified address",
			emails:  `[{"email":"dana@example.com","primary":false,"verified":false}]`,
			wantErr: ErrUnverifiedEmail,
		},
		{
			name:   "openid userinfo verified",
			emails: `{"sub":"1","email":"Dana@Example.com","email_verified":true}`,
			want:   "dana@example.com",
		},
		{
			name:    "openid userinfo unverified",
			emails:  `{"sub":"1","email":"dana@example.com","email_verified":false}`,
			wantErr: ErrUnverifiedEmail,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, tokens := setupService(t, oauthServer(t, tt.emails))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			ch, err := svc.BeginOAuth(ctx, ProviderGitHub)
			if err != nil {
				t.Fatal(err)
			}
			sess, err := svc.CompleteOAuth(ctx, ch)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CompleteOAuth() error = %v, want %v", err, tt.wantErr)
				}
				if _, err := tokens.Load(); err == nil {
					t.Error("a token was stored for a refused sign-in")
				}
				if _, err := store.GetAccountByEmail("dana@example.com"); err == nil {
					t.Error("an account was created for an unverified email")
				}
				return
			}
			if err != nil {
				t.Fatalf("CompleteOAuth() error = %v", err)
			}
			if sess.Email != tt.want {
				t.Errorf("session email = %q, want %q", sess.Email, tt.want)
			}
		})
	}
}

func TestOAuthDoesNotTakeOverPasswordAccount(t *testing.T) {
	svc, _, tokens := setupService(t, oauthServer(t,
		`[{"email":"dana@example.com","primary":true,"verified":true}]`))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	owner, err := svc.SignUp(ctx, Credentials{Email: "dana@example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SignOut(ctx); err != nil {
		t.Fatal(err)
	}

	ch, err := svc.BeginOAuth(ctx, ProviderGitHub)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CompleteOAuth(ctx, ch); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("CompleteOAuth() error = %v, want ErrAccountExists", err)
	}
	if _, err := svc.CurrentSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("CurrentSession() error = %v, want ErrNoSession", err)
	}
	if _, err := tokens.Load(); err == nil {
		t.Error("a token was stored for the refused sign-in")
	}

	// the password still works for the real owner
	sess, err := svc.SignIn(ctx, Credentials{Email: "dana@example.com", Password: "secret1"})
	if err != nil || sess.UserID != owner.UserID {
		t.Errorf("SignIn() = %+v, %v", sess, err)
	}
}
