package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

// OAuthEndpoint describes a device-flow capable identity provider.
type OAuthEndpoint struct {
	Endpoint    oauth2.Endpoint
	Scopes      []string
	UserInfoURL string
}

var defaultEndpoints = map[string]OAuthEndpoint{
	ProviderGoogle: {
		Endpoint: oauth2.Endpoint{
			AuthURL:       "https://accounts.google.com/o/oauth2/auth",
			TokenURL:      "https://oauth2.googleapis.com/token",
			DeviceAuthURL: "https://oauth2.googleapis.com/device/code",
		},
		Scopes:      []string{"openid", "email", "profile"},
		UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
	},
	ProviderGitHub: {
		Endpoint: oauth2.Endpoint{
			AuthURL:       "https://github.com/login/oauth/authorize",
			TokenURL:      "https://github.com/login/oauth/access_token",
			DeviceAuthURL: "https://github.com/login/device/code",
		},
		Scopes:      []string{"read:user", "user:email"},
		UserInfoURL: "https://api.github.com/user/emails",
	},
}

func (s *Service) oauthConfig(provider string) (*oauth2.Config, OAuthEndpoint, error) {
	clientID := s.cfg.ClientIDs[provider]
	ep, ok := s.cfg.Endpoints[provider]
	if !ok {
		ep, ok = defaultEndpoints[provider]
	}
	if !ok || clientID == "" {
		return nil, OAuthEndpoint{}, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	return &oauth2.Config{
		ClientID: clientID,
		Endpoint: ep.Endpoint,
		Scopes:   ep.Scopes,
	}, ep, nil
}

func (s *Service) oauthContext(ctx context.Context) context.Context {
	if s.cfg.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, s.cfg.HTTPClient)
	}
	return ctx
}

// BeginOAuth starts a device authorization with the provider.
func (s *Service) BeginOAuth(ctx context.Context, provider string) (Challenge, error) {
	cfg, _, err := s.oauthConfig(provider)
	if err != nil {
		return Challenge{}, err
	}
	resp, err := cfg.DeviceAuth(s.oauthContext(ctx))
	if err != nil {
		return Challenge{}, fmt.Errorf("failed to start %s sign-in: %w", provider, err)
	}

	uri := resp.VerificationURIComplete
	if uri == "" {
		uri = resp.VerificationURI
	}
	return Challenge{
		Provider:        provider,
		VerificationURI: uri,
		UserCode:        resp.UserCode,
		ExpiresAt:       resp.Expiry,
		deviceCode:      resp.DeviceCode,
		interval:        resp.Interval,
	}, nil
}

// CompleteOAuth polls until the founder approves the challenge, then signs
// them in with remember-me enabled. An account is created on first use.
func (s *Service) CompleteOAuth(ctx context.Context, ch Challenge) (models.Session, error) {
	cfg, ep, err := s.oauthConfig(ch.Provider)
	if err != nil {
		return models.Session{}, err
	}
	if ch.deviceCode == "" {
		return models.Session{}, fmt.Errorf("challenge for %s was not started", ch.Provider)
	}

	octx := s.oauthContext(ctx)
	tok, err := cfg.DeviceAccessToken(octx, &oauth2.DeviceAuthResponse{
		DeviceCode: ch.deviceCode,
		UserCode:   ch.UserCode,
		Expiry:     ch.ExpiresAt,
		Interval:   ch.interval,
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("%s sign-in was not completed: %w", ch.Provider, err)
	}

	email, err := fetchEmail(octx, cfg.Client(octx, tok), ep.UserInfoURL)
	if err != nil {
		return models.Session{}, err
	}

	acct, err := s.store.GetAccountByEmail(normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		now := s.now()
		acct = models.Account{
			ID:          uuid.NewString(),
			Email:       normalizeEmail(email),
			Provider:    ch.Provider,
			ConfirmedAt: &now,
			CreatedAt:   now,
		}
		if err := s.store.CreateAccount(acct); err != nil {
			return models.Session{}, fmt.Errorf("failed to create account: %w", err)
		}
		logger.Info("Account created", "user_id", acct.ID, "provider", ch.Provider)
	} else if err != nil {
		return models.Session{}, fmt.Errorf("failed to look up account: %w", err)
	} else if acct.Provider != ch.Provider {
		logger.Warn("OAuth email belongs to another sign-in method", "user_id", acct.ID, "provider", ch.Provider, "account_provider", acct.Provider)
		return models.Session{}, fmt.Errorf("%w: sign in with %s instead", ErrAccountExists, acct.Provider)
	}
	return s.issue(acct, true)
}

type providerEmail struct {
	Email         string `json:"email"`
	Primary       bool   `json:"primary"`
	Verified      bool   `json:"verified"`
	EmailVerified bool   `json:"email_verified"`
}

func (e providerEmail) verified() bool {
	return e.Email != "" && (e.Verified || e.EmailVerified)
}

// fetchEmail reads the verified account email from a userinfo endpoint. A
// list of addresses (GitHub) prefers the verified primary one; a single
// object (OpenID userinfo) must carry email_verified.
func fetchEmail(ctx context.Context, client *http.Client, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch account email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch account email: %s", resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read account email: %w", err)
	}

	var list []providerEmail
	if err := json.Unmarshal(body, &list); err == nil {
		var fallback string
		for _, e := range list {
			if !e.verified() {
				continue
			}
			if e.Primary {
				return e.Email, nil
			}
			if fallback == "" {
				fallback = e.Email
			}
		}
		if fallback == "" {
			return "", ErrUnverifiedEmail
		}
		return fallback, nil
	}

	var one providerEmail
	if err := json.Unmarshal(body, &one); err != nil {
		return "", fmt.Errorf("failed to decode account email: %w", err)
	}
	if one.Email == "" {
		return "", fmt.Errorf("provider returned no email address")
	}
	if !one.verified() {
		return "", ErrUnverifiedEmail
	}
	return one.Email, nil
}
