// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package google exchanges an OAuth authorization code for a Google identity.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/oliverandrich/taskmanager/internal/config"
)

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token" //nolint:gosec // endpoint URL, not a credential
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

var (
	// ErrExchangeFailed is returned when the provider rejects the code
	// exchange. The flow aborts; there are no retries.
	ErrExchangeFailed = errors.New("google token exchange failed")
	// ErrProfileFailed is returned when the userinfo request fails.
	ErrProfileFailed = errors.New("google profile fetch failed")
)

// Profile is the subset of the Google userinfo response we care about.
type Profile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Endpoints holds the provider URLs. Zero values fall back to Google's
// production endpoints; tests point them at a local server.
type Endpoints struct {
	AuthURL     string
	TokenURL    string
	UserInfoURL string
}

// Service drives the authorization-code flow against Google.
type Service struct {
	cfg       *config.GoogleConfig
	endpoints Endpoints
	client    *http.Client
}

// NewService creates an OAuth bridge for the configured client.
func NewService(cfg *config.GoogleConfig) *Service {
	return NewServiceWithEndpoints(cfg, Endpoints{})
}

// NewServiceWithEndpoints creates an OAuth bridge with custom provider URLs.
func NewServiceWithEndpoints(cfg *config.GoogleConfig, endpoints Endpoints) *Service {
	if endpoints.AuthURL == "" {
		endpoints.AuthURL = defaultAuthURL
	}
	if endpoints.TokenURL == "" {
		endpoints.TokenURL = defaultTokenURL
	}
	if endpoints.UserInfoURL == "" {
		endpoints.UserInfoURL = defaultUserInfoURL
	}
	return &Service{
		cfg:       cfg,
		endpoints: endpoints,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether OAuth credentials are configured.
func (s *Service) Enabled() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != ""
}

// AuthCodeURL builds the provider authorization URL for the login redirect.
func (s *Service) AuthCodeURL(state string) string {
	query := url.Values{}
	query.Set("client_id", s.cfg.ClientID)
	query.Set("redirect_uri", s.cfg.RedirectURI)
	query.Set("response_type", "code")
	query.Set("scope", "openid email profile")
	query.Set("access_type", "offline")
	query.Set("prompt", "consent")
	query.Set("state", state)
	return s.endpoints.AuthURL + "?" + query.Encode()
}

// Exchange trades an authorization code for an access token.
func (s *Service) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", ErrExchangeFailed
	}

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if tokens.AccessToken == "" {
		return "", ErrExchangeFailed
	}
	return tokens.AccessToken, nil
}

// FetchProfile retrieves the userinfo profile for an access token.
func (s *Service) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoints.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrProfileFailed
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	if profile.Sub == "" || profile.Email == "" {
		return nil, ErrProfileFailed
	}
	return &profile, nil
}
