// Package authflow orchestrates the OAuth2 authorization-code exchange
// against WHOOP: issue a single-use state, redirect the user to the
// provider, then validate the callback and persist the exchanged
// credential.
package authflow

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/wrale/whoop-hrv-bridge/internal/authstate"
	"github.com/wrale/whoop-hrv-bridge/internal/tokens"
)

const defaultExchangeTimeout = 15 * time.Second

// Config holds the provider endpoints and client credentials. Scope must
// already be normalized (see NormalizeScope).
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthURL      string
	TokenURL     string
	Scope        string
	Timeout      time.Duration
}

// Flow is the composition boundary for one authorization attempt:
// Start -> redirect -> Callback -> Connected.
type Flow struct {
	oauth  *oauth2.Config
	states *authstate.Store
	store  tokens.Store
	scope  string
	client *http.Client
	now    func() time.Time
}

// New creates a flow controller over the given state and token stores.
func New(cfg Config, states *authstate.Store, store tokens.Store) *Flow {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultExchangeTimeout
	}
	return &Flow{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		states: states,
		store:  store,
		scope:  cfg.Scope,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}
}

// Start issues a fresh state token and returns the provider authorization
// URL carrying client_id, redirect_uri, response_type=code, the normalized
// scope, and the state.
func (f *Flow) Start() (string, error) {
	state, err := f.states.Issue()
	if err != nil {
		return "", fmt.Errorf("issuing state: %w", err)
	}
	return f.oauth.AuthCodeURL(state), nil
}

// Callback finishes an authorization attempt. A provider error, a missing
// code, and an unknown state are each terminal for the attempt, checked in
// that order; only a successful exchange touches the token store. First-time
// connect has no prior record, so nothing is merged.
func (f *Flow) Callback(ctx context.Context, code, state, providerErr, providerErrDesc string) (*tokens.Record, error) {
	if providerErr != "" {
		return nil, &DeniedError{Reason: providerErr, Description: providerErrDesc}
	}
	if code == "" {
		return nil, ErrMissingCode
	}
	if state == "" || !f.states.Consume(state) {
		return nil, ErrInvalidState
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, f.client)
	tok, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}

	rec := f.recordFromToken(tok)
	if err := f.store.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving token record: %w", err)
	}
	return rec, nil
}

// Connected reports whether a refresh token is currently stored, without
// validating it.
func (f *Flow) Connected(ctx context.Context) (bool, error) {
	rec, err := f.store.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("loading token record: %w", err)
	}
	return rec != nil && rec.RefreshToken != "", nil
}

func (f *Flow) recordFromToken(tok *oauth2.Token) *tokens.Record {
	now := f.now()

	// A response without expires_in leaves Expiry zero; treat the token as
	// already stale so the first data request refreshes it.
	expiresAt := now.Unix()
	if !tok.Expiry.IsZero() {
		expiresAt = tok.Expiry.Unix()
	}

	scope, _ := tok.Extra("scope").(string)
	if scope == "" {
		scope = f.scope
	}

	return &tokens.Record{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
		TokenType:    tok.TokenType,
		Scope:        scope,
		UpdatedAt:    now.UTC().Format(time.RFC3339),
	}
}
