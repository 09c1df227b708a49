// Package whoop provides a minimal client for the WHOOP developer API:
// the OAuth2 token endpoint and the paginated recovery listing.
package whoop

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Default production endpoints.
const (
	DefaultAuthURL     = "https://api.prod.whoop.com/oauth/oauth2/auth"
	DefaultTokenURL    = "https://api.prod.whoop.com/oauth/oauth2/token"
	DefaultRecoveryURL = "https://api.prod.whoop.com/developer/v2/recovery"
)

const (
	defaultTimeout = 15 * time.Second

	// pageLimit is the fixed page size for the recovery listing.
	pageLimit = 25
)

// Config holds client credentials and endpoint overrides. Empty endpoint
// fields fall back to the production defaults.
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	RecoveryURL  string
	Timeout      time.Duration
}

// Client calls the WHOOP API. All requests carry a timeout; exceeding it
// surfaces as a request error like any other transport failure.
type Client struct {
	client       *http.Client
	clientID     string
	clientSecret string
	tokenURL     string
	recoveryURL  string
}

// NewClient creates a WHOOP API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	recoveryURL := cfg.RecoveryURL
	if recoveryURL == "" {
		recoveryURL = DefaultRecoveryURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		client:       &http.Client{Timeout: timeout},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     tokenURL,
		recoveryURL:  recoveryURL,
	}, nil
}

// RefreshToken mints a new access token from a refresh token. The scope is
// sent along because WHOOP expects it on the refresh grant.
func (c *Client) RefreshToken(ctx context.Context, refreshToken, scope string) (*TokenPayload, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"scope":         {scope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TokenError{Status: resp.StatusCode, Detail: tokenErrorDetail(body)}
	}

	var payload TokenPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}
	return &payload, nil
}

// tokenErrorDetail pulls the most specific message out of an OAuth error
// body, falling back to the raw body.
func tokenErrorDetail(body []byte) string {
	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.ErrorDescription != "" {
			return errResp.ErrorDescription
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	return string(body)
}

// RecoveryPage fetches one page of the recovery listing for [start, end].
// A non-empty nextToken continues a prior page.
func (c *Client) RecoveryPage(ctx context.Context, accessToken string, start, end time.Time, nextToken string) (*RecoveryPage, error) {
	u, err := url.Parse(c.recoveryURL)
	if err != nil {
		return nil, fmt.Errorf("parsing recovery URL: %w", err)
	}

	q := u.Query()
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(pageLimit))
	if nextToken != "" {
		q.Set("nextToken", nextToken)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating recovery request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending recovery request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(resp.Body)
		return nil, &RequestError{Status: resp.StatusCode, Body: string(body)}
	}

	var page RecoveryPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing recovery response: %w", err)
	}
	return &page, nil
}
