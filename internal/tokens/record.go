// Package tokens persists and maintains the WHOOP OAuth credential: a
// single durable record holding the access token, refresh token, and
// expiry, plus the manager that keeps the access token usable.
package tokens

import (
	"time"

	"github.com/wrale/whoop-hrv-bridge/internal/whoop"
)

// FreshnessMargin is the safety margin against clock skew and in-flight
// request latency. A token exactly at the margin counts as stale.
const FreshnessMargin = 120 * time.Second

// Record is the persisted credential. Field names are the on-disk JSON
// layout; absence of the record means "not connected".
type Record struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// Fresh reports whether the access token is still usable at now.
func (r *Record) Fresh(now time.Time) bool {
	if r == nil || r.AccessToken == "" || r.ExpiresAt == 0 {
		return false
	}
	return r.ExpiresAt-now.Unix() > int64(FreshnessMargin/time.Second)
}

// Apply merges a token endpoint response into the previous record. The new
// access token and expiry always replace the old; the refresh token
// survives unless the provider returned a new one; scope falls back to the
// previous value and then to fallbackScope when the provider omits it.
func Apply(prev *Record, payload *whoop.TokenPayload, fallbackScope string, now time.Time) *Record {
	rec := &Record{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresAt:    now.Unix() + payload.ExpiresIn,
		TokenType:    payload.TokenType,
		Scope:        payload.Scope,
		UpdatedAt:    now.UTC().Format(time.RFC3339),
	}
	if rec.RefreshToken == "" && prev != nil {
		rec.RefreshToken = prev.RefreshToken
	}
	if rec.Scope == "" {
		if prev != nil && prev.Scope != "" {
			rec.Scope = prev.Scope
		} else {
			rec.Scope = fallbackScope
		}
	}
	return rec
}
