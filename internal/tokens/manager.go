package tokens

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wrale/whoop-hrv-bridge/internal/whoop"
)

// ErrNotConnected indicates no refresh token is stored; the user must
// complete authorization before data can be fetched.
var ErrNotConnected = errors.New("whoop account not connected")

// Refresher mints a new token payload from a refresh token. Satisfied by
// *whoop.Client.
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken, scope string) (*whoop.TokenPayload, error)
}

// Manager decides whether the stored access token is still usable and
// refreshes it when not. It is the only component that performs network
// I/O to refresh a token; everything else only ever sees an
// already-validated access token.
type Manager struct {
	mu        sync.Mutex
	store     Store
	refresher Refresher
	scope     string
	now       func() time.Time
}

// NewManager creates a token manager. scope is the normalized effective
// scope, sent on refresh and used as the merge fallback.
func NewManager(store Store, refresher Refresher, scope string) *Manager {
	return &Manager{
		store:     store,
		refresher: refresher,
		scope:     scope,
		now:       time.Now,
	}
}

// EnsureAccessToken returns a usable access token, refreshing the stored
// credential first when it is within the freshness margin of expiry. The
// whole cycle runs under one lock so concurrent requests cannot interleave
// the read-modify-write and drop a refresh token. On a rejected refresh the
// stored record is left untouched so a later attempt can retry.
func (m *Manager) EnsureAccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("loading token record: %w", err)
	}
	if rec == nil || rec.RefreshToken == "" {
		return "", ErrNotConnected
	}
	if rec.Fresh(m.now()) {
		return rec.AccessToken, nil
	}

	payload, err := m.refresher.RefreshToken(ctx, rec.RefreshToken, m.scope)
	if err != nil {
		return "", err
	}

	updated := Apply(rec, payload, m.scope, m.now())
	if err := m.store.Save(ctx, updated); err != nil {
		return "", fmt.Errorf("saving refreshed record: %w", err)
	}
	return updated.AccessToken, nil
}

// Invalidate deletes the stored credential so the next attempt reports
// not-connected instead of looping on a dead token.
func (m *Manager) Invalidate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Delete(ctx)
}
