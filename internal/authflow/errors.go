package authflow

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCode indicates the provider redirected back without an
	// authorization code.
	ErrMissingCode = errors.New("missing authorization code")

	// ErrInvalidState indicates the state parameter was absent, expired,
	// or already used.
	ErrInvalidState = errors.New("invalid oauth state")
)

// DeniedError reports that the provider redirected back with an error
// parameter instead of an authorization code. The attempt is terminal; no
// store is touched.
type DeniedError struct {
	Reason      string
	Description string
}

func (e *DeniedError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("whoop oauth error: %s - %s", e.Reason, e.Description)
	}
	return fmt.Sprintf("whoop oauth error: %s", e.Reason)
}
