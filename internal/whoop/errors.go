package whoop

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the provider rejected the access token.
	// The caller owns the credential store and must invalidate the stored
	// record so the next attempt forces re-authorization.
	ErrUnauthorized = errors.New("whoop rejected the access token")

	// ErrRateLimited indicates the provider returned 429; the caller
	// should back off before retrying.
	ErrRateLimited = errors.New("whoop rate limit reached")
)

// TokenError reports a non-2xx response from the token endpoint. The stored
// credential is left untouched so a later attempt can retry.
type TokenError struct {
	Status int
	Detail string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("whoop token request failed (%d): %s", e.Status, e.Detail)
}

// RequestError reports a non-2xx response from a data endpoint, carrying
// status and body for diagnosis.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("whoop recovery request failed (%d): %s", e.Status, e.Body)
}
