package whoop

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		TokenURL:     srv.URL + "/oauth/oauth2/token",
		RecoveryURL:  srv.URL + "/developer/v2/recovery",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("missing_client_id", func(t *testing.T) {
		if _, err := NewClient(Config{ClientSecret: "s"}); err == nil {
			t.Error("NewClient() expected error without client ID")
		}
	})

	t.Run("missing_client_secret", func(t *testing.T) {
		if _, err := NewClient(Config{ClientID: "c"}); err == nil {
			t.Error("NewClient() expected error without client secret")
		}
	})

	t.Run("default_endpoints", func(t *testing.T) {
		client, err := NewClient(Config{ClientID: "c", ClientSecret: "s"})
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if client.tokenURL != DefaultTokenURL {
			t.Errorf("tokenURL = %q, want %q", client.tokenURL, DefaultTokenURL)
		}
		if client.recoveryURL != DefaultRecoveryURL {
			t.Errorf("recoveryURL = %q, want %q", client.recoveryURL, DefaultRecoveryURL)
		}
	})
}

func TestClient_RefreshToken(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		var gotForm map[string]string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				t.Fatalf("ParseForm() error = %v", err)
			}
			gotForm = map[string]string{
				"grant_type":    r.Form.Get("grant_type"),
				"refresh_token": r.Form.Get("refresh_token"),
				"client_id":     r.Form.Get("client_id"),
				"client_secret": r.Form.Get("client_secret"),
				"scope":         r.Form.Get("scope"),
			}
			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte(`{
				"access_token": "new-access",
				"refresh_token": "new-refresh",
				"expires_in": 3600,
				"token_type": "bearer",
				"scope": "offline read:recovery"
			}`)); err != nil {
				t.Fatalf("writing response: %v", err)
			}
		})

		payload, err := client.RefreshToken(ctx, "old-refresh", "offline read:recovery")
		if err != nil {
			t.Fatalf("RefreshToken() error = %v", err)
		}

		wantForm := map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": "old-refresh",
			"client_id":     "client-id",
			"client_secret": "client-secret",
			"scope":         "offline read:recovery",
		}
		if diff := cmp.Diff(wantForm, gotForm); diff != "" {
			t.Errorf("refresh form mismatch (-want +got):\n%s", diff)
		}

		want := &TokenPayload{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresIn:    3600,
			TokenType:    "bearer",
			Scope:        "offline read:recovery",
		}
		if diff := cmp.Diff(want, payload); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			if _, err := w.Write([]byte(`{"error":"invalid_grant","error_description":"refresh token revoked"}`)); err != nil {
				t.Fatalf("writing response: %v", err)
			}
		})

		_, err := client.RefreshToken(ctx, "revoked", "offline")
		var tokenErr *TokenError
		if !errors.As(err, &tokenErr) {
			t.Fatalf("RefreshToken() error = %v, want *TokenError", err)
		}
		if tokenErr.Status != http.StatusBadRequest {
			t.Errorf("TokenError.Status = %d, want %d", tokenErr.Status, http.StatusBadRequest)
		}
		if tokenErr.Detail != "refresh token revoked" {
			t.Errorf("TokenError.Detail = %q, want %q", tokenErr.Detail, "refresh token revoked")
		}
	})

	t.Run("rejected_without_description", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			if _, err := w.Write([]byte(`{"error":"invalid_client"}`)); err != nil {
				t.Fatalf("writing response: %v", err)
			}
		})

		_, err := client.RefreshToken(ctx, "r", "offline")
		var tokenErr *TokenError
		if !errors.As(err, &tokenErr) {
			t.Fatalf("RefreshToken() error = %v, want *TokenError", err)
		}
		if tokenErr.Detail != "invalid_client" {
			t.Errorf("TokenError.Detail = %q, want %q", tokenErr.Detail, "invalid_client")
		}
	})
}

func TestClient_RecoveryPage(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if got := q.Get("start"); got != "2024-05-01T00:00:00Z" {
				t.Errorf("start = %q, want %q", got, "2024-05-01T00:00:00Z")
			}
			if got := q.Get("end"); got != "2024-05-08T00:00:00Z" {
				t.Errorf("end = %q, want %q", got, "2024-05-08T00:00:00Z")
			}
			if got := q.Get("limit"); got != "25" {
				t.Errorf("limit = %q, want %q", got, "25")
			}
			if q.Has("nextToken") {
				t.Error("nextToken should be absent on the first page")
			}
			if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
				t.Errorf("Authorization = %q, want %q", got, "Bearer access-token")
			}

			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte(`{
				"records": [
					{"cycle_id": 11, "created_at": "2024-05-02T07:00:00Z", "score_state": "SCORED", "score": {"hrv_rmssd_milli": 54.2}},
					{"cycle_id": 12, "created_at": "2024-05-03T07:00:00Z", "score_state": "PENDING", "score": null}
				],
				"next_token": "cursor-a"
			}`)); err != nil {
				t.Fatalf("writing response: %v", err)
			}
		})

		page, err := client.RecoveryPage(ctx, "access-token", start, end, "")
		if err != nil {
			t.Fatalf("RecoveryPage() error = %v", err)
		}
		if len(page.Records) != 2 {
			t.Fatalf("len(Records) = %d, want 2", len(page.Records))
		}
		if page.NextToken != "cursor-a" {
			t.Errorf("NextToken = %q, want %q", page.NextToken, "cursor-a")
		}
		if page.Records[0].Score == nil || page.Records[0].Score.HRVRMSSDMilli == nil {
			t.Fatal("first record should carry an HRV value")
		}
		if got := *page.Records[0].Score.HRVRMSSDMilli; got != 54.2 {
			t.Errorf("HRVRMSSDMilli = %v, want 54.2", got)
		}
		if page.Records[1].Score != nil {
			t.Error("null score should decode to nil")
		}
	})

	t.Run("cursor_forwarded", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("nextToken"); got != "cursor-a" {
				t.Errorf("nextToken = %q, want %q", got, "cursor-a")
			}
			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte(`{"records": [], "next_token": null}`)); err != nil {
				t.Fatalf("writing response: %v", err)
			}
		})

		page, err := client.RecoveryPage(ctx, "access-token", start, end, "cursor-a")
		if err != nil {
			t.Fatalf("RecoveryPage() error = %v", err)
		}
		if page.NextToken != "" {
			t.Errorf("NextToken = %q, want empty", page.NextToken)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.RecoveryPage(ctx, "dead-token", start, end, "")
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("RecoveryPage() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("rate_limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.RecoveryPage(ctx, "access-token", start, end, "")
		if !errors.Is(err, ErrRateLimited) {
			t.Errorf("RecoveryPage() error = %v, want ErrRateLimited", err)
		}
	})

	t.Run("upstream_failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			if _, err := w.Write([]byte("upstream exploded")); err != nil {
				t.Fatalf("writing response: %v", err)
			}
		})

		_, err := client.RecoveryPage(ctx, "access-token", start, end, "")
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("RecoveryPage() error = %v, want *RequestError", err)
		}
		if reqErr.Status != http.StatusBadGateway {
			t.Errorf("RequestError.Status = %d, want %d", reqErr.Status, http.StatusBadGateway)
		}
		if reqErr.Body != "upstream exploded" {
			t.Errorf("RequestError.Body = %q, want %q", reqErr.Body, "upstream exploded")
		}
	})
}
