// Package main implements the WHOOP HRV bridge server.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/wrale/whoop-hrv-bridge/internal/authflow"
	"github.com/wrale/whoop-hrv-bridge/internal/recovery"
	"github.com/wrale/whoop-hrv-bridge/internal/tokens"
	"github.com/wrale/whoop-hrv-bridge/internal/whoop"
)

func (s *server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "WHOOP HRV bridge is running. Use /auth/start to connect and /health to test service status.")
	}
}

func (s *server) handleHealth() http.HandlerFunc {
	type healthResponse struct {
		OK bool `json:"ok"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.CheckHealth(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{OK: false})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{OK: true})
	}
}

func (s *server) handleAuthStart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.flow.Start()
		if err != nil {
			http.Error(w, "failed to start authorization", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

func (s *server) handleAuthCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		_, err := s.flow.Callback(r.Context(), q.Get("code"), q.Get("state"), q.Get("error"), q.Get("error_description"))
		if err != nil {
			var denied *authflow.DeniedError
			switch {
			case errors.As(err, &denied):
				msg := "WHOOP OAuth error: " + denied.Reason
				if denied.Description != "" {
					msg += " - " + denied.Description
				}
				http.Error(w, msg, http.StatusBadRequest)
			case errors.Is(err, authflow.ErrMissingCode):
				http.Error(w, "Missing authorization code. Start from /auth/start and complete WHOOP login.", http.StatusBadRequest)
			case errors.Is(err, authflow.ErrInvalidState):
				http.Error(w, "Invalid OAuth state. Start login again from /auth/start.", http.StatusBadRequest)
			default:
				http.Error(w, "Failed to connect WHOOP: "+err.Error(), http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "WHOOP connected. Return to the app and refresh.")
	}
}

func (s *server) handleAuthStatus() http.HandlerFunc {
	type statusResponse struct {
		Connected bool `json:"connected"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		connected, err := s.flow.Connected(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "token store unavailable")
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Connected: connected})
	}
}

func (s *server) handleHRV() http.HandlerFunc {
	type hrvResponse struct {
		Samples []recovery.Sample `json:"samples"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		start, end := recovery.Window(r.URL.Query().Get("days"), time.Now())

		accessToken, err := s.manager.EnsureAccessToken(r.Context())
		if err != nil {
			if errors.Is(err, tokens.ErrNotConnected) {
				writeError(w, http.StatusUnauthorized, "not_connected")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		samples, err := s.aggregator.Collect(r.Context(), accessToken, start, end)
		if err != nil {
			switch {
			case errors.Is(err, whoop.ErrUnauthorized):
				// A dead token would 401 forever; drop the stored credential
				// so the next attempt reports not_connected and forces
				// re-authorization.
				if delErr := s.manager.Invalidate(r.Context()); delErr != nil {
					log.Printf("Error invalidating token record: %v", delErr)
				}
				writeError(w, http.StatusUnauthorized, "not_connected")
			case errors.Is(err, whoop.ErrRateLimited):
				writeError(w, http.StatusTooManyRequests, "rate_limited")
			default:
				writeError(w, http.StatusInternalServerError, err.Error())
			}
			return
		}

		writeJSON(w, http.StatusOK, hrvResponse{Samples: samples})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
