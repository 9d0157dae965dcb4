package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

// TokenSource holds the access/refresh token pair and performs the refresh
// exchange. A refresh failure is terminal for the session: the source
// marks itself expired and every later request fails fast with
// ErrUnauthenticated until new tokens are set.
type TokenSource struct {
	mu      sync.Mutex
	access  string
	refresh string
	expired bool

	onExpire func()
}

// NewTokenSource creates a token source from an initial token pair.
// onExpire, if non-nil, runs once when a refresh attempt fails.
func NewTokenSource(access, refresh string, onExpire func()) *TokenSource {
	return &TokenSource{access: access, refresh: refresh, onExpire: onExpire}
}

// Access returns the current access token, or ErrUnauthenticated when the
// session has expired.
func (ts *TokenSource) Access() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.expired {
		return "", ErrUnauthenticated
	}
	return ts.access, nil
}

// Set installs a fresh token pair, clearing any expired state.
func (ts *TokenSource) Set(access, refresh string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.access = access
	ts.refresh = refresh
	ts.expired = false
}

// refreshRequest exchanges the refresh token for a new access token. The
// lock is held across the HTTP call so concurrent 401s coalesce into one
// refresh; the losers observe the already-updated token. stale is the
// access token the caller saw fail, so a request that lost the race does
// not trigger a second refresh.
func (ts *TokenSource) refreshRequest(ctx context.Context, httpClient *http.Client, baseURL, stale string) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.expired {
		return "", ErrUnauthenticated
	}
	if ts.access != stale {
		return ts.access, nil
	}
	if ts.refresh == "" {
		ts.expire()
		return "", ErrUnauthenticated
	}

	body, err := json.Marshal(map[string]string{"refresh": ts.refresh})
	if err != nil {
		return "", fmt.Errorf("encode refresh request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/auth/refresh/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token refresh: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ts.expire()
		return "", ErrUnauthenticated
	}

	var payload struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Access == "" {
		ts.expire()
		return "", ErrUnauthenticated
	}

	ts.access = payload.Access
	if payload.Refresh != "" {
		ts.refresh = payload.Refresh
	}
	return ts.access, nil
}

// expire marks the session dead. Callers must hold ts.mu.
func (ts *TokenSource) expire() {
	if ts.expired {
		return
	}
	ts.expired = true
	if ts.onExpire != nil {
		ts.onExpire()
	}
}
