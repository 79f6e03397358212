// Package auth talks to the external identity service. It verifies
// credentials and nothing else: writing the returned user id into the
// local session store is the caller's job, so identity verification and
// session persistence stay decoupled.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Error is an identity service rejection (bad credentials, duplicate
// account, ...). The provider's message is surfaced verbatim.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type credentialsRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type sessionResponse struct {
	UserID       string `json:"user_id"`
	SessionToken string `json:"session_token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Gateway is an HTTP client for the identity service. It keeps the
// provider session token internally so Logout can invalidate the remote
// session without the caller ever seeing provider internals.
type Gateway struct {
	baseURL    string
	httpClient *http.Client

	mutex        sync.Mutex
	sessionToken string
}

func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates a new account and returns the new user id.
func (g *Gateway) Register(ctx context.Context, email, secret string) (string, error) {
	return g.authenticate(ctx, "/register", email, secret)
}

// Login verifies credentials and returns the user id.
func (g *Gateway) Login(ctx context.Context, email, secret string) (string, error) {
	return g.authenticate(ctx, "/login", email, secret)
}

func (g *Gateway) authenticate(ctx context.Context, path, email, secret string) (string, error) {
	reqBody, err := json.Marshal(credentialsRequest{
		Email:  email,
		Secret: secret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(reqBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Errorf("auth gateway: close response body: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", readError(resp)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode identity response: %w", err)
	}
	if session.UserID == "" {
		return "", &Error{Message: "identity service returned no user id"}
	}

	g.mutex.Lock()
	g.sessionToken = session.SessionToken
	g.mutex.Unlock()

	return session.UserID, nil
}

// Logout invalidates the remote session. The local session store is not
// touched here; the caller clears it.
func (g *Gateway) Logout(ctx context.Context) error {
	g.mutex.Lock()
	token := g.sessionToken
	g.mutex.Unlock()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, g.baseURL+"/logout", nil,
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Errorf("auth gateway: close response body: %s", err)
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return readError(resp)
	}

	g.mutex.Lock()
	g.sessionToken = ""
	g.mutex.Unlock()

	return nil
}

func readError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return &Error{Message: resp.Status}
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &Error{Message: errResp.Error}
	}
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return &Error{Message: msg}
	}
	return &Error{Message: resp.Status}
}
