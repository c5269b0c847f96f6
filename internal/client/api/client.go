package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lingopal/lingopal-client/internal/common"
	"github.com/lingopal/lingopal-client/internal/logging"
)

// TokenSource supplies the current access token for outbound requests.
// The credential store satisfies it.
type TokenSource interface {
	AccessToken() string
}

// Client is the main REST API client for the LingoPal backend.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// withRequestID attaches a fresh correlation id. Failures to generate one
// leave the request untagged rather than failing it.
func withRequestID(req *http.Request) {
	if id, err := common.MakeRandHexString(8); err == nil {
		req.Header.Set(common.RequestIDHeaderName, id)
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the backend's answer to a credential login.
type LoginResult struct {
	Token         string `json:"token"`
	RefreshToken  string `json:"refreshToken"`
	Authenticated bool   `json:"authenticated"`
}

// Login authenticates with email/password and returns the issued token
// pair. The password slice is not retained.
func (c *Client) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: string(password)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	withRequestID(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, common.ErrorUnauthorized
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: %s", common.ErrorInternal, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed: %s: %s", resp.Status, string(b))
	}

	var out LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &out, nil
}

// Profile fetches the canonical user profile by id, authorized with the
// current access token.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+userID, nil)
	if err != nil {
		return nil, err
	}
	if tok := c.tokens.AccessToken(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+tok)
	}
	withRequestID(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, common.ErrorUnauthorized
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, common.ErrorNotFound
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: %s", common.ErrorInternal, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("profile fetch failed: %s: %s", resp.Status, string(b))
	}

	var payload profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return payload.normalize(), nil
}

// Ping probes backend reachability.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", common.ErrorUnavailable, resp.Status)
	}
	return nil
}
