// Package api contains the HTTP clients for the LingoPal backend: the main
// API client (login, profile, health) and the isolated refresh protocol
// client. Keeping refresh on its own http.Client avoids interceptor
// recursion when the main client reacts to a 401 by refreshing.
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

// RefreshClient exchanges a refresh token for a new token pair. It carries
// no retry logic; retry policy, if any, belongs to the caller.
type RefreshClient struct {
	baseURL  string
	http     *http.Client
	deviceID string
	locale   string
	log      logging.Logger
}

// NewRefreshClient builds the isolated refresh client. deviceID and locale
// are attached to every request as Device-Id and Accept-Language.
func NewRefreshClient(baseURL string, timeout time.Duration, deviceID, locale string, log logging.Logger) *RefreshClient {
	return &RefreshClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		deviceID: deviceID,
		locale:   locale,
		log:      log,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Refresh posts the refresh token to the backend and returns the new pair.
// A non-2xx status, a transport error, or a response missing either token
// is a failure.
func (c *RefreshClient) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", "", fmt.Errorf("%w: empty refresh token", common.ErrRefreshRejected)
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh-token", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.DeviceIDHeaderName, c.deviceID)
	req.Header.Set("Accept-Language", c.locale)
	if id, err := common.MakeRandHexString(8); err == nil {
		req.Header.Set(common.RequestIDHeaderName, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		c.log.Warn(ctx, "refresh rejected", "status", resp.StatusCode)
		return "", "", fmt.Errorf("%w: %s: %s", common.ErrRefreshRejected, resp.Status, string(b))
	}

	var out refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("%w: %v", common.ErrInvalidRefreshResponse, err)
	}
	if out.Token == "" || out.RefreshToken == "" {
		return "", "", common.ErrInvalidRefreshResponse
	}

	return out.Token, out.RefreshToken, nil
}
