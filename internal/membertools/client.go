// Package membertools implements the OAuth2 credential provider and the
// snapshot fetcher for the Member Tools API. It retrieves raw payloads only;
// all interpretation happens in the sync engine.
package membertools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is an authenticated Member Tools API client. A cached access token
// is used until a request comes back 401, at which point the client refreshes
// once and retries once.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokenURL   string
	clientID   string
	tokens     *TokenStore
	userAgent  string
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	TokenURL string
	ClientID string
	Timeout  time.Duration
}

// NewClient creates an API client around a loaded token store.
func NewClient(tokens *TokenStore, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		tokenURL:   opts.TokenURL,
		clientID:   opts.ClientID,
		tokens:     tokens,
		userAgent:  "LDSTools/5.0.0 (Android)",
	}
}

// User is the current-user response; HomeUnits carries the unit scope for
// the sync.
type User struct {
	Username      string `json:"username"`
	PreferredName string `json:"preferredName"`
	HomeUnits     []int  `json:"homeUnits"`
}

// CurrentUser verifies the credential and returns the caller's identity and
// home unit scope.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/v5/user", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}
	return &user, nil
}

// FetchSnapshot calls the sync endpoint and returns the full external
// snapshot in one payload.
func (c *Client) FetchSnapshot(ctx context.Context, timezone string) (*Snapshot, error) {
	reqBody := map[string]any{
		"manual":    true,
		"automatic": true,
		"attempt":   1,
		"timeZone":  timezone,
	}
	body, err := c.do(ctx, http.MethodPost, "/api/v5/sync", reqBody)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse sync response: %w", err)
	}
	return &snap, nil
}

// do performs an authenticated request, refreshing the access token and
// retrying exactly once on 401.
func (c *Client) do(ctx context.Context, method, endpoint string, reqBody any) ([]byte, error) {
	if c.tokens.AccessToken == "" {
		if err := c.refreshAccessToken(ctx); err != nil {
			return nil, err
		}
	}

	resp, body, err := c.request(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.refreshAccessToken(ctx); err != nil {
			return nil, err
		}
		resp, body, err = c.request(ctx, method, endpoint, reqBody)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s returned %d: %s", method, endpoint, resp.StatusCode, truncate(string(body), 500))
	}
	return body, nil
}

func (c *Client) request(ctx context.Context, method, endpoint string, reqBody any) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.AccessToken)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}
	return resp, body, nil
}

// refreshAccessToken exchanges the durable refresh token for a new access
// token. The endpoint issues rolling refresh tokens, so a returned refresh
// token replaces the stored one and the file is rewritten. A rejected
// refresh is fatal to the run.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {c.tokens.RefreshToken},
		"client_id":     {c.clientID},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build token refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token refresh request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read token refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token refresh failed with status %d: %s\n\nYour refresh token may have expired. Please re-authenticate.", resp.StatusCode, truncate(string(body), 500))
	}

	var tokenResp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return fmt.Errorf("failed to parse token refresh response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return fmt.Errorf("token refresh response contained no access token")
	}

	c.tokens.AccessToken = tokenResp.AccessToken
	if tokenResp.RefreshToken != "" {
		c.tokens.RefreshToken = tokenResp.RefreshToken
	}
	if err := c.tokens.Save(); err != nil {
		return fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
