package membertools

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TokenStore persists the OAuth2 refresh and access tokens between runs.
// The token endpoint issues rolling refresh tokens, so every refresh rewrites
// the file.
type TokenStore struct {
	path string

	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// LoadTokens reads the token file. A missing file or a file without a refresh
// token is fatal: the operator must run the one-time auth flow first.
func LoadTokens(path string) (*TokenStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("tokens file not found: %s\n\nTo get your initial tokens, run the one-time auth flow (see README) or create the file with:\n  {\"refresh_token\": \"your_refresh_token_here\"}", path)
		}
		return nil, fmt.Errorf("failed to read tokens file: %w", err)
	}

	ts := &TokenStore{path: path}
	if err := json.Unmarshal(data, ts); err != nil {
		return nil, fmt.Errorf("failed to parse tokens file %s: %w", path, err)
	}
	if ts.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh_token found in tokens file %s", path)
	}
	return ts, nil
}

// Save atomically rewrites the token file with restrictive permissions.
func (t *TokenStore) Save() error {
	t.UpdatedAt = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create tokens directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("failed to create temp tokens file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set tokens file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write tokens file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close tokens file: %w", err)
	}

	if err := os.Rename(tmpName, t.path); err != nil {
		return fmt.Errorf("failed to replace tokens file: %w", err)
	}
	return nil
}

// Path returns the backing file path.
func (t *TokenStore) Path() string {
	return t.path
}
