package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotAvailable means no health data store exists on this host.
	ErrNotAvailable = errors.New("health data is not available")
	// ErrNotAuthorized means heart rate read access was not granted.
	ErrNotAuthorized = errors.New("heart rate read access not authorized")
)

// HeartRateScope must appear in a token's scope for read access.
const HeartRateScope = "heartrate"

const tokenFileName = "token_info.json"

// StaticAuthorizer answers every request with a fixed decision.
type StaticAuthorizer struct {
	Granted bool
}

func (a StaticAuthorizer) RequestAccess(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.Granted, nil
}

// TokenInfo stores token data with expiry time
type TokenInfo struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Scope        string    `json:"scope"`
}

// HasScope reports whether scope is one of the space separated scopes granted.
func (t TokenInfo) HasScope(scope string) bool {
	for _, s := range strings.Fields(t.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// TokenAuthorizer grants access when DataDir holds an unexpired token with the
// heart rate scope.
type TokenAuthorizer struct {
	DataDir string
	Now     func() time.Time
}

func (a TokenAuthorizer) RequestAccess(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if fi, err := os.Stat(a.DataDir); err != nil || !fi.IsDir() {
		return false, fmt.Errorf("%w: data directory %s", ErrNotAvailable, a.DataDir)
	}

	info, err := LoadTokenInfo(a.DataDir)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrNotAuthorized, err)
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	if info.AccessToken == "" || now().After(info.ExpiresAt) {
		return false, fmt.Errorf("%w: token expired", ErrNotAuthorized)
	}
	if !info.HasScope(HeartRateScope) {
		return false, fmt.Errorf("%w: missing %s scope", ErrNotAuthorized, HeartRateScope)
	}
	return true, nil
}

// LoadTokenInfo loads token information from dir.
func LoadTokenInfo(dir string) (TokenInfo, error) {
	tokenFile := filepath.Join(dir, tokenFileName)
	if _, err := os.Stat(tokenFile); os.IsNotExist(err) {
		return TokenInfo{}, fmt.Errorf("token file does not exist")
	}

	tokenData, err := os.ReadFile(tokenFile)
	if err != nil {
		return TokenInfo{}, err
	}

	var info TokenInfo
	if err := json.Unmarshal(tokenData, &info); err != nil {
		return TokenInfo{}, fmt.Errorf("failed to parse token file: %w", err)
	}
	return info, nil
}

// SaveTokenInfo writes info to dir, readable by the owner only.
func SaveTokenInfo(dir string, info TokenInfo) error {
	tokenData, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, tokenFileName), tokenData, 0600)
}
