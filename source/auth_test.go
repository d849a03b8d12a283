package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStaticAuthorizer(t *testing.T) {
	granted, err := StaticAuthorizer{Granted: true}.RequestAccess(context.Background())
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = StaticAuthorizer{}.RequestAccess(context.Background())
	require.NoError(t, err)
	require.False(t, granted)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = StaticAuthorizer{Granted: true}.RequestAccess(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTokenAuthorizer(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	valid := TokenInfo{
		AccessToken: "abc",
		ExpiresAt:   now.Add(time.Hour),
		UserID:      "u1",
		Scope:       "activity heartrate profile",
	}

	cases := []struct {
		name    string
		token   *TokenInfo
		granted bool
		err     error
	}{
		{"valid", &valid, true, nil},
		{"missing token", nil, false, ErrNotAuthorized},
		{"expired", &TokenInfo{AccessToken: "abc", ExpiresAt: now.Add(-time.Minute), Scope: "heartrate"}, false, ErrNotAuthorized},
		{"no scope", &TokenInfo{AccessToken: "abc", ExpiresAt: now.Add(time.Hour), Scope: "activity"}, false, ErrNotAuthorized},
		{"empty token", &TokenInfo{ExpiresAt: now.Add(time.Hour), Scope: "heartrate"}, false, ErrNotAuthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := t.TempDir()
			if c.token != nil {
				require.NoError(t, SaveTokenInfo(dir, *c.token))
			}
			a := TokenAuthorizer{DataDir: dir, Now: func() time.Time { return now }}
			granted, err := a.RequestAccess(context.Background())
			require.Equal(t, c.granted, granted)
			if c.err != nil {
				require.ErrorIs(t, err, c.err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestTokenAuthorizerNoDataDir(t *testing.T) {
	a := TokenAuthorizer{DataDir: filepath.Join(t.TempDir(), "absent")}
	granted, err := a.RequestAccess(context.Background())
	require.False(t, granted)
	require.ErrorIs(t, err, ErrNotAvailable)
}

func TestTokenInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := TokenInfo{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().UTC().Truncate(time.Second), Scope: "heartrate"}
	require.NoError(t, SaveTokenInfo(dir, want))

	got, err := LoadTokenInfo(dir)
	require.NoError(t, err)
	require.Equal(t, want.AccessToken, got.AccessToken)
	require.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
	require.True(t, got.HasScope(HeartRateScope))
	require.False(t, got.HasScope("heart"))
}
