package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLoginServer(t *testing.T, calls *int32, respond func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/userLogin", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		atomic.AddInt32(calls, 1)
		respond(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestTokenManager(baseURL string) *CachedTokenManager {
	cfg := Config{
		BaseURL:       baseURL,
		ClientID:      "client-1",
		ClientSecret:  "secret-1",
		TokenCacheKey: "saras:token",
		Timeout:       5 * time.Second,
	}
	return NewCachedTokenManager(cfg, NewMemoryCache(), zap.NewNop())
}

func TestCachedTokenManagerCachesToken(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "client-1", body["client_id"])
		assert.Equal(t, "secret-1", body["client_secret"])
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})

	manager := newTestTokenManager(server.URL)
	manager.now = func() time.Time { return time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC) }

	first, err := manager.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first)

	second, err := manager.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", second)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "the cached token is reused within its TTL")
}

func TestCachedTokenManagerRefreshesExpiredToken(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		token := "tok-1"
		if atomic.LoadInt32(&calls) > 1 {
			token = "tok-2"
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": token, "expires_in": 3600})
	})

	manager := newTestTokenManager(server.URL)
	start := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return start }

	first, err := manager.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first)

	// 3600s minus the 60s buffer: at +3540s the token is already stale.
	manager.now = func() time.Time { return start.Add(3540 * time.Second) }

	second, err := manager.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedTokenManagerAlternateFieldSpellings(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "tok-alt", "expiresIn": 7200})
	})

	manager := newTestTokenManager(server.URL)
	token, err := manager.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-alt", token)
}

func TestCachedTokenManagerAuthFailure(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Invalid client credentials"})
	})

	manager := newTestTokenManager(server.URL)
	_, err := manager.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthFailed(err))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid client credentials", apiErr.Message)
}

func TestCachedTokenManagerMissingToken(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"expires_in": 3600})
	})

	manager := newTestTokenManager(server.URL)
	_, err := manager.AccessToken(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthFailed(err))
}

func TestCachedTokenManagerInvalidate(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires_in": 3600})
	})

	manager := newTestTokenManager(server.URL)

	_, err := manager.AccessToken(context.Background())
	require.NoError(t, err)

	manager.Invalidate(context.Background())

	_, err = manager.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "invalidation forces re-authentication")
}

func TestLoginWithUserCredentials(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jdelacruz", body["username"])
		assert.Equal(t, "s3cret", body["password"])
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "user-tok", "expires_in": 7200})
	})

	cfg := Config{BaseURL: server.URL, Timeout: 5 * time.Second}
	record, err := Login(context.Background(), cfg, "jdelacruz", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "user-tok", record.AccessToken)
	assert.WithinDuration(t, time.Now().Add(7200*time.Second), record.ExpiresAt, 5*time.Second)
}

func TestLoginRejected(t *testing.T) {
	var calls int32
	server := newLoginServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Wrong username or password"})
	})

	cfg := Config{BaseURL: server.URL, Timeout: 5 * time.Second}
	_, err := Login(context.Background(), cfg, "jdelacruz", "wrong")
	require.Error(t, err)
	assert.True(t, IsAuthFailed(err))
}

type ctxMarker struct{}

type fakeTokenSource struct {
	record     TokenRecord
	err        error
	cleared    bool
	clearedCtx context.Context
}

func (s *fakeTokenSource) SarasToken(ctx context.Context) (TokenRecord, error) {
	return s.record, s.err
}

func (s *fakeTokenSource) ClearSarasToken(ctx context.Context) error {
	s.cleared = true
	s.clearedCtx = ctx
	return nil
}

func TestUserTokenManager(t *testing.T) {
	now := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		record    TokenRecord
		wantToken string
		wantAuth  bool
	}{
		{
			name:      "valid token",
			record:    TokenRecord{AccessToken: "user-tok", ExpiresAt: now.Add(2 * time.Hour)},
			wantToken: "user-tok",
		},
		{
			name:     "no token stored",
			record:   TokenRecord{},
			wantAuth: true,
		},
		{
			name:     "expired token",
			record:   TokenRecord{AccessToken: "user-tok", ExpiresAt: now.Add(-time.Minute)},
			wantAuth: true,
		},
		{
			name:     "token inside the expiry buffer",
			record:   TokenRecord{AccessToken: "user-tok", ExpiresAt: now.Add(30 * time.Second)},
			wantAuth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewUserTokenManager(&fakeTokenSource{record: tt.record})
			manager.now = func() time.Time { return now }

			token, err := manager.AccessToken(context.Background())
			if tt.wantAuth {
				require.Error(t, err)
				assert.True(t, IsAuthFailed(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestUserTokenManagerInvalidateClearsStoredToken(t *testing.T) {
	source := &fakeTokenSource{}
	manager := NewUserTokenManager(source)

	ctx := context.WithValue(context.Background(), ctxMarker{}, "request")
	manager.Invalidate(ctx)

	assert.True(t, source.cleared)
	assert.Equal(t, "request", source.clearedCtx.Value(ctxMarker{}),
		"invalidation must run on the request context so the user can be resolved")
}
