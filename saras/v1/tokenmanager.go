package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// expiryBuffer is subtracted from the upstream expiry so a token is never
// handed out that could expire mid-request.
const expiryBuffer = 60 * time.Second

// TokenManager supplies a valid bearer token for live-mode requests.
type TokenManager interface {
	AccessToken(ctx context.Context) (string, error)
	// Invalidate drops the current credential so the next AccessToken call
	// forces re-authentication.
	Invalidate(ctx context.Context)
}

// CachedTokenManager authenticates with a service account and caches the
// resulting token until shortly before expiry.
type CachedTokenManager struct {
	baseURL      string
	clientID     string
	clientSecret string
	cacheKey     string
	cache        TokenCache
	httpClient   *http.Client
	log          *zap.Logger

	now func() time.Time
}

func NewCachedTokenManager(cfg Config, cache TokenCache, log *zap.Logger) *CachedTokenManager {
	return &CachedTokenManager{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		cacheKey:     cfg.TokenCacheKey,
		cache:        cache,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		log:          log,
		now:          time.Now,
	}
}

func (m *CachedTokenManager) AccessToken(ctx context.Context) (string, error) {
	if cached, ok := m.cache.Get(m.cacheKey); ok {
		if m.now().Before(cached.ExpiresAt) {
			return cached.AccessToken, nil
		}
	}
	return m.fetchNewToken(ctx)
}

func (m *CachedTokenManager) Invalidate(_ context.Context) {
	m.cache.Delete(m.cacheKey)
}

type loginRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	Token        string `json:"token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresInAlt int64  `json:"expiresIn"`
	Message      string `json:"message"`
}

func (m *CachedTokenManager) fetchNewToken(ctx context.Context) (string, error) {
	requestID := uuid.NewString()

	m.log.Info("saras: fetching new access token",
		zap.String("request_id", requestID),
		zap.String("endpoint", "/users/userLogin"),
	)

	body, err := json.Marshal(loginRequest{ClientID: m.clientID, ClientSecret: m.clientSecret})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/users/userLogin", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.log.Error("saras: connection failed during authentication",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return "", errUnavailable("/users/userLogin", "Connection failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var login loginResponse
	_ = json.Unmarshal(raw, &login)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.log.Error("saras: authentication failed",
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode),
		)
		message := login.Message
		if message == "" {
			message = fmt.Sprintf("Authentication failed with status %d", resp.StatusCode)
		}
		return "", errAuthFailed(message)
	}

	// Saras has shipped both spellings of the token and expiry fields.
	accessToken := login.AccessToken
	if accessToken == "" {
		accessToken = login.Token
	}
	expiresIn := login.ExpiresIn
	if expiresIn == 0 {
		expiresIn = login.ExpiresInAlt
	}
	if expiresIn == 0 {
		expiresIn = 3600
	}

	if accessToken == "" {
		m.log.Error("saras: no access token in response", zap.String("request_id", requestID))
		return "", errAuthFailed("No access token in response")
	}

	expiresAt := m.now().Add(time.Duration(expiresIn)*time.Second - expiryBuffer)
	ttl := time.Duration(expiresIn)*time.Second - expiryBuffer
	if ttl < expiryBuffer {
		ttl = expiryBuffer
	}

	m.cache.Put(m.cacheKey, CachedToken{AccessToken: accessToken, ExpiresAt: expiresAt}, ttl)

	m.log.Info("saras: token obtained",
		zap.String("request_id", requestID),
		zap.Int64("expires_in_seconds", expiresIn),
	)

	return accessToken, nil
}

// Login authenticates a user's own credentials against Saras and returns
// the token with its buffered absolute expiry. The web login flow uses this
// to populate the per-user credential columns; nothing here caches.
func Login(ctx context.Context, cfg Config, username, password string) (TokenRecord, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return TokenRecord{}, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL+"/users/userLogin", bytes.NewReader(body))
	if err != nil {
		return TokenRecord{}, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	httpClient := &http.Client{Timeout: cfg.Timeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return TokenRecord{}, errUnavailable("/users/userLogin", "Connection failed", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var login loginResponse
	_ = json.Unmarshal(raw, &login)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := login.Message
		if message == "" {
			message = fmt.Sprintf("Authentication failed with status %d", resp.StatusCode)
		}
		return TokenRecord{}, errAuthFailed(message)
	}

	accessToken := login.AccessToken
	if accessToken == "" {
		accessToken = login.Token
	}
	if accessToken == "" {
		return TokenRecord{}, errAuthFailed("No access token in response")
	}
	expiresIn := login.ExpiresIn
	if expiresIn == 0 {
		expiresIn = login.ExpiresInAlt
	}
	if expiresIn == 0 {
		expiresIn = 3600
	}

	return TokenRecord{
		AccessToken: accessToken,
		ExpiresAt:   time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}

// TokenRecord is a per-user stored Saras credential.
type TokenRecord struct {
	AccessToken string
	ExpiresAt   time.Time
}

// UserTokenSource reads and clears the credential stored on the
// authenticated user. The token itself is only ever written by the login
// flow, never refreshed here.
type UserTokenSource interface {
	SarasToken(ctx context.Context) (TokenRecord, error)
	ClearSarasToken(ctx context.Context) error
}

// UserTokenManager scopes Saras access to the authenticated user instead of
// a shared service account. The trade-off: an expired token means the user
// has to log in again rather than the server silently re-authenticating.
type UserTokenManager struct {
	source UserTokenSource
	now    func() time.Time
}

func NewUserTokenManager(source UserTokenSource) *UserTokenManager {
	return &UserTokenManager{source: source, now: time.Now}
}

func (m *UserTokenManager) AccessToken(ctx context.Context) (string, error) {
	record, err := m.source.SarasToken(ctx)
	if err != nil {
		return "", fmt.Errorf("read user token: %w", err)
	}
	if record.AccessToken == "" {
		return "", errAuthFailed("No Saras session. Please log in again.")
	}
	if !m.now().Before(record.ExpiresAt.Add(-expiryBuffer)) {
		return "", errAuthFailed("Saras session expired. Please log in again.")
	}
	return record.AccessToken, nil
}

// Invalidate clears the stored credential of the user on the request
// context. The context must be the one the authenticated request carries,
// otherwise there is no user to clear.
func (m *UserTokenManager) Invalidate(ctx context.Context) {
	_ = m.source.ClearSarasToken(ctx)
}
