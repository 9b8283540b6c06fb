package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Transport handles low-level HTTP and authentication against Saras.
// Every call obtains a bearer token from the TokenManager first; a 401/403
// response invalidates that token so the next call re-authenticates.
type Transport struct {
	BaseURL       string
	Tokens        TokenManager
	HTTPClient    *http.Client
	RetryAttempts int
	RetryDelay    time.Duration

	log *zap.Logger
}

func NewTransport(cfg Config, tokens TokenManager, log *zap.Logger) *Transport {
	return &Transport{
		BaseURL:       cfg.BaseURL,
		Tokens:        tokens,
		HTTPClient:    &http.Client{Timeout: cfg.Timeout},
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		log:           log,
	}
}

// buildURL joins the base URL, path and query params.
func (t *Transport) buildURL(path string, query map[string]string) string {
	u, _ := url.Parse(t.BaseURL + path)
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Get sends an authenticated GET request. GETs are not retried.
func (t *Transport) Get(ctx context.Context, path string, query map[string]string) (map[string]any, error) {
	return t.send(ctx, http.MethodGet, path, nil, query, nil, false)
}

// Post sends an authenticated JSON POST. Mutating calls are retried on
// connection failure and 5xx, never on 4xx.
func (t *Transport) Post(ctx context.Context, path string, data any, headers map[string]string) (map[string]any, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	return t.send(ctx, http.MethodPost, path, body, nil, headers, true)
}

func (t *Transport) send(ctx context.Context, method, path string, body []byte, query, headers map[string]string, retry bool) (map[string]any, error) {
	attempts := 1
	if retry {
		attempts += t.RetryAttempts
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(t.RetryDelay):
			}
		}

		result, retryable, err := t.sendOnce(ctx, method, path, body, query, headers)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (t *Transport) sendOnce(ctx context.Context, method, path string, body []byte, query, headers map[string]string) (map[string]any, bool, error) {
	token, err := t.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, false, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.buildURL(path, query), reader)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, false, errTimeout(path)
		}
		t.log.Error("saras: connection failed",
			zap.String("endpoint", path),
			zap.Error(err),
		)
		return nil, true, errUnavailable(path, "Connection failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errUnavailable(path, "Failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := t.mapErrorResponse(ctx, resp.StatusCode, raw, path)
		return nil, resp.StatusCode >= 500, apiErr
	}

	result := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, false, errUnavailable(path, "Invalid JSON in response", err)
		}
	}
	return result, false, nil
}

// mapErrorResponse converts a non-2xx response into the error taxonomy.
func (t *Transport) mapErrorResponse(ctx context.Context, status int, raw []byte, endpoint string) *APIError {
	payload := map[string]any{}
	_ = json.Unmarshal(raw, &payload)

	message := stringField(payload, "message", "error")
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}

	t.log.Error("saras: error response",
		zap.String("endpoint", endpoint),
		zap.Int("status", status),
		zap.String("message", message),
	)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		t.Tokens.Invalidate(ctx)
		return errAuthFailed(message)
	case status == http.StatusUnprocessableEntity:
		return errValidation(endpoint, message, fieldErrors(payload))
	case status >= 500:
		return errUnavailable(endpoint, message, nil)
	default:
		return &APIError{Kind: KindUnavailable, Endpoint: endpoint, StatusCode: status, Message: message}
	}
}

// FileAttachment is one file to send as multipart form content.
type FileAttachment struct {
	Name    string
	Content io.Reader
}

// PostMultipart uploads files as a multipart form under the 'files[]' field
// name Saras expects. The whole body is buffered before sending.
func (t *Transport) PostMultipart(ctx context.Context, path string, query map[string]string, files []FileAttachment) (map[string]any, error) {
	token, err := t.Tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := writer.CreateFormFile("files[]", file.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("copy file %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.buildURL(path, query), &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errTimeout(path)
		}
		return nil, errUnavailable(path, "Connection failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errUnavailable(path, "Failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, t.mapErrorResponse(ctx, resp.StatusCode, raw, path)
	}

	result := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, errUnavailable(path, "Invalid JSON in response", err)
		}
	}
	return result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// fieldErrors extracts the 422 'errors' object into field -> messages.
func fieldErrors(payload map[string]any) map[string][]string {
	rawErrors, ok := payload["errors"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(rawErrors))
	for field, value := range rawErrors {
		switch v := value.(type) {
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					out[field] = append(out[field], s)
				}
			}
		case string:
			out[field] = append(out[field], v)
		}
	}
	return out
}
