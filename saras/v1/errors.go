package v1

import (
	"errors"
	"fmt"
)

// ErrorKind classifies Saras API failures into a fixed taxonomy.
type ErrorKind string

const (
	KindUnavailable  ErrorKind = "saras_unavailable"
	KindAuthFailed   ErrorKind = "saras_auth_failed"
	KindValidation   ErrorKind = "saras_validation_error"
	KindTimeout      ErrorKind = "saras_timeout"
	KindUploadFailed ErrorKind = "upload_failed"
)

// APIError is the only error type the Saras client raises for expected
// failure modes. Callers branch on Kind, not on the message.
type APIError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Message    string
	Fields     map[string][]string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("saras %s %s (status %d): %s", e.Kind, e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("saras %s %s: %s", e.Kind, e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func errUnavailable(endpoint, message string, cause error) *APIError {
	if message == "" {
		message = "Saras API is unavailable"
	}
	return &APIError{Kind: KindUnavailable, Endpoint: endpoint, Message: message, Err: cause}
}

func errAuthFailed(message string) *APIError {
	if message == "" {
		message = "Saras authentication failed"
	}
	return &APIError{Kind: KindAuthFailed, Endpoint: "/users/userLogin", Message: message}
}

func errValidation(endpoint, message string, fields map[string][]string) *APIError {
	return &APIError{Kind: KindValidation, Endpoint: endpoint, Message: message, Fields: fields}
}

func errTimeout(endpoint string) *APIError {
	return &APIError{Kind: KindTimeout, Endpoint: endpoint, Message: "Saras API request timed out"}
}

// ErrUploadFailed marks a file upload that yielded no remote file id.
func ErrUploadFailed(message string) *APIError {
	if message == "" {
		message = "File upload returned no file ID"
	}
	return &APIError{Kind: KindUploadFailed, Endpoint: "/process/knowledges/createStorage", Message: message}
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Kind == kind
}

func IsUnavailable(err error) bool  { return isKind(err, KindUnavailable) }
func IsAuthFailed(err error) bool   { return isKind(err, KindAuthFailed) }
func IsValidation(err error) bool   { return isKind(err, KindValidation) }
func IsTimeout(err error) bool      { return isKind(err, KindTimeout) }
func IsUploadFailed(err error) bool { return isKind(err, KindUploadFailed) }
