package common

// ErrorResponse is the envelope for transport-level errors (binding, auth,
// not found). HTTP 200 business failures use SuccessResponse instead.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}
