package common

// SuccessResponse is the envelope for successful API calls. Business
// failures from the Saras boundary reuse it with Success=false so clients
// always branch on the flag, not the HTTP status.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Success: true,
		Data:    data,
	}
}

// NewFailureResponse is an HTTP 200 business failure.
func NewFailureResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Success: false,
		Message: message,
		Data:    data,
	}
}
