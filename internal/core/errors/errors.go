package errors

const (
	HttpInternalError     = "internal_error"
	HttpInvalidQueryError = "invalid_query"
)

// StatusError is the value of ErrorResponse.Status.
const StatusError = "error"

// ErrorResponse is the error response body for query endpoints.
type ErrorResponse struct {
	Status    string      `json:"status"`
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// NewErrorResponse builds an ErrorResponse with Status set.
func NewErrorResponse(errorType, message string, details interface{}) ErrorResponse {
	return ErrorResponse{
		Status:    StatusError,
		ErrorType: errorType,
		Message:   message,
		Details:   details,
	}
}
