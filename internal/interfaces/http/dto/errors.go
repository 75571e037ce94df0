package dto

import "net/http"

// Error codes carried in the response envelope. Domain errors keep their own
// code; the HTTP layer only adds the transport-level ones.
const (
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeRequestTooBig = "REQUEST_TOO_LARGE"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeTokenExpired  = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "INVALID_TOKEN"
	ErrCodeTokenRevoked  = "TOKEN_REVOKED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeConflict      = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidState  = "INVALID_STATE"
	ErrCodeUploadFailed  = "UPLOAD_FAILED"
	ErrCodeLedgerWrite   = "LEDGER_WRITE_FAILED"
	ErrCodeHistoryWrite  = "HISTORY_WRITE_FAILED"
	ErrCodeGateway       = "GATEWAY_ERROR"
	ErrCodeNotSettled    = "PAYMENT_NOT_SETTLED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:    http.StatusBadRequest,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeValidation:    http.StatusBadRequest,
	ErrCodeRequestTooBig: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	// Payment pipeline
	ErrCodeUploadFailed: http.StatusBadGateway,
	ErrCodeLedgerWrite:  http.StatusInternalServerError,
	ErrCodeHistoryWrite: http.StatusInternalServerError,
	ErrCodeGateway:      http.StatusBadGateway,
	ErrCodeNotSettled:   http.StatusPaymentRequired,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
