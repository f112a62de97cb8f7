package services

// Machine-readable error codes carried alongside user-facing messages
// in API responses.
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeExpired          = "EXPIRED"
	CodeAttemptsExceeded = "ATTEMPTS_EXCEEDED"
	CodeTooSoon          = "TOO_SOON"
	CodeAuthRequired     = "AUTH_REQUIRED"
	CodeAccessDenied     = "ACCESS_DENIED"
	CodeServerError      = "SERVER_ERROR"
)
