package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Business logic errors
	ErrCodeRegistrationFailed     = "registration_failed"
	ErrCodeLoginFailed            = "login_failed"
	ErrCodeQuestionNotFound       = "question_not_found"
	ErrCodeNoQuestionAvailable    = "no_question_available"
	ErrCodeSubmitFailed           = "submit_failed"
	ErrCodeMetricsFailed          = "metrics_failed"
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
