package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidTradeRequest  ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeMissingParameter     ErrorCode = 102
	ErrCodeInvalidParameter     ErrorCode = 103

	// Session start errors (200-299)
	ErrCodeSessionStartRejected ErrorCode = 200
	ErrCodeSessionStartFailed   ErrorCode = 201
	ErrCodeMissingSessionID     ErrorCode = 202
	ErrCodeRequestFailed        ErrorCode = 203
	ErrCodeResponseParseFailed  ErrorCode = 204
	ErrCodeVersionMismatch      ErrorCode = 205

	// Stream decode errors (300-399)
	ErrCodeDecodeFailed     ErrorCode = 300
	ErrCodeUnknownEventType ErrorCode = 301
	ErrCodeMissingField     ErrorCode = 302

	// Connection errors (400-499)
	ErrCodeConnectionFailed ErrorCode = 400
	ErrCodeConnectionClosed ErrorCode = 401
	ErrCodeStreamNotOpen    ErrorCode = 402
	ErrCodeStreamClosed     ErrorCode = 403

	// Lifecycle errors (500-599)
	ErrCodeInvalidTransition  ErrorCode = 500
	ErrCodeTerminalState      ErrorCode = 501
	ErrCodeSessionNotStarted  ErrorCode = 502
	ErrCodeSessionAlreadyUsed ErrorCode = 503
	ErrCodeTeardownRace       ErrorCode = 504

	// Config and report errors (600-699)
	ErrCodeConfigLoadFailed   ErrorCode = 600
	ErrCodeReportWriteFailed  ErrorCode = 601
	ErrCodeReportReadFailed   ErrorCode = 602
	ErrCodeRecorderInitFailed ErrorCode = 603
)
