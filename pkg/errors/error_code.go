package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidType          ErrorCode = 103
	ErrCodeInvalidPeriod        ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105
	ErrCodeInvalidVersion       ErrorCode = 106

	// Data errors (200-299)
	ErrCodeDataNotLoaded         ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 203
	ErrCodeUnorderedData         ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound    ErrorCode = 300
	ErrCodeIndicatorCalculation ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeUnregisteredStrategy  ErrorCode = 400
	ErrCodeStrategyConfigError   ErrorCode = 401
	ErrCodeStrategyRuntimeError  ErrorCode = 402
	ErrCodeVersionMismatch       ErrorCode = 403
	ErrCodeNoStrategiesSelected  ErrorCode = 404
	ErrCodeRegistryClosed        ErrorCode = 405

	// Backtest errors (600-699)
	ErrCodeBacktestNotInitialized ErrorCode = 600
	ErrCodeBacktestConfigError    ErrorCode = 601
	ErrCodeBacktestNoStrategy     ErrorCode = 602
	ErrCodeBacktestNoDatasource   ErrorCode = 603
	ErrCodeBacktestCancelled      ErrorCode = 604

	// Result export errors (700-799)
	ErrCodeResultWriteFailed ErrorCode = 700
)
