package engine

import "fmt"

// ErrorCode classifies engine failures by how the cycle recovers from them.
type ErrorCode string

const (
	// Per-symbol, recoverable: skip the symbol this cycle.
	ErrCodeDataInsufficient ErrorCode = "DATA_INSUFFICIENT"
	ErrCodeAmbiguousPattern ErrorCode = "AMBIGUOUS_PATTERN"
	ErrCodeConfiguration    ErrorCode = "CONFIGURATION"

	// Per-cycle, degraded: proceed without the optimized allocation.
	ErrCodeOptimizationFailed ErrorCode = "OPTIMIZATION_FAILED"

	// Fatal for the cycle: no price history could be retrieved at all.
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
)

// EngineError carries the classification plus the symbol it applies to, so
// the cycle can decide between skip, degrade and abort.
type EngineError struct {
	Code       ErrorCode
	Symbol     string
	Message    string
	Underlying error
}

func (e *EngineError) Error() string {
	prefix := string(e.Code)
	if e.Symbol != "" {
		prefix = fmt.Sprintf("%s[%s]", e.Code, e.Symbol)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Fatal reports whether the error aborts the whole cycle.
func (e *EngineError) Fatal() bool {
	return e.Code == ErrCodeProviderUnavailable
}

func newError(code ErrorCode, symbol, message string, underlying error) *EngineError {
	return &EngineError{Code: code, Symbol: symbol, Message: message, Underlying: underlying}
}
