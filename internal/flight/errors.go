package flight

import "fmt"

// AppError carries an HTTP status and machine-readable code up to the
// handler layer. Pipeline stages never produce one for malformed records;
// those degrade to safe defaults instead.
type AppError struct {
	Status  int
	Code    ErrorCode
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(status int, code ErrorCode, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}
