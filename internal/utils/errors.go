package utils

import "net/http"

// AppError is an error with an HTTP status attached. Handlers map it
// directly to a response; anything else becomes a 500.
type AppError struct {
	StatusCode int
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewBadRequestError(message string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Message: message}
}

// NewUnsupportedFormatError marks an upload whose format we cannot
// extract text from. Distinct from a generic bad request so clients can
// tell "wrong file type" apart from "malformed request".
func NewUnsupportedFormatError(message string) *AppError {
	return &AppError{StatusCode: http.StatusUnsupportedMediaType, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Message: message}
}

// IsNotFound reports whether err is an AppError carrying a 404.
func IsNotFound(err error) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.StatusCode == http.StatusNotFound
}
