package errorx

import (
	"fmt"
)

// GENERAL ERROR:

// GeneralError - General App Error.
type GeneralError struct {
	message string
	err     error
}

// NewGeneralError - GeneralError constructor.
func NewGeneralError(msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewGeneralErrorWrapper - GeneralError constructor for wrapper of another error.
func NewGeneralErrorWrapper(err error, msg string, args ...any) *GeneralError {
	return &GeneralError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (ge *GeneralError) Error() string {
	if ge.err != nil {
		return fmt.Sprintf("%s: %v", ge.message, ge.err)
	}

	return ge.message
}

// Unwrap - return the wrapped error, if any.
func (ge *GeneralError) Unwrap() error {
	return ge.err
}

// DATABASE ERROR

// DatabaseError - error raised by the catalog store and the pgx layer.
type DatabaseError struct {
	message string
	err     error
}

// NewDatabaseError - DatabaseError constructor.
func NewDatabaseError(msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: nil}
}

// NewDatabaseErrorWrapper - DatabaseError constructor for wrapper of another error.
func NewDatabaseErrorWrapper(err error, msg string, args ...any) *DatabaseError {
	return &DatabaseError{message: fmt.Sprintf(msg, args...), err: err}
}

// Error - return the error string.
func (de *DatabaseError) Error() string {
	if de.err != nil {
		return fmt.Sprintf("%s: %v", de.message, de.err)
	}

	return de.message
}

// Unwrap - return the wrapped error, if any.
func (de *DatabaseError) Unwrap() error {
	return de.err
}

// HTTP ERROR

// HttpError - non successful response received from a remote REST endpoint.
type HttpError struct {
	StatusCode int
	URL        string
	Body       string
}

// NewHttpError - HttpError constructor.
func NewHttpError(statusCode int, url string, body []byte) *HttpError {
	return &HttpError{StatusCode: statusCode, URL: url, Body: string(body)}
}

// Error - return the error string.
func (he *HttpError) Error() string {
	if he.Body == "" {
		return fmt.Sprintf("request to %s failed with status %d", he.URL, he.StatusCode)
	}

	return fmt.Sprintf("request to %s failed with status %d: %s", he.URL, he.StatusCode, he.Body)
}
