package messaging

import "fmt"

// ErrorCode - error code enum.
type ErrorCode int

const (
	ErrorPublisherClosed ErrorCode = iota
	ErrorInitializingClient
	ErrorSerializingJsonMessage
	ErrorClosingClient
	ErrorBatchTooLarge
)

var errorMessages = map[ErrorCode]string{
	ErrorPublisherClosed:        "error Publisher is already closed",
	ErrorInitializingClient:     "error initializing Broker Client",
	ErrorSerializingJsonMessage: "error serializing json message",
	ErrorClosingClient:          "error closing Broker Client",
	ErrorBatchTooLarge:          "error batch exceeds the configured batch size",
}

// Error - General messaging Error.
type Error struct {
	Code    ErrorCode
	message string
	err     error
}

// NewMessagingErrorCode - Error constructor given a predefined Error Code.
func NewMessagingErrorCode(code ErrorCode, err error) *Error {
	return &Error{Code: code, message: errorMessages[code], err: err}
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Unwrap() error {
	return e.err
}
