package events

import (
	"errors"
	"fmt"
)

// DecodeError marks a malformed envelope. It is terminal for that envelope.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "invalid event envelope: " + e.Reason
}

func decodeErrorf(format string, args ...any) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
