package protocol

import (
	"errors"
	"fmt"
)

// Error kinds. Every parse failure matches ErrParse and every device-reported
// failure matches ErrRejected when tested with errors.Is.
var (
	ErrParse    = errors.New("parse error")
	ErrRejected = errors.New("command not recognized")
)

// Parse failures.
var (
	ErrShortMessage  = fmt.Errorf("%w: message too short", ErrParse)
	ErrTagMismatch   = fmt.Errorf("%w: response tag does not match request", ErrParse)
	ErrInvalidText   = fmt.Errorf("%w: invalid UTF-8 text", ErrParse)
	ErrInvalidLength = fmt.Errorf("%w: invalid data length", ErrParse)
)

// ProtocolError represents a non-success status returned by the device.
type ProtocolError struct {
	// Operation is the command that failed
	Operation string

	// StatusCode is the status byte from the response
	StatusCode byte

	// StatusInfo is the additional status byte from the response
	StatusInfo byte
}

func (e *ProtocolError) Error() string {
	statusName := getStatusName(e.StatusCode)
	if e.Operation == "" {
		return fmt.Sprintf("%s: %s (0x%02X, info 0x%02X)", ErrRejected, statusName, e.StatusCode, e.StatusInfo)
	}
	return fmt.Sprintf("%s failed: %s: %s (0x%02X, info 0x%02X)",
		e.Operation, ErrRejected, statusName, e.StatusCode, e.StatusInfo)
}

// Is reports whether target is ErrRejected.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrRejected
}

// IsProtocolError returns true if the error is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// getStatusName returns a human-readable name for a status code.
func getStatusName(code byte) string {
	switch code {
	case StatusSuccess:
		return "success"
	case StatusParseError:
		return "parse error"
	case StatusExecutionError:
		return "execution error"
	default:
		return fmt.Sprintf("unknown status code 0x%02X", code)
	}
}
