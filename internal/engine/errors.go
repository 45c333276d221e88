package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while operating a world.
//
// RuntimeError includes structured fields for diagnostics:
//   - Code: error category
//   - Processor: affected processor, when there is one
//   - Details: additional context such as the kind or face
type RuntimeError struct {
	Code      RuntimeErrorCode
	Message   string
	Processor string
	Details   map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownProcessor indicates a command named a missing processor.
	ErrCodeUnknownProcessor RuntimeErrorCode = "UNKNOWN_PROCESSOR"

	// ErrCodeUnknownKind indicates no machine kind or handler by that name.
	ErrCodeUnknownKind RuntimeErrorCode = "UNKNOWN_KIND"

	// ErrCodeReloadWhileRunning indicates Reload was called during Run.
	ErrCodeReloadWhileRunning RuntimeErrorCode = "RELOAD_WHILE_RUNNING"

	// ErrCodeInvalidLink indicates a link to self, a bad face, or an
	// occupied face.
	ErrCodeInvalidLink RuntimeErrorCode = "INVALID_LINK"

	// ErrCodeDuplicateProcessor indicates an insert reused an existing id.
	ErrCodeDuplicateProcessor RuntimeErrorCode = "DUPLICATE_PROCESSOR"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Processor != "" {
		return fmt.Sprintf("%s: %s (processor=%s)", e.Code, e.Message, e.Processor)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the RuntimeError code in err's chain, or "".
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func unknownProcessor(id string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeUnknownProcessor,
		Message:   "no such processor",
		Processor: id,
	}
}

func unknownKind(id, kind string) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeUnknownKind,
		Message:   fmt.Sprintf("no machine kind %q", kind),
		Processor: id,
		Details:   map[string]string{"kind": kind},
	}
}

func invalidLink(id string, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeInvalidLink,
		Message:   fmt.Sprintf(format, args...),
		Processor: id,
	}
}
