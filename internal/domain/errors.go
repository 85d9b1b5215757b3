// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package domain defines the ports, entities and error taxonomy shared by
// all adapters and services.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common domain errors.
var (
	// ErrPermissionDenied indicates the privilege session is missing or expired.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrCommandNotFound indicates a required external tool is not on PATH.
	ErrCommandNotFound = errors.New("command not found")
	// ErrTimeout indicates an external process exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")
	// ErrEmptyInput indicates a batch action received no items.
	ErrEmptyInput = errors.New("no items specified")
	// ErrUnknownFontSet indicates the requested font set is not in the catalog.
	ErrUnknownFontSet = errors.New("unknown font set")
)

// ErrorCode is the symbolic taxonomy tag attached to error envelopes.
type ErrorCode string

// Recognized error codes.
const (
	CodeValidationError   ErrorCode = "VALIDATION_ERROR"
	CodePermissionDenied  ErrorCode = "PERMISSION_DENIED"
	CodeCommandNotFound   ErrorCode = "COMMAND_NOT_FOUND"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeSystemError       ErrorCode = "SYSTEM_ERROR"
	CodeMalformedEnvelope ErrorCode = "MALFORMED_ENVELOPE"
	CodeInvalidAction     ErrorCode = "INVALID_ACTION"
)

// Failure is a classified error carrying the taxonomy code and structured
// context for the error envelope.
type Failure struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

func (f *Failure) Error() string {
	if len(f.Details) > 0 {
		return fmt.Sprintf("%s (code: %s, details: %v)", f.Message, f.Code, f.Details)
	}

	return fmt.Sprintf("%s (code: %s)", f.Message, f.Code)
}

// NewFailure creates a classified failure with optional structured details.
func NewFailure(code ErrorCode, message string, details map[string]any) *Failure {
	return &Failure{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// SystemFailure classifies a non-zero exit from an external process,
// keeping the raw command for diagnosis.
func SystemFailure(command string, outcome *Outcome) *Failure {
	message := strings.TrimSpace(outcome.Stderr)
	if message == "" {
		message = fmt.Sprintf("command exited with status %d", outcome.ExitCode)
	}

	return &Failure{
		Code:    CodeSystemError,
		Message: message,
		Details: map[string]any{
			"command":   command,
			"exit_code": outcome.ExitCode,
		},
	}
}

// AsFailure extracts a classified failure from err, mapping sentinel errors
// onto the taxonomy and classifying everything else as SYSTEM_ERROR so no
// failure escapes classification.
func AsFailure(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	switch {
	case errors.Is(err, ErrPermissionDenied):
		return NewFailure(CodePermissionDenied, err.Error(), nil)
	case errors.Is(err, ErrCommandNotFound):
		return NewFailure(CodeCommandNotFound, err.Error(), nil)
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return NewFailure(CodeTimeout, err.Error(), nil)
	case errors.Is(err, ErrEmptyInput):
		return NewFailure(CodeValidationError, err.Error(), nil)
	default:
		return NewFailure(CodeSystemError, err.Error(), nil)
	}
}

// Remedy returns an actionable suggestion for an error code, surfaced in
// error envelope details.
func Remedy(code ErrorCode) string {
	switch code {
	case CodeValidationError:
		return "Correct the input and try again"
	case CodePermissionDenied:
		return "Re-run the command and authenticate when prompted"
	case CodeCommandNotFound:
		return "Install the missing tool and make sure it is on PATH"
	case CodeTimeout:
		return "The operation did not finish in time; retry manually"
	case CodeSystemError:
		return "Inspect the reported command output for details"
	case CodeMalformedEnvelope:
		return "This is an internal protocol bug, please report it"
	case CodeInvalidAction:
		return "Use one of the recognized actions"
	default:
		return ""
	}
}
