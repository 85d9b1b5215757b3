// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package protocol implements the response envelope every bridge action
// speaks: a typed success/warning/error/info wrapper with a data payload
// and a UTC timestamp.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mttk2004/arch-manager/internal/domain"
)

// Status is the envelope status discriminator.
type Status string

// Recognized envelope statuses.
const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

func (s Status) valid() bool {
	switch s {
	case StatusSuccess, StatusWarning, StatusError, StatusInfo:
		return true
	default:
		return false
	}
}

// ErrorDetail nests the classified failure inside an error envelope.
type ErrorDetail struct {
	Code    domain.ErrorCode `json:"code"`
	Message string           `json:"message"`
	Details map[string]any   `json:"details,omitempty"`
}

// Envelope is the uniform wire message returned by every bridge action.
// Marshalling goes through encoding/json, so arbitrary text in item names
// and messages (quotes, control characters, newlines) cannot corrupt the
// structure.
type Envelope struct {
	Status    Status       `json:"status"`
	Data      any          `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}

// IsError reports whether the envelope carries an error status.
func (e *Envelope) IsError() bool {
	return e.Status == StatusError
}

// Encode serializes the envelope. A marshalling failure here is a
// protocol-level failure, the only error class allowed to abort a call.
func (e *Envelope) Encode() ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	return raw, nil
}

func newEnvelope(status Status, message string, data any) *Envelope {
	return &Envelope{
		Status:    status,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Success builds a success envelope.
func Success(message string, data any) *Envelope {
	return newEnvelope(StatusSuccess, message, data)
}

// Warning builds a warning envelope (partial failure in a batch).
func Warning(message string, data any) *Envelope {
	return newEnvelope(StatusWarning, message, data)
}

// Info builds an informational envelope.
func Info(message string, data any) *Envelope {
	return newEnvelope(StatusInfo, message, data)
}

// Failure builds an error envelope with the classified detail attached and
// the code's remedy folded into the details.
func Failure(code domain.ErrorCode, message string, details map[string]any) *Envelope {
	if remedy := domain.Remedy(code); remedy != "" {
		if details == nil {
			details = map[string]any{}
		}

		if _, ok := details["remedy"]; !ok {
			details["remedy"] = remedy
		}
	}

	env := newEnvelope(StatusError, message, nil)
	env.Error = &ErrorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}

	return env
}

// FromError builds an error envelope from any error, classifying it through
// the domain taxonomy.
func FromError(err error) *Envelope {
	failure := domain.AsFailure(err)

	return Failure(failure.Code, failure.Message, failure.Details)
}

// Decode parses a transmitted envelope back into the typed structure. Any
// structural violation (absent required fields, unrecognized status, error
// status without detail) is a MALFORMED_ENVELOPE failure.
func Decode(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, domain.NewFailure(domain.CodeMalformedEnvelope,
			fmt.Sprintf("invalid envelope JSON: %v", err), nil)
	}

	if !env.Status.valid() {
		return nil, domain.NewFailure(domain.CodeMalformedEnvelope,
			fmt.Sprintf("unrecognized status %q", env.Status), nil)
	}

	if env.Message == "" {
		return nil, domain.NewFailure(domain.CodeMalformedEnvelope,
			"envelope message is required", nil)
	}

	if env.Timestamp.IsZero() {
		return nil, domain.NewFailure(domain.CodeMalformedEnvelope,
			"envelope timestamp is required", nil)
	}

	if (env.Status == StatusError) != (env.Error != nil) {
		return nil, domain.NewFailure(domain.CodeMalformedEnvelope,
			"error detail must be attached exactly when status is error", nil)
	}

	return &env, nil
}
