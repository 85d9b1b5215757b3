// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mttk2004/arch-manager/internal/domain"
)

func TestConstructors_SetStatusAndTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  *Envelope
		want Status
	}{
		{name: "success", env: Success("done", nil), want: StatusSuccess},
		{name: "warning", env: Warning("partial", nil), want: StatusWarning},
		{name: "info", env: Info("nothing to do", nil), want: StatusInfo},
		{name: "failure", env: Failure(domain.CodeSystemError, "boom", nil), want: StatusError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.env.Status)
			assert.False(t, testCase.env.Timestamp.IsZero())
			assert.Equal(t, time.UTC, testCase.env.Timestamp.Location())
		})
	}
}

func TestFailure_AttachesCodeAndRemedy(t *testing.T) {
	t.Parallel()

	env := Failure(domain.CodePermissionDenied, "sudo authentication failed", nil)

	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodePermissionDenied, env.Error.Code)
	assert.Equal(t, "sudo authentication failed", env.Error.Message)
	assert.Equal(t, "sudo authentication failed", env.Message)
	assert.Contains(t, env.Error.Details, "remedy")
	assert.True(t, env.IsError())
}

func TestFailure_KeepsCallerRemedy(t *testing.T) {
	t.Parallel()

	env := Failure(domain.CodeValidationError, "bad input", map[string]any{
		"remedy": "pass at least one package name",
	})

	require.NotNil(t, env.Error)
	assert.Equal(t, "pass at least one package name", env.Error.Details["remedy"])
}

func TestFromError_ClassifiesThroughTaxonomy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want domain.ErrorCode
	}{
		{name: "classified failure passes through", err: domain.NewFailure(domain.CodeTimeout, "too slow", nil), want: domain.CodeTimeout},
		{name: "permission sentinel", err: domain.ErrPermissionDenied, want: domain.CodePermissionDenied},
		{name: "unknown error becomes system error", err: errors.New("disk on fire"), want: domain.CodeSystemError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			env := FromError(testCase.err)

			require.NotNil(t, env.Error)
			assert.Equal(t, testCase.want, env.Error.Code)
			assert.Equal(t, StatusError, env.Status)
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	env := Success("installed 2 packages", map[string]any{"count": 2})

	raw, err := env.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, decoded.Status)
	assert.Equal(t, env.Message, decoded.Message)
	assert.True(t, env.Timestamp.Equal(decoded.Timestamp))
}

func TestEncode_EscapesHostileText(t *testing.T) {
	t.Parallel()

	hostile := `pkg"with'quotes` + "\nand\tnewlines"
	env := Failure(domain.CodeSystemError, hostile, map[string]any{"item": hostile})

	raw, err := env.Encode()
	require.NoError(t, err)
	require.True(t, json.Valid(raw))

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, hostile, decoded.Message)
}

func TestDecode_RejectsMalformedEnvelopes(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC().Format(time.RFC3339)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `{"status":`},
		{name: "unrecognized status", raw: `{"status":"partial","message":"x","timestamp":"` + now + `"}`},
		{name: "missing message", raw: `{"status":"success","timestamp":"` + now + `"}`},
		{name: "missing timestamp", raw: `{"status":"success","message":"x"}`},
		{name: "error status without detail", raw: `{"status":"error","message":"x","timestamp":"` + now + `"}`},
		{name: "detail on non-error status", raw: `{"status":"success","message":"x","timestamp":"` + now + `","error":{"code":"TIMEOUT","message":"x"}}`},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			env, err := Decode([]byte(testCase.raw))

			require.Error(t, err)
			assert.Nil(t, env)
			assert.Equal(t, domain.CodeMalformedEnvelope, domain.AsFailure(err).Code)
		})
	}
}

func TestNewBatchResult_CountsMatchSets(t *testing.T) {
	t.Parallel()

	result := NewBatchResult(
		[]string{"vim"},
		[]string{"git", "curl"},
		[]string{"no-such-pkg"},
		map[string]string{"no-such-pkg": "target not found"},
	)

	assert.Equal(t, 1, result.SucceededCount)
	assert.Equal(t, 2, result.AlreadyInStateCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, "target not found", result.FailureReasons["no-such-pkg"])
}

func TestNewBatchResult_NilSetsSerializeAsEmptyArrays(t *testing.T) {
	t.Parallel()

	result := NewBatchResult(nil, nil, nil, nil)

	raw, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"succeeded":[]`)
	assert.Contains(t, string(raw), `"already_in_state":[]`)
	assert.Contains(t, string(raw), `"failed":[]`)
	assert.NotContains(t, string(raw), "failure_reasons")
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *BatchResult
		want   Status
	}{
		{name: "all succeeded", result: NewBatchResult([]string{"a", "b"}, nil, nil, nil), want: StatusSuccess},
		{name: "all already in state", result: NewBatchResult(nil, []string{"a"}, nil, nil), want: StatusSuccess},
		{name: "any failure is a warning", result: NewBatchResult([]string{"a"}, []string{"b"}, []string{"c"}, nil), want: StatusWarning},
		{name: "only failures is still a warning", result: NewBatchResult(nil, nil, []string{"c"}, nil), want: StatusWarning},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, testCase.result.DeriveStatus())
		})
	}
}
