// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/protocol"
)

// fakeOperation scripts per-item behavior and records every call.
type fakeOperation struct {
	satisfied  map[string]bool
	checkErr   map[string]error
	applyErr   map[string]error
	checkCalls []string
	applyCalls []string
	onApply    func(item string)
}

func (f *fakeOperation) Name() string { return "install" }

func (f *fakeOperation) AlreadySatisfied(_ context.Context, item string) (bool, error) {
	f.checkCalls = append(f.checkCalls, item)
	if err := f.checkErr[item]; err != nil {
		return false, err
	}

	return f.satisfied[item], nil
}

func (f *fakeOperation) Apply(_ context.Context, item string) error {
	f.applyCalls = append(f.applyCalls, item)
	if f.onApply != nil {
		f.onApply(item)
	}

	return f.applyErr[item]
}

func TestRun_PartitionsOutcomes(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{
		satisfied: map[string]bool{"a": true},
		applyErr: map[string]error{
			"c": domain.NewFailure(domain.CodeSystemError, "target not found: c", nil),
		},
	}

	result, env := New(op).Run(context.Background(), []string{"a", "b", "c"})

	require.NotNil(t, result)
	assert.Equal(t, []string{"a"}, result.AlreadyInState)
	assert.Equal(t, []string{"b"}, result.Succeeded)
	assert.Equal(t, []string{"c"}, result.Failed)
	assert.Equal(t, "target not found: c", result.FailureReasons["c"])
	assert.False(t, result.Interrupted)

	// One failure degrades the whole batch to a warning, never an error.
	assert.Equal(t, protocol.StatusWarning, env.Status)
	assert.Contains(t, env.Message, "1 succeeded")
	assert.Contains(t, env.Message, "1 already in desired state")
	assert.Contains(t, env.Message, "c: target not found: c")
}

func TestRun_FailureDoesNotAbortRemainingItems(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{
		applyErr: map[string]error{
			"first": domain.NewFailure(domain.CodeSystemError, "boom", nil),
		},
	}

	result, _ := New(op).Run(context.Background(), []string{"first", "second", "third"})

	require.NotNil(t, result)
	assert.Equal(t, []string{"first"}, result.Failed)
	assert.Equal(t, []string{"second", "third"}, result.Succeeded)
	assert.Equal(t, []string{"first", "second", "third"}, op.applyCalls)
}

func TestRun_AlreadySatisfiedSkipsApply(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{satisfied: map[string]bool{"git": true}}

	result, env := New(op).Run(context.Background(), []string{"git"})

	require.NotNil(t, result)
	assert.Equal(t, []string{"git"}, result.AlreadyInState)
	assert.Empty(t, op.applyCalls)
	assert.Equal(t, protocol.StatusSuccess, env.Status)
}

func TestRun_SecondRunReportsAlreadyInState(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{satisfied: map[string]bool{}}
	op.onApply = func(item string) { op.satisfied[item] = true }
	tracker := New(op)

	first, _ := tracker.Run(context.Background(), []string{"vim", "git"})
	second, env := tracker.Run(context.Background(), []string{"vim", "git"})

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, []string{"vim", "git"}, first.Succeeded)
	assert.Equal(t, []string{"vim", "git"}, second.AlreadyInState)
	assert.Empty(t, second.Succeeded)
	assert.Equal(t, []string{"vim", "git"}, op.applyCalls)
	assert.Equal(t, protocol.StatusSuccess, env.Status)
}

func TestRun_CheckFailureClassifiesAsFailed(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{
		checkErr: map[string]error{"pkg": domain.ErrTimeout},
	}

	result, _ := New(op).Run(context.Background(), []string{"pkg"})

	require.NotNil(t, result)
	assert.Equal(t, []string{"pkg"}, result.Failed)
	assert.Empty(t, op.applyCalls)
	assert.Equal(t, domain.ErrTimeout.Error(), result.FailureReasons["pkg"])
}

func TestRun_DeduplicatesPreservingOrder(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{}

	result, _ := New(op).Run(context.Background(), []string{"vim", "git", "vim", " git ", "", "curl"})

	require.NotNil(t, result)
	assert.Equal(t, []string{"vim", "git", "curl"}, result.Succeeded)
	assert.Equal(t, []string{"vim", "git", "curl"}, op.applyCalls)
	assert.Equal(t, 3, result.SucceededCount)
}

func TestRun_EmptyInputIsValidationErrorWithoutCalls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []string
	}{
		{name: "nil", items: nil},
		{name: "empty", items: []string{}},
		{name: "whitespace only", items: []string{"  ", ""}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			op := &fakeOperation{}

			result, env := New(op).Run(context.Background(), testCase.items)

			assert.Nil(t, result)
			require.NotNil(t, env.Error)
			assert.Equal(t, domain.CodeValidationError, env.Error.Code)
			assert.Empty(t, op.checkCalls)
			assert.Empty(t, op.applyCalls)
		})
	}
}

func TestRun_CancellationReturnsPartialResults(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	op := &fakeOperation{}
	op.onApply = func(item string) {
		if item == "b" {
			cancel()
		}
	}

	result, env := New(op).Run(ctx, []string{"a", "b", "c", "d"})

	require.NotNil(t, result)
	assert.True(t, result.Interrupted)
	assert.Equal(t, []string{"a", "b"}, result.Succeeded)
	assert.Equal(t, []string{"a", "b"}, op.applyCalls)
	assert.Contains(t, env.Message, "interrupted")
}

func TestRun_TimeoutOnOneItemJoinsFailedSet(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{
		applyErr: map[string]error{
			"slow": domain.NewFailure(domain.CodeTimeout, "command timed out after 300s", nil),
		},
	}

	result, env := New(op).Run(context.Background(), []string{"slow", "fast"})

	require.NotNil(t, result)
	assert.Equal(t, []string{"slow"}, result.Failed)
	assert.Equal(t, []string{"fast"}, result.Succeeded)
	assert.Equal(t, protocol.StatusWarning, env.Status)
	assert.Equal(t, "command timed out after 300s", result.FailureReasons["slow"])
}

func TestRun_NotifiesObserverPerItem(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{
		satisfied: map[string]bool{"b": true},
		applyErr:  map[string]error{"c": domain.ErrTimeout},
	}

	var seen []Class

	tracker := New(op)
	tracker.OnItem = func(_ string, class Class) {
		seen = append(seen, class)
	}

	_, _ = tracker.Run(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, []Class{Succeeded, AlreadyInState, Failed}, seen)
}

func TestRun_SetsAreDisjointAndComplete(t *testing.T) {
	t.Parallel()

	op := &fakeOperation{
		satisfied: map[string]bool{"b": true, "d": true},
		applyErr:  map[string]error{"e": domain.ErrTimeout},
	}

	items := []string{"a", "b", "c", "d", "e"}
	result, _ := New(op).Run(context.Background(), items)

	require.NotNil(t, result)

	seen := map[string]int{}
	for _, set := range [][]string{result.Succeeded, result.AlreadyInState, result.Failed} {
		for _, item := range set {
			seen[item]++
		}
	}

	for _, item := range items {
		assert.Equal(t, 1, seen[item], "item %s must land in exactly one set", item)
	}
}
