// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package batch drives a per-item operation across a user-supplied list,
// partitioning outcomes into succeeded / already-in-desired-state / failed
// instead of stopping at the first failure.
package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/protocol"
)

// Class is the per-item classification.
type Class int

// Item classifications.
const (
	Succeeded Class = iota
	AlreadyInState
	Failed
)

// Operation is the caller-supplied action applied to each item.
type Operation interface {
	// Name is the verb used in envelope messages, e.g. "install".
	Name() string

	// AlreadySatisfied reports whether the item already meets the target
	// state, in which case Apply is skipped entirely.
	AlreadySatisfied(ctx context.Context, item string) (bool, error)

	// Apply performs the mutation for one item.
	Apply(ctx context.Context, item string) error
}

// Tracker runs one operation over a list of items, strictly sequentially:
// package managers hold an exclusive lock on their database, so concurrent
// invocations would fail or corrupt state.
type Tracker struct {
	op Operation

	// OnItem, when set, is called after each item is classified. Used by
	// the CLI for progress display.
	OnItem func(item string, class Class)
}

// New creates a tracker for the given operation.
func New(op Operation) *Tracker {
	return &Tracker{op: op}
}

// Run processes the items in input order and aggregates the outcomes.
// A failure on one item never aborts the rest. Context cancellation stops
// submission of further items; everything classified so far is still
// returned. Empty input yields a VALIDATION_ERROR envelope and a nil result
// with no operation calls made.
func (t *Tracker) Run(ctx context.Context, items []string) (*protocol.BatchResult, *protocol.Envelope) {
	items = dedupe(items)
	if len(items) == 0 {
		return nil, protocol.Failure(domain.CodeValidationError,
			fmt.Sprintf("%s: %s", t.op.Name(), domain.ErrEmptyInput.Error()), nil)
	}

	var (
		succeeded      []string
		alreadyInState []string
		failed         []string
		reasons        = map[string]string{}
		interrupted    bool
	)

	for _, item := range items {
		if ctx.Err() != nil {
			interrupted = true

			break
		}

		class, err := t.classify(ctx, item)
		switch class {
		case Succeeded:
			succeeded = append(succeeded, item)
		case AlreadyInState:
			alreadyInState = append(alreadyInState, item)
		case Failed:
			failed = append(failed, item)
			reasons[item] = domain.AsFailure(err).Message
		}

		if t.OnItem != nil {
			t.OnItem(item, class)
		}
	}

	if len(reasons) == 0 {
		reasons = nil
	}

	result := protocol.NewBatchResult(succeeded, alreadyInState, failed, reasons)
	result.Interrupted = interrupted

	return result, t.envelope(result)
}

// classify applies the check-then-mutate sequence for one item. The two
// external queries are not atomic: another process may change the item's
// state in between. The mutation commands are idempotent, so the race
// degrades to a no-op.
func (t *Tracker) classify(ctx context.Context, item string) (Class, error) {
	satisfied, err := t.op.AlreadySatisfied(ctx, item)
	if err != nil {
		return Failed, err
	}

	if satisfied {
		return AlreadyInState, nil
	}

	if err := t.op.Apply(ctx, item); err != nil {
		return Failed, err
	}

	return Succeeded, nil
}

// envelope wraps a result, deriving the status purely from the set counts.
func (t *Tracker) envelope(result *protocol.BatchResult) *protocol.Envelope {
	message := t.message(result)

	if result.DeriveStatus() == protocol.StatusWarning {
		return protocol.Warning(message, result)
	}

	return protocol.Success(message, result)
}

func (t *Tracker) message(result *protocol.BatchResult) string {
	parts := []string{
		fmt.Sprintf("%d succeeded", result.SucceededCount),
	}

	if result.AlreadyInStateCount > 0 {
		parts = append(parts, fmt.Sprintf("%d already in desired state", result.AlreadyInStateCount))
	}

	if result.FailedCount > 0 {
		details := make([]string, 0, result.FailedCount)
		for _, item := range result.Failed {
			if reason, ok := result.FailureReasons[item]; ok {
				details = append(details, fmt.Sprintf("%s: %s", item, reason))
			} else {
				details = append(details, item)
			}
		}

		parts = append(parts, fmt.Sprintf("%d failed (%s)", result.FailedCount, strings.Join(details, "; ")))
	}

	message := fmt.Sprintf("%s: %s", t.op.Name(), strings.Join(parts, ", "))
	if result.Interrupted {
		message += " (interrupted before all items were processed)"
	}

	return message
}

// dedupe drops repeated identifiers, keeping the first occurrence so input
// order is preserved.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}

		out = append(out, item)
	}

	return out
}
