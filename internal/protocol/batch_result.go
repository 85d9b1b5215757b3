// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package protocol

// BatchResult is the data payload of a batch envelope. The three sequences
// partition the de-duplicated input set: no item appears twice, no processed
// item is omitted.
type BatchResult struct {
	Succeeded           []string          `json:"succeeded"`
	AlreadyInState      []string          `json:"already_in_state"`
	Failed              []string          `json:"failed"`
	SucceededCount      int               `json:"succeeded_count"`
	AlreadyInStateCount int               `json:"already_in_state_count"`
	FailedCount         int               `json:"failed_count"`
	FailureReasons      map[string]string `json:"failure_reasons,omitempty"`
	Interrupted         bool              `json:"interrupted,omitempty"`
}

// NewBatchResult builds a result with counts matching the set cardinalities.
func NewBatchResult(succeeded, alreadyInState, failed []string, reasons map[string]string) *BatchResult {
	if succeeded == nil {
		succeeded = []string{}
	}

	if alreadyInState == nil {
		alreadyInState = []string{}
	}

	if failed == nil {
		failed = []string{}
	}

	return &BatchResult{
		Succeeded:           succeeded,
		AlreadyInState:      alreadyInState,
		Failed:              failed,
		SucceededCount:      len(succeeded),
		AlreadyInStateCount: len(alreadyInState),
		FailedCount:         len(failed),
		FailureReasons:      reasons,
	}
}

// DeriveStatus maps the result's set cardinalities onto the envelope status.
// A pure function of the counts, checkable independently of how the batch
// actually executed.
func (r *BatchResult) DeriveStatus() Status {
	if r.FailedCount > 0 {
		return StatusWarning
	}

	return StatusSuccess
}
