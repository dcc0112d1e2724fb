package domain

import "fmt"

// ItemStatus is the lifecycle state of one file in a batch.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusUploading  ItemStatus = "uploading"
	StatusParsing    ItemStatus = "parsing"
	StatusOptimizing ItemStatus = "optimizing"
	StatusSaved      ItemStatus = "saved"
	StatusFailed     ItemStatus = "failed"
)

var statusOrder = map[ItemStatus]int{
	StatusPending:    0,
	StatusUploading:  1,
	StatusParsing:    2,
	StatusOptimizing: 3,
	StatusSaved:      4,
}

// Terminal reports whether no further transition is allowed.
func (s ItemStatus) Terminal() bool {
	return s == StatusSaved || s == StatusFailed
}

// BatchItem tracks one source file through upload, parse, optimize and save.
type BatchItem struct {
	SourceName string     `json:"source_name"`
	Status     ItemStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
	Scenario   *Scenario  `json:"produced_scenario,omitempty"`
}

func NewBatchItem(sourceName string) BatchItem {
	return BatchItem{SourceName: sourceName, Status: StatusPending}
}

// Advance moves the item strictly forward. Use Fail to move to failed.
func (b *BatchItem) Advance(next ItemStatus) error {
	if b.Status.Terminal() {
		return fmt.Errorf("batch item %q: already %s", b.SourceName, b.Status)
	}
	nextRank, ok := statusOrder[next]
	if !ok {
		return fmt.Errorf("batch item %q: cannot advance to %q", b.SourceName, next)
	}
	if nextRank <= statusOrder[b.Status] {
		return fmt.Errorf("batch item %q: cannot move from %s back to %s", b.SourceName, b.Status, next)
	}
	b.Status = next
	return nil
}

// Fail marks the item failed with a human-readable reason.
func (b *BatchItem) Fail(reason string) error {
	if b.Status.Terminal() {
		return fmt.Errorf("batch item %q: already %s", b.SourceName, b.Status)
	}
	b.Status = StatusFailed
	b.Error = reason
	return nil
}

// BatchProgress is emitted after every item state change.
type BatchProgress struct {
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Saved     int       `json:"saved"`
	Item      BatchItem `json:"item"`
}

// OutcomeKind classifies a finished batch.
type OutcomeKind string

const (
	// OutcomeCompare: two or more scenarios were saved and should be compared.
	OutcomeCompare OutcomeKind = "compare"
	// OutcomeSingle: exactly one scenario was saved.
	OutcomeSingle OutcomeKind = "single"
	// OutcomeFailed: nothing was saved.
	OutcomeFailed OutcomeKind = "failed"
)

// BatchOutcome is the aggregate result of a batch run.
type BatchOutcome struct {
	Kind        OutcomeKind `json:"kind"`
	Items       []BatchItem `json:"items"`
	ScenarioIDs []string    `json:"scenario_ids"`
	Saved       int         `json:"saved"`
	Failed      int         `json:"failed"`
}

// ClassifyBatch derives the outcome from finished items.
func ClassifyBatch(items []BatchItem) BatchOutcome {
	out := BatchOutcome{Items: items, ScenarioIDs: []string{}}
	for _, it := range items {
		switch it.Status {
		case StatusSaved:
			out.Saved++
			if it.Scenario != nil {
				out.ScenarioIDs = append(out.ScenarioIDs, it.Scenario.ID)
			}
		case StatusFailed:
			out.Failed++
		}
	}

	switch {
	case out.Saved >= 2:
		out.Kind = OutcomeCompare
	case out.Saved == 1:
		out.Kind = OutcomeSingle
	default:
		out.Kind = OutcomeFailed
	}
	return out
}
