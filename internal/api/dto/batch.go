package dto

import "route-scenario-service/internal/domain"

const (
	BatchEventProgress = "progress"
	BatchEventOutcome  = "outcome"
)

// BatchEvent is one line of the NDJSON batch stream. Exactly one of
// Progress or Outcome is set, matching Type.
type BatchEvent struct {
	Type     string                `json:"type"`
	Progress *domain.BatchProgress `json:"progress,omitempty"`
	Outcome  *domain.BatchOutcome  `json:"outcome,omitempty"`
}
