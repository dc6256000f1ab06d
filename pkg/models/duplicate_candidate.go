package models

import (
	"time"

	"github.com/google/uuid"
)

// Duplicate candidate review statuses
const (
	CandidateStatusPending      = "pending"
	CandidateStatusMerged       = "merged"
	CandidateStatusNotDuplicate = "not_duplicate"
)

// DuplicateCandidate is a flagged pair of records suspected to be the
// same real-world entity. Record IDs are stored in canonical order so a
// pair exists at most once regardless of comparison direction.
type DuplicateCandidate struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	EntityTable     string     `db:"entity_table" json:"entity_table"`
	RecordIDA       uuid.UUID  `db:"record_id_a" json:"record_id_a"`
	RecordIDB       uuid.UUID  `db:"record_id_b" json:"record_id_b"`
	SimilarityScore float64    `db:"similarity_score" json:"similarity_score"`
	Status          string     `db:"status" json:"status"`
	ReviewedBy      *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// OrderPair returns the two record IDs in canonical storage order
// (lexicographically smaller UUID first).
func OrderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}
