// Package events emits lifecycle events for duplicate detection and
// resolution. Emission is best effort: a broker outage never fails the
// operation that produced the event.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Event types emitted by the service
const (
	EventCandidateFound     = "duplicate.candidate_found"
	EventCandidateMerged    = "duplicate.merged"
	EventCandidateDismissed = "duplicate.dismissed"
	EventRecordDeleted      = "record.deleted"
)

// Publisher is the outbound event sink
type Publisher interface {
	Publish(ctx context.Context, event *kafka.Event) error
}

// Emitter builds and publishes domain events
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter. A nil publisher disables
// emission.
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// EmitCandidateFound emits an event when detection flags a new pair
func (e *Emitter) EmitCandidateFound(ctx context.Context, candidate *models.DuplicateCandidate) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCandidateFound")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"candidate_id":     candidate.ID,
		"record_id_a":      candidate.RecordIDA,
		"record_id_b":      candidate.RecordIDB,
		"similarity_score": candidate.SimilarityScore,
	})

	e.publish(ctx, &kafka.Event{
		EventType:   EventCandidateFound,
		EntityTable: candidate.EntityTable,
		RecordID:    candidate.RecordIDA.String(),
		Data:        data,
	})
}

// EmitCandidateMerged emits an event when a reviewer confirms a merge
func (e *Emitter) EmitCandidateMerged(ctx context.Context, candidate *models.DuplicateCandidate, keptID, removedID uuid.UUID, reviewedBy string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCandidateMerged")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"candidate_id":      candidate.ID,
		"kept_record_id":    keptID,
		"removed_record_id": removedID,
		"similarity_score":  candidate.SimilarityScore,
	})

	e.publish(ctx, &kafka.Event{
		EventType:   EventCandidateMerged,
		EntityTable: candidate.EntityTable,
		RecordID:    keptID.String(),
		Data:        data,
		Actor:       reviewedBy,
	})
}

// EmitCandidateDismissed emits an event when a reviewer marks a pair as
// not a duplicate
func (e *Emitter) EmitCandidateDismissed(ctx context.Context, candidate *models.DuplicateCandidate, reviewedBy string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCandidateDismissed")
	defer span.End()

	data, _ := json.Marshal(map[string]any{
		"candidate_id": candidate.ID,
		"record_id_a":  candidate.RecordIDA,
		"record_id_b":  candidate.RecordIDB,
	})

	e.publish(ctx, &kafka.Event{
		EventType:   EventCandidateDismissed,
		EntityTable: candidate.EntityTable,
		RecordID:    candidate.RecordIDA.String(),
		Data:        data,
		Actor:       reviewedBy,
	})
}

// EmitRecordDeleted emits an event when a record is soft deleted
func (e *Emitter) EmitRecordDeleted(ctx context.Context, entityTable string, recordID uuid.UUID, deletedBy string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRecordDeleted")
	defer span.End()

	e.publish(ctx, &kafka.Event{
		EventType:   EventRecordDeleted,
		EntityTable: entityTable,
		RecordID:    recordID.String(),
		Actor:       deletedBy,
	})
}

func (e *Emitter) publish(ctx context.Context, event *kafka.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": event.EventType,
		}).Warn("Failed to publish event")
	}
}
