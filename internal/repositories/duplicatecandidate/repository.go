// Package duplicatecandidate persists flagged duplicate pairs and their
// review lifecycle
package duplicatecandidate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const columns = "id, entity_table, record_id_a, record_id_b, similarity_score, status, reviewed_by, reviewed_at, created_at, updated_at"

// Repository handles duplicate candidate persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new duplicate candidate repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create records a new pending candidate. The pair is stored in
// canonical order; the unique constraint turns a concurrent double
// insert into a conflict instead of a second row.
func (r *Repository) Create(ctx context.Context, candidate *models.DuplicateCandidate) (*models.DuplicateCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.Create")
	defer span.End()

	if candidate.RecordIDA == candidate.RecordIDB {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "a record cannot be a duplicate of itself")
	}

	candidate.ID = uuid.New()
	candidate.RecordIDA, candidate.RecordIDB = models.OrderPair(candidate.RecordIDA, candidate.RecordIDB)
	candidate.Status = models.CandidateStatusPending
	candidate.CreatedAt = time.Now().UTC()
	candidate.UpdatedAt = candidate.CreatedAt

	sb := database.NewInsertBuilder()
	sb.InsertInto("duplicate_candidates")
	sb.Cols("id", "entity_table", "record_id_a", "record_id_b", "similarity_score", "status", "created_at", "updated_at")
	sb.Values(candidate.ID, candidate.EntityTable, candidate.RecordIDA, candidate.RecordIDB, candidate.SimilarityScore, candidate.Status, candidate.CreatedAt, candidate.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, httperror.NewHTTPError(http.StatusConflict, "this pair has already been flagged")
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"candidate_id": candidate.ID}).Error("Failed to create duplicate candidate")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create duplicate candidate")
	}

	return candidate, nil
}

// ExistsPair reports whether a candidate already exists for the pair in
// either comparison direction.
func (r *Repository) ExistsPair(ctx context.Context, entityTable string, recordA, recordB uuid.UUID) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.ExistsPair")
	defer span.End()

	a, b := models.OrderPair(recordA, recordB)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM duplicate_candidates
			WHERE entity_table = $1 AND record_id_a = $2 AND record_id_b = $3
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entityTable, a, b); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to check duplicate candidate existence")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to check duplicate candidate existence")
	}

	return exists, nil
}

// Get retrieves a duplicate candidate by ID
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.DuplicateCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("duplicate_candidates")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var candidate models.DuplicateCandidate
	if err := r.db.GetContext(ctx, &candidate, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("duplicate candidate %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get duplicate candidate")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get duplicate candidate")
	}

	return &candidate, nil
}

// GetByRecordPair retrieves the candidate covering a pair regardless of
// order, or nil when none exists.
func (r *Repository) GetByRecordPair(ctx context.Context, entityTable string, recordA, recordB uuid.UUID) (*models.DuplicateCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.GetByRecordPair")
	defer span.End()

	a, b := models.OrderPair(recordA, recordB)

	query := `
		SELECT ` + columns + `
		FROM duplicate_candidates
		WHERE entity_table = $1 AND record_id_a = $2 AND record_id_b = $3
		LIMIT 1
	`

	var candidate models.DuplicateCandidate
	if err := r.db.GetContext(ctx, &candidate, query, entityTable, a, b); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get duplicate candidate by record pair")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get duplicate candidate")
	}

	return &candidate, nil
}

// Filter narrows a duplicate candidate listing
type Filter struct {
	EntityTable string
	Status      string
	Limit       int
	Offset      int
}

// List retrieves candidates matching the filter, highest score first
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.DuplicateCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.List")
	defer span.End()

	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("duplicate_candidates")

	var where []string
	if filter.EntityTable != "" {
		where = append(where, sb.Equal("entity_table", filter.EntityTable))
	}
	if filter.Status != "" {
		where = append(where, sb.Equal("status", filter.Status))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("similarity_score DESC", "created_at DESC")
	sb.Limit(filter.Limit)
	sb.Offset(filter.Offset)

	query, args := sb.Build()
	var candidates []models.DuplicateCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list duplicate candidates")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list duplicate candidates")
	}

	return candidates, nil
}

// ListByRecord retrieves candidates involving a specific record
func (r *Repository) ListByRecord(ctx context.Context, entityTable string, recordID uuid.UUID) ([]models.DuplicateCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.ListByRecord")
	defer span.End()

	query := `
		SELECT ` + columns + `
		FROM duplicate_candidates
		WHERE entity_table = $1 AND (record_id_a = $2 OR record_id_b = $2)
		ORDER BY similarity_score DESC, created_at DESC
	`

	var candidates []models.DuplicateCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, entityTable, recordID); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list duplicate candidates by record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list duplicate candidates")
	}

	return candidates, nil
}

// StatusCount is an aggregate of candidates per table and status
type StatusCount struct {
	EntityTable string `db:"entity_table" json:"entity_table"`
	Status      string `db:"status" json:"status"`
	Count       int    `db:"count" json:"count"`
}

// CountByStatus aggregates candidate counts per entity table and status
func (r *Repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.CountByStatus")
	defer span.End()

	query := `
		SELECT entity_table, status, COUNT(*) AS count
		FROM duplicate_candidates
		GROUP BY entity_table, status
		ORDER BY entity_table, status
	`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count duplicate candidates")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count duplicate candidates")
	}

	return counts, nil
}

// UpdateResolution transitions a pending candidate to merged or
// not_duplicate, recording the reviewer. When tx is non-nil the update
// joins the caller's transaction.
func (r *Repository) UpdateResolution(ctx context.Context, tx database.Tx, id uuid.UUID, status, reviewedBy string) error {
	ctx, span := tracing.StartSpan(ctx, "duplicatecandidate.Repository.UpdateResolution")
	defer span.End()

	if status != models.CandidateStatusMerged && status != models.CandidateStatusNotDuplicate {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid resolution status %q", status)
	}

	now := time.Now().UTC()
	ub := database.NewUpdateBuilder()
	ub.Update("duplicate_candidates")
	ub.Set(
		ub.Assign("status", status),
		ub.Assign("reviewed_by", reviewedBy),
		ub.Assign("reviewed_at", now),
		ub.Assign("updated_at", now),
	)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("status", models.CandidateStatusPending),
	)

	query, args := ub.Build()

	var result interface{ RowsAffected() (int64, error) }
	var err error
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, args...)
	} else {
		result, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update duplicate candidate resolution")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update duplicate candidate")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusConflict, fmt.Sprintf("duplicate candidate %s is not pending review", id))
	}

	return nil
}
