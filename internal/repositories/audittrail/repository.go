// Package audittrail persists the audit trail of master data changes
package audittrail

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles audit trail persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new audit trail repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Insert writes an audit entry. When tx is non-nil the entry joins the
// caller's transaction so the audit record lands atomically with the
// change it describes.
func (r *Repository) Insert(ctx context.Context, tx database.Tx, entry *models.AuditEntry) error {
	ctx, span := tracing.StartSpan(ctx, "audittrail.Repository.Insert")
	defer span.End()

	if entry.ChangedBy == "" {
		entry.ChangedBy = "system"
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now().UTC()
	}

	sb := database.NewInsertBuilder()
	sb.InsertInto("audit_trail")
	sb.Cols("table_name", "record_id", "action", "old_values", "new_values", "changed_by", "changed_at")
	sb.Values(entry.TableName, entry.RecordID, entry.Action, nullableJSON(entry.OldValues), nullableJSON(entry.NewValues), entry.ChangedBy, entry.ChangedAt)

	query, args := sb.Build()

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table_name": entry.TableName,
			"record_id":  entry.RecordID,
			"action":     entry.Action,
		}).Error("Failed to insert audit entry")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert audit entry")
	}

	return nil
}

// Filter narrows an audit trail listing
type Filter struct {
	TableName string
	RecordID  *uuid.UUID
	Action    string
	ChangedBy string
	Limit     int
	Offset    int
}

// List retrieves audit entries, newest first
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.AuditEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "audittrail.Repository.List")
	defer span.End()

	query, args := buildListQuery(filter)
	var entries []models.AuditEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list audit entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list audit entries")
	}

	return entries, nil
}

func buildListQuery(filter Filter) (string, []interface{}) {
	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}

	sb := database.NewSelectBuilder()
	sb.Select("id", "table_name", "record_id", "action", "old_values", "new_values", "changed_by", "changed_at")
	sb.From("audit_trail")

	var where []string
	if filter.TableName != "" {
		where = append(where, sb.Equal("table_name", filter.TableName))
	}
	if filter.RecordID != nil {
		where = append(where, sb.Equal("record_id", *filter.RecordID))
	}
	if filter.Action != "" {
		where = append(where, sb.Equal("action", filter.Action))
	}
	if filter.ChangedBy != "" {
		where = append(where, sb.Equal("changed_by", filter.ChangedBy))
	}
	if len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("changed_at DESC", "id DESC")
	sb.Limit(filter.Limit)
	sb.Offset(filter.Offset)

	return sb.Build()
}

// nullableJSON passes JSON payloads to the driver as text so they cast
// cleanly to jsonb, mapping empty payloads to NULL.
func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
