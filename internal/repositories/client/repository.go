// Package client persists client master data records
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/internal/repositories/audittrail"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

const columns = "id, name, document_type, document_number, email, phone, address, city, state, zip_code, category, status, created_at, updated_at, created_by, updated_by, deleted_at"

// Repository handles client persistence
type Repository struct {
	db     database.DB
	audit  *audittrail.Repository
	logger ectologger.Logger
}

// NewRepository creates a new client repository
func NewRepository(db database.DB, audit *audittrail.Repository, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		audit:  audit,
		logger: logger,
	}
}

// Create inserts a new client and its audit entry in one transaction
func (r *Repository) Create(ctx context.Context, client *models.Client, createdBy string) (*models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "client.Repository.Create")
	defer span.End()

	client.ID = uuid.New()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	if client.Status == "" {
		client.Status = models.RecordStatusActive
	}
	if createdBy != "" {
		client.CreatedBy = &createdBy
	}

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create client")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sb := database.NewInsertBuilder()
	sb.InsertInto("clients")
	sb.Cols("id", "name", "document_type", "document_number", "email", "phone", "address", "city", "state", "zip_code", "category", "status", "created_at", "updated_at", "created_by")
	sb.Values(client.ID, client.Name, client.DocumentType, client.DocumentNumber, client.Email, client.Phone, client.Address, client.City, client.State, client.ZipCode, client.Category, client.Status, client.CreatedAt, client.UpdatedAt, client.CreatedBy)

	query, args := sb.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, httperror.NewHTTPError(http.StatusConflict, "a client with this document number already exists")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create client")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create client")
	}

	newValues, _ := json.Marshal(client)
	if err := r.audit.Insert(txCtx, tx, &models.AuditEntry{
		TableName: models.TableClients,
		RecordID:  client.ID,
		Action:    models.AuditActionInsert,
		NewValues: newValues,
		ChangedBy: createdBy,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create client")
	}

	return client, nil
}

// Get retrieves a client by ID
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "client.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("clients")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("client %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get client")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get client")
	}

	return &client, nil
}

// Filter narrows a client listing
type Filter struct {
	Status   string
	Category string
	Search   string
	Limit    int
	Offset   int
}

// List retrieves clients matching the filter
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "client.Repository.List")
	defer span.End()

	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("clients")

	where := []string{sb.NotEqual("status", models.RecordStatusDeleted)}
	if filter.Status != "" {
		where = []string{sb.Equal("status", filter.Status)}
	}
	if filter.Category != "" {
		where = append(where, sb.Equal("category", filter.Category))
	}
	if filter.Search != "" {
		where = append(where, sb.ILike("name", "%"+filter.Search+"%"))
	}
	sb.Where(where...)
	sb.OrderBy("name ASC")
	sb.Limit(filter.Limit)
	sb.Offset(filter.Offset)

	query, args := sb.Build()
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list clients")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list clients")
	}

	return clients, nil
}

// ListActive retrieves a page of active clients for duplicate
// detection. limit <= 0 returns everything in one page.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "client.Repository.ListActive")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("clients")
	sb.Where(sb.Equal("status", models.RecordStatusActive))
	sb.OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		sb.Limit(limit)
		sb.Offset(offset)
	}

	query, args := sb.Build()
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list active clients")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list active clients")
	}

	return clients, nil
}

// Update replaces the mutable fields of a client and audits the change
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updated *models.Client, updatedBy string) (*models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "client.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update client")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ub := database.NewUpdateBuilder()
	ub.Update("clients")
	ub.Set(
		ub.Assign("name", updated.Name),
		ub.Assign("document_type", updated.DocumentType),
		ub.Assign("document_number", updated.DocumentNumber),
		ub.Assign("email", updated.Email),
		ub.Assign("phone", updated.Phone),
		ub.Assign("address", updated.Address),
		ub.Assign("city", updated.City),
		ub.Assign("state", updated.State),
		ub.Assign("zip_code", updated.ZipCode),
		ub.Assign("category", updated.Category),
		ub.Assign("updated_at", now),
		ub.Assign("updated_by", updatedBy),
	)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, httperror.NewHTTPError(http.StatusConflict, "a client with this document number already exists")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update client")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update client")
	}

	result := *existing
	result.Name = updated.Name
	result.DocumentType = updated.DocumentType
	result.DocumentNumber = updated.DocumentNumber
	result.Email = updated.Email
	result.Phone = updated.Phone
	result.Address = updated.Address
	result.City = updated.City
	result.State = updated.State
	result.ZipCode = updated.ZipCode
	result.Category = updated.Category
	result.UpdatedAt = now
	result.UpdatedBy = &updatedBy

	oldValues, _ := json.Marshal(existing)
	newValues, _ := json.Marshal(&result)
	if err := r.audit.Insert(txCtx, tx, &models.AuditEntry{
		TableName: models.TableClients,
		RecordID:  id,
		Action:    models.AuditActionUpdate,
		OldValues: oldValues,
		NewValues: newValues,
		ChangedBy: updatedBy,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update client")
	}

	return &result, nil
}

// SoftDelete marks a client as deleted and audits the change. When tx
// is non-nil the delete joins the caller's transaction.
func (r *Repository) SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error {
	ctx, span := tracing.StartSpan(ctx, "client.Repository.SoftDelete")
	defer span.End()

	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == models.RecordStatusDeleted {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("client %s not found", id))
	}

	now := time.Now().UTC()
	ub := database.NewUpdateBuilder()
	ub.Update("clients")
	ub.Set(
		ub.Assign("status", models.RecordStatusDeleted),
		ub.Assign("deleted_at", now),
		ub.Assign("updated_at", now),
		ub.Assign("updated_by", deletedBy),
	)
	ub.Where(
		ub.Equal("id", id),
		ub.NotEqual("status", models.RecordStatusDeleted),
	)

	query, args := ub.Build()

	var result interface{ RowsAffected() (int64, error) }
	if tx != nil {
		result, err = tx.ExecContext(ctx, query, args...)
	} else {
		result, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete client")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete client")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("client %s not found", id))
	}

	oldValues, _ := json.Marshal(existing)
	return r.audit.Insert(ctx, tx, &models.AuditEntry{
		TableName: models.TableClients,
		RecordID:  id,
		Action:    models.AuditActionDelete,
		OldValues: oldValues,
		ChangedBy: deletedBy,
	})
}
