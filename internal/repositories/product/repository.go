// Package product persists product master data records
package product

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

const columns = "id, code, name, description, category, unit_price, unit_of_measure, supplier_id, status, created_at, updated_at, created_by, updated_by, deleted_at"

// Repository handles product persistence
type Repository struct {
	db     database.DB
	audit  *audittrail.Repository
	logger ectologger.Logger
}

// NewRepository creates a new product repository
func NewRepository(db database.DB, audit *audittrail.Repository, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		audit:  audit,
		logger: logger,
	}
}

// Create inserts a new product and its audit entry in one transaction
func (r *Repository) Create(ctx context.Context, product *models.Product, createdBy string) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.Create")
	defer span.End()

	product.ID = uuid.New()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = models.RecordStatusActive
	}
	if createdBy != "" {
		product.CreatedBy = &createdBy
	}

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sb := database.NewInsertBuilder()
	sb.InsertInto("products")
	sb.Cols("id", "code", "name", "description", "category", "unit_price", "unit_of_measure", "supplier_id", "status", "created_at", "updated_at", "created_by")
	sb.Values(product.ID, product.Code, product.Name, product.Description, product.Category, product.UnitPrice, product.UnitOfMeasure, product.SupplierID, product.Status, product.CreatedAt, product.UpdatedAt, product.CreatedBy)

	query, args := sb.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, httperror.NewHTTPError(http.StatusConflict, "a product with this code already exists")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	newValues, _ := json.Marshal(product)
	if err := r.audit.Insert(txCtx, tx, &models.AuditEntry{
		TableName: models.TableProducts,
		RecordID:  product.ID,
		Action:    models.AuditActionInsert,
		NewValues: newValues,
		ChangedBy: createdBy,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create product")
	}

	return product, nil
}

// Get retrieves a product by ID
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.Get")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("products")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("product %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get product")
	}

	return &product, nil
}

// Filter narrows a product listing
type Filter struct {
	Status     string
	Category   string
	SupplierID *uuid.UUID
	Search     string
	Limit      int
	Offset     int
}

// List retrieves products matching the filter
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.List")
	defer span.End()

	if filter.Limit < 1 || filter.Limit > 500 {
		filter.Limit = 100
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("products")

	where := []string{sb.NotEqual("status", models.RecordStatusDeleted)}
	if filter.Status != "" {
		where = []string{sb.Equal("status", filter.Status)}
	}
	if filter.Category != "" {
		where = append(where, sb.Equal("category", filter.Category))
	}
	if filter.SupplierID != nil {
		where = append(where, sb.Equal("supplier_id", *filter.SupplierID))
	}
	if filter.Search != "" {
		where = append(where, sb.Or(
			sb.ILike("name", "%"+filter.Search+"%"),
			sb.ILike("code", "%"+filter.Search+"%"),
		))
	}
	sb.Where(where...)
	sb.OrderBy("code ASC")
	sb.Limit(filter.Limit)
	sb.Offset(filter.Offset)

	query, args := sb.Build()
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list products")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list products")
	}

	return products, nil
}

// ListActive retrieves a page of active products for duplicate
// detection. limit <= 0 returns everything in one page.
func (r *Repository) ListActive(ctx context.Context, limit, offset int) ([]models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.ListActive")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns)
	sb.From("products")
	sb.Where(sb.Equal("status", models.RecordStatusActive))
	sb.OrderBy("created_at ASC", "id ASC")
	if limit > 0 {
		sb.Limit(limit)
		sb.Offset(offset)
	}

	query, args := sb.Build()
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list active products")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list active products")
	}

	return products, nil
}

// Update replaces the mutable fields of a product and audits the change
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updated *models.Product, updatedBy string) (*models.Product, error) {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.Update")
	defer span.End()

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ub := database.NewUpdateBuilder()
	ub.Update("products")
	ub.Set(
		ub.Assign("code", updated.Code),
		ub.Assign("name", updated.Name),
		ub.Assign("description", updated.Description),
		ub.Assign("category", updated.Category),
		ub.Assign("unit_price", updated.UnitPrice),
		ub.Assign("unit_of_measure", updated.UnitOfMeasure),
		ub.Assign("supplier_id", updated.SupplierID),
		ub.Assign("updated_at", now),
		ub.Assign("updated_by", updatedBy),
	)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, httperror.NewHTTPError(http.StatusConflict, "a product with this code already exists")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update product")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	result := *existing
	result.Code = updated.Code
	result.Name = updated.Name
	result.Description = updated.Description
	result.Category = updated.Category
	result.UnitPrice = updated.UnitPrice
	result.UnitOfMeasure = updated.UnitOfMeasure
	result.SupplierID = updated.SupplierID
	result.UpdatedAt = now
	result.UpdatedBy = &updatedBy

	oldValues, _ := json.Marshal(existing)
	newValues, _ := json.Marshal(&result)
	if err := r.audit.Insert(txCtx, tx, &models.AuditEntry{
		TableName: models.TableProducts,
		RecordID:  id,
		Action:    models.AuditActionUpdate,
		OldValues: oldValues,
		NewValues: newValues,
		ChangedBy: updatedBy,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update product")
	}

	return &result, nil
}

// SoftDelete marks a product as deleted and audits the change. When tx
// is non-nil the delete joins the caller's transaction.
func (r *Repository) SoftDelete(ctx context.Context, tx database.Tx, id uuid.UUID, deletedBy string) error {
	ctx, span := tracing.StartSpan(ctx, "product.Repository.SoftDelete")
	defer span.End()

	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == models.RecordStatusDeleted {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("product %s not found", id))
	}

	now := time.Now().UTC()
	ub := database.NewUpdateBuilder()
	ub.Update("products")
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
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete product")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete product")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("product %s not found", id))
	}

	oldValues, _ := json.Marshal(existing)
	return r.audit.Insert(ctx, tx, &models.AuditEntry{
		TableName: models.TableProducts,
		RecordID:  id,
		Action:    models.AuditActionDelete,
		OldValues: oldValues,
		ChangedBy: deletedBy,
	})
}
