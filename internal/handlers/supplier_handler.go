package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	supplierrepo "github.com/Ramsey-B/clover/internal/repositories/supplier"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/export"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/validators"
)

type SupplierHandler struct {
	repo     *supplierrepo.Repository
	emitter  *events.Emitter
	validate *validator.Validate
}

func NewSupplierHandler(repo *supplierrepo.Repository, emitter *events.Emitter, validate *validator.Validate) *SupplierHandler {
	return &SupplierHandler{repo: repo, emitter: emitter, validate: validate}
}

func (h *SupplierHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/suppliers", h.Create)
	g.GET("/suppliers", h.List)
	g.GET("/suppliers/export", h.Export)
	g.GET("/suppliers/:id", h.Get)
	g.PUT("/suppliers/:id", h.Update)
	g.DELETE("/suppliers/:id", h.Delete)
}

type supplierRequest struct {
	Name           string  `json:"name" validate:"required"`
	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	ZipCode        *string `json:"zip_code"`
	ContactPerson  *string `json:"contact_person"`
	Category       *string `json:"category"`
	Status         string  `json:"status"`
}

func (r *supplierRequest) check(v *validator.Validate) error {
	if err := v.Struct(r); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "name is required and email must be valid")
	}
	if r.DocumentNumber != nil && !validators.IsDocument(*r.DocumentNumber) {
		return httperror.NewHTTPError(http.StatusBadRequest, "document_number must be a valid CPF or CNPJ")
	}
	if r.Phone != nil && !validators.IsPhone(*r.Phone) {
		return httperror.NewHTTPError(http.StatusBadRequest, "phone must have 10 or 11 digits")
	}
	if r.Status != "" && r.Status != models.RecordStatusActive && r.Status != models.RecordStatusInactive {
		return httperror.NewHTTPError(http.StatusBadRequest, "status must be active or inactive")
	}
	return nil
}

func (r *supplierRequest) toModel() *models.Supplier {
	return &models.Supplier{
		Name:           r.Name,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
		ContactPerson:  r.ContactPerson,
		Category:       r.Category,
		Status:         r.Status,
	}
}

func (h *SupplierHandler) Create(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	var req supplierRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.check(h.validate); err != nil {
		return err
	}

	created, err := h.repo.Create(c.Request().Context(), req.toModel(), user)
	if err != nil {
		return err
	}
	return CreatedResponse(c, created)
}

func (h *SupplierHandler) Get(c echo.Context) error {
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	supplier, err := h.repo.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, supplier)
}

func (h *SupplierHandler) List(c echo.Context) error {
	suppliers, err := h.repo.List(c.Request().Context(), supplierrepo.Filter{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Limit:    QueryInt(c, "limit"),
		Offset:   QueryInt(c, "offset"),
	})
	if err != nil {
		return err
	}
	return SuccessResponse(c, ListResponse{Items: suppliers, Count: len(suppliers)})
}

func (h *SupplierHandler) Update(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	var req supplierRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.check(h.validate); err != nil {
		return err
	}

	updated, err := h.repo.Update(c.Request().Context(), id, req.toModel(), user)
	if err != nil {
		return err
	}
	return SuccessResponse(c, updated)
}

func (h *SupplierHandler) Delete(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.repo.SoftDelete(ctx, nil, id, user); err != nil {
		return err
	}
	h.emitter.EmitRecordDeleted(ctx, models.TableSuppliers, id, user)
	return NoContentResponse(c)
}

func (h *SupplierHandler) Export(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return err
	}

	suppliers, err := h.repo.List(c.Request().Context(), supplierrepo.Filter{
		Status: c.QueryParam("status"),
		Limit:  500,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, format.ContentType())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+format.FileName(models.TableSuppliers)+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return export.Suppliers(c.Response(), format, suppliers)
}
