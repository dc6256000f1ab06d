package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	productrepo "github.com/Ramsey-B/clover/internal/repositories/product"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/export"
	"github.com/Ramsey-B/clover/pkg/models"
)

type ProductHandler struct {
	repo     *productrepo.Repository
	emitter  *events.Emitter
	validate *validator.Validate
}

func NewProductHandler(repo *productrepo.Repository, emitter *events.Emitter, validate *validator.Validate) *ProductHandler {
	return &ProductHandler{repo: repo, emitter: emitter, validate: validate}
}

func (h *ProductHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/products", h.Create)
	g.GET("/products", h.List)
	g.GET("/products/export", h.Export)
	g.GET("/products/:id", h.Get)
	g.PUT("/products/:id", h.Update)
	g.DELETE("/products/:id", h.Delete)
}

type productRequest struct {
	Code          string     `json:"code" validate:"required"`
	Name          string     `json:"name" validate:"required"`
	Description   *string    `json:"description"`
	Category      *string    `json:"category"`
	UnitPrice     *float64   `json:"unit_price" validate:"omitempty,gte=0"`
	UnitOfMeasure *string    `json:"unit_of_measure"`
	SupplierID    *uuid.UUID `json:"supplier_id"`
	Status        string     `json:"status"`
}

func (r *productRequest) check(v *validator.Validate) error {
	if err := v.Struct(r); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "code and name are required and unit_price cannot be negative")
	}
	if r.Status != "" && r.Status != models.RecordStatusActive && r.Status != models.RecordStatusInactive {
		return httperror.NewHTTPError(http.StatusBadRequest, "status must be active or inactive")
	}
	return nil
}

func (r *productRequest) toModel() *models.Product {
	return &models.Product{
		Code:          r.Code,
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		UnitPrice:     r.UnitPrice,
		UnitOfMeasure: r.UnitOfMeasure,
		SupplierID:    r.SupplierID,
		Status:        r.Status,
	}
}

func (h *ProductHandler) Create(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	var req productRequest
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

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	product, err := h.repo.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	filter := productrepo.Filter{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Limit:    QueryInt(c, "limit"),
		Offset:   QueryInt(c, "offset"),
	}
	if raw := c.QueryParam("supplier_id"); raw != "" {
		id, err := ParseUUID(raw, "supplier_id")
		if err != nil {
			return err
		}
		filter.SupplierID = &id
	}

	products, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return SuccessResponse(c, ListResponse{Items: products, Count: len(products)})
}

func (h *ProductHandler) Update(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	var req productRequest
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

func (h *ProductHandler) Delete(c echo.Context) error {
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
	h.emitter.EmitRecordDeleted(ctx, models.TableProducts, id, user)
	return NoContentResponse(c)
}

func (h *ProductHandler) Export(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return err
	}

	products, err := h.repo.List(c.Request().Context(), productrepo.Filter{
		Status: c.QueryParam("status"),
		Limit:  500,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, format.ContentType())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+format.FileName(models.TableProducts)+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return export.Products(c.Response(), format, products)
}
