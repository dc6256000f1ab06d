package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	clientrepo "github.com/Ramsey-B/clover/internal/repositories/client"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/export"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/validators"
)

type ClientHandler struct {
	repo     *clientrepo.Repository
	emitter  *events.Emitter
	validate *validator.Validate
}

func NewClientHandler(repo *clientrepo.Repository, emitter *events.Emitter, validate *validator.Validate) *ClientHandler {
	return &ClientHandler{repo: repo, emitter: emitter, validate: validate}
}

func (h *ClientHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/clients", h.Create)
	g.GET("/clients", h.List)
	g.GET("/clients/export", h.Export)
	g.GET("/clients/:id", h.Get)
	g.PUT("/clients/:id", h.Update)
	g.DELETE("/clients/:id", h.Delete)
}

type clientRequest struct {
	Name           string  `json:"name" validate:"required"`
	DocumentType   *string `json:"document_type"`
	DocumentNumber *string `json:"document_number"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone"`
	Address        *string `json:"address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	ZipCode        *string `json:"zip_code"`
	Category       *string `json:"category"`
	Status         string  `json:"status"`
}

func (r *clientRequest) check(v *validator.Validate) error {
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

func (r *clientRequest) toModel() *models.Client {
	return &models.Client{
		Name:           r.Name,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		City:           r.City,
		State:          r.State,
		ZipCode:        r.ZipCode,
		Category:       r.Category,
		Status:         r.Status,
	}
}

func (h *ClientHandler) Create(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	var req clientRequest
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

func (h *ClientHandler) Get(c echo.Context) error {
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	client, err := h.repo.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, client)
}

func (h *ClientHandler) List(c echo.Context) error {
	clients, err := h.repo.List(c.Request().Context(), clientrepo.Filter{
		Status:   c.QueryParam("status"),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Limit:    QueryInt(c, "limit"),
		Offset:   QueryInt(c, "offset"),
	})
	if err != nil {
		return err
	}
	return SuccessResponse(c, ListResponse{Items: clients, Count: len(clients)})
}

func (h *ClientHandler) Update(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	var req clientRequest
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

func (h *ClientHandler) Delete(c echo.Context) error {
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
	h.emitter.EmitRecordDeleted(ctx, models.TableClients, id, user)
	return NoContentResponse(c)
}

func (h *ClientHandler) Export(c echo.Context) error {
	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return err
	}

	clients, err := h.repo.List(c.Request().Context(), clientrepo.Filter{
		Status: c.QueryParam("status"),
		Limit:  500,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, format.ContentType())
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+format.FileName(models.TableClients)+`"`)
	c.Response().WriteHeader(http.StatusOK)
	return export.Clients(c.Response(), format, clients)
}
