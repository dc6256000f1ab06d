package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	auditrepo "github.com/Ramsey-B/clover/internal/repositories/audittrail"
	"github.com/Ramsey-B/clover/pkg/models"
)

type AuditHandler struct {
	repo *auditrepo.Repository
}

func NewAuditHandler(repo *auditrepo.Repository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

func (h *AuditHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/audit", h.List)
}

func (h *AuditHandler) List(c echo.Context) error {
	filter := auditrepo.Filter{
		TableName: c.QueryParam("table_name"),
		Action:    c.QueryParam("action"),
		ChangedBy: c.QueryParam("changed_by"),
		Limit:     QueryInt(c, "limit"),
		Offset:    QueryInt(c, "offset"),
	}
	if filter.TableName != "" && !models.IsEntityTable(filter.TableName) && filter.TableName != "duplicate_candidates" {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown table %q", filter.TableName)
	}
	if raw := c.QueryParam("record_id"); raw != "" {
		id, err := ParseUUID(raw, "record_id")
		if err != nil {
			return err
		}
		filter.RecordID = &id
	}

	entries, err := h.repo.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return SuccessResponse(c, ListResponse{Items: entries, Count: len(entries)})
}
