package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	candidaterepo "github.com/Ramsey-B/clover/internal/repositories/duplicatecandidate"
	"github.com/Ramsey-B/clover/pkg/detection"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/review"
)

type DuplicateHandler struct {
	engine  *detection.Engine
	reviews *review.Service
	repo    *candidaterepo.Repository
}

func NewDuplicateHandler(engine *detection.Engine, reviews *review.Service, repo *candidaterepo.Repository) *DuplicateHandler {
	return &DuplicateHandler{engine: engine, reviews: reviews, repo: repo}
}

func (h *DuplicateHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/duplicates/detect", h.Detect)
	g.POST("/duplicates/detect-all", h.DetectAll)
	g.GET("/duplicates", h.List)
	g.GET("/duplicates/counts", h.Counts)
	g.GET("/duplicates/pair", h.GetPair)
	g.GET("/duplicates/records/:table/:id", h.ListByRecord)
	g.GET("/duplicates/:id/details", h.Details)
	g.POST("/duplicates/:id/merge", h.Merge)
	g.POST("/duplicates/:id/dismiss", h.Dismiss)
}

type detectRequest struct {
	EntityTable string  `json:"entity_table"`
	Threshold   float64 `json:"threshold"`
}

type detectResponse struct {
	EntityTable string                       `json:"entity_table"`
	NewPairs    int                          `json:"new_pairs"`
	Candidates  []*models.DuplicateCandidate `json:"candidates"`
}

func (h *DuplicateHandler) Detect(c echo.Context) error {
	if _, err := RequireUser(c); err != nil {
		return err
	}

	var req detectRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.EntityTable == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "entity_table is required")
	}
	// threshold may come in the body or as ?threshold=
	threshold := QueryFloat(c, "threshold", req.Threshold)

	created, err := h.engine.Detect(c.Request().Context(), req.EntityTable, threshold)
	if err != nil {
		return err
	}
	return SuccessResponse(c, detectResponse{
		EntityTable: req.EntityTable,
		NewPairs:    len(created),
		Candidates:  created,
	})
}

func (h *DuplicateHandler) DetectAll(c echo.Context) error {
	if _, err := RequireUser(c); err != nil {
		return err
	}

	var req detectRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	summaries, err := h.engine.DetectAll(c.Request().Context(), QueryFloat(c, "threshold", req.Threshold))
	if err != nil {
		return err
	}
	return SuccessResponse(c, summaries)
}

func (h *DuplicateHandler) List(c echo.Context) error {
	if table := c.QueryParam("entity_table"); table != "" && !models.IsEntityTable(table) {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown entity table %q", table)
	}

	candidates, err := h.repo.List(c.Request().Context(), candidaterepo.Filter{
		EntityTable: c.QueryParam("entity_table"),
		Status:      c.QueryParam("status"),
		Limit:       QueryInt(c, "limit"),
		Offset:      QueryInt(c, "offset"),
	})
	if err != nil {
		return err
	}
	return SuccessResponse(c, ListResponse{Items: candidates, Count: len(candidates)})
}

func (h *DuplicateHandler) Counts(c echo.Context) error {
	counts, err := h.repo.CountByStatus(c.Request().Context())
	if err != nil {
		return err
	}
	return SuccessResponse(c, ListResponse{Items: counts, Count: len(counts)})
}

// GetPair answers whether two specific records have been flagged,
// regardless of the order they are passed in.
func (h *DuplicateHandler) GetPair(c echo.Context) error {
	table := c.QueryParam("entity_table")
	if !models.IsEntityTable(table) {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown entity table %q", table)
	}
	recordA, err := ParseUUID(c.QueryParam("record_a"), "record_a")
	if err != nil {
		return err
	}
	recordB, err := ParseUUID(c.QueryParam("record_b"), "record_b")
	if err != nil {
		return err
	}

	candidate, err := h.repo.GetByRecordPair(c.Request().Context(), table, recordA, recordB)
	if err != nil {
		return err
	}
	if candidate == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "no duplicate candidate covers this pair")
	}
	return SuccessResponse(c, candidate)
}

func (h *DuplicateHandler) ListByRecord(c echo.Context) error {
	table := c.Param("table")
	if !models.IsEntityTable(table) {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown entity table %q", table)
	}
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	candidates, err := h.repo.ListByRecord(c.Request().Context(), table, id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, ListResponse{Items: candidates, Count: len(candidates)})
}

func (h *DuplicateHandler) Details(c echo.Context) error {
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	details, err := h.reviews.Details(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return SuccessResponse(c, details)
}

type mergeRequest struct {
	KeepRecordID uuid.UUID `json:"keep_record_id"`
}

func (h *DuplicateHandler) Merge(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	var req mergeRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.KeepRecordID == uuid.Nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "keep_record_id is required")
	}

	result, err := h.reviews.Merge(c.Request().Context(), id, req.KeepRecordID, user)
	if err != nil {
		return err
	}
	return SuccessResponse(c, result)
}

func (h *DuplicateHandler) Dismiss(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	id, err := ParseUUID(c.Param("id"), "id")
	if err != nil {
		return err
	}

	candidate, err := h.reviews.Dismiss(c.Request().Context(), id, user)
	if err != nil {
		return err
	}
	return SuccessResponse(c, candidate)
}
