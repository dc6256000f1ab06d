package handlers

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/appcontext"
)

// ParseUUID parses a path or query parameter as a UUID.
func ParseUUID(value, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "%s must be a valid UUID", name)
	}
	return id, nil
}

// RequireUser returns the acting user from the request context. Mutating
// endpoints refuse anonymous calls so the audit trail always has an actor.
func RequireUser(ctx echo.Context) (string, error) {
	user := appcontext.GetUserID(ctx.Request().Context())
	if user == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "the X-User-ID header is required")
	}
	return user, nil
}

// QueryInt parses an optional integer query parameter.
func QueryInt(ctx echo.Context, name string) int {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// QueryFloat parses an optional float query parameter, returning fallback
// when absent or malformed.
func QueryFloat(ctx echo.Context, name string, fallback float64) float64 {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

// ListResponse wraps collection payloads with their length.
type ListResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

func SuccessResponse(ctx echo.Context, body interface{}) error {
	return ctx.JSON(http.StatusOK, body)
}

func CreatedResponse(ctx echo.Context, body interface{}) error {
	return ctx.JSON(http.StatusCreated, body)
}

func NoContentResponse(ctx echo.Context) error {
	return ctx.NoContent(http.StatusNoContent)
}
