package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/database"
)

type fakeDB struct {
	database.DB
	pingErr error
}

func (f *fakeDB) PingContext(ctx context.Context) error {
	return f.pingErr
}

func request(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProbeRoutes(t *testing.T) {
	e := echo.New()
	checker := NewChecker(&fakeDB{})
	checker.SetReady(true)
	checker.Register(e)

	assert.Equal(t, http.StatusOK, request(e, "/health/live").Code)
	assert.Equal(t, http.StatusOK, request(e, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, request(e, "/api/v1/health").Code)
}

func TestReadinessBeforeStartupFinishes(t *testing.T) {
	e := echo.New()
	checker := NewChecker(&fakeDB{})
	checker.Register(e)

	rec := request(e, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "starting")
}

func TestReadinessDegradedOnDatabaseFailure(t *testing.T) {
	e := echo.New()
	checker := NewChecker(&fakeDB{pingErr: context.DeadlineExceeded})
	checker.SetReady(true)
	checker.Register(e)

	rec := request(e, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}
