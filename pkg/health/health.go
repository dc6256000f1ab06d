package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/database"
)

// Checker answers liveness and readiness probes. Readiness is flipped on
// once startup finishes and stays gated on a database ping.
type Checker struct {
	db    database.DB
	mu    sync.RWMutex
	ready bool
}

func NewChecker(db database.DB) *Checker {
	return &Checker{db: db}
}

func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

func (c *Checker) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

type status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Liveness reports that the process is up.
func (c *Checker) Liveness(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, status{Status: "ok"})
}

// Readiness reports whether the service can take traffic.
func (c *Checker) Readiness(ctx echo.Context) error {
	if !c.IsReady() {
		return ctx.JSON(http.StatusServiceUnavailable, status{Status: "starting"})
	}

	checks := map[string]string{"database": "ok"}
	code := http.StatusOK
	if err := c.pingDatabase(ctx.Request().Context()); err != nil {
		checks["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	result := status{Status: "ok", Checks: checks}
	if code != http.StatusOK {
		result.Status = "degraded"
	}
	return ctx.JSON(code, result)
}

func (c *Checker) pingDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// Register mounts the probe routes on the root of the server. The
// /api/v1/health alias keeps the probe reachable through gateways that
// only forward the API prefix.
func (c *Checker) Register(e *echo.Echo) {
	e.GET("/health/live", c.Liveness)
	e.GET("/health/ready", c.Readiness)
	e.GET("/api/v1/health", c.Liveness)
}
