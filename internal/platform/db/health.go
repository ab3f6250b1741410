package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats summarizes the pgx connection pool for health responses.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

// Health is the payload for the composite health check: overall status,
// server version, database pool state, and the state of the external
// services the dictation pipeline depends on.
type Health struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
	Pool      *PoolStats        `json:"pool"`
}

// CheckHealth pings the database and assembles the health payload. The
// services map comes from the caller since speech and LLM credential
// state lives in config; the database entry is filled in here from a
// live ping. Only a database failure degrades overall status —
// unconfigured optional services do not fail the check.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool, version string, services map[string]string) *Health {
	h := &Health{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version,
		Services:  map[string]string{},
		Pool:      GetPoolStats(pool),
	}
	for name, state := range services {
		h.Services[name] = state
	}

	if err := pool.Ping(ctx); err != nil {
		h.Services["database"] = "error"
		h.Pool.Healthy = false
		h.Status = "degraded"
	} else {
		h.Services["database"] = "connected"
	}
	return h
}

// HealthHandler serves the composite health check. The services callback
// runs per request so credential changes show up without a restart. A
// degraded database answers 503 so load balancers stop routing traffic.
func HealthHandler(pool *pgxpool.Pool, version string, services func() map[string]string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		var svc map[string]string
		if services != nil {
			svc = services()
		}
		h := CheckHealth(ctx, pool, version, svc)

		code := http.StatusOK
		if h.Status != "ok" {
			code = http.StatusServiceUnavailable
		}
		return c.JSON(code, h)
	}
}

// PoolHealthHandler serves the database-only health check with pool
// detail, for operators digging into connection behavior.
func PoolHealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		stats := GetPoolStats(pool)
		if err := pool.Ping(ctx); err != nil {
			stats.Healthy = false
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"error":  err.Error(),
				"pool":   stats,
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "healthy",
			"pool":   stats,
		})
	}
}
