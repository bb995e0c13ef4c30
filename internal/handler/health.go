package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/stitch/cms/internal/database"
)

// Version is the reported API version.
const Version = "1.0.0"

// HealthHandler reports process and database liveness
type HealthHandler struct {
	db        database.Database
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db database.Database) *HealthHandler {
	return &HealthHandler{db: db, startedAt: time.Now()}
}

type databaseHealth struct {
	Status         string   `json:"status"`
	ResponseTimeMS *float64 `json:"response_time_ms,omitempty"`
	Error          string   `json:"error,omitempty"`
}

func (h *HealthHandler) checkDatabase(r *http.Request) databaseHealth {
	if h.db == nil {
		return databaseHealth{Status: "unhealthy", Error: "database not configured"}
	}

	start := time.Now()
	if err := h.db.Ping(r.Context()); err != nil {
		return databaseHealth{Status: "unhealthy", Error: err.Error()}
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	return databaseHealth{Status: "healthy", ResponseTimeMS: &elapsed}
}

// Check handles GET /health. Minimal response for load balancers.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			status = "degraded"
			dbStatus = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	WriteJSON(w, code, map[string]string{
		"status":   status,
		"database": dbStatus,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// Detailed handles GET /v1/health. Reports database latency, runtime
// resource usage, uptime and version in one payload.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dbHealth := h.checkDatabase(r)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	overall := "healthy"
	code := http.StatusOK
	if dbHealth.Status == "unhealthy" {
		overall = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, map[string]any{
		"status":         overall,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        Version,
		"uptime_seconds": time.Since(h.startedAt).Round(time.Second).Seconds(),
		"checks": map[string]any{
			"database": dbHealth,
			"resources": map[string]any{
				"goroutines":    runtime.NumGoroutine(),
				"heap_alloc_mb": float64(mem.HeapAlloc) / (1024 * 1024),
				"heap_sys_mb":   float64(mem.HeapSys) / (1024 * 1024),
				"num_gc":        mem.NumGC,
			},
			"response_time_ms": float64(time.Since(start).Microseconds()) / 1000,
		},
	})
}

// Database handles GET /v1/health/database
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	dbHealth := h.checkDatabase(r)

	code := http.StatusOK
	if dbHealth.Status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, dbHealth)
}
