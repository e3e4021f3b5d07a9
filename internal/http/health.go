package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accesslearn/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthCheck is an extra dependency reported by /health. A failing
// critical check makes the service unhealthy, any other one degraded.
type HealthCheck struct {
	Name     string
	Critical bool
	Check    func() error
}

type HealthController struct {
	db      *database.Database
	version string
	checks  []HealthCheck
}

func NewHealthController(db *database.Database, version string, checks ...HealthCheck) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
		checks:  checks,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	for _, check := range h.checks {
		if err := check.Check(); err != nil {
			checks[check.Name] = "error: " + err.Error()
			if check.Critical {
				status = "unhealthy"
			} else if status == "healthy" {
				status = "degraded"
			}
			continue
		}
		checks[check.Name] = "ok"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
