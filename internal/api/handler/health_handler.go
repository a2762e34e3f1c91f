package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck 依赖项探活
type HealthCheck struct {
	Name string
	// Required 为 false 时探活失败只标记 degraded
	Required bool
	Ping     func(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Check 依赖探活
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := "ok"
	httpStatus := http.StatusOK
	deps := make(gin.H, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Ping(ctx); err != nil {
			deps[chk.Name] = err.Error()
			if chk.Required {
				status = "down"
				httpStatus = http.StatusServiceUnavailable
			} else if status == "ok" {
				status = "degraded"
			}
			continue
		}
		deps[chk.Name] = "ok"
	}

	c.JSON(httpStatus, gin.H{"status": status, "dependencies": deps})
}
