package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lindokuhlezulu42/E-LibraryLog/config"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/api/handler"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/api/middleware"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/jwt"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/redis"
)

const (
	roleAdmin   = handler.RoleAdmin
	roleStudent = handler.RoleStudent
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", h.Health.Check)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	admin := middleware.RoleAuth(roleAdmin)
	anyone := middleware.RoleAuth(roleAdmin, roleStudent)

	// 请假模块（学生归属权校验在 Handler 层）
	leaves := v1.Group("/leave-requests", anyone)
	{
		leaves.POST("", h.Leave.Create)
		leaves.GET("", h.Leave.List)
		leaves.GET("/overlaps", h.Leave.CheckOverlaps)
		leaves.GET("/pending", admin, h.Leave.ListPending)
		leaves.GET("/attention", admin, h.Leave.ListNeedingAttention)
		leaves.GET("/:id", h.Leave.GetByID)
		leaves.PUT("/:id", h.Leave.Update)
		leaves.POST("/:id/cancel", h.Leave.Cancel)
		leaves.PUT("/:id/status", admin, h.Leave.UpdateStatus)
		leaves.POST("/:id/approve", admin, h.Leave.Approve)
		leaves.POST("/:id/reject", admin, h.Leave.Reject)
		leaves.DELETE("/:id", admin, h.Leave.Delete)
	}

	// 排班模块
	schedules := v1.Group("/schedules", anyone)
	{
		schedules.GET("", h.Schedule.List)
		schedules.GET("/range", h.Schedule.ListByDateRange)
		schedules.GET("/my", h.Schedule.GetMySchedules)
		schedules.GET("/today", h.Schedule.Today)
		schedules.GET("/upcoming", h.Schedule.Upcoming)
		schedules.GET("/conflicts", admin, h.Schedule.CheckConflicts)
		schedules.POST("", admin, h.Schedule.Create)
		schedules.POST("/import", admin, h.Schedule.ImportICS)
		schedules.GET("/:id", h.Schedule.GetByID)
		schedules.PUT("/:id", admin, h.Schedule.Update)
		schedules.DELETE("/:id", admin, h.Schedule.Delete)
	}

	// 换班模块（仅管理员）
	exchanges := v1.Group("/shift-exchanges", admin)
	{
		exchanges.POST("", h.Exchange.Create)
		exchanges.GET("", h.Exchange.List)
		exchanges.GET("/my", h.Exchange.ListMine)
		exchanges.GET("/pending", h.Exchange.ListPending)
		exchanges.GET("/:id", h.Exchange.GetByID)
		exchanges.POST("/:id/accept", h.Exchange.Accept)
		exchanges.POST("/:id/reject", h.Exchange.Reject)
		exchanges.POST("/:id/cancel", h.Exchange.Cancel)
		exchanges.PUT("/:id/status", h.Exchange.UpdateStatus)
		exchanges.DELETE("/:id", h.Exchange.Delete)
	}

	// 异常事件模块
	disruptions := v1.Group("/disruptions", admin)
	{
		disruptions.POST("", h.Disruption.Create)
		disruptions.GET("", h.Disruption.List)
		disruptions.GET("/active", h.Disruption.ListActive)
		disruptions.GET("/recent", h.Disruption.ListRecent)
		disruptions.GET("/range", h.Disruption.ListByDateRange)
		disruptions.GET("/by-schedule/:schedule_id", h.Disruption.ListBySchedule)
		disruptions.GET("/:id", h.Disruption.GetByID)
		disruptions.PUT("/:id", h.Disruption.Update)
		disruptions.POST("/:id/resolve", h.Disruption.Resolve)
		disruptions.POST("/:id/investigate", h.Disruption.Investigate)
		disruptions.DELETE("/:id", h.Disruption.Delete)
	}

	// 报表模块
	reports := v1.Group("/reports", admin)
	{
		reports.POST("", h.Report.Create)
		reports.GET("", h.Report.List)
		reports.GET("/:id", h.Report.GetByID)
		reports.DELETE("/:id", h.Report.Delete)
	}

	// 导出模块
	export := v1.Group("/export", admin)
	{
		export.GET("/schedules", h.Export.ExportSchedules)
	}

	return r
}
