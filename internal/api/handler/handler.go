package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	apperrors "github.com/lindokuhlezulu42/E-LibraryLog/pkg/errors"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Leave      *LeaveHandler
	Schedule   *ScheduleHandler
	Exchange   *ShiftExchangeHandler
	Disruption *DisruptionHandler
	Report     *ReportHandler
	Export     *ExportHandler
	Health     *HealthHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, checks ...HealthCheck) *Handler {
	return &Handler{
		Leave:      NewLeaveHandler(svc.Leave),
		Schedule:   NewScheduleHandler(svc.Schedule),
		Exchange:   NewShiftExchangeHandler(svc.Exchange),
		Disruption: NewDisruptionHandler(svc.Disruption),
		Report:     NewReportHandler(svc.Report),
		Export:     NewExportHandler(svc.Export),
		Health:     NewHealthHandler(checks...),
	}
}

// ── 通用错误映射 ──

// handleCommonError 处理各模块共用的参数类业务错误，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error, code int) bool {
	switch {
	case errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidTimeRange):
		response.BadRequest(c, code, err.Error())
	case errors.Is(err, model.ErrInvalidEnum):
		response.BadRequest(c, code, "枚举参数无效")
	default:
		return false
	}
	return true
}

// handleStorageError 未识别的错误按存储层失败处理
func handleStorageError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case apperrors.IsConnectionFailure(err):
		response.ServiceUnavailable(c)
	case apperrors.IsDuplicateKey(err):
		response.Conflict(c, 50900, "数据已存在")
	default:
		response.InternalError(c)
	}
}
