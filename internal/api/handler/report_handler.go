package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Create 保存报表
// POST /api/v1/reports
func (h *ReportHandler) Create(c *gin.Context) {
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	result, err := h.reportSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.Created(c, result)
}

// List 报表列表（不含 data）
// GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
	var req dto.ReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 17001, "参数校验失败")
		return
	}

	items, total, err := h.reportSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// GetByID 报表详情
// GET /api/v1/reports/:id
func (h *ReportHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 17001)
	if !ok {
		return
	}

	result, err := h.reportSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除报表
// DELETE /api/v1/reports/:id
func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 17001)
	if !ok {
		return
	}

	if err := h.reportSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleReportError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 17101, "报表不存在")
	case errors.Is(err, service.ErrInvalidReportData):
		response.BadRequest(c, 17102, "报表数据必须是合法的 JSON")
	default:
		if !handleCommonError(c, err, 17002) {
			handleStorageError(c, err)
		}
	}
}
