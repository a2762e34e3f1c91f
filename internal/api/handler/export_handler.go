package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSchedules 导出排班表
// GET /api/v1/export/schedules?start_date=2025-03-01&end_date=2025-03-31
func (h *ExportHandler) ExportSchedules(c *gin.Context) {
	var req dto.ExportSchedulesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportSchedules(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoSchedules):
		response.NotFound(c, 16101, "所选日期范围内暂无排班")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 16102, "生成 Excel 文件失败")
	default:
		if !handleCommonError(c, err, 16002) {
			handleStorageError(c, err)
		}
	}
}
