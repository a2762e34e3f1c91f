package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// DisruptionHandler 异常事件 HTTP 处理器
type DisruptionHandler struct {
	disruptionSvc service.DisruptionService
}

// NewDisruptionHandler 创建 DisruptionHandler
func NewDisruptionHandler(disruptionSvc service.DisruptionService) *DisruptionHandler {
	return &DisruptionHandler{disruptionSvc: disruptionSvc}
}

// Create 登记异常事件
// POST /api/v1/disruptions
func (h *DisruptionHandler) Create(c *gin.Context) {
	var req dto.CreateDisruptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	result, err := h.disruptionSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.Created(c, result)
}

// List 异常事件列表
// GET /api/v1/disruptions
func (h *DisruptionHandler) List(c *gin.Context) {
	var req dto.DisruptionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	items, total, err := h.disruptionSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// ListActive 未结案事件，按严重程度降序
// GET /api/v1/disruptions/active
func (h *DisruptionHandler) ListActive(c *gin.Context) {
	items, err := h.disruptionSvc.ListActive(c.Request.Context())
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// ListRecent 最近登记的事件
// GET /api/v1/disruptions/recent?limit=10
func (h *DisruptionHandler) ListRecent(c *gin.Context) {
	var req dto.RecentDisruptionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	items, err := h.disruptionSvc.ListRecent(c.Request.Context(), req.Limit)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// ListByDateRange 按日期区间查询
// GET /api/v1/disruptions/range
func (h *DisruptionHandler) ListByDateRange(c *gin.Context) {
	var req dto.DisruptionRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	items, err := h.disruptionSvc.ListByDateRange(c.Request.Context(), &req)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// ListBySchedule 影响指定排班的事件
// GET /api/v1/disruptions/by-schedule/:schedule_id
func (h *DisruptionHandler) ListBySchedule(c *gin.Context) {
	scheduleID, ok := parseIDParam(c, "schedule_id", 15001)
	if !ok {
		return
	}

	items, err := h.disruptionSvc.ListBySchedule(c.Request.Context(), scheduleID)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// GetByID 事件详情
// GET /api/v1/disruptions/:id
func (h *DisruptionHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 15001)
	if !ok {
		return
	}

	result, err := h.disruptionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 修改事件
// PUT /api/v1/disruptions/:id
func (h *DisruptionHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 15001)
	if !ok {
		return
	}
	var req dto.UpdateDisruptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 15001, "参数校验失败")
		return
	}

	result, err := h.disruptionSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, result)
}

// Resolve 结案
// POST /api/v1/disruptions/:id/resolve
func (h *DisruptionHandler) Resolve(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 15001)
	if !ok {
		return
	}
	var req dto.ResolveDisruptionRequest
	if !bindOptionalJSON(c, &req, 15001) {
		return
	}

	result, err := h.disruptionSvc.Resolve(c.Request.Context(), id, req.ResolutionNotes)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, result)
}

// Investigate 标记为调查中
// POST /api/v1/disruptions/:id/investigate
func (h *DisruptionHandler) Investigate(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 15001)
	if !ok {
		return
	}

	result, err := h.disruptionSvc.SetInvestigating(c.Request.Context(), id)
	if err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除事件
// DELETE /api/v1/disruptions/:id
func (h *DisruptionHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 15001)
	if !ok {
		return
	}

	if err := h.disruptionSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleDisruptionError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleDisruptionError 统一处理异常事件模块业务错误
func (h *DisruptionHandler) handleDisruptionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDisruptionNotFound):
		response.NotFound(c, 15101, "异常事件不存在")
	default:
		if !handleCommonError(c, err, 15002) {
			handleStorageError(c, err)
		}
	}
}
