package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// ScheduleHandler 排班模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// Create 创建排班
// POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	result, err := h.scheduleSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Created(c, result)
}

// List 排班列表；学生只能看到自己的排班
// GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}
	if !scopeToStudent(c, &req.ScheduleFilterRequest) {
		return
	}

	items, total, err := h.scheduleSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// ListByDateRange 按日期区间查询
// GET /api/v1/schedules/range?start_date=2025-03-01&end_date=2025-03-07
func (h *ScheduleHandler) ListByDateRange(c *gin.Context) {
	var req dto.ScheduleRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}
	if !scopeToStudent(c, &req.ScheduleFilterRequest) {
		return
	}

	items, err := h.scheduleSvc.ListByDateRange(c.Request.Context(), &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// GetMySchedules 我的排班（分页）
// GET /api/v1/schedules/my
func (h *ScheduleHandler) GetMySchedules(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}
	assignee, ok := currentAssignee(c)
	if !ok {
		return
	}

	items, total, err := h.scheduleSvc.ListByPerson(c.Request.Context(), assignee, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// Today 我今天的排班
// GET /api/v1/schedules/today
func (h *ScheduleHandler) Today(c *gin.Context) {
	assignee, ok := currentAssignee(c)
	if !ok {
		return
	}

	items, err := h.scheduleSvc.Today(c.Request.Context(), assignee)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// Upcoming 我近期的排班
// GET /api/v1/schedules/upcoming?days=7
func (h *ScheduleHandler) Upcoming(c *gin.Context) {
	var req dto.UpcomingScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}
	assignee, ok := currentAssignee(c)
	if !ok {
		return
	}

	items, err := h.scheduleSvc.Upcoming(c.Request.Context(), assignee, req.Days)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// CheckConflicts 检测指定时段是否与已有排班冲突
// GET /api/v1/schedules/conflicts
func (h *ScheduleHandler) CheckConflicts(c *gin.Context) {
	var req dto.ScheduleConflictRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}
	assignee, err := model.NewAssignee(req.AssignedToType, req.AssignedToID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	items, err := h.scheduleSvc.CheckConflicts(c.Request.Context(), assignee, req.StartTime, req.EndTime, req.ExcludeID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, gin.H{"has_conflict": len(items) > 0, "list": items})
}

// ImportICS 导入 ICS 课表
// POST /api/v1/schedules/import
//
// multipart/form-data, field="file"；归属人由 assigned_to_type / assigned_to_id 指定
func (h *ScheduleHandler) ImportICS(c *gin.Context) {
	var req dto.ImportICSRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}
	assignee, err := model.NewAssignee(req.AssignedToType, req.AssignedToID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 13002, "请上传 ICS 文件")
		return
	}
	defer file.Close()

	result, err := h.scheduleSvc.ImportICS(c.Request.Context(), file, assignee, adminID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.Created(c, result)
}

// GetByID 排班详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 13001)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, schedule)
}

// Update 修改排班
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 13001)
	if !ok {
		return
	}
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	result, err := h.scheduleSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除排班
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 13001)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleScheduleError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 内部辅助方法 ──

// scopeToStudent 学生查询时强制只看本人排班
func scopeToStudent(c *gin.Context, f *dto.ScheduleFilterRequest) bool {
	role, ok := MustGetRole(c)
	if !ok {
		return false
	}
	if role != RoleStudent {
		return true
	}
	profileID, ok := MustGetProfileID(c)
	if !ok {
		return false
	}
	f.AssignedToType = string(model.PersonStudent)
	f.AssignedToID = profileID
	return true
}

// handleScheduleError 统一处理排班模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 13101, "排班不存在")
	case errors.Is(err, service.ErrAssigneeNotFound):
		response.NotFound(c, 13102, "排班归属人不存在")
	case errors.Is(err, service.ErrScheduleConflict):
		response.Conflict(c, 13103, "与已有排班时间冲突")
	case errors.Is(err, service.ErrInvalidICS):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13104, "ICS 文件无效", err.Error())
	default:
		if !handleCommonError(c, err, 13002) {
			handleStorageError(c, err)
		}
	}
}
