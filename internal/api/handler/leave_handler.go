package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// LeaveHandler 请假模块 HTTP 处理器
//
// 学生只能查看自己的申请，且只能修改 / 撤销自己处于 pending 的申请；
// 管理员不受限制。
type LeaveHandler struct {
	leaveSvc service.LeaveService
}

// NewLeaveHandler 创建 LeaveHandler
func NewLeaveHandler(leaveSvc service.LeaveService) *LeaveHandler {
	return &LeaveHandler{leaveSvc: leaveSvc}
}

// Create 提交请假申请
// POST /api/v1/leave-requests
func (h *LeaveHandler) Create(c *gin.Context) {
	var req dto.CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	studentID, ok := h.resolveStudentID(c, req.StudentID)
	if !ok {
		return
	}

	result, err := h.leaveSvc.Create(c.Request.Context(), &req, studentID)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.Created(c, result)
}

// List 请假列表；学生仅返回本人申请
// GET /api/v1/leave-requests
func (h *LeaveHandler) List(c *gin.Context) {
	var req dto.LeaveListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var (
		items []dto.LeaveResponse
		total int64
		err   error
	)
	if role == RoleStudent {
		profileID, ok := MustGetProfileID(c)
		if !ok {
			return
		}
		items, total, err = h.leaveSvc.ListByStudent(c.Request.Context(), profileID, &req)
	} else {
		items, total, err = h.leaveSvc.List(c.Request.Context(), &req)
	}
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// ListPending 待审批列表（按提交时间升序）
// GET /api/v1/leave-requests/pending
func (h *LeaveHandler) ListPending(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	items, total, err := h.leaveSvc.ListPending(c.Request.Context(), &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// ListNeedingAttention 超期未处理的申请
// GET /api/v1/leave-requests/attention?days=3
func (h *LeaveHandler) ListNeedingAttention(c *gin.Context) {
	var req dto.LeaveAttentionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	items, err := h.leaveSvc.ListNeedingAttention(c.Request.Context(), req.Days)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// CheckOverlaps 检测日期是否与已有申请重叠
// GET /api/v1/leave-requests/overlaps
func (h *LeaveHandler) CheckOverlaps(c *gin.Context) {
	var req dto.LeaveOverlapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}
	studentID, ok := h.resolveStudentID(c, req.StudentID)
	if !ok {
		return
	}

	items, err := h.leaveSvc.CheckOverlaps(c.Request.Context(), studentID, req.StartDate, req.EndDate, req.ExcludeID)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// GetByID 请假详情
// GET /api/v1/leave-requests/:id
func (h *LeaveHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 11001)
	if !ok {
		return
	}

	leave, ok := h.loadAccessible(c, id, false)
	if !ok {
		return
	}
	response.OK(c, leave)
}

// Update 修改请假申请
// PUT /api/v1/leave-requests/:id
func (h *LeaveHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 11001)
	if !ok {
		return
	}
	var req dto.UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}
	if _, ok := h.loadAccessible(c, id, true); !ok {
		return
	}

	result, err := h.leaveSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateStatus 直接设置状态
// PUT /api/v1/leave-requests/:id/status
func (h *LeaveHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 11001)
	if !ok {
		return
	}
	var req dto.UpdateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	leave, err := h.leaveSvc.UpdateStatus(c.Request.Context(), id, req.Status, &adminID, req.AdminNotes)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OK(c, leave)
}

// Approve 批准
// POST /api/v1/leave-requests/:id/approve
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.decide(c, h.leaveSvc.Approve)
}

// Reject 驳回
// POST /api/v1/leave-requests/:id/reject
func (h *LeaveHandler) Reject(c *gin.Context) {
	h.decide(c, h.leaveSvc.Reject)
}

// Cancel 撤销
// POST /api/v1/leave-requests/:id/cancel
func (h *LeaveHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 11001)
	if !ok {
		return
	}
	if _, ok := h.loadAccessible(c, id, true); !ok {
		return
	}

	leave, err := h.leaveSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OK(c, leave)
}

// Delete 删除
// DELETE /api/v1/leave-requests/:id
func (h *LeaveHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 11001)
	if !ok {
		return
	}

	if err := h.leaveSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 内部辅助方法 ──

type leaveDecision func(ctx context.Context, id, adminID int64, notes *string) (*dto.LeaveResponse, error)

func (h *LeaveHandler) decide(c *gin.Context, fn leaveDecision) {
	id, ok := parseIDParam(c, "id", 11001)
	if !ok {
		return
	}
	var req dto.LeaveDecisionRequest
	if !bindOptionalJSON(c, &req, 11001) {
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	leave, err := fn(c.Request.Context(), id, adminID, req.AdminNotes)
	if err != nil {
		h.handleLeaveError(c, err)
		return
	}
	response.OK(c, leave)
}

// resolveStudentID 学生以登录身份为准；管理员必须显式指定 student_id
func (h *LeaveHandler) resolveStudentID(c *gin.Context, requested int64) (int64, bool) {
	role, ok := MustGetRole(c)
	if !ok {
		return 0, false
	}
	if role == RoleStudent {
		return MustGetProfileID(c)
	}
	if requested <= 0 {
		response.BadRequest(c, 11001, "student_id 不能为空")
		return 0, false
	}
	return requested, true
}

// loadAccessible 读取申请并校验学生的归属权；mutating 时还要求 pending
func (h *LeaveHandler) loadAccessible(c *gin.Context, id int64, mutating bool) (*dto.LeaveResponse, bool) {
	leave, err := h.leaveSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleLeaveError(c, err)
		return nil, false
	}

	role, ok := MustGetRole(c)
	if !ok {
		return nil, false
	}
	if role != RoleStudent {
		return leave, true
	}

	profileID, ok := MustGetProfileID(c)
	if !ok {
		return nil, false
	}
	if leave.StudentID != profileID {
		response.Forbidden(c, 11105, "只能操作本人的请假申请")
		return nil, false
	}
	if mutating && leave.Status != string(model.LeavePending) {
		response.Forbidden(c, 11106, "只能修改或撤销待审批的申请")
		return nil, false
	}
	return leave, true
}

// handleLeaveError 统一处理请假模块业务错误
func (h *LeaveHandler) handleLeaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeaveNotFound):
		response.NotFound(c, 11101, "请假申请不存在")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 11102, "学生不存在")
	case errors.Is(err, service.ErrInvalidLeaveStatus):
		response.BadRequest(c, 11103, "无效的请假状态")
	case errors.Is(err, service.ErrLeaveOverlap):
		response.Conflict(c, 11104, "与已有请假申请日期重叠")
	default:
		if !handleCommonError(c, err, 11002) {
			handleStorageError(c, err)
		}
	}
}
