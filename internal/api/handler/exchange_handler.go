package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// ShiftExchangeHandler 换班模块 HTTP 处理器
//
// 接受 / 拒绝仅限目标管理员，撤销仅限发起人。
type ShiftExchangeHandler struct {
	exchangeSvc service.ShiftExchangeService
}

// NewShiftExchangeHandler 创建 ShiftExchangeHandler
func NewShiftExchangeHandler(exchangeSvc service.ShiftExchangeService) *ShiftExchangeHandler {
	return &ShiftExchangeHandler{exchangeSvc: exchangeSvc}
}

// Create 发起换班申请
// POST /api/v1/shift-exchanges
func (h *ShiftExchangeHandler) Create(c *gin.Context) {
	var req dto.CreateShiftExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	result, err := h.exchangeSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.Created(c, result)
}

// List 换班列表
// GET /api/v1/shift-exchanges
func (h *ShiftExchangeHandler) List(c *gin.Context) {
	var req dto.ShiftExchangeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	items, total, err := h.exchangeSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// ListMine 我发起或收到的换班申请
// GET /api/v1/shift-exchanges/my
func (h *ShiftExchangeHandler) ListMine(c *gin.Context) {
	var req dto.MyShiftExchangeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	items, total, err := h.exchangeSvc.ListByAdmin(c.Request.Context(), adminID, &req)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// ListPending 我参与的待处理换班申请（发起或被请求）
// GET /api/v1/shift-exchanges/pending
func (h *ShiftExchangeHandler) ListPending(c *gin.Context) {
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	items, err := h.exchangeSvc.ListPendingForAdmin(c.Request.Context(), adminID)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.OK(c, gin.H{"list": items})
}

// GetByID 换班详情
// GET /api/v1/shift-exchanges/:id
func (h *ShiftExchangeHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 14001)
	if !ok {
		return
	}

	result, err := h.exchangeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.OK(c, result)
}

// Accept 接受换班，原排班改派给目标管理员
// POST /api/v1/shift-exchanges/:id/accept
func (h *ShiftExchangeHandler) Accept(c *gin.Context) {
	h.decide(c, exchangeTarget, h.exchangeSvc.Accept)
}

// Reject 拒绝换班
// POST /api/v1/shift-exchanges/:id/reject
func (h *ShiftExchangeHandler) Reject(c *gin.Context) {
	h.decide(c, exchangeTarget, h.exchangeSvc.Reject)
}

// Cancel 撤销换班
// POST /api/v1/shift-exchanges/:id/cancel
func (h *ShiftExchangeHandler) Cancel(c *gin.Context) {
	h.decide(c, exchangeRequester, h.exchangeSvc.Cancel)
}

// UpdateStatus 直接设置状态；设为 accepted 时与 Accept 等价
// PUT /api/v1/shift-exchanges/:id/status
func (h *ShiftExchangeHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 14001)
	if !ok {
		return
	}
	var req dto.UpdateExchangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	result, err := h.exchangeSvc.UpdateStatus(c.Request.Context(), id, req.Status, req.Notes)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除换班申请
// DELETE /api/v1/shift-exchanges/:id
func (h *ShiftExchangeHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 14001)
	if !ok {
		return
	}

	if err := h.exchangeSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.OK(c, nil)
}

// ── 内部辅助方法 ──

type exchangeParty int

const (
	exchangeTarget exchangeParty = iota
	exchangeRequester
)

type exchangeDecision func(ctx context.Context, id int64, notes *string) (*dto.ShiftExchangeResponse, error)

func (h *ShiftExchangeHandler) decide(c *gin.Context, party exchangeParty, fn exchangeDecision) {
	id, ok := parseIDParam(c, "id", 14001)
	if !ok {
		return
	}
	var req dto.ExchangeDecisionRequest
	if !bindOptionalJSON(c, &req, 14001) {
		return
	}
	adminID, ok := MustGetProfileID(c)
	if !ok {
		return
	}

	current, err := h.exchangeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	switch party {
	case exchangeTarget:
		if current.TargetAdminID != adminID {
			response.Forbidden(c, 14105, "只有目标管理员可以处理该换班申请")
			return
		}
	case exchangeRequester:
		if current.RequestingAdminID != adminID {
			response.Forbidden(c, 14106, "只有发起人可以撤销该换班申请")
			return
		}
	}

	result, err := fn(c.Request.Context(), id, req.Notes)
	if err != nil {
		h.handleExchangeError(c, err)
		return
	}
	response.OK(c, result)
}

// handleExchangeError 统一处理换班模块业务错误
func (h *ShiftExchangeHandler) handleExchangeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShiftExchangeNotFound):
		response.NotFound(c, 14101, "换班申请不存在")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 14102, "原排班不存在")
	case errors.Is(err, service.ErrTargetAdminNotFound):
		response.NotFound(c, 14103, "目标管理员不存在")
	case errors.Is(err, service.ErrInvalidExchangeStatus):
		response.BadRequest(c, 14104, "无效的换班状态")
	default:
		if !handleCommonError(c, err, 14002) {
			handleStorageError(c, err)
		}
	}
}
