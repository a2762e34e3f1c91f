package dto

import "time"

// ── 换班模块 DTO ──

// CreateShiftExchangeRequest 发起换班申请
type CreateShiftExchangeRequest struct {
	OriginalScheduleID int64     `json:"original_schedule_id" binding:"required,min=1"`
	TargetAdminID      int64     `json:"target_admin_id"      binding:"required,min=1"`
	ProposedStartTime  time.Time `json:"proposed_start_time"  binding:"required"`
	ProposedEndTime    time.Time `json:"proposed_end_time"    binding:"required"`
	Reason             *string   `json:"reason"               binding:"omitempty,max=2000"`
}

// ExchangeDecisionRequest 接受 / 拒绝 / 撤销附带的备注
type ExchangeDecisionRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateExchangeStatusRequest 直接设置换班状态；不会改动排班
type UpdateExchangeStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"  binding:"omitempty,max=2000"`
}

// ShiftExchangeListRequest 换班列表查询参数
type ShiftExchangeListRequest struct {
	Status             string `form:"status"               binding:"omitempty,oneof=pending accepted rejected cancelled"`
	RequestingAdminID  int64  `form:"requesting_admin_id"  binding:"omitempty,min=1"`
	TargetAdminID      int64  `form:"target_admin_id"      binding:"omitempty,min=1"`
	OriginalScheduleID int64  `form:"original_schedule_id" binding:"omitempty,min=1"`
	PaginationRequest
}

// MyShiftExchangeListRequest 当前管理员相关的换班查询参数
type MyShiftExchangeListRequest struct {
	Status string `form:"status" binding:"omitempty,oneof=pending accepted rejected cancelled"`
	PaginationRequest
}

// ── 响应 ──

// ShiftExchangeResponse 换班申请响应
type ShiftExchangeResponse struct {
	ID                  int64          `json:"id"`
	OriginalScheduleID  int64          `json:"original_schedule_id"`
	OriginalSchedule    *ScheduleBrief `json:"original_schedule,omitempty"`
	RequestingAdminID   int64          `json:"requesting_admin_id"`
	RequestingAdminName string         `json:"requesting_admin_name,omitempty"`
	TargetAdminID       int64          `json:"target_admin_id"`
	TargetAdminName     string         `json:"target_admin_name,omitempty"`
	ProposedStartTime   string         `json:"proposed_start_time"`
	ProposedEndTime     string         `json:"proposed_end_time"`
	Reason              *string        `json:"reason,omitempty"`
	Status              string         `json:"status"`
	ExchangeNotes       *string        `json:"exchange_notes,omitempty"`
	AdminRole           string         `json:"admin_role,omitempty"`
	CreatedAt           string         `json:"created_at"`
	UpdatedAt           string         `json:"updated_at"`
}
