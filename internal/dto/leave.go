package dto

// ── 请假模块 DTO ──

// CreateLeaveRequest 提交请假申请
// StudentID 仅管理员代提交时使用；学生本人提交时以登录身份为准
type CreateLeaveRequest struct {
	StudentID int64  `json:"student_id" binding:"omitempty,min=1"`
	LeaveType string `json:"leave_type" binding:"required,oneof=sick personal emergency vacation"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"`
	Reason    string `json:"reason"     binding:"required,min=1,max=2000"`
}

// UpdateLeaveRequest 修改请假申请（类型 / 日期 / 事由）
type UpdateLeaveRequest struct {
	LeaveType *string `json:"leave_type" binding:"omitempty,oneof=sick personal emergency vacation"`
	StartDate *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	Reason    *string `json:"reason"     binding:"omitempty,min=1,max=2000"`
}

// UpdateLeaveStatusRequest 直接设置请假状态；状态合法性由 service 校验
type UpdateLeaveStatusRequest struct {
	Status     string  `json:"status"      binding:"required"`
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=2000"`
}

// LeaveDecisionRequest 审批 / 驳回 / 撤销附带的备注
type LeaveDecisionRequest struct {
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=2000"`
}

// LeaveListRequest 请假列表查询参数
type LeaveListRequest struct {
	StudentID int64  `form:"student_id" binding:"omitempty,min=1"`
	Status    string `form:"status"     binding:"omitempty,oneof=pending approved rejected cancelled"`
	LeaveType string `form:"leave_type" binding:"omitempty,oneof=sick personal emergency vacation"`
	From      string `form:"from"       binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to"         binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// LeaveOverlapRequest 重叠检测查询参数
type LeaveOverlapRequest struct {
	StudentID int64  `form:"student_id" binding:"omitempty,min=1"`
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
	ExcludeID int64  `form:"exclude_id" binding:"omitempty,min=1"`
}

// LeaveAttentionRequest 待处理超期查询参数
type LeaveAttentionRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// ── 响应 ──

// LeaveResponse 请假申请响应
type LeaveResponse struct {
	ID             int64   `json:"id"`
	StudentID      int64   `json:"student_id"`
	StudentName    string  `json:"student_name,omitempty"`
	StudentNumber  string  `json:"student_number,omitempty"`
	LeaveType      string  `json:"leave_type"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	DurationDays   int     `json:"duration_days"`
	Reason         string  `json:"reason"`
	Status         string  `json:"status"`
	ApprovedBy     *int64  `json:"approved_by,omitempty"`
	ApprovedByName *string `json:"approved_by_name,omitempty"`
	ApprovalDate   *string `json:"approval_date,omitempty"`
	AdminNotes     *string `json:"admin_notes,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// LeaveMutationResponse 创建 / 修改结果，附带重叠的已有申请
type LeaveMutationResponse struct {
	Leave    LeaveResponse   `json:"leave"`
	Overlaps []LeaveResponse `json:"overlaps"`
}

// LeaveAttentionResponse 超期待处理的申请
type LeaveAttentionResponse struct {
	LeaveResponse
	DaysPending int `json:"days_pending"`
}
