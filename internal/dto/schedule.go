package dto

import (
	"encoding/json"
	"time"
)

// ── 排班模块 DTO ──

// CreateScheduleRequest 创建排班
type CreateScheduleRequest struct {
	ScheduleType      string          `json:"schedule_type"      binding:"required,oneof=class shift"`
	Title             string          `json:"title"              binding:"required,min=1,max=200"`
	Description       *string         `json:"description"        binding:"omitempty,max=2000"`
	AssignedToID      int64           `json:"assigned_to_id"     binding:"required,min=1"`
	AssignedToType    string          `json:"assigned_to_type"   binding:"required,oneof=admin student"`
	StartTime         time.Time       `json:"start_time"         binding:"required"`
	EndTime           time.Time       `json:"end_time"           binding:"required"`
	Location          *string         `json:"location"           binding:"omitempty,max=100"`
	RecurrencePattern json.RawMessage `json:"recurrence_pattern"`
}

// UpdateScheduleRequest 修改排班；任意字段均可修改，包括状态和归属人
type UpdateScheduleRequest struct {
	ScheduleType      *string         `json:"schedule_type"    binding:"omitempty,oneof=class shift"`
	Title             *string         `json:"title"            binding:"omitempty,min=1,max=200"`
	Description       *string         `json:"description"      binding:"omitempty,max=2000"`
	AssignedToID      *int64          `json:"assigned_to_id"   binding:"omitempty,min=1"`
	AssignedToType    *string         `json:"assigned_to_type" binding:"omitempty,oneof=admin student"`
	StartTime         *time.Time      `json:"start_time"`
	EndTime           *time.Time      `json:"end_time"`
	Location          *string         `json:"location"         binding:"omitempty,max=100"`
	RecurrencePattern json.RawMessage `json:"recurrence_pattern"`
	Status            *string         `json:"status"           binding:"omitempty,oneof=active cancelled completed"`
}

// IsEmpty 是否未提交任何修改
func (r *UpdateScheduleRequest) IsEmpty() bool {
	return r.ScheduleType == nil && r.Title == nil && r.Description == nil &&
		r.AssignedToID == nil && r.AssignedToType == nil &&
		r.StartTime == nil && r.EndTime == nil && r.Location == nil &&
		len(r.RecurrencePattern) == 0 && r.Status == nil
}

// ScheduleFilterRequest 排班通用过滤条件
type ScheduleFilterRequest struct {
	ScheduleType   string `form:"schedule_type"    binding:"omitempty,oneof=class shift"`
	AssignedToID   int64  `form:"assigned_to_id"   binding:"omitempty,min=1"`
	AssignedToType string `form:"assigned_to_type" binding:"omitempty,oneof=admin student"`
	Status         string `form:"status"           binding:"omitempty,oneof=active cancelled completed"`
}

// ScheduleListRequest 排班列表查询参数；From/To 为 RFC3339 时间
type ScheduleListRequest struct {
	ScheduleFilterRequest
	From string `form:"from" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	PaginationRequest
}

// ScheduleRangeRequest 按日期区间查询排班
type ScheduleRangeRequest struct {
	ScheduleFilterRequest
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
}

// ScheduleConflictRequest 冲突检测查询参数
type ScheduleConflictRequest struct {
	AssignedToID   int64     `form:"assigned_to_id"   binding:"required,min=1"`
	AssignedToType string    `form:"assigned_to_type" binding:"required,oneof=admin student"`
	StartTime      time.Time `form:"start_time"       binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime        time.Time `form:"end_time"         binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	ExcludeID      int64     `form:"exclude_id"       binding:"omitempty,min=1"`
}

// UpcomingScheduleRequest 近期排班查询参数
type UpcomingScheduleRequest struct {
	Days int `form:"days" binding:"omitempty,min=1,max=90"`
}

// ImportICSRequest 导入 ICS 课表的表单字段；文件字段名为 file
type ImportICSRequest struct {
	AssignedToID   int64  `form:"assigned_to_id"   binding:"required,min=1"`
	AssignedToType string `form:"assigned_to_type" binding:"required,oneof=admin student"`
}

// ── 响应 ──

// ScheduleResponse 排班响应
type ScheduleResponse struct {
	ID                int64           `json:"id"`
	ScheduleType      string          `json:"schedule_type"`
	Title             string          `json:"title"`
	Description       *string         `json:"description,omitempty"`
	AssignedToID      int64           `json:"assigned_to_id"`
	AssignedToType    string          `json:"assigned_to_type"`
	AssignedToName    string          `json:"assigned_to_name,omitempty"`
	StartTime         string          `json:"start_time"`
	EndTime           string          `json:"end_time"`
	Location          *string         `json:"location,omitempty"`
	RecurrencePattern json.RawMessage `json:"recurrence_pattern,omitempty"`
	Status            string          `json:"status"`
	CreatedBy         int64           `json:"created_by"`
	CreatedByName     string          `json:"created_by_name,omitempty"`
	CreatedAt         string          `json:"created_at"`
	UpdatedAt         string          `json:"updated_at"`
}

// ScheduleMutationResponse 创建 / 修改结果，附带冲突的已有排班
type ScheduleMutationResponse struct {
	Schedule  ScheduleResponse   `json:"schedule"`
	Conflicts []ScheduleResponse `json:"conflicts"`
}

// ScheduleBrief 排班简要信息
type ScheduleBrief struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ICSSkippedEvent 导入时被跳过的事件
type ICSSkippedEvent struct {
	UID     string `json:"uid,omitempty"`
	Summary string `json:"summary,omitempty"`
	Reason  string `json:"reason"`
}

// ICSImportResponse ICS 导入结果
type ICSImportResponse struct {
	Created int               `json:"created"`
	Skipped []ICSSkippedEvent `json:"skipped"`
}
