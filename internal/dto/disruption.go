package dto

import "time"

// ── 异常事件 DTO ──

// CreateDisruptionRequest 登记异常事件
type CreateDisruptionRequest struct {
	DisruptionType    string     `json:"disruption_type"    binding:"required,oneof=system_outage class_cancellation emergency maintenance"`
	Title             string     `json:"title"              binding:"required,min=1,max=200"`
	Description       string     `json:"description"        binding:"required,min=1"`
	Severity          string     `json:"severity"           binding:"required,oneof=low medium high critical"`
	AffectedSchedules []int64    `json:"affected_schedules" binding:"omitempty,dive,min=1"`
	StartTime         time.Time  `json:"start_time"         binding:"required"`
	EndTime           *time.Time `json:"end_time"`
}

// UpdateDisruptionRequest 修改异常事件
type UpdateDisruptionRequest struct {
	Title             *string    `json:"title"              binding:"omitempty,min=1,max=200"`
	Description       *string    `json:"description"        binding:"omitempty,min=1"`
	Severity          *string    `json:"severity"           binding:"omitempty,oneof=low medium high critical"`
	AffectedSchedules *[]int64   `json:"affected_schedules" binding:"omitempty,dive,min=1"`
	EndTime           *time.Time `json:"end_time"`
	Status            *string    `json:"status"             binding:"omitempty,oneof=active investigating resolved"`
}

// ResolveDisruptionRequest 结案
type ResolveDisruptionRequest struct {
	ResolutionNotes *string `json:"resolution_notes" binding:"omitempty,max=4000"`
}

// DisruptionFilterRequest 异常事件过滤条件
type DisruptionFilterRequest struct {
	DisruptionType string `form:"disruption_type" binding:"omitempty,oneof=system_outage class_cancellation emergency maintenance"`
	Severity       string `form:"severity"        binding:"omitempty,oneof=low medium high critical"`
	Status         string `form:"status"          binding:"omitempty,oneof=active investigating resolved"`
	ReportedBy     int64  `form:"reported_by"     binding:"omitempty,min=1"`
}

// DisruptionListRequest 异常事件列表查询参数
type DisruptionListRequest struct {
	DisruptionFilterRequest
	PaginationRequest
}

// DisruptionRangeRequest 按日期区间查询
type DisruptionRangeRequest struct {
	DisruptionFilterRequest
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
}

// RecentDisruptionRequest 最近事件查询参数
type RecentDisruptionRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// ── 响应 ──

// DisruptionResponse 异常事件响应
type DisruptionResponse struct {
	ID                int64   `json:"id"`
	DisruptionType    string  `json:"disruption_type"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Severity          string  `json:"severity"`
	AffectedSchedules []int64 `json:"affected_schedules"`
	StartTime         string  `json:"start_time"`
	EndTime           *string `json:"end_time,omitempty"`
	DurationMinutes   *int64  `json:"duration_minutes,omitempty"`
	Status            string  `json:"status"`
	ReportedBy        int64   `json:"reported_by"`
	ReportedByName    string  `json:"reported_by_name,omitempty"`
	ResolutionNotes   *string `json:"resolution_notes,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}
