package dto

import "encoding/json"

// ── 报表模块 DTO ──

// CreateReportRequest 保存已生成的报表
type CreateReportRequest struct {
	ReportType     string          `json:"report_type"      binding:"required,oneof=attendance leave_summary schedule_conflicts student_performance"`
	Title          string          `json:"title"            binding:"required,min=1,max=200"`
	Description    *string         `json:"description"      binding:"omitempty,max=2000"`
	Data           json.RawMessage `json:"data"             binding:"required"`
	Filters        json.RawMessage `json:"filters"`
	DateRangeStart *string         `json:"date_range_start" binding:"omitempty,datetime=2006-01-02"`
	DateRangeEnd   *string         `json:"date_range_end"   binding:"omitempty,datetime=2006-01-02"`
	FilePath       *string         `json:"file_path"        binding:"omitempty,max=500"`
}

// ReportListRequest 报表列表查询参数
type ReportListRequest struct {
	ReportType  string `form:"report_type"  binding:"omitempty,oneof=attendance leave_summary schedule_conflicts student_performance"`
	GeneratedBy int64  `form:"generated_by" binding:"omitempty,min=1"`
	PaginationRequest
}

// ExportSchedulesRequest 导出排班 Excel
type ExportSchedulesRequest struct {
	ScheduleFilterRequest
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
}

// ── 响应 ──

// ReportResponse 报表响应
type ReportResponse struct {
	ID              int64           `json:"id"`
	ReportType      string          `json:"report_type"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	GeneratedBy     int64           `json:"generated_by"`
	GeneratedByName string          `json:"generated_by_name,omitempty"`
	Data            json.RawMessage `json:"data"`
	Filters         json.RawMessage `json:"filters,omitempty"`
	DateRangeStart  *string         `json:"date_range_start,omitempty"`
	DateRangeEnd    *string         `json:"date_range_end,omitempty"`
	FilePath        *string         `json:"file_path,omitempty"`
	CreatedAt       string          `json:"created_at"`
}
