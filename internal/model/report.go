package model

import (
	"time"

	"gorm.io/datatypes"
)

// Report 已生成的报表 — 对应 reports
// Data 为生成时固化的 JSON 结果，本服务不做聚合计算
type Report struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"           json:"id"`
	ReportType     ReportType     `gorm:"type:varchar(30);not null"          json:"report_type"`
	Title          string         `gorm:"type:varchar(200);not null"         json:"title"`
	Description    *string        `gorm:"type:text"                          json:"description,omitempty"`
	GeneratedBy    int64          `gorm:"not null;index"                     json:"generated_by"`
	Data           datatypes.JSON `gorm:"not null"                           json:"data"`
	Filters        datatypes.JSON `                                          json:"filters,omitempty"`
	DateRangeStart *time.Time     `gorm:"type:date"                          json:"date_range_start,omitempty"`
	DateRangeEnd   *time.Time     `gorm:"type:date"                          json:"date_range_end,omitempty"`
	FilePath       *string        `gorm:"type:varchar(500)"                  json:"file_path,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	Generator *Admin `gorm:"foreignKey:GeneratedBy" json:"generator,omitempty"`
}

// TableName 指定表名
func (Report) TableName() string { return "reports" }
