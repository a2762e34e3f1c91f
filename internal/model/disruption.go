package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gorm.io/datatypes"
)

// Disruption 异常事件 — 对应 disruptions
type Disruption struct {
	ID                int64            `gorm:"primaryKey;autoIncrement"                   json:"id"`
	DisruptionType    DisruptionType   `gorm:"type:varchar(30);not null"                  json:"disruption_type"`
	Title             string           `gorm:"type:varchar(200);not null"                 json:"title"`
	Description       string           `gorm:"type:text;not null"                         json:"description"`
	Severity          Severity         `gorm:"type:varchar(10);not null"                  json:"severity"`
	AffectedSchedules datatypes.JSON   `                                                  json:"affected_schedules,omitempty"`
	StartTime         time.Time        `gorm:"not null"                                   json:"start_time"`
	EndTime           *time.Time       `                                                  json:"end_time,omitempty"`
	Status            DisruptionStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ReportedBy        int64            `gorm:"not null;index"                             json:"reported_by"`
	ResolutionNotes   *string          `gorm:"type:text"                                  json:"resolution_notes,omitempty"`
	BaseModel

	// 关联
	Reporter *Admin `gorm:"foreignKey:ReportedBy" json:"reporter,omitempty"`
}

// TableName 指定表名
func (Disruption) TableName() string { return "disruptions" }

// ScheduleIDs 解析受影响的排班 ID 列表
func (d *Disruption) ScheduleIDs() ([]int64, error) {
	if len(d.AffectedSchedules) == 0 {
		return []int64{}, nil
	}
	var ids []int64
	if err := json.Unmarshal(d.AffectedSchedules, &ids); err != nil {
		return nil, fmt.Errorf("解析 affected_schedules 失败: %w", err)
	}
	return ids, nil
}

// SetScheduleIDs 写入受影响的排班 ID 列表；空列表存为 NULL
func (d *Disruption) SetScheduleIDs(ids []int64) error {
	if len(ids) == 0 {
		d.AffectedSchedules = nil
		return nil
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("序列化 affected_schedules 失败: %w", err)
	}
	d.AffectedSchedules = datatypes.JSON(raw)
	return nil
}

// DurationMinutes 持续分钟数（四舍五入）；未结束时返回 nil
func (d *Disruption) DurationMinutes() *int64 {
	if d.EndTime == nil {
		return nil
	}
	m := int64(math.Round(d.EndTime.Sub(d.StartTime).Minutes()))
	return &m
}
