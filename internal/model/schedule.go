package model

import (
	"time"

	"gorm.io/datatypes"
)

// Schedule 排班（课程 / 值班）— 对应 schedules
//
// 归属人为 (assigned_to_type, assigned_to_id) 二元组，通过 Assignee() 读取。
// 时间区间按左闭右开处理，首尾相接的两段排班不冲突。
type Schedule struct {
	ID                int64          `gorm:"primaryKey;autoIncrement"                    json:"id"`
	ScheduleType      ScheduleType   `gorm:"type:varchar(10);not null"                   json:"schedule_type"`
	Title             string         `gorm:"type:varchar(200);not null"                  json:"title"`
	Description       *string        `gorm:"type:text"                                   json:"description,omitempty"`
	AssignedToID      int64          `gorm:"not null"                                    json:"assigned_to_id"`
	AssignedToType    PersonType     `gorm:"type:varchar(10);not null"                   json:"assigned_to_type"`
	StartTime         time.Time      `gorm:"not null"                                    json:"start_time"`
	EndTime           time.Time      `gorm:"not null"                                    json:"end_time"`
	Location          *string        `gorm:"type:varchar(100)"                           json:"location,omitempty"`
	RecurrencePattern datatypes.JSON `                                                   json:"recurrence_pattern,omitempty"`
	Status            ScheduleStatus `gorm:"type:varchar(20);not null;default:'active'"  json:"status"`
	CreatedBy         int64          `gorm:"not null;index"                              json:"created_by"`
	BaseModel

	// 关联
	Creator *Admin `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// Assignee 归属人
func (s *Schedule) Assignee() Assignee {
	return Assignee{Type: s.AssignedToType, ID: s.AssignedToID}
}

// AssignTo 设置归属人
func (s *Schedule) AssignTo(a Assignee) {
	s.AssignedToType = a.Type
	s.AssignedToID = a.ID
}
