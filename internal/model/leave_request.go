package model

import "time"

// LeaveRequest 请假申请 — 对应 leave_requests
//
// StartDate/EndDate 为闭区间日期（UTC 零点），start ≤ end 由 service 校验。
type LeaveRequest struct {
	ID           int64       `gorm:"primaryKey;autoIncrement"                    json:"id"`
	StudentID    int64       `gorm:"not null;index"                              json:"student_id"`
	LeaveType    LeaveType   `gorm:"type:varchar(20);not null"                   json:"leave_type"`
	StartDate    time.Time   `gorm:"type:date;not null"                          json:"start_date"`
	EndDate      time.Time   `gorm:"type:date;not null"                          json:"end_date"`
	Reason       string      `gorm:"type:text;not null"                          json:"reason"`
	Status       LeaveStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ApprovedBy   *int64      `gorm:"index"                                       json:"approved_by,omitempty"`
	ApprovalDate *time.Time  `                                                   json:"approval_date,omitempty"`
	AdminNotes   *string     `gorm:"type:text"                                   json:"admin_notes,omitempty"`
	BaseModel

	// 关联
	Student  *Student `gorm:"foreignKey:StudentID"  json:"student,omitempty"`
	Approver *Admin   `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

// TableName 指定表名
func (LeaveRequest) TableName() string { return "leave_requests" }

// DurationDays 请假天数（含首尾两天）
func (l *LeaveRequest) DurationDays() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// Overlaps 与给定闭区间是否重叠
func (l *LeaveRequest) Overlaps(start, end time.Time) bool {
	return DatesOverlap(l.StartDate, l.EndDate, start, end)
}
