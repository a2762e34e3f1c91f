package model

import "time"

// 管理员在换班申请中的角色
const (
	AdminRoleRequesting = "requesting"
	AdminRoleTarget     = "target"
)

// ShiftExchange 换班申请 — 对应 shift_exchanges
type ShiftExchange struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement"                    json:"id"`
	OriginalScheduleID int64          `gorm:"not null;index"                              json:"original_schedule_id"`
	RequestingAdminID  int64          `gorm:"not null;index"                              json:"requesting_admin_id"`
	TargetAdminID      int64          `gorm:"not null;index"                              json:"target_admin_id"`
	ProposedStartTime  time.Time      `gorm:"not null"                                    json:"proposed_start_time"`
	ProposedEndTime    time.Time      `gorm:"not null"                                    json:"proposed_end_time"`
	Reason             *string        `gorm:"type:text"                                   json:"reason,omitempty"`
	Status             ExchangeStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ExchangeNotes      *string        `gorm:"type:text"                                   json:"exchange_notes,omitempty"`
	BaseModel

	// 关联
	OriginalSchedule *Schedule `gorm:"foreignKey:OriginalScheduleID" json:"original_schedule,omitempty"`
	RequestingAdmin  *Admin    `gorm:"foreignKey:RequestingAdminID"  json:"requesting_admin,omitempty"`
	TargetAdmin      *Admin    `gorm:"foreignKey:TargetAdminID"      json:"target_admin,omitempty"`
}

// TableName 指定表名
func (ShiftExchange) TableName() string { return "shift_exchanges" }

// AdminRole 返回 adminID 在该申请中的角色；同时为双方时按发起方处理
func (e *ShiftExchange) AdminRole(adminID int64) string {
	switch adminID {
	case e.RequestingAdminID:
		return AdminRoleRequesting
	case e.TargetAdminID:
		return AdminRoleTarget
	}
	return ""
}
