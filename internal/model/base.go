package model

import (
	"fmt"
	"time"
)

// BaseModel 通用时间戳字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── 排班归属人 ──

// Assignee 排班归属人：类型 + 档案 ID
// 被引用的表由 Type 决定（admins 或 students），因此不建外键
type Assignee struct {
	Type PersonType
	ID   int64
}

// AdminAssignee 管理员归属人
func AdminAssignee(id int64) Assignee {
	return Assignee{Type: PersonAdmin, ID: id}
}

// StudentAssignee 学生归属人
func StudentAssignee(id int64) Assignee {
	return Assignee{Type: PersonStudent, ID: id}
}

// NewAssignee 由外部输入构造归属人
func NewAssignee(personType string, id int64) (Assignee, error) {
	t, err := ParsePersonType(personType)
	if err != nil {
		return Assignee{}, err
	}
	a := Assignee{Type: t, ID: id}
	if !a.Valid() {
		return Assignee{}, fmt.Errorf("%w: assignee_id=%d", ErrInvalidEnum, id)
	}
	return a, nil
}

// Valid 类型合法且 ID 为正
func (a Assignee) Valid() bool {
	return a.Type.Valid() && a.ID > 0
}

func (a Assignee) String() string {
	return fmt.Sprintf("%s:%d", a.Type, a.ID)
}

// ── 区间判定 ──

// DatesOverlap 闭区间日期重叠：[aStart, aEnd] 与 [bStart, bEnd] 共享至少一天
// 与请假重叠检测 SQL（start_date <= ? AND end_date >= ?）等价
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// TimesConflict 左闭右开时间冲突：首尾相接（aEnd == bStart）不算冲突
// 与排班冲突检测 SQL（start_time < ? AND end_time > ?）等价
func TimesConflict(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DateOf 取 t 在 loc 时区下的日历日期，返回该日期的 UTC 零点
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StartOfDay 取 t 在 loc 时区下当天零点，返回 UTC 时间
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
}
