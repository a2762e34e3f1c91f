package model

import (
	"strings"
	"time"
)

// Admin 管理员档案 — 对应 admins
type Admin struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"           json:"id"`
	UserID     int64     `gorm:"not null;index"                     json:"user_id"`
	FirstName  string    `gorm:"type:varchar(100);not null"         json:"first_name"`
	LastName   string    `gorm:"type:varchar(100);not null"         json:"last_name"`
	Phone      *string   `gorm:"type:varchar(20)"                   json:"phone,omitempty"`
	Department *string   `gorm:"type:varchar(100)"                  json:"department,omitempty"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (Admin) TableName() string { return "admins" }

// FullName 姓名
func (a *Admin) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Student 学生档案 — 对应 students
type Student struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"               json:"id"`
	UserID        int64     `gorm:"not null;index"                         json:"user_id"`
	StudentNumber string    `gorm:"column:student_id;type:varchar(50);not null;uniqueIndex" json:"student_number"`
	FirstName     string    `gorm:"type:varchar(100);not null"             json:"first_name"`
	LastName      string    `gorm:"type:varchar(100);not null"             json:"last_name"`
	GradeLevel    *int      `                                              json:"grade_level,omitempty"`
	ClassSection  *string   `gorm:"type:varchar(10)"                       json:"class_section,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"     json:"created_at"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// FullName 姓名
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
