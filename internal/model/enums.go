package model

import (
	"errors"
	"fmt"
)

// ErrInvalidEnum 枚举值不在允许范围内
var ErrInvalidEnum = errors.New("无效的枚举值")

// ── 人员类型 ──

// PersonType 排班归属人类型
type PersonType string

const (
	PersonAdmin   PersonType = "admin"
	PersonStudent PersonType = "student"
)

func (t PersonType) Valid() bool {
	switch t {
	case PersonAdmin, PersonStudent:
		return true
	}
	return false
}

// ParsePersonType 解析人员类型
func ParsePersonType(s string) (PersonType, error) {
	t := PersonType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: person_type=%q", ErrInvalidEnum, s)
	}
	return t, nil
}

// ── 请假 ──

// LeaveType 请假类型
type LeaveType string

const (
	LeaveSick      LeaveType = "sick"
	LeavePersonal  LeaveType = "personal"
	LeaveEmergency LeaveType = "emergency"
	LeaveVacation  LeaveType = "vacation"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveSick, LeavePersonal, LeaveEmergency, LeaveVacation:
		return true
	}
	return false
}

// ParseLeaveType 解析请假类型
func ParseLeaveType(s string) (LeaveType, error) {
	t := LeaveType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: leave_type=%q", ErrInvalidEnum, s)
	}
	return t, nil
}

// LeaveStatus 请假状态
//
// pending → approved | rejected | cancelled，三者均为终态。
// 终态之间的再次流转不做拦截（见 leave service 测试）。
type LeaveStatus string

const (
	LeavePending   LeaveStatus = "pending"
	LeaveApproved  LeaveStatus = "approved"
	LeaveRejected  LeaveStatus = "rejected"
	LeaveCancelled LeaveStatus = "cancelled"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected, LeaveCancelled:
		return true
	}
	return false
}

// IsTerminal 是否终态
func (s LeaveStatus) IsTerminal() bool {
	switch s {
	case LeaveApproved, LeaveRejected, LeaveCancelled:
		return true
	case LeavePending:
		return false
	}
	return false
}

// IsDecision 是否审批结果（需记录审批人与审批时间）
func (s LeaveStatus) IsDecision() bool {
	switch s {
	case LeaveApproved, LeaveRejected:
		return true
	case LeavePending, LeaveCancelled:
		return false
	}
	return false
}

// BlocksOverlap 该状态的请假是否参与重叠检测
func (s LeaveStatus) BlocksOverlap() bool {
	switch s {
	case LeavePending, LeaveApproved:
		return true
	case LeaveRejected, LeaveCancelled:
		return false
	}
	return false
}

// ParseLeaveStatus 解析请假状态
func ParseLeaveStatus(s string) (LeaveStatus, error) {
	st := LeaveStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: leave_status=%q", ErrInvalidEnum, s)
	}
	return st, nil
}

// OverlapStatuses 参与重叠检测的请假状态
func OverlapStatuses() []LeaveStatus {
	return []LeaveStatus{LeavePending, LeaveApproved}
}

// ── 排班 ──

// ScheduleType 排班类型
type ScheduleType string

const (
	ScheduleClass ScheduleType = "class"
	ScheduleShift ScheduleType = "shift"
)

func (t ScheduleType) Valid() bool {
	switch t {
	case ScheduleClass, ScheduleShift:
		return true
	}
	return false
}

// ParseScheduleType 解析排班类型
func ParseScheduleType(s string) (ScheduleType, error) {
	t := ScheduleType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: schedule_type=%q", ErrInvalidEnum, s)
	}
	return t, nil
}

// ScheduleStatus 排班状态；completed 需显式设置
type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "active"
	ScheduleCancelled ScheduleStatus = "cancelled"
	ScheduleCompleted ScheduleStatus = "completed"
)

func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleActive, ScheduleCancelled, ScheduleCompleted:
		return true
	}
	return false
}

// ParseScheduleStatus 解析排班状态
func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	st := ScheduleStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: schedule_status=%q", ErrInvalidEnum, s)
	}
	return st, nil
}

// ── 换班 ──

// ExchangeStatus 换班申请状态
type ExchangeStatus string

const (
	ExchangePending   ExchangeStatus = "pending"
	ExchangeAccepted  ExchangeStatus = "accepted"
	ExchangeRejected  ExchangeStatus = "rejected"
	ExchangeCancelled ExchangeStatus = "cancelled"
)

func (s ExchangeStatus) Valid() bool {
	switch s {
	case ExchangePending, ExchangeAccepted, ExchangeRejected, ExchangeCancelled:
		return true
	}
	return false
}

// ParseExchangeStatus 解析换班状态
func ParseExchangeStatus(s string) (ExchangeStatus, error) {
	st := ExchangeStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: exchange_status=%q", ErrInvalidEnum, s)
	}
	return st, nil
}

// ── 异常事件 ──

// DisruptionType 异常事件类型
type DisruptionType string

const (
	DisruptionSystemOutage      DisruptionType = "system_outage"
	DisruptionClassCancellation DisruptionType = "class_cancellation"
	DisruptionEmergency         DisruptionType = "emergency"
	DisruptionMaintenance       DisruptionType = "maintenance"
)

func (t DisruptionType) Valid() bool {
	switch t {
	case DisruptionSystemOutage, DisruptionClassCancellation, DisruptionEmergency, DisruptionMaintenance:
		return true
	}
	return false
}

// ParseDisruptionType 解析异常事件类型
func ParseDisruptionType(s string) (DisruptionType, error) {
	t := DisruptionType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: disruption_type=%q", ErrInvalidEnum, s)
	}
	return t, nil
}

// Severity 严重程度
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Rank 严重程度排序值，越大越严重；非法值为 0
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// ParseSeverity 解析严重程度
func ParseSeverity(s string) (Severity, error) {
	sv := Severity(s)
	if !sv.Valid() {
		return "", fmt.Errorf("%w: severity=%q", ErrInvalidEnum, s)
	}
	return sv, nil
}

// DisruptionStatus 异常事件状态
type DisruptionStatus string

const (
	DisruptionActive        DisruptionStatus = "active"
	DisruptionInvestigating DisruptionStatus = "investigating"
	DisruptionResolved      DisruptionStatus = "resolved"
)

func (s DisruptionStatus) Valid() bool {
	switch s {
	case DisruptionActive, DisruptionInvestigating, DisruptionResolved:
		return true
	}
	return false
}

// ParseDisruptionStatus 解析异常事件状态
func ParseDisruptionStatus(s string) (DisruptionStatus, error) {
	st := DisruptionStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: disruption_status=%q", ErrInvalidEnum, s)
	}
	return st, nil
}

// ── 报表 ──

// ReportType 报表类型
type ReportType string

const (
	ReportAttendance         ReportType = "attendance"
	ReportLeaveSummary       ReportType = "leave_summary"
	ReportScheduleConflicts  ReportType = "schedule_conflicts"
	ReportStudentPerformance ReportType = "student_performance"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportAttendance, ReportLeaveSummary, ReportScheduleConflicts, ReportStudentPerformance:
		return true
	}
	return false
}

// ParseReportType 解析报表类型
func ParseReportType(s string) (ReportType, error) {
	t := ReportType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: report_type=%q", ErrInvalidEnum, s)
	}
	return t, nil
}
