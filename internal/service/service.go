package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/config"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Leave      LeaveService
	Schedule   ScheduleService
	Exchange   ShiftExchangeService
	Disruption DisruptionService
	Report     ReportService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	sc := &cfg.Scheduling
	return &Service{
		Leave:      NewLeaveService(sc, repo, logger),
		Schedule:   NewScheduleService(sc, repo, logger),
		Exchange:   NewShiftExchangeService(repo, logger),
		Disruption: NewDisruptionService(sc, repo, logger),
		Report:     NewReportService(repo, logger),
		Export:     NewExportService(sc, repo, logger),
	}
}

// ── 通用业务错误 ──

var (
	ErrInvalidDate      = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("开始日期不能晚于结束日期")
	ErrInvalidTimeRange = errors.New("结束时间必须晚于开始时间")
)

// ── 内部辅助方法 ──

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// parseDateRange 解析闭区间日期并校验 start ≤ end
func parseDateRange(start, end string) (time.Time, time.Time, error) {
	s, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return s, e, nil
}

// dayWindow 将闭区间日期转为 loc 时区下的 [start 零点, end 次日零点)，返回 UTC
func dayWindow(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc).UTC()
	until := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).UTC()
	return from, until
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dto.TimeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dto.DateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// ── 归属人姓名解析 ──

// nameResolver 按归属人类型分派到管理员表或学生表批量查询姓名
type nameResolver struct {
	people repository.PersonRepository
}

func (r nameResolver) resolve(ctx context.Context, assignees []model.Assignee) (map[model.Assignee]string, error) {
	var adminIDs, studentIDs []int64
	for _, a := range assignees {
		switch a.Type {
		case model.PersonAdmin:
			adminIDs = append(adminIDs, a.ID)
		case model.PersonStudent:
			studentIDs = append(studentIDs, a.ID)
		}
	}

	names := make(map[model.Assignee]string, len(assignees))
	admins, err := r.people.AdminNames(ctx, dedupe(adminIDs))
	if err != nil {
		return nil, err
	}
	for id, name := range admins {
		names[model.AdminAssignee(id)] = name
	}
	students, err := r.people.StudentNames(ctx, dedupe(studentIDs))
	if err != nil {
		return nil, err
	}
	for id, name := range students {
		names[model.StudentAssignee(id)] = name
	}
	return names, nil
}

// exists 归属人档案是否存在
func (r nameResolver) exists(ctx context.Context, a model.Assignee) (bool, error) {
	var err error
	switch a.Type {
	case model.PersonAdmin:
		_, err = r.people.GetAdmin(ctx, a.ID)
	case model.PersonStudent:
		_, err = r.people.GetStudent(ctx, a.ID)
	default:
		return false, nil
	}
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func dedupe(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
