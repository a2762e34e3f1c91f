package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/lindokuhlezulu42/E-LibraryLog/config"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// ── 排班模块业务错误 ──

var (
	ErrScheduleNotFound = errors.New("排班不存在")
	ErrScheduleConflict = errors.New("与已有排班时间冲突")
	ErrAssigneeNotFound = errors.New("排班归属人不存在")
	ErrInvalidICS       = errors.New("ICS 文件无效")
)

// ScheduleService 排班业务接口
//
// 冲突检测默认仅作提示，配置 scheduling.block_schedule_conflicts 后改为拒绝写入。
// 时间段按左闭右开处理，首尾相接的排班不算冲突。
type ScheduleService interface {
	Create(ctx context.Context, req *dto.CreateScheduleRequest, createdBy int64) (*dto.ScheduleMutationResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	ListByPerson(ctx context.Context, assignee model.Assignee, req *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error)
	// ListByDateRange 与 [startDate, endDate] 日历日有交集的排班
	ListByDateRange(ctx context.Context, req *dto.ScheduleRangeRequest) ([]dto.ScheduleResponse, error)
	Today(ctx context.Context, assignee model.Assignee) ([]dto.ScheduleResponse, error)
	// Upcoming now < start_time ≤ now + days 的 active 排班；days ≤ 0 时取配置默认值
	Upcoming(ctx context.Context, assignee model.Assignee, days int) ([]dto.ScheduleResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateScheduleRequest) (*dto.ScheduleMutationResponse, error)
	Delete(ctx context.Context, id int64) error
	CheckConflicts(ctx context.Context, assignee model.Assignee, start, end time.Time, excludeID int64) ([]dto.ScheduleResponse, error)
	// ImportICS 将 ICS 课表导入为 class 类型排班
	ImportICS(ctx context.Context, reader io.Reader, assignee model.Assignee, createdBy int64) (*dto.ICSImportResponse, error)
}

type scheduleService struct {
	cfg    *config.SchedulingConfig
	repo   *repository.Repository
	names  nameResolver
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(cfg *config.SchedulingConfig, repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		cfg:    cfg,
		repo:   repo,
		names:  nameResolver{people: repo.Person},
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, createdBy int64) (*dto.ScheduleMutationResponse, error) {
	scheduleType, err := model.ParseScheduleType(req.ScheduleType)
	if err != nil {
		return nil, err
	}
	personType, err := model.ParsePersonType(req.AssignedToType)
	if err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}
	assignee := model.Assignee{Type: personType, ID: req.AssignedToID}
	if err := s.ensureAssignee(ctx, assignee); err != nil {
		return nil, err
	}

	schedule := &model.Schedule{
		ScheduleType:      scheduleType,
		Title:             req.Title,
		Description:       req.Description,
		StartTime:         req.StartTime.UTC(),
		EndTime:           req.EndTime.UTC(),
		Location:          req.Location,
		RecurrencePattern: jsonColumn(req.RecurrencePattern),
		Status:            model.ScheduleActive,
		CreatedBy:         createdBy,
	}
	schedule.AssignTo(assignee)

	conflicts, err := s.findConflicts(ctx, assignee, schedule.StartTime, schedule.EndTime, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 && s.cfg.BlockScheduleConflicts {
		return nil, ErrScheduleConflict
	}

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建排班失败", zap.Stringer("assignee", assignee), zap.Error(err))
		return nil, fmt.Errorf("创建排班失败: %w", err)
	}

	s.logger.Info("排班已创建",
		zap.Int64("schedule_id", schedule.ID),
		zap.Stringer("assignee", assignee),
		zap.Int("conflicts", len(conflicts)),
	)
	return s.mutationResponse(ctx, schedule.ID, conflicts)
}

// ────────────────────── GetByID ──────────────────────

func (s *scheduleService) GetByID(ctx context.Context, id int64) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询排班失败: %w", err)
	}
	list, err := s.toResponses(ctx, []model.Schedule{*schedule})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ────────────────────── 列表查询 ──────────────────────

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	filter := scheduleFilterFrom(&req.ScheduleFilterRequest)
	if req.From != "" {
		from, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		from = from.UTC()
		filter.EndsFrom = &from
	}
	if req.To != "" {
		to, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		to = to.UTC()
		filter.StartsUntil = &to
	}
	return s.page(ctx, filter, &req.PaginationRequest)
}

func (s *scheduleService) ListByPerson(ctx context.Context, assignee model.Assignee, req *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error) {
	return s.page(ctx, repository.ScheduleFilter{
		AssignedToID:   assignee.ID,
		AssignedToType: assignee.Type,
	}, req)
}

func (s *scheduleService) ListByDateRange(ctx context.Context, req *dto.ScheduleRangeRequest) ([]dto.ScheduleResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	from, until := dayWindow(start, end, s.cfg.Location())

	filter := scheduleFilterFrom(&req.ScheduleFilterRequest)
	filter.EndsFrom = &from
	filter.StartsBefore = &until
	return s.all(ctx, filter)
}

func (s *scheduleService) Today(ctx context.Context, assignee model.Assignee) ([]dto.ScheduleResponse, error) {
	dayStart := model.StartOfDay(s.now(), s.cfg.Location())
	nextDay := dayStart.AddDate(0, 0, 1)
	return s.all(ctx, repository.ScheduleFilter{
		AssignedToID:   assignee.ID,
		AssignedToType: assignee.Type,
		Status:         model.ScheduleActive,
		StartsFrom:     &dayStart,
		StartsBefore:   &nextDay,
	})
}

func (s *scheduleService) Upcoming(ctx context.Context, assignee model.Assignee, days int) ([]dto.ScheduleResponse, error) {
	if days <= 0 {
		days = s.cfg.UpcomingDays
	}
	now := s.now().UTC()
	until := now.AddDate(0, 0, days)
	return s.all(ctx, repository.ScheduleFilter{
		AssignedToID:   assignee.ID,
		AssignedToType: assignee.Type,
		Status:         model.ScheduleActive,
		StartsAfter:    &now,
		StartsUntil:    &until,
	})
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(ctx context.Context, id int64, req *dto.UpdateScheduleRequest) (*dto.ScheduleMutationResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询排班失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询排班失败: %w", err)
	}
	if req.IsEmpty() {
		return s.mutationResponse(ctx, id, nil)
	}

	if req.ScheduleType != nil {
		st, err := model.ParseScheduleType(*req.ScheduleType)
		if err != nil {
			return nil, err
		}
		schedule.ScheduleType = st
	}
	if req.Title != nil {
		schedule.Title = *req.Title
	}
	if req.Description != nil {
		schedule.Description = req.Description
	}
	assignee := schedule.Assignee()
	if req.AssignedToType != nil {
		pt, err := model.ParsePersonType(*req.AssignedToType)
		if err != nil {
			return nil, err
		}
		assignee.Type = pt
	}
	if req.AssignedToID != nil {
		assignee.ID = *req.AssignedToID
	}
	if assignee != schedule.Assignee() {
		if err := s.ensureAssignee(ctx, assignee); err != nil {
			return nil, err
		}
		schedule.AssignTo(assignee)
	}
	if req.StartTime != nil {
		schedule.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		schedule.EndTime = req.EndTime.UTC()
	}
	if req.Location != nil {
		schedule.Location = req.Location
	}
	if len(req.RecurrencePattern) > 0 {
		schedule.RecurrencePattern = jsonColumn(req.RecurrencePattern)
	}
	if req.Status != nil {
		st, err := model.ParseScheduleStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		schedule.Status = st
	}
	if !schedule.EndTime.After(schedule.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	var conflicts []model.Schedule
	if schedule.Status == model.ScheduleActive {
		conflicts, err = s.findConflicts(ctx, schedule.Assignee(), schedule.StartTime, schedule.EndTime, schedule.ID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 && s.cfg.BlockScheduleConflicts {
			return nil, ErrScheduleConflict
		}
	}

	if err := s.repo.Schedule.Update(ctx, schedule); err != nil {
		if isNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("更新排班失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("更新排班失败: %w", err)
	}

	return s.mutationResponse(ctx, id, conflicts)
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Schedule.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrScheduleNotFound
		}
		s.logger.Error("删除排班失败", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("删除排班失败: %w", err)
	}
	return nil
}

// ────────────────────── CheckConflicts ──────────────────────

func (s *scheduleService) CheckConflicts(ctx context.Context, assignee model.Assignee, start, end time.Time, excludeID int64) ([]dto.ScheduleResponse, error) {
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	conflicts, err := s.findConflicts(ctx, assignee, start.UTC(), end.UTC(), excludeID)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, conflicts)
}

// ────────────────────── ImportICS ──────────────────────

func (s *scheduleService) ImportICS(ctx context.Context, reader io.Reader, assignee model.Assignee, createdBy int64) (*dto.ICSImportResponse, error) {
	if err := s.ensureAssignee(ctx, assignee); err != nil {
		return nil, err
	}

	occurrences, skipped, err := parseICS(reader, s.cfg.Location(), s.cfg.ICSHorizonWeeks)
	if err != nil {
		return nil, err
	}

	schedules := make([]model.Schedule, 0, len(occurrences))
	for _, occ := range occurrences {
		if s.cfg.BlockScheduleConflicts {
			conflicts, err := s.findConflicts(ctx, assignee, occ.Start, occ.End, 0)
			if err != nil {
				return nil, err
			}
			if len(conflicts) > 0 {
				skipped = append(skipped, dto.ICSSkippedEvent{
					UID:     occ.UID,
					Summary: occ.Summary,
					Reason:  fmt.Sprintf("%s 与已有排班冲突", formatTime(occ.Start)),
				})
				continue
			}
		}
		sch := model.Schedule{
			ScheduleType:      model.ScheduleClass,
			Title:             occ.Summary,
			Description:       occ.Description,
			StartTime:         occ.Start,
			EndTime:           occ.End,
			Location:          occ.Location,
			RecurrencePattern: jsonColumn(occ.Recurrence),
			Status:            model.ScheduleActive,
			CreatedBy:         createdBy,
		}
		sch.AssignTo(assignee)
		schedules = append(schedules, sch)
	}

	if len(schedules) > 0 {
		err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
			return tx.Schedule.BatchCreate(ctx, schedules)
		})
		if err != nil {
			s.logger.Error("导入 ICS 课表失败", zap.Stringer("assignee", assignee), zap.Error(err))
			return nil, fmt.Errorf("导入 ICS 课表失败: %w", err)
		}
	}

	s.logger.Info("ICS 课表已导入",
		zap.Stringer("assignee", assignee),
		zap.Int("created", len(schedules)),
		zap.Int("skipped", len(skipped)),
	)
	return &dto.ICSImportResponse{Created: len(schedules), Skipped: skipped}, nil
}

// ── 内部辅助方法 ──

func (s *scheduleService) ensureAssignee(ctx context.Context, a model.Assignee) error {
	ok, err := s.names.exists(ctx, a)
	if err != nil {
		s.logger.Error("查询排班归属人失败", zap.Stringer("assignee", a), zap.Error(err))
		return fmt.Errorf("查询排班归属人失败: %w", err)
	}
	if !ok {
		return ErrAssigneeNotFound
	}
	return nil
}

func (s *scheduleService) findConflicts(ctx context.Context, a model.Assignee, start, end time.Time, excludeID int64) ([]model.Schedule, error) {
	conflicts, err := s.repo.Schedule.FindConflicts(ctx, a, start, end, excludeID)
	if err != nil {
		s.logger.Error("排班冲突检测失败", zap.Stringer("assignee", a), zap.Error(err))
		return nil, fmt.Errorf("排班冲突检测失败: %w", err)
	}
	return conflicts, nil
}

func (s *scheduleService) page(ctx context.Context, filter repository.ScheduleFilter, page *dto.PaginationRequest) ([]dto.ScheduleResponse, int64, error) {
	schedules, total, err := s.repo.Schedule.List(ctx, filter, page.GetOffset(), page.GetLimit())
	if err != nil {
		s.logger.Error("列出排班失败", zap.Error(err))
		return nil, 0, fmt.Errorf("列出排班失败: %w", err)
	}
	list, err := s.toResponses(ctx, schedules)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *scheduleService) all(ctx context.Context, filter repository.ScheduleFilter) ([]dto.ScheduleResponse, error) {
	schedules, err := s.repo.Schedule.ListAll(ctx, filter)
	if err != nil {
		s.logger.Error("查询排班失败", zap.Error(err))
		return nil, fmt.Errorf("查询排班失败: %w", err)
	}
	return s.toResponses(ctx, schedules)
}

func (s *scheduleService) mutationResponse(ctx context.Context, id int64, conflicts []model.Schedule) (*dto.ScheduleMutationResponse, error) {
	schedule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.toResponses(ctx, conflicts)
	if err != nil {
		return nil, err
	}
	return &dto.ScheduleMutationResponse{Schedule: *schedule, Conflicts: list}, nil
}

// toResponses 批量转换并解析归属人姓名
func (s *scheduleService) toResponses(ctx context.Context, schedules []model.Schedule) ([]dto.ScheduleResponse, error) {
	result := make([]dto.ScheduleResponse, 0, len(schedules))
	if len(schedules) == 0 {
		return result, nil
	}
	assignees := make([]model.Assignee, 0, len(schedules))
	for i := range schedules {
		assignees = append(assignees, schedules[i].Assignee())
	}
	names, err := s.names.resolve(ctx, assignees)
	if err != nil {
		s.logger.Error("查询排班归属人姓名失败", zap.Error(err))
		return nil, fmt.Errorf("查询排班归属人姓名失败: %w", err)
	}
	for i := range schedules {
		result = append(result, toScheduleResponse(&schedules[i], names[schedules[i].Assignee()]))
	}
	return result, nil
}

func toScheduleResponse(sch *model.Schedule, assigneeName string) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:             sch.ID,
		ScheduleType:   string(sch.ScheduleType),
		Title:          sch.Title,
		Description:    sch.Description,
		AssignedToID:   sch.AssignedToID,
		AssignedToType: string(sch.AssignedToType),
		AssignedToName: assigneeName,
		StartTime:      formatTime(sch.StartTime),
		EndTime:        formatTime(sch.EndTime),
		Location:       sch.Location,
		Status:         string(sch.Status),
		CreatedBy:      sch.CreatedBy,
		CreatedAt:      formatTime(sch.CreatedAt),
		UpdatedAt:      formatTime(sch.UpdatedAt),
	}
	if len(sch.RecurrencePattern) > 0 {
		resp.RecurrencePattern = []byte(sch.RecurrencePattern)
	}
	if sch.Creator != nil {
		resp.CreatedByName = sch.Creator.FullName()
	}
	return resp
}

func scheduleFilterFrom(req *dto.ScheduleFilterRequest) repository.ScheduleFilter {
	return repository.ScheduleFilter{
		ScheduleType:   model.ScheduleType(req.ScheduleType),
		AssignedToID:   req.AssignedToID,
		AssignedToType: model.PersonType(req.AssignedToType),
		Status:         model.ScheduleStatus(req.Status),
	}
}

// jsonColumn 空值或 JSON null 存为 NULL
func jsonColumn(raw []byte) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}
