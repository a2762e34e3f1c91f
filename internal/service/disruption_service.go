package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lindokuhlezulu42/E-LibraryLog/config"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// ErrDisruptionNotFound 异常事件不存在
var ErrDisruptionNotFound = errors.New("异常事件不存在")

const defaultRecentDisruptions = 10

// DisruptionService 异常事件业务接口
type DisruptionService interface {
	Create(ctx context.Context, req *dto.CreateDisruptionRequest, reportedBy int64) (*dto.DisruptionResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.DisruptionResponse, error)
	List(ctx context.Context, req *dto.DisruptionListRequest) ([]dto.DisruptionResponse, int64, error)
	// ListActive 按严重程度、开始时间倒序
	ListActive(ctx context.Context) ([]dto.DisruptionResponse, error)
	ListBySchedule(ctx context.Context, scheduleID int64) ([]dto.DisruptionResponse, error)
	ListByDateRange(ctx context.Context, req *dto.DisruptionRangeRequest) ([]dto.DisruptionResponse, error)
	ListRecent(ctx context.Context, limit int) ([]dto.DisruptionResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateDisruptionRequest) (*dto.DisruptionResponse, error)
	// Resolve 置为 resolved，结束时间取当前时间
	Resolve(ctx context.Context, id int64, notes *string) (*dto.DisruptionResponse, error)
	SetInvestigating(ctx context.Context, id int64) (*dto.DisruptionResponse, error)
	Delete(ctx context.Context, id int64) error
}

type disruptionService struct {
	cfg    *config.SchedulingConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDisruptionService 创建 DisruptionService 实例
func NewDisruptionService(cfg *config.SchedulingConfig, repo *repository.Repository, logger *zap.Logger) DisruptionService {
	return &disruptionService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

func (s *disruptionService) Create(ctx context.Context, req *dto.CreateDisruptionRequest, reportedBy int64) (*dto.DisruptionResponse, error) {
	dType, err := model.ParseDisruptionType(req.DisruptionType)
	if err != nil {
		return nil, err
	}
	severity, err := model.ParseSeverity(req.Severity)
	if err != nil {
		return nil, err
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	d := &model.Disruption{
		DisruptionType: dType,
		Title:          req.Title,
		Description:    req.Description,
		Severity:       severity,
		StartTime:      req.StartTime.UTC(),
		Status:         model.DisruptionActive,
		ReportedBy:     reportedBy,
	}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		d.EndTime = &end
	}
	if err := d.SetScheduleIDs(req.AffectedSchedules); err != nil {
		return nil, err
	}

	if err := s.repo.Disruption.Create(ctx, d); err != nil {
		s.logger.Error("登记异常事件失败", zap.String("type", string(dType)), zap.Error(err))
		return nil, fmt.Errorf("登记异常事件失败: %w", err)
	}

	s.logger.Info("异常事件已登记",
		zap.Int64("disruption_id", d.ID),
		zap.String("severity", string(severity)),
		zap.Int64s("affected_schedules", req.AffectedSchedules),
	)
	return s.GetByID(ctx, d.ID)
}

func (s *disruptionService) GetByID(ctx context.Context, id int64) (*dto.DisruptionResponse, error) {
	d, err := s.repo.Disruption.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDisruptionNotFound
		}
		s.logger.Error("查询异常事件失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询异常事件失败: %w", err)
	}
	resp := toDisruptionResponse(d)
	return &resp, nil
}

func (s *disruptionService) List(ctx context.Context, req *dto.DisruptionListRequest) ([]dto.DisruptionResponse, int64, error) {
	list, total, err := s.repo.Disruption.List(ctx, disruptionFilterFrom(&req.DisruptionFilterRequest), req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("列出异常事件失败", zap.Error(err))
		return nil, 0, fmt.Errorf("列出异常事件失败: %w", err)
	}
	return toDisruptionResponses(list), total, nil
}

func (s *disruptionService) ListActive(ctx context.Context) ([]dto.DisruptionResponse, error) {
	list, err := s.repo.Disruption.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询进行中异常事件失败", zap.Error(err))
		return nil, fmt.Errorf("查询进行中异常事件失败: %w", err)
	}
	return toDisruptionResponses(list), nil
}

func (s *disruptionService) ListBySchedule(ctx context.Context, scheduleID int64) ([]dto.DisruptionResponse, error) {
	list, err := s.repo.Disruption.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("按排班查询异常事件失败", zap.Int64("schedule_id", scheduleID), zap.Error(err))
		return nil, fmt.Errorf("按排班查询异常事件失败: %w", err)
	}
	return toDisruptionResponses(list), nil
}

func (s *disruptionService) ListByDateRange(ctx context.Context, req *dto.DisruptionRangeRequest) ([]dto.DisruptionResponse, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	from, until := dayWindow(start, end, s.cfg.Location())

	filter := disruptionFilterFrom(&req.DisruptionFilterRequest)
	filter.StartsFrom = &from
	filter.StartsBefore = &until
	list, err := s.repo.Disruption.ListAll(ctx, filter)
	if err != nil {
		s.logger.Error("按日期查询异常事件失败", zap.Error(err))
		return nil, fmt.Errorf("按日期查询异常事件失败: %w", err)
	}
	return toDisruptionResponses(list), nil
}

func (s *disruptionService) ListRecent(ctx context.Context, limit int) ([]dto.DisruptionResponse, error) {
	if limit <= 0 {
		limit = defaultRecentDisruptions
	}
	list, err := s.repo.Disruption.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("查询最近异常事件失败", zap.Error(err))
		return nil, fmt.Errorf("查询最近异常事件失败: %w", err)
	}
	return toDisruptionResponses(list), nil
}

func (s *disruptionService) Update(ctx context.Context, id int64, req *dto.UpdateDisruptionRequest) (*dto.DisruptionResponse, error) {
	d, err := s.repo.Disruption.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrDisruptionNotFound
		}
		s.logger.Error("查询异常事件失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询异常事件失败: %w", err)
	}

	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Severity != nil {
		sv, err := model.ParseSeverity(*req.Severity)
		if err != nil {
			return nil, err
		}
		d.Severity = sv
	}
	if req.AffectedSchedules != nil {
		if err := d.SetScheduleIDs(*req.AffectedSchedules); err != nil {
			return nil, err
		}
	}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		if !end.After(d.StartTime) {
			return nil, ErrInvalidTimeRange
		}
		d.EndTime = &end
	}
	if req.Status != nil {
		st, err := model.ParseDisruptionStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		d.Status = st
	}

	if err := s.repo.Disruption.Update(ctx, d); err != nil {
		if isNotFound(err) {
			return nil, ErrDisruptionNotFound
		}
		s.logger.Error("更新异常事件失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("更新异常事件失败: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *disruptionService) Resolve(ctx context.Context, id int64, notes *string) (*dto.DisruptionResponse, error) {
	res := repository.DisruptionResolution{EndTime: s.now().UTC(), ResolutionNotes: notes}
	if err := s.repo.Disruption.Resolve(ctx, id, res); err != nil {
		if isNotFound(err) {
			return nil, ErrDisruptionNotFound
		}
		s.logger.Error("异常事件结案失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("异常事件结案失败: %w", err)
	}
	s.logger.Info("异常事件已结案", zap.Int64("disruption_id", id))
	return s.GetByID(ctx, id)
}

func (s *disruptionService) SetInvestigating(ctx context.Context, id int64) (*dto.DisruptionResponse, error) {
	if err := s.repo.Disruption.SetStatus(ctx, id, model.DisruptionInvestigating); err != nil {
		if isNotFound(err) {
			return nil, ErrDisruptionNotFound
		}
		s.logger.Error("更新异常事件状态失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("更新异常事件状态失败: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *disruptionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Disruption.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrDisruptionNotFound
		}
		s.logger.Error("删除异常事件失败", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("删除异常事件失败: %w", err)
	}
	return nil
}

// ── 内部辅助方法 ──

func disruptionFilterFrom(req *dto.DisruptionFilterRequest) repository.DisruptionFilter {
	return repository.DisruptionFilter{
		DisruptionType: model.DisruptionType(req.DisruptionType),
		Severity:       model.Severity(req.Severity),
		Status:         model.DisruptionStatus(req.Status),
		ReportedBy:     req.ReportedBy,
	}
}

func toDisruptionResponses(list []model.Disruption) []dto.DisruptionResponse {
	result := make([]dto.DisruptionResponse, 0, len(list))
	for i := range list {
		result = append(result, toDisruptionResponse(&list[i]))
	}
	return result
}

func toDisruptionResponse(d *model.Disruption) dto.DisruptionResponse {
	ids, err := d.ScheduleIDs()
	if err != nil {
		// 库中存量数据格式异常时按空列表返回
		ids = []int64{}
	}
	resp := dto.DisruptionResponse{
		ID:                d.ID,
		DisruptionType:    string(d.DisruptionType),
		Title:             d.Title,
		Description:       d.Description,
		Severity:          string(d.Severity),
		AffectedSchedules: ids,
		StartTime:         formatTime(d.StartTime),
		EndTime:           formatTimePtr(d.EndTime),
		DurationMinutes:   d.DurationMinutes(),
		Status:            string(d.Status),
		ReportedBy:        d.ReportedBy,
		ResolutionNotes:   d.ResolutionNotes,
		CreatedAt:         formatTime(d.CreatedAt),
		UpdatedAt:         formatTime(d.UpdatedAt),
	}
	if d.Reporter != nil {
		resp.ReportedByName = d.Reporter.FullName()
	}
	return resp
}
