package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// ── 换班模块业务错误 ──

var (
	ErrShiftExchangeNotFound = errors.New("换班申请不存在")
	ErrInvalidExchangeStatus = errors.New("无效的换班状态")
	ErrTargetAdminNotFound   = errors.New("目标管理员不存在")
)

// ShiftExchangeService 换班业务接口
type ShiftExchangeService interface {
	Create(ctx context.Context, req *dto.CreateShiftExchangeRequest, requestingAdminID int64) (*dto.ShiftExchangeResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ShiftExchangeResponse, error)
	List(ctx context.Context, req *dto.ShiftExchangeListRequest) ([]dto.ShiftExchangeResponse, int64, error)
	// ListByAdmin 该管理员发起或被指定的申请，每条附带 admin_role
	ListByAdmin(ctx context.Context, adminID int64, req *dto.MyShiftExchangeListRequest) ([]dto.ShiftExchangeResponse, int64, error)
	ListPendingForAdmin(ctx context.Context, adminID int64) ([]dto.ShiftExchangeResponse, error)
	// Accept 在同一事务内将申请置为 accepted，并把原排班转给目标管理员、改为提议时段
	Accept(ctx context.Context, id int64, notes *string) (*dto.ShiftExchangeResponse, error)
	Reject(ctx context.Context, id int64, notes *string) (*dto.ShiftExchangeResponse, error)
	Cancel(ctx context.Context, id int64, notes *string) (*dto.ShiftExchangeResponse, error)
	// UpdateStatus 直接设置状态；accepted 走 Accept 流程
	UpdateStatus(ctx context.Context, id int64, status string, notes *string) (*dto.ShiftExchangeResponse, error)
	Delete(ctx context.Context, id int64) error
}

type shiftExchangeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewShiftExchangeService 创建 ShiftExchangeService 实例
func NewShiftExchangeService(repo *repository.Repository, logger *zap.Logger) ShiftExchangeService {
	return &shiftExchangeService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftExchangeService) Create(ctx context.Context, req *dto.CreateShiftExchangeRequest, requestingAdminID int64) (*dto.ShiftExchangeResponse, error) {
	if !req.ProposedEndTime.After(req.ProposedStartTime) {
		return nil, ErrInvalidTimeRange
	}
	if _, err := s.repo.Schedule.GetByID(ctx, req.OriginalScheduleID); err != nil {
		if isNotFound(err) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询原排班失败", zap.Int64("schedule_id", req.OriginalScheduleID), zap.Error(err))
		return nil, fmt.Errorf("查询原排班失败: %w", err)
	}
	if _, err := s.repo.Person.GetAdmin(ctx, req.TargetAdminID); err != nil {
		if isNotFound(err) {
			return nil, ErrTargetAdminNotFound
		}
		s.logger.Error("查询目标管理员失败", zap.Int64("admin_id", req.TargetAdminID), zap.Error(err))
		return nil, fmt.Errorf("查询目标管理员失败: %w", err)
	}

	exchange := &model.ShiftExchange{
		OriginalScheduleID: req.OriginalScheduleID,
		RequestingAdminID:  requestingAdminID,
		TargetAdminID:      req.TargetAdminID,
		ProposedStartTime:  req.ProposedStartTime.UTC(),
		ProposedEndTime:    req.ProposedEndTime.UTC(),
		Reason:             req.Reason,
		Status:             model.ExchangePending,
	}
	if err := s.repo.Exchange.Create(ctx, exchange); err != nil {
		s.logger.Error("创建换班申请失败", zap.Int64("schedule_id", req.OriginalScheduleID), zap.Error(err))
		return nil, fmt.Errorf("创建换班申请失败: %w", err)
	}

	s.logger.Info("换班申请已创建",
		zap.Int64("exchange_id", exchange.ID),
		zap.Int64("schedule_id", exchange.OriginalScheduleID),
		zap.Int64("requesting_admin_id", requestingAdminID),
		zap.Int64("target_admin_id", exchange.TargetAdminID),
	)
	return s.GetByID(ctx, exchange.ID)
}

// ────────────────────── 查询 ──────────────────────

func (s *shiftExchangeService) GetByID(ctx context.Context, id int64) (*dto.ShiftExchangeResponse, error) {
	exchange, err := s.repo.Exchange.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrShiftExchangeNotFound
		}
		s.logger.Error("查询换班申请失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询换班申请失败: %w", err)
	}
	resp := toShiftExchangeResponse(exchange)
	return &resp, nil
}

func (s *shiftExchangeService) List(ctx context.Context, req *dto.ShiftExchangeListRequest) ([]dto.ShiftExchangeResponse, int64, error) {
	filter := repository.ExchangeFilter{
		Status:             model.ExchangeStatus(req.Status),
		RequestingAdminID:  req.RequestingAdminID,
		TargetAdminID:      req.TargetAdminID,
		OriginalScheduleID: req.OriginalScheduleID,
	}
	exchanges, total, err := s.repo.Exchange.List(ctx, filter, req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("列出换班申请失败", zap.Error(err))
		return nil, 0, fmt.Errorf("列出换班申请失败: %w", err)
	}
	return toShiftExchangeResponses(exchanges, 0), total, nil
}

func (s *shiftExchangeService) ListByAdmin(ctx context.Context, adminID int64, req *dto.MyShiftExchangeListRequest) ([]dto.ShiftExchangeResponse, int64, error) {
	filter := repository.ExchangeFilter{
		Status:          model.ExchangeStatus(req.Status),
		InvolvedAdminID: adminID,
	}
	exchanges, total, err := s.repo.Exchange.List(ctx, filter, req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("列出管理员换班申请失败", zap.Int64("admin_id", adminID), zap.Error(err))
		return nil, 0, fmt.Errorf("列出管理员换班申请失败: %w", err)
	}
	return toShiftExchangeResponses(exchanges, adminID), total, nil
}

func (s *shiftExchangeService) ListPendingForAdmin(ctx context.Context, adminID int64) ([]dto.ShiftExchangeResponse, error) {
	exchanges, err := s.repo.Exchange.ListAll(ctx, repository.ExchangeFilter{
X, zap.Int64("admin_id", adminID), zap.Error(err))
		return nil, fmt.Errorf("查询待处理换班申请失败: %w", err)
	}
	return toShiftExchangeResponses(exchanges, adminID), nil
}

// ────────────────────── Accept ──────────────────────

func (s *shiftExchangeService) Accept(ctx context.Context, id int64, notes *string) (*dto.ShiftExchangeResponse, error) {
	var scheduleID int64
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Exchange.MarkAccepted(ctx, id, notes); err != nil {
			if isNotFound(err) {
				return ErrShiftExchangeNotFound
			}
			return fmt.Errorf("更新换班状态失败: %w", err)
		}

		exchange, err := tx.Exchange.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("读取换班申请失败: %w", err)
		}
		scheduleID = exchange.OriginalScheduleID

		err = tx.Schedule.Reassign(ctx,
			exchange.OriginalScheduleID,
			model.AdminAssignee(exchange.TargetAdminID),
			exchange.ProposedStartTime,
			exchange.ProposedEndTime,
		)
		if err != nil {
			if isNotFound(err) {
				return ErrScheduleNotFound
			}
			return fmt.Errorf("转移排班失败: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrShiftExchangeNotFound) || errors.Is(err, ErrScheduleNotFound) {
			return nil, err
		}
		s.logger.Error("接受换班申请失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("接受换班申请失败: %w", err)
	}

	s.logger.Info("换班申请已接受", zap.Int64("exchange_id", id), zap.Int64("schedule_id", scheduleID))
	return s.GetByID(ctx, id)
}

// ────────────────────── 其他状态流转 ──────────────────────

func (s *shiftExchangeService) Reject(ctx context.Context, id int64, notes *string) (*dto.ShiftExchangeResponse, error) {
	return s.setStatus(ctx, id, model.ExchangeRejected, notes)
}

func (s *shiftExchangeService) Cancel(ctx context.Context, id int64, notes *string) (*dto.ShiftExchangeResponse, error) {
	return s.setStatus(ctx, id, model.ExchangeCancelled, notes)
}

func (s *shiftExchangeService) UpdateStatus(ctx context.Context, id int64, status string, notes *string) (*dto.ShiftExchangeResponse, error) {
	st, err := model.ParseExchangeStatus(status)
	if err != nil {
		return nil, ErrInvalidExchangeStatus
	}
	if st == model.ExchangeAccepted {
		return s.Accept(ctx, id, notes)
	}
	return s.setStatus(ctx, id, st, notes)
}

func (s *shiftExchangeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Exchange.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrShiftExchangeNotFound
		}
		s.logger.Error("删除换班申请失败", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("删除换班申请失败: %w", err)
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *shiftExchangeService) setStatus(ctx context.Context, id int64, status model.ExchangeStatus, notes *string) (*dto.ShiftExchangeResponse, error) {
	if err := s.repo.Exchange.UpdateStatus(ctx, id, status, notes); err != nil {
		if isNotFound(err) {
			return nil, ErrShiftExchangeNotFound
		}
		s.logger.Error("更新换班状态失败", zap.Int64("id", id), zap.String("status", string(status)), zap.Error(err))
		return nil, fmt.Errorf("更新换班状态失败: %w", err)
	}
	s.logger.Info("换班状态已更新", zap.Int64("exchange_id", id), zap.String("status", string(status)))
	return s.GetByID(ctx, id)
}

// toShiftExchangeResponses viewerID > 0 时填充 admin_role
func toShiftExchangeResponses(exchanges []model.ShiftExchange, viewerID int64) []dto.ShiftExchangeResponse {
	result := make([]dto.ShiftExchangeResponse, 0, len(exchanges))
	for i := range exchanges {
		resp := toShiftExchangeResponse(&exchanges[i])
		if viewerID > 0 {
			resp.AdminRole = exchanges[i].AdminRole(viewerID)
		}
		result = append(result, resp)
	}
	return result
}

func toShiftExchangeResponse(e *model.ShiftExchange) dto.ShiftExchangeResponse {
	resp := dto.ShiftExchangeResponse{
		ID:                 e.ID,
		OriginalScheduleID: e.OriginalScheduleID,
		RequestingAdminID:  e.RequestingAdminID,
		TargetAdminID:      e.TargetAdminID,
		ProposedStartTime:  formatTime(e.ProposedStartTime),
		ProposedEndTime:    formatTime(e.ProposedEndTime),
		Reason:             e.Reason,
		Status:             string(e.Status),
		ExchangeNotes:      e.ExchangeNotes,
		CreatedAt:          formatTime(e.CreatedAt),
		UpdatedAt:          formatTime(e.UpdatedAt),
	}
	if e.OriginalSchedule != nil {
		resp.OriginalSchedule = &dto.ScheduleBrief{
			ID:        e.OriginalSchedule.ID,
			Title:     e.OriginalSchedule.Title,
			StartTime: formatTime(e.OriginalSchedule.StartTime),
			EndTime:   formatTime(e.OriginalSchedule.EndTime),
		}
	}
	if e.RequestingAdmin != nil {
		resp.RequestingAdminName = e.RequestingAdmin.FullName()
	}
	if e.TargetAdmin != nil {
		resp.TargetAdminName = e.TargetAdmin.FullName()
	}
	return resp
}

