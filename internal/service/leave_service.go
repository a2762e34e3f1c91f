package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lindokuhlezulu42/E-LibraryLog/config"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// ── 请假模块业务错误 ──

var (
	ErrLeaveNotFound      = errors.New("请假申请不存在")
	ErrInvalidLeaveStatus = errors.New("无效的请假状态")
	ErrLeaveOverlap       = errors.New("与已有请假申请日期重叠")
	ErrStudentNotFound    = errors.New("学生不存在")
)

// LeaveService 请假业务接口
//
// 重叠检测默认仅作提示：结果随创建 / 修改结果一并返回，
// 配置 scheduling.block_leave_overlaps 后改为拒绝写入。
type LeaveService interface {
	Create(ctx context.Context, req *dto.CreateLeaveRequest, studentID int64) (*dto.LeaveMutationResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.LeaveResponse, error)
	List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error)
	ListByStudent(ctx context.Context, studentID int64, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error)
	ListPending(ctx context.Context, req *dto.PaginationRequest) ([]dto.LeaveResponse, int64, error)
	// ListNeedingAttention 待审批已满 days 天的申请，最早提交的在前；days ≤ 0 时取配置默认值
	ListNeedingAttention(ctx context.Context, days int) ([]dto.LeaveAttentionResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateLeaveRequest) (*dto.LeaveMutationResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string, approvedBy *int64, adminNotes *string) (*dto.LeaveResponse, error)
	Approve(ctx context.Context, id, adminID int64, adminNotes *string) (*dto.LeaveResponse, error)
	Reject(ctx context.Context, id, adminID int64, adminNotes *string) (*dto.LeaveResponse, error)
	Cancel(ctx context.Context, id int64) (*dto.LeaveResponse, error)
	Delete(ctx context.Context, id int64) error
	// CheckOverlaps excludeID > 0 时忽略该申请自身
	CheckOverlaps(ctx context.Context, studentID int64, startDate, endDate string, excludeID int64) ([]dto.LeaveResponse, error)
}

type leaveService struct {
	cfg    *config.SchedulingConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(cfg *config.SchedulingConfig, repo *repository.Repository, logger *zap.Logger) LeaveService {
	return &leaveService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *leaveService) Create(ctx context.Context, req *dto.CreateLeaveRequest, studentID int64) (*dto.LeaveMutationResponse, error) {
	leaveType, err := model.ParseLeaveType(req.LeaveType)
	if err != nil {
		return nil, err
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Person.GetStudent(ctx, studentID); err != nil {
		if isNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, fmt.Errorf("查询学生失败: %w", err)
	}

	overlaps, err := s.findOverlaps(ctx, studentID, start, end, 0)
	if err != nil {
		return nil, err
	}
	if len(overlaps) > 0 && s.cfg.BlockLeaveOverlaps {
		return nil, ErrLeaveOverlap
	}

	leave := &model.LeaveRequest{
		StudentID: studentID,
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		Status:    model.LeavePending,
	}
	if err := s.repo.Leave.Create(ctx, leave); err != nil {
		s.logger.Error("创建请假申请失败", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, fmt.Errorf("创建请假申请失败: %w", err)
	}

	s.logger.Info("请假申请已提交",
		zap.Int64("leave_id", leave.ID),
		zap.Int64("student_id", studentID),
		zap.Int("overlaps", len(overlaps)),
	)
	return s.mutationResponse(ctx, leave.ID, overlaps)
}

// ────────────────────── GetByID ──────────────────────

func (s *leaveService) GetByID(ctx context.Context, id int64) (*dto.LeaveResponse, error) {
	leave, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("查询请假申请失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询请假申请失败: %w", err)
	}
	resp := toLeaveResponse(leave)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *leaveService) List(ctx context.Context, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	filter := repository.LeaveFilter{
		StudentID: req.StudentID,
		Status:    model.LeaveStatus(req.Status),
		LeaveType: model.LeaveType(req.LeaveType),
	}
	if req.From != "" {
		from, err := parseDate(req.From)
		if err != nil {
			return nil, 0, err
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := parseDate(req.To)
		if err != nil {
			return nil, 0, err
		}
		filter.To = &to
	}
	return s.list(ctx, filter, &req.PaginationRequest)
}

func (s *leaveService) ListByStudent(ctx context.Context, studentID int64, req *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	scoped := *req
	scoped.StudentID = studentID
	return s.List(ctx, &scoped)
}

func (s *leaveService) ListPending(ctx context.Context, req *dto.PaginationRequest) ([]dto.LeaveResponse, int64, error) {
	return s.list(ctx, repository.LeaveFilter{Status: model.LeavePending}, req)
}

func (s *leaveService) list(ctx context.Context, filter repository.LeaveFilter, page *dto.PaginationRequest) ([]dto.LeaveResponse, int64, error) {
	leaves, total, err := s.repo.Leave.List(ctx, filter, page.GetOffset(), page.GetLimit())
	if err != nil {
		s.logger.Error("列出请假申请失败", zap.Error(err))
		return nil, 0, fmt.Errorf("列出请假申请失败: %w", err)
	}
	return toLeaveResponses(leaves), total, nil
}

// ────────────────────── ListNeedingAttention ──────────────────────

func (s *leaveService) ListNeedingAttention(ctx context.Context, days int) ([]dto.LeaveAttentionResponse, error) {
	if days <= 0 {
		days = s.cfg.AttentionDays
	}
	if days < 1 {
		days = 1
	}
	loc := s.cfg.Location()
	now := s.now()
	// 按日历日计：提交日距今 ≥ days 天
	cutoff := model.StartOfDay(now, loc).AddDate(0, 0, -(days - 1))

	leaves, err := s.repo.Leave.ListPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("查询待处理请假失败", zap.Int("days", days), zap.Error(err))
		return nil, fmt.Errorf("查询待处理请假失败: %w", err)
	}

	today := model.DateOf(now, loc)
	result := make([]dto.LeaveAttentionResponse, 0, len(leaves))
	for i := range leaves {
		created := model.DateOf(leaves[i].CreatedAt, loc)
		result = append(result, dto.LeaveAttentionResponse{
			LeaveResponse: toLeaveResponse(&leaves[i]),
			DaysPending:   int(math.Round(today.Sub(created).Hours() / 24)),
		})
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *leaveService) Update(ctx context.Context, id int64, req *dto.UpdateLeaveRequest) (*dto.LeaveMutationResponse, error) {
	leave, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("查询请假申请失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询请假申请失败: %w", err)
	}

	if req.LeaveType != nil {
		lt, err := model.ParseLeaveType(*req.LeaveType)
		if err != nil {
			return nil, err
		}
		leave.LeaveType = lt
	}
	if req.StartDate != nil {
		d, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		leave.StartDate = d
	}
	if req.EndDate != nil {
		d, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		leave.EndDate = d
	}
	if req.Reason != nil {
		leave.Reason = *req.Reason
	}
	if leave.StartDate.After(leave.EndDate) {
		return nil, ErrInvalidDateRange
	}

	overlaps, err := s.findOverlaps(ctx, leave.StudentID, leave.StartDate, leave.EndDate, leave.ID)
	if err != nil {
		return nil, err
	}
	if len(overlaps) > 0 && s.cfg.BlockLeaveOverlaps {
		return nil, ErrLeaveOverlap
	}

	if err := s.repo.Leave.Update(ctx, leave); err != nil {
		if isNotFound(err) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("更新请假申请失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("更新请假申请失败: %w", err)
	}

	return s.mutationResponse(ctx, id, overlaps)
}

// ────────────────────── 状态流转 ──────────────────────

func (s *leaveService) UpdateStatus(ctx context.Context, id int64, status string, approvedBy *int64, adminNotes *string) (*dto.LeaveResponse, error) {
	st, err := model.ParseLeaveStatus(status)
	if err != nil {
		return nil, ErrInvalidLeaveStatus
	}

	upd := repository.LeaveStatusUpdate{Status: st, AdminNotes: adminNotes}
	switch st {
	case model.LeaveApproved, model.LeaveRejected:
		if approvedBy != nil {
			now := s.now().UTC()
			upd.ApprovedBy = approvedBy
			upd.ApprovalDate = &now
		}
	case model.LeavePending, model.LeaveCancelled:
	}

	if err := s.repo.Leave.UpdateStatus(ctx, id, upd); err != nil {
		if isNotFound(err) {
			return nil, ErrLeaveNotFound
		}
		s.logger.Error("更新请假状态失败", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return nil, fmt.Errorf("更新请假状态失败: %w", err)
	}

	s.logger.Info("请假状态已更新", zap.Int64("leave_id", id), zap.String("status", status))
	return s.GetByID(ctx, id)
}

func (s *leaveService) Approve(ctx context.Context, id, adminID int64, adminNotes *string) (*dto.LeaveResponse, error) {
	return s.UpdateStatus(ctx, id, string(model.LeaveApproved), &adminID, adminNotes)
}

func (s *leaveService) Reject(ctx context.Context, id, adminID int64, adminNotes *string) (*dto.LeaveResponse, error) {
	return s.UpdateStatus(ctx, id, string(model.LeaveRejected), &adminID, adminNotes)
}

func (s *leaveService) Cancel(ctx context.Context, id int64) (*dto.LeaveResponse, error) {
	return s.UpdateStatus(ctx, id, string(model.LeaveCancelled), nil, nil)
}

// ────────────────────── Delete ──────────────────────

func (s *leaveService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Leave.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrLeaveNotFound
		}
		s.logger.Error("删除请假申请失败", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("删除请假申请失败: %w", err)
	}
	return nil
}

// ────────────────────── CheckOverlaps ──────────────────────

func (s *leaveService) CheckOverlaps(ctx context.Context, studentID int64, startDate, endDate string, excludeID int64) ([]dto.LeaveResponse, error) {
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	overlaps, err := s.findOverlaps(ctx, studentID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return toLeaveResponses(overlaps), nil
}

// ── 内部辅助方法 ──

func (s *leaveService) findOverlaps(ctx context.Context, studentID int64, start, end time.Time, excludeID int64) ([]model.LeaveRequest, error) {
	overlaps, err := s.repo.Leave.FindOverlapping(ctx, studentID, start, end, excludeID)
	if err != nil {
		s.logger.Error("请假重叠检测失败", zap.Int64("student_id", studentID), zap.Error(err))
		return nil, fmt.Errorf("请假重叠检测失败: %w", err)
	}
	return overlaps, nil
}

func (s *leaveService) mutationResponse(ctx context.Context, id int64, overlaps []model.LeaveRequest) (*dto.LeaveMutationResponse, error) {
	leave, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.LeaveMutationResponse{Leave: *leave, Overlaps: toLeaveResponses(overlaps)}, nil
}

func toLeaveResponses(leaves []model.LeaveRequest) []dto.LeaveResponse {
	result := make([]dto.LeaveResponse, 0, len(leaves))
	for i := range leaves {
		result = append(result, toLeaveResponse(&leaves[i]))
	}
	return result
}

func toLeaveResponse(l *model.LeaveRequest) dto.LeaveResponse {
	resp := dto.LeaveResponse{
		ID:           l.ID,
		StudentID:    l.StudentID,
		LeaveType:    string(l.LeaveType),
		StartDate:    formatDate(l.StartDate),
		EndDate:      formatDate(l.EndDate),
		DurationDays: l.DurationDays(),
		Reason:       l.Reason,
		Status:       string(l.Status),
		ApprovedBy:   l.ApprovedBy,
		ApprovalDate: formatTimePtr(l.ApprovalDate),
		AdminNotes:   l.AdminNotes,
		CreatedAt:    formatTime(l.CreatedAt),
		UpdatedAt:    formatTime(l.UpdatedAt),
	}
	if l.Student != nil {
		resp.StudentName = l.Student.FullName()
		resp.StudentNumber = l.Student.StudentNumber
	}
	if l.Approver != nil {
		name := l.Approver.FullName()
		resp.ApprovedByName = &name
	}
	return resp
}
