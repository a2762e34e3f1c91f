package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrReportNotFound    = errors.New("报表不存在")
	ErrInvalidReportData = errors.New("报表数据必须是合法的 JSON")
)

// ReportService 报表存档业务接口；报表内容由调用方生成后提交
type ReportService interface {
	Create(ctx context.Context, req *dto.CreateReportRequest, generatedBy int64) (*dto.ReportResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.ReportResponse, error)
	// List 列表不返回 data 字段
	List(ctx context.Context, req *dto.ReportListRequest) ([]dto.ReportResponse, int64, error)
	Delete(ctx context.Context, id int64) error
}

type reportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) Create(ctx context.Context, req *dto.CreateReportRequest, generatedBy int64) (*dto.ReportResponse, error) {
	reportType, err := model.ParseReportType(req.ReportType)
	if err != nil {
		return nil, err
	}
	if !json.Valid(req.Data) || string(req.Data) == "null" {
		return nil, ErrInvalidReportData
	}
	if len(req.Filters) > 0 && !json.Valid(req.Filters) {
		return nil, ErrInvalidReportData
	}

	var rangeStart, rangeEnd *time.Time
	if req.DateRangeStart != nil {
		t, err := parseDate(*req.DateRangeStart)
		if err != nil {
			return nil, err
		}
		rangeStart = &t
	}
	if req.DateRangeEnd != nil {
		t, err := parseDate(*req.DateRangeEnd)
		if err != nil {
			return nil, err
		}
		rangeEnd = &t
	}
	if rangeStart != nil && rangeEnd != nil && rangeStart.After(*rangeEnd) {
		return nil, ErrInvalidDateRange
	}

	report := &model.Report{
		ReportType:     reportType,
		Title:          req.Title,
		Description:    req.Description,
		GeneratedBy:    generatedBy,
		Data:           datatypes.JSON(req.Data),
		Filters:        jsonColumn(req.Filters),
		DateRangeStart: rangeStart,
		DateRangeEnd:   rangeEnd,
		FilePath:       req.FilePath,
	}
	if err := s.repo.Report.Create(ctx, report); err != nil {
		s.logger.Error("保存报表失败", zap.String("type", string(reportType)), zap.Error(err))
		return nil, fmt.Errorf("保存报表失败: %w", err)
	}

	s.logger.Info("报表已保存", zap.Int64("report_id", report.ID), zap.String("type", string(reportType)))
	return s.GetByID(ctx, report.ID)
}

func (s *reportService) GetByID(ctx context.Context, id int64) (*dto.ReportResponse, error) {
	report, err := s.repo.Report.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询报表失败", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("查询报表失败: %w", err)
	}
	resp := toReportResponse(report)
	return &resp, nil
}

func (s *reportService) List(ctx context.Context, req *dto.ReportListRequest) ([]dto.ReportResponse, int64, error) {
	filter := repository.ReportFilter{
		ReportType:  model.ReportType(req.ReportType),
		GeneratedBy: req.GeneratedBy,
	}
	reports, total, err := s.repo.Report.List(ctx, filter, req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("列出报表失败", zap.Error(err))
		return nil, 0, fmt.Errorf("列出报表失败: %w", err)
	}
	result := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, toReportResponse(&reports[i]))
	}
	return result, total, nil
}

func (s *reportService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Report.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrReportNotFound
		}
		s.logger.Error("删除报表失败", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("删除报表失败: %w", err)
	}
	return nil
}

func toReportResponse(r *model.Report) dto.ReportResponse {
	resp := dto.ReportResponse{
		ID:             r.ID,
		ReportType:     string(r.ReportType),
		Title:          r.Title,
		Description:    r.Description,
		GeneratedBy:    r.GeneratedBy,
		DateRangeStart: formatDatePtr(r.DateRangeStart),
		DateRangeEnd:   formatDatePtr(r.DateRangeEnd),
		FilePath:       r.FilePath,
		CreatedAt:      formatTime(r.CreatedAt),
	}
	if len(r.Data) > 0 {
		resp.Data = json.RawMessage(r.Data)
	}
	if len(r.Filters) > 0 {
		resp.Filters = json.RawMessage(r.Filters)
	}
	if r.Generator != nil {
		resp.GeneratedByName = r.Generator.FullName()
	}
	return resp
}
