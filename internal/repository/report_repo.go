package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
)

// ReportFilter 报表列表过滤条件
type ReportFilter struct {
	ReportType  model.ReportType
	GeneratedBy int64
}

// ReportRepository 报表数据访问接口
type ReportRepository interface {
	Create(ctx context.Context, report *model.Report) error
	GetByID(ctx context.Context, id int64) (*model.Report, error)
	List(ctx context.Context, filter ReportFilter, offset, limit int) ([]model.Report, int64, error)
	Delete(ctx context.Context, id int64) error
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).
		Preload("Generator").
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) List(ctx context.Context, filter ReportFilter, offset, limit int) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Report{})
	if filter.ReportType != "" {
		db = db.Where("report_type = ?", filter.ReportType)
	}
	if filter.GeneratedBy > 0 {
		db = db.Where("generated_by = ?", filter.GeneratedBy)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 列表不返回 data 大字段
	if err := db.Preload("Generator").
		Omit("data").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *reportRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Report{})
	return notFoundIfNoRows(result)
}
