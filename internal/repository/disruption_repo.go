package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
)

// DisruptionFilter 异常事件过滤条件；零值字段不参与过滤
type DisruptionFilter struct {
	DisruptionType model.DisruptionType
	Severity       model.Severity
	Status         model.DisruptionStatus
	ReportedBy     int64

	StartsFrom   *time.Time // start_time >= ?
	StartsBefore *time.Time // start_time < ?
}

// DisruptionResolution 结案字段
type DisruptionResolution struct {
	EndTime         time.Time
	ResolutionNotes *string
}

// DisruptionRepository 异常事件数据访问接口
type DisruptionRepository interface {
	Create(ctx context.Context, d *model.Disruption) error
	GetByID(ctx context.Context, id int64) (*model.Disruption, error)
	// List / ListAll 均按 start_time 降序
	List(ctx context.Context, filter DisruptionFilter, offset, limit int) ([]model.Disruption, int64, error)
	ListAll(ctx context.Context, filter DisruptionFilter) ([]model.Disruption, error)
	// ListActive 状态为 active，按严重程度、开始时间降序
	ListActive(ctx context.Context) ([]model.Disruption, error)
	// ListBySchedule affected_schedules 中包含 scheduleID 的事件
	ListBySchedule(ctx context.Context, scheduleID int64) ([]model.Disruption, error)
	ListRecent(ctx context.Context, limit int) ([]model.Disruption, error)
	Update(ctx context.Context, d *model.Disruption) error
	SetStatus(ctx context.Context, id int64, status model.DisruptionStatus) error
	Resolve(ctx context.Context, id int64, res DisruptionResolution) error
	Delete(ctx context.Context, id int64) error
}

type disruptionRepo struct {
	db *gorm.DB
}

func NewDisruptionRepo(db *gorm.DB) DisruptionRepository {
	return &disruptionRepo{db: db}
}

func (r *disruptionRepo) Create(ctx context.Context, d *model.Disruption) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *disruptionRepo) GetByID(ctx context.Context, id int64) (*model.Disruption, error) {
	var d model.Disruption
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *disruptionRepo) List(ctx context.Context, filter DisruptionFilter, offset, limit int) ([]model.Disruption, int64, error) {
	var list []model.Disruption
	var total int64

	db := applyDisruptionFilter(r.db.WithContext(ctx).Model(&model.Disruption{}), filter)

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Reporter").
		Order("start_time DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *disruptionRepo) ListAll(ctx context.Context, filter DisruptionFilter) ([]model.Disruption, error) {
	var list []model.Disruption
	err := applyDisruptionFilter(r.db.WithContext(ctx), filter).
		Preload("Reporter").
		Order("start_time DESC").Order("id DESC").
		Find(&list).Error
	return list, err
}

// 严重程度按枚举语义排序，而不是按字符串
const severityRankSQL = "CASE severity WHEN 'critical' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"

func (r *disruptionRepo) ListActive(ctx context.Context) ([]model.Disruption, error) {
	var list []model.Disruption
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Where("status = ?", model.DisruptionActive).
		Order(severityRankSQL).
		Order("start_time DESC").
		Find(&list).Error
	return list, err
}

func (r *disruptionRepo) ListBySchedule(ctx context.Context, scheduleID int64) ([]model.Disruption, error) {
	var list []model.Disruption
	db := r.db.WithContext(ctx).
		Preload("Reporter").
		Where("affected_schedules IS NOT NULL")

	switch r.db.Dialector.Name() {
	case "mysql":
		db = db.Where("JSON_CONTAINS(affected_schedules, ?)", fmt.Sprintf("[%d]", scheduleID))
	case "postgres":
		db = db.Where("affected_schedules @> ?::jsonb", fmt.Sprintf("[%d]", scheduleID))
	case "sqlite":
		db = db.Where("EXISTS (SELECT 1 FROM json_each(affected_schedules) WHERE json_each.value = ?)", scheduleID)
	default:
		return nil, fmt.Errorf("不支持的数据库方言: %s", r.db.Dialector.Name())
	}

	err := db.Order("start_time DESC").Find(&list).Error
	return list, err
}

func (r *disruptionRepo) ListRecent(ctx context.Context, limit int) ([]model.Disruption, error) {
	var list []model.Disruption
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Order("start_time DESC").Order("id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *disruptionRepo) Update(ctx context.Context, d *model.Disruption) error {
	result := r.db.WithContext(ctx).
		Model(&model.Disruption{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"title":              d.Title,
			"description":        d.Description,
			"severity":           d.Severity,
			"affected_schedules": d.AffectedSchedules,
			"end_time":           d.EndTime,
			"status":             d.Status,
		})
	return notFoundIfNoRows(result)
}

func (r *disruptionRepo) SetStatus(ctx context.Context, id int64, status model.DisruptionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Disruption{}).
		Where("id = ?", id).
		Update("status", status)
	return notFoundIfNoRows(result)
}

func (r *disruptionRepo) Resolve(ctx context.Context, id int64, res DisruptionResolution) error {
	result := r.db.WithContext(ctx).
		Model(&model.Disruption{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           model.DisruptionResolved,
			"end_time":         res.EndTime,
			"resolution_notes": res.ResolutionNotes,
		})
	return notFoundIfNoRows(result)
}

func (r *disruptionRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Disruption{})
	return notFoundIfNoRows(result)
}

func applyDisruptionFilter(db *gorm.DB, f DisruptionFilter) *gorm.DB {
	if f.DisruptionType != "" {
		db = db.Where("disruption_type = ?", f.DisruptionType)
	}
	if f.Severity != "" {
		db = db.Where("severity = ?", f.Severity)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.ReportedBy > 0 {
		db = db.Where("reported_by = ?", f.ReportedBy)
	}
	if f.StartsFrom != nil {
		db = db.Where("start_time >= ?", *f.StartsFrom)
	}
	if f.StartsBefore != nil {
		db = db.Where("start_time < ?", *f.StartsBefore)
	}
	return db
}
