package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
)

// ScheduleFilter 排班过滤条件；零值字段不参与过滤
type ScheduleFilter struct {
	ScheduleType   model.ScheduleType
	AssignedToID   int64
	AssignedToType model.PersonType
	Status         model.ScheduleStatus

	EndsFrom     *time.Time // end_time >= ?
	StartsFrom   *time.Time // start_time >= ?
	StartsAfter  *time.Time // start_time > ?
	StartsBefore *time.Time // start_time < ?
	StartsUntil  *time.Time // start_time <= ?
}

// ScheduleRepository 排班数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	BatchCreate(ctx context.Context, schedules []model.Schedule) error
	GetByID(ctx context.Context, id int64) (*model.Schedule, error)
	// List / ListAll 均按 start_time 升序
	List(ctx context.Context, filter ScheduleFilter, offset, limit int) ([]model.Schedule, int64, error)
	ListAll(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error)
	Update(ctx context.Context, schedule *model.Schedule) error
	// Reassign 改派归属人并改写时间段
	Reassign(ctx context.Context, id int64, assignee model.Assignee, start, end time.Time) error
	Delete(ctx context.Context, id int64) error
	// FindConflicts 同一归属人 active 且时间左闭右开相交的排班；excludeID > 0 时排除该行
	FindConflicts(ctx context.Context, assignee model.Assignee, start, end time.Time, excludeID int64) ([]model.Schedule, error)
}

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) BatchCreate(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&schedules, 100).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id int64) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepo) List(ctx context.Context, filter ScheduleFilter, offset, limit int) ([]model.Schedule, int64, error) {
	var schedules []model.Schedule
	var total int64

	db := applyScheduleFilter(r.db.WithContext(ctx).Model(&model.Schedule{}), filter)

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Creator").
		Order("start_time ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&schedules).Error; err != nil {
		return nil, 0, err
	}

	return schedules, total, nil
}

func (r *scheduleRepo) ListAll(ctx context.Context, filter ScheduleFilter) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := applyScheduleFilter(r.db.WithContext(ctx), filter).
		Preload("Creator").
		Order("start_time ASC").Order("id ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) Update(ctx context.Context, schedule *model.Schedule) error {
	result := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", schedule.ID).
		Updates(map[string]interface{}{
			"schedule_type":      schedule.ScheduleType,
			"title":              schedule.Title,
			"description":        schedule.Description,
			"assigned_to_id":     schedule.AssignedToID,
			"assigned_to_type":   schedule.AssignedToType,
			"start_time":         schedule.StartTime,
			"end_time":           schedule.EndTime,
			"location":           schedule.Location,
			"recurrence_pattern": schedule.RecurrencePattern,
			"status":             schedule.Status,
		})
	return notFoundIfNoRows(result)
}

func (r *scheduleRepo) Reassign(ctx context.Context, id int64, assignee model.Assignee, start, end time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_to_id":   assignee.ID,
			"assigned_to_type": assignee.Type,
			"start_time":       start,
			"end_time":         end,
		})
	return notFoundIfNoRows(result)
}

func (r *scheduleRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Schedule{})
	return notFoundIfNoRows(result)
}

func (r *scheduleRepo) FindConflicts(ctx context.Context, assignee model.Assignee, start, end time.Time, excludeID int64) ([]model.Schedule, error) {
	var schedules []model.Schedule
	db := r.db.WithContext(ctx).
		Where("assigned_to_id = ? AND assigned_to_type = ?", assignee.ID, assignee.Type).
		Where("status = ?", model.ScheduleActive).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Order("start_time ASC").Find(&schedules).Error
	return schedules, err
}

func applyScheduleFilter(db *gorm.DB, f ScheduleFilter) *gorm.DB {
	if f.ScheduleType != "" {
		db = db.Where("schedule_type = ?", f.ScheduleType)
	}
	if f.AssignedToID > 0 {
		db = db.Where("assigned_to_id = ?", f.AssignedToID)
	}
	if f.AssignedToType != "" {
		db = db.Where("assigned_to_type = ?", f.AssignedToType)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.EndsFrom != nil {
		db = db.Where("end_time >= ?", *f.EndsFrom)
	}
	if f.StartsFrom != nil {
		db = db.Where("start_time >= ?", *f.StartsFrom)
	}
	if f.StartsAfter != nil {
		db = db.Where("start_time > ?", *f.StartsAfter)
	}
	if f.StartsBefore != nil {
		db = db.Where("start_time < ?", *f.StartsBefore)
	}
	if f.StartsUntil != nil {
		db = db.Where("start_time <= ?", *f.StartsUntil)
	}
	return db
}
