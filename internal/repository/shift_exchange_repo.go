package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
)

// ExchangeFilter 换班列表过滤条件；零值字段不参与过滤
type ExchangeFilter struct {
	Status             model.ExchangeStatus
	RequestingAdminID  int64
	TargetAdminID      int64
	OriginalScheduleID int64
	// InvolvedAdminID 发起方或目标方为该管理员
	InvolvedAdminID int64
}

// ShiftExchangeRepository 换班申请数据访问接口
type ShiftExchangeRepository interface {
	Create(ctx context.Context, exchange *model.ShiftExchange) error
	GetByID(ctx context.Context, id int64) (*model.ShiftExchange, error)
	List(ctx context.Context, filter ExchangeFilter, offset, limit int) ([]model.ShiftExchange, int64, error)
	ListAll(ctx context.Context, filter ExchangeFilter) ([]model.ShiftExchange, error)
	// UpdateStatus 设置状态；notes 为 nil 时保留原备注
	UpdateStatus(ctx context.Context, id int64, status model.ExchangeStatus, notes *string) error
	// MarkAccepted 置为 accepted 并覆盖备注；notes 为 nil 时清空
	MarkAccepted(ctx context.Context, id int64, notes *string) error
	Delete(ctx context.Context, id int64) error
}

type shiftExchangeRepo struct {
	db *gorm.DB
}

func NewShiftExchangeRepo(db *gorm.DB) ShiftExchangeRepository {
	return &shiftExchangeRepo{db: db}
}

func (r *shiftExchangeRepo) Create(ctx context.Context, exchange *model.ShiftExchange) error {
	return r.db.WithContext(ctx).Create(exchange).Error
}

func (r *shiftExchangeRepo) GetByID(ctx context.Context, id int64) (*model.ShiftExchange, error) {
	var exchange model.ShiftExchange
	err := r.preload(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&exchange).Error
	if err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (r *shiftExchangeRepo) List(ctx context.Context, filter ExchangeFilter, offset, limit int) ([]model.ShiftExchange, int64, error) {
	var exchanges []model.ShiftExchange
	var total int64

	db := applyExchangeFilter(r.db.WithContext(ctx).Model(&model.ShiftExchange{}), filter)

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.preload(db).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&exchanges).Error; err != nil {
		return nil, 0, err
	}

	return exchanges, total, nil
}

func (r *shiftExchangeRepo) ListAll(ctx context.Context, filter ExchangeFilter) ([]model.ShiftExchange, error) {
	var exchanges []model.ShiftExchange
	err := r.preload(applyExchangeFilter(r.db.WithContext(ctx), filter)).
		Order("created_at DESC").Order("id DESC").
		Find(&exchanges).Error
	return exchanges, err
}

func (r *shiftExchangeRepo) UpdateStatus(ctx context.Context, id int64, status model.ExchangeStatus, notes *string) error {
	fields := map[string]interface{}{"status": status}
	if notes != nil {
		fields["exchange_notes"] = *notes
	}
	result := r.db.WithContext(ctx).
		Model(&model.ShiftExchange{}).
		Where("id = ?", id).
		Updates(fields)
	return notFoundIfNoRows(result)
}

func (r *shiftExchangeRepo) MarkAccepted(ctx context.Context, id int64, notes *string) error {
	result := r.db.WithContext(ctx).
		Model(&model.ShiftExchange{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         model.ExchangeAccepted,
			"exchange_notes": notes,
		})
	return notFoundIfNoRows(result)
}

func (r *shiftExchangeRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ShiftExchange{})
	return notFoundIfNoRows(result)
}

func (r *shiftExchangeRepo) preload(db *gorm.DB) *gorm.DB {
	return db.
		Preload("OriginalSchedule").
		Preload("RequestingAdmin").
		Preload("TargetAdmin")
}

func applyExchangeFilter(db *gorm.DB, f ExchangeFilter) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.RequestingAdminID > 0 {
		db = db.Where("requesting_admin_id = ?", f.RequestingAdminID)
	}
	if f.TargetAdminID > 0 {
		db = db.Where("target_admin_id = ?", f.TargetAdminID)
	}
	if f.OriginalScheduleID > 0 {
		db = db.Where("original_schedule_id = ?", f.OriginalScheduleID)
	}
	if f.InvolvedAdminID > 0 {
		db = db.Where("(requesting_admin_id = ? OR target_admin_id = ?)", f.InvolvedAdminID, f.InvolvedAdminID)
	}
	return db
}
