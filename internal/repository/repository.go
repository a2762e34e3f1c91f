package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Person     PersonRepository
	Leave      LeaveRequestRepository
	Schedule   ScheduleRepository
	Exchange   ShiftExchangeRepository
	Disruption DisruptionRepository
	Report     ReportRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Person:     NewPersonRepo(db),
		Leave:      NewLeaveRequestRepo(db),
		Schedule:   NewScheduleRepo(db),
		Exchange:   NewShiftExchangeRepo(db),
		Disruption: NewDisruptionRepo(db),
		Report:     NewReportRepo(db),
	}
}

// Transaction 在同一事务中执行 fn
// fn 收到以事务连接构造的聚合；返回 nil 提交，返回错误或 panic 时回滚
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// Ping 检查数据库连通性
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接池失败: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// notFoundIfNoRows 写操作未命中任何行时返回 gorm.ErrRecordNotFound
func notFoundIfNoRows(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
