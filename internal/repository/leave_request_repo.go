package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
)

// LeaveFilter 请假列表过滤条件；零值字段不参与过滤
type LeaveFilter struct {
	StudentID int64
	Status    model.LeaveStatus
	LeaveType model.LeaveType
	// From/To 与请假区间有交集：end_date >= From 且 start_date <= To
	From *time.Time
	To   *time.Time
}

// LeaveStatusUpdate 状态变更字段；nil 字段保持原值
type LeaveStatusUpdate struct {
	Status       model.LeaveStatus
	ApprovedBy   *int64
	ApprovalDate *time.Time
	AdminNotes   *string
}

// LeaveRequestRepository 请假申请数据访问接口
type LeaveRequestRepository interface {
	Create(ctx context.Context, leave *model.LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*model.LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter, offset, limit int) ([]model.LeaveRequest, int64, error)
	// ListPendingCreatedBefore 创建时间早于 cutoff 的待审批申请，按创建时间升序
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.LeaveRequest, error)
	Update(ctx context.Context, leave *model.LeaveRequest) error
	UpdateStatus(ctx context.Context, id int64, upd LeaveStatusUpdate) error
	Delete(ctx context.Context, id int64) error
	// FindOverlapping 同一学生 pending/approved 且日期闭区间相交的申请；excludeID > 0 时排除该行
	FindOverlapping(ctx context.Context, studentID int64, start, end time.Time, excludeID int64) ([]model.LeaveRequest, error)
}

type leaveRequestRepo struct {
	db *gorm.DB
}

func NewLeaveRequestRepo(db *gorm.DB) LeaveRequestRepository {
	return &leaveRequestRepo{db: db}
}

func (r *leaveRequestRepo) Create(ctx context.Context, leave *model.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(leave).Error
}

func (r *leaveRequestRepo) GetByID(ctx context.Context, id int64) (*model.LeaveRequest, error) {
	var leave model.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Approver").
		Where("id = ?", id).
		First(&leave).Error
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

func (r *leaveRequestRepo) List(ctx context.Context, filter LeaveFilter, offset, limit int) ([]model.LeaveRequest, int64, error) {
	var leaves []model.LeaveRequest
	var total int64

	db := applyLeaveFilter(r.db.WithContext(ctx).Model(&model.LeaveRequest{}), filter)

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").Preload("Approver").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&leaves).Error; err != nil {
		return nil, 0, err
	}

	return leaves, total, nil
}

func (r *leaveRequestRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("status = ? AND created_at < ?", model.LeavePending, cutoff).
		Order("created_at ASC").
		Find(&leaves).Error
	return leaves, err
}

func (r *leaveRequestRepo) Update(ctx context.Context, leave *model.LeaveRequest) error {
	result := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Where("id = ?", leave.ID).
		Updates(map[string]interface{}{
			"leave_type": leave.LeaveType,
			"start_date": leave.StartDate,
			"end_date":   leave.EndDate,
			"reason":     leave.Reason,
		})
	return notFoundIfNoRows(result)
}

func (r *leaveRequestRepo) UpdateStatus(ctx context.Context, id int64, upd LeaveStatusUpdate) error {
	fields := map[string]interface{}{"status": upd.Status}
	if upd.ApprovedBy != nil {
		fields["approved_by"] = *upd.ApprovedBy
	}
	if upd.ApprovalDate != nil {
		fields["approval_date"] = *upd.ApprovalDate
	}
	if upd.AdminNotes != nil {
		fields["admin_notes"] = *upd.AdminNotes
	}
	result := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Where("id = ?", id).
		Updates(fields)
	return notFoundIfNoRows(result)
}

func (r *leaveRequestRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.LeaveRequest{})
	return notFoundIfNoRows(result)
}

func (r *leaveRequestRepo) FindOverlapping(ctx context.Context, studentID int64, start, end time.Time, excludeID int64) ([]model.LeaveRequest, error) {
	var leaves []model.LeaveRequest
	db := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Where("status IN ?", model.OverlapStatuses()).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Order("start_date ASC").Find(&leaves).Error
	return leaves, err
}

func applyLeaveFilter(db *gorm.DB, f LeaveFilter) *gorm.DB {
	if f.StudentID > 0 {
		db = db.Where("student_id = ?", f.StudentID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.LeaveType != "" {
		db = db.Where("leave_type = ?", f.LeaveType)
	}
	if f.From != nil {
		db = db.Where("end_date >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("start_date <= ?", *f.To)
	}
	return db
}
