package service

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// ── Mock PersonRepository ──

type mockPersonRepo struct {
	admins   map[int64]*model.Admin
	students map[int64]*model.Student
}

func newMockPersonRepo() *mockPersonRepo {
	return &mockPersonRepo{
		admins:   make(map[int64]*model.Admin),
		students: make(map[int64]*model.Student),
	}
}

func (m *mockPersonRepo) GetAdmin(_ context.Context, id int64) (*model.Admin, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonRepo) GetStudent(_ context.Context, id int64) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonRepo) AdminNames(_ context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string)
	for _, id := range ids {
		if a, ok := m.admins[id]; ok {
			names[id] = a.FullName()
		}
	}
	return names, nil
}

func (m *mockPersonRepo) StudentNames(_ context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string)
	for _, id := range ids {
		if s, ok := m.students[id]; ok {
			names[id] = s.FullName()
		}
	}
	return names, nil
}

// ── Mock LeaveRequestRepository ──

type mockLeaveRepo struct {
	people *mockPersonRepo
	leaves map[int64]*model.LeaveRequest
	nextID int64
	now    func() time.Time
}

func newMockLeaveRepo(people *mockPersonRepo) *mockLeaveRepo {
	return &mockLeaveRepo{people: people, leaves: make(map[int64]*model.LeaveRequest), now: time.Now}
}

func (m *mockLeaveRepo) Create(_ context.Context, leave *model.LeaveRequest) error {
	m.nextID++
	leave.ID = m.nextID
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = m.now().UTC()
	}
	leave.UpdatedAt = leave.CreatedAt
	cp := *leave
	m.leaves[leave.ID] = &cp
	return nil
}

func (m *mockLeaveRepo) GetByID(_ context.Context, id int64) (*model.LeaveRequest, error) {
	l, ok := m.leaves[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	cp.Student = m.people.students[l.StudentID]
	if l.ApprovedBy != nil {
		cp.Approver = m.people.admins[*l.ApprovedBy]
	}
	return &cp, nil
}

func (m *mockLeaveRepo) List(ctx context.Context, filter repository.LeaveFilter, offset, limit int) ([]model.LeaveRequest, int64, error) {
	var all []model.LeaveRequest
	for _, id := range m.sortedIDs() {
		l := m.leaves[id]
		if filter.StudentID != 0 && l.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.LeaveType != "" && l.LeaveType != filter.LeaveType {
			continue
		}
		if filter.From != nil && l.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.StartDate.After(*filter.To) {
			continue
		}
		full, _ := m.GetByID(ctx, id)
		all = append(all, *full)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.LeaveRequest{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockLeaveRepo) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time) ([]model.LeaveRequest, error) {
	var result []model.LeaveRequest
	for _, id := range m.sortedIDs() {
		l := m.leaves[id]
		if l.Status == model.LeavePending && l.CreatedAt.Before(cutoff) {
			full, _ := m.GetByID(ctx, id)
			result = append(result, *full)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockLeaveRepo) Update(_ context.Context, leave *model.LeaveRequest) error {
	l, ok := m.leaves[leave.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.LeaveType = leave.LeaveType
	l.StartDate = leave.StartDate
	l.EndDate = leave.EndDate
	l.Reason = leave.Reason
	l.UpdatedAt = m.now().UTC()
	return nil
}

func (m *mockLeaveRepo) UpdateStatus(_ context.Context, id int64, upd repository.LeaveStatusUpdate) error {
	l, ok := m.leaves[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	l.Status = upd.Status
	if upd.ApprovedBy != nil {
		l.ApprovedBy = upd.ApprovedBy
	}
	if upd.ApprovalDate != nil {
		l.ApprovalDate = upd.ApprovalDate
	}
	if upd.AdminNotes != nil {
		l.AdminNotes = upd.AdminNotes
	}
	return nil
}

func (m *mockLeaveRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.leaves[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.leaves, id)
	return nil
}

func (m *mockLeaveRepo) FindOverlapping(_ context.Context, studentID int64, start, end time.Time, excludeID int64) ([]model.LeaveRequest, error) {
	var result []model.LeaveRequest
	for _, id := range m.sortedIDs() {
		l := m.leaves[id]
		if l.StudentID != studentID || l.ID == excludeID || !l.Status.BlocksOverlap() {
			continue
		}
		if l.Overlaps(start, end) {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLeaveRepo) sortedIDs() []int64 {
	ids := make([]int64, 0, len(m.leaves))
	for id := range m.leaves {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ── Mock DisruptionRepository ──

type mockDisruptionRepo struct {
	items  map[int64]*model.Disruption
	nextID int64
}

func newMockDisruptionRepo() *mockDisruptionRepo {
	return &mockDisruptionRepo{items: make(map[int64]*model.Disruption)}
}

func (m *mockDisruptionRepo) Create(_ context.Context, d *model.Disruption) error {
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDisruptionRepo) GetByID(_ context.Context, id int64) (*model.Disruption, error) {
	d, ok := m.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDisruptionRepo) List(ctx context.Context, filter repository.DisruptionFilter, offset, limit int) ([]model.Disruption, int64, error) {
	all, _ := m.ListAll(ctx, filter)
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Disruption{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockDisruptionRepo) ListAll(_ context.Context, filter repository.DisruptionFilter) ([]model.Disruption, error) {
	var result []model.Disruption
	for _, d := range m.items {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && d.Severity != filter.Severity {
			continue
		}
		if filter.DisruptionType != "" && d.DisruptionType != filter.DisruptionType {
			continue
		}
		if filter.StartsFrom != nil && d.StartTime.Before(*filter.StartsFrom) {
			continue
		}
		if filter.StartsBefore != nil && !d.StartTime.Before(*filter.StartsBefore) {
			continue
		}
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func (m *mockDisruptionRepo) ListActive(ctx context.Context) ([]model.Disruption, error) {
	result, _ := m.ListAll(ctx, repository.DisruptionFilter{Status: model.DisruptionActive})
	sort.SliceStable(result, func(i, j int) bool { return result[i].Severity.Rank() > result[j].Severity.Rank() })
	return result, nil
}

func (m *mockDisruptionRepo) ListBySchedule(ctx context.Context, scheduleID int64) ([]model.Disruption, error) {
	all, _ := m.ListAll(ctx, repository.DisruptionFilter{})
	var result []model.Disruption
	for i := range all {
		ids, _ := all[i].ScheduleIDs()
		for _, id := range ids {
			if id == scheduleID {
				result = append(result, all[i])
				break
			}
		}
	}
	return result, nil
}

func (m *mockDisruptionRepo) ListRecent(ctx context.Context, limit int) ([]model.Disruption, error) {
	all, _ := m.ListAll(ctx, repository.DisruptionFilter{})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockDisruptionRepo) Update(_ context.Context, d *model.Disruption) error {
	if _, ok := m.items[d.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *d
	m.items[d.ID] = &cp
	return nil
}

func (m *mockDisruptionRepo) SetStatus(_ context.Context, id int64, status model.DisruptionStatus) error {
	d, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Status = status
	return nil
}

func (m *mockDisruptionRepo) Resolve(_ context.Context, id int64, res repository.DisruptionResolution) error {
	d, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	end := res.EndTime
	d.Status = model.DisruptionResolved
	d.EndTime = &end
	d.ResolutionNotes = res.ResolutionNotes
	return nil
}

func (m *mockDisruptionRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	reports map[int64]*model.Report
	nextID  int64
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[int64]*model.Report)}
}

func (m *mockReportRepo) Create(_ context.Context, r *model.Report) error {
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now().UTC()
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id int64) (*model.Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockReportRepo) List(_ context.Context, filter repository.ReportFilter, offset, limit int) ([]model.Report, int64, error) {
	var all []model.Report
	for id := int64(1); id <= m.nextID; id++ {
		r, ok := m.reports[id]
		if !ok {
			continue
		}
		if filter.ReportType != "" && r.ReportType != filter.ReportType {
			continue
		}
		if filter.GeneratedBy != 0 && r.GeneratedBy != filter.GeneratedBy {
			continue
		}
		cp := *r
		cp.Data = nil
		all = append(all, cp)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Report{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockReportRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.reports[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.reports, id)
	return nil
}
