package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
)

// ── 测试辅助 ──

func (e *dbEnv) exchangeService() ShiftExchangeService {
	return NewShiftExchangeService(e.repo, zap.NewNop())
}

// requestSwap admin 把自己 09:00-11:00 的值班提议给 admin2，改到 14:00-16:00
func (e *dbEnv) requestSwap(t *testing.T, svc ShiftExchangeService) (*model.Schedule, *dto.ShiftExchangeResponse) {
	t.Helper()
	sch := &model.Schedule{
		ScheduleType: model.ScheduleShift,
		Title:        "借还书台值班",
		StartTime:    clockAt("2025-03-20 09:00"),
		EndTime:      clockAt("2025-03-20 11:00"),
		Status:       model.ScheduleActive,
		CreatedBy:    e.admin.ID,
	}
	sch.AssignTo(model.AdminAssignee(e.admin.ID))
	require.NoError(t, e.repo.Schedule.Create(context.Background(), sch))

	resp, err := svc.Create(context.Background(), &dto.CreateShiftExchangeRequest{
		OriginalScheduleID: sch.ID,
		TargetAdminID:      e.admin2.ID,
		ProposedStartTime:  clockAt("2025-03-20 14:00"),
		ProposedEndTime:    clockAt("2025-03-20 16:00"),
		Reason:             ptrOf("下午有课"),
	}, e.admin.ID)
	require.NoError(t, err)
	return sch, resp
}

func (e *dbEnv) reloadSchedule(t *testing.T, id int64) *model.Schedule {
	t.Helper()
	sch, err := e.repo.Schedule.GetByID(context.Background(), id)
	require.NoError(t, err)
	return sch
}

// ── Create ──

func TestShiftExchangeService_Create(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()

	sch, resp := env.requestSwap(t, svc)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "Thandi Mokoena", resp.RequestingAdminName)
	assert.Equal(t, "Sipho Dlamini", resp.TargetAdminName)
	require.NotNil(t, resp.OriginalSchedule)
	assert.Equal(t, sch.ID, resp.OriginalSchedule.ID)
	assert.Equal(t, "2025-03-20T14:00:00Z", resp.ProposedStartTime)
}

func TestShiftExchangeService_Create_Validation(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	ctx := context.Background()
	sch, _ := env.requestSwap(t, svc)

	_, err := svc.Create(ctx, &dto.CreateShiftExchangeRequest{
		OriginalScheduleID: 404, TargetAdminID: env.admin2.ID,
		ProposedStartTime: clockAt("2025-03-20 14:00"), ProposedEndTime: clockAt("2025-03-20 16:00"),
	}, env.admin.ID)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = svc.Create(ctx, &dto.CreateShiftExchangeRequest{
		OriginalScheduleID: sch.ID, TargetAdminID: 404,
		ProposedStartTime: clockAt("2025-03-20 14:00"), ProposedEndTime: clockAt("2025-03-20 16:00"),
	}, env.admin.ID)
	assert.ErrorIs(t, err, ErrTargetAdminNotFound)

	_, err = svc.Create(ctx, &dto.CreateShiftExchangeRequest{
		OriginalScheduleID: sch.ID, TargetAdminID: env.admin2.ID,
		ProposedStartTime: clockAt("2025-03-20 16:00"), ProposedEndTime: clockAt("2025-03-20 14:00"),
	}, env.admin.ID)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

// 发起方与目标方可以是同一人
func TestShiftExchangeService_Create_SelfTargetAllowed(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	sch, _ := env.requestSwap(t, svc)

	resp, err := svc.Create(context.Background(), &dto.CreateShiftExchangeRequest{
		OriginalScheduleID: sch.ID, TargetAdminID: env.admin.ID,
		ProposedStartTime: clockAt("2025-03-21 09:00"), ProposedEndTime: clockAt("2025-03-21 11:00"),
	}, env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, env.admin.ID, resp.TargetAdminID)
}

// ── Accept ──

func TestShiftExchangeService_Accept_ReassignsSchedule(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	sch, ex := env.requestSwap(t, svc)

	resp, err := svc.Accept(context.Background(), ex.ID, ptrOf("没问题"))
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Status)
	require.NotNil(t, resp.ExchangeNotes)
	assert.Equal(t, "没问题", *resp.ExchangeNotes)

	got := env.reloadSchedule(t, sch.ID)
	assert.Equal(t, model.AdminAssignee(env.admin2.ID), got.Assignee())
	assert.True(t, got.StartTime.Equal(clockAt("2025-03-20 14:00")))
	assert.True(t, got.EndTime.Equal(clockAt("2025-03-20 16:00")))
}

func TestShiftExchangeService_Accept_WithoutNotesClearsNotes(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	_, ex := env.requestSwap(t, svc)

	_, err := svc.UpdateStatus(context.Background(), ex.ID, "pending", ptrOf("再确认一下时间"))
	require.NoError(t, err)

	resp, err := svc.Accept(context.Background(), ex.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Status)
	assert.Nil(t, resp.ExchangeNotes)
}

func TestShiftExchangeService_Accept_ExchangeNotFound(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	sch, _ := env.requestSwap(t, svc)

	_, err := svc.Accept(context.Background(), 404, nil)
	assert.ErrorIs(t, err, ErrShiftExchangeNotFound)

	got := env.reloadSchedule(t, sch.ID)
	assert.Equal(t, model.AdminAssignee(env.admin.ID), got.Assignee())
	assert.True(t, got.StartTime.Equal(clockAt("2025-03-20 09:00")))
}

func TestShiftExchangeService_Accept_ScheduleGoneRollsBack(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	sch, ex := env.requestSwap(t, svc)
	require.NoError(t, env.repo.Schedule.Delete(context.Background(), sch.ID))

	_, err := svc.Accept(context.Background(), ex.ID, ptrOf("接受"))
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	after, err := svc.GetByID(context.Background(), ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", after.Status)
	assert.Nil(t, after.ExchangeNotes)
}

func TestShiftExchangeService_Accept_ScheduleWriteFailureRollsBack(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	sch, ex := env.requestSwap(t, svc)

	injected := errors.New("injected schedule failure")
	err := env.db.Callback().Update().Before("gorm:update").Register("test:fail_schedule_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "schedules" {
			_ = tx.AddError(injected)
		}
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), ex.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, injected)

	after, err := svc.GetByID(context.Background(), ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", after.Status)

	got := env.reloadSchedule(t, sch.ID)
	assert.Equal(t, model.AdminAssignee(env.admin.ID), got.Assignee())
}

// 接受时不复查目标方的排班冲突
func TestShiftExchangeService_Accept_AllowsDoubleBooking(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	sch, ex := env.requestSwap(t, svc)

	busy := &model.Schedule{
		ScheduleType: model.ScheduleShift, Title: "阅览室值班",
		StartTime: clockAt("2025-03-20 14:00"), EndTime: clockAt("2025-03-20 16:00"),
		Status: model.ScheduleActive, CreatedBy: env.admin.ID,
	}
	busy.AssignTo(model.AdminAssignee(env.admin2.ID))
	require.NoError(t, env.repo.Schedule.Create(context.Background(), busy))

	_, err := svc.Accept(context.Background(), ex.ID, nil)
	require.NoError(t, err)

	conflicts, err := env.repo.Schedule.FindConflicts(context.Background(), model.AdminAssignee(env.admin2.ID),
		clockAt("2025-03-20 14:00"), clockAt("2025-03-20 16:00"), 0)
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)
	assert.Equal(t, model.AdminAssignee(env.admin2.ID), env.reloadSchedule(t, sch.ID).Assignee())
}

// ── 其他状态流转 ──

func TestShiftExchangeService_RejectAndCancel_LeaveScheduleAlone(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	ctx := context.Background()
	sch, ex := env.requestSwap(t, svc)

	resp, err := svc.Reject(ctx, ex.ID, ptrOf("时间冲突"))
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.Status)

	resp, err = svc.Cancel(ctx, ex.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.Status)
	require.NotNil(t, resp.ExchangeNotes)
	assert.Equal(t, "时间冲突", *resp.ExchangeNotes)

	assert.Equal(t, model.AdminAssignee(env.admin.ID), env.reloadSchedule(t, sch.ID).Assignee())
}

func TestShiftExchangeService_UpdateStatus(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	ctx := context.Background()
	sch, ex := env.requestSwap(t, svc)

	_, err := svc.UpdateStatus(ctx, ex.ID, "done", nil)
	assert.ErrorIs(t, err, ErrInvalidExchangeStatus)

	// accepted 经由 Accept 同步转移排班
	resp, err := svc.UpdateStatus(ctx, ex.ID, "accepted", nil)
	require.NoError(t, err)
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, model.AdminAssignee(env.admin2.ID), env.reloadSchedule(t, sch.ID).Assignee())

	_, err = svc.UpdateStatus(ctx, 404, "rejected", nil)
	assert.ErrorIs(t, err, ErrShiftExchangeNotFound)
}

// ── 查询 ──

func TestShiftExchangeService_ListByAdmin_AdminRole(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	ctx := context.Background()
	_, ex := env.requestSwap(t, svc)

	mine, total, err := svc.ListByAdmin(ctx, env.admin.ID, &dto.MyShiftExchangeListRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.AdminRoleRequesting, mine[0].AdminRole)

	theirs, _, err := svc.ListByAdmin(ctx, env.admin2.ID, &dto.MyShiftExchangeListRequest{})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, model.AdminRoleTarget, theirs[0].AdminRole)

	pending, err := svc.ListPendingForAdmin(ctx, env.admin2.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ex.ID, pending[0].ID)

	assert.Equal(t, model.AdminRoleTarget, pending[0].AdminRole)

	// 发起方同样能看到自己发起的待处理申请
	pending, err = svc.ListPendingForAdmin(ctx, env.admin.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, ex.ID, pending[0].ID)
	assert.Equal(t, model.AdminRoleRequesting, pending[0].AdminRole)

	_, err = svc.Reject(ctx, ex.ID, nil)
	require.NoError(t, err)
	filtered, total, err := svc.ListByAdmin(ctx, env.admin2.ID, &dto.MyShiftExchangeListRequest{Status: "pending"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, filtered)
}

func TestShiftExchangeService_Delete(t *testing.T) {
	env := setupDBEnv(t)
	svc := env.exchangeService()
	_, ex := env.requestSwap(t, svc)

	require.NoError(t, svc.Delete(context.Background(), ex.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), ex.ID), ErrShiftExchangeNotFound)
}
