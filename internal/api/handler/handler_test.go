package handler

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/service"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// 嵌入接口，只覆盖用到的方法；未覆盖的方法被调用时直接 panic
// ═══════════════════════════════════════════════════════════

// ── Mock LeaveService ──

type mockLeaveService struct {
	service.LeaveService

	leave     *dto.LeaveResponse
	getErr    error
	mutation  *dto.LeaveMutationResponse
	createErr error
	listItems []dto.LeaveResponse
	listTotal int64

	gotStudentID int64
	gotAdminID   int64
	gotNotes     *string
	listedBy     string
	cancelled    bool
}

func (m *mockLeaveService) Create(_ context.Context, _ *dto.CreateLeaveRequest, studentID int64) (*dto.LeaveMutationResponse, error) {
	m.gotStudentID = studentID
	return m.mutation, m.createErr
}
func (m *mockLeaveService) GetByID(_ context.Context, _ int64) (*dto.LeaveResponse, error) {
	return m.leave, m.getErr
}
func (m *mockLeaveService) List(_ context.Context, _ *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	m.listedBy = "all"
	return m.listItems, m.listTotal, nil
}
func (m *mockLeaveService) ListByStudent(_ context.Context, studentID int64, _ *dto.LeaveListRequest) ([]dto.LeaveResponse, int64, error) {
	m.listedBy = "student"
	m.gotStudentID = studentID
	return m.listItems, m.listTotal, nil
}
func (m *mockLeaveService) Update(_ context.Context, _ int64, _ *dto.UpdateLeaveRequest) (*dto.LeaveMutationResponse, error) {
	return m.mutation, nil
}
func (m *mockLeaveService) Approve(_ context.Context, _ int64, adminID int64, notes *string) (*dto.LeaveResponse, error) {
	m.gotAdminID = adminID
	m.gotNotes = notes
	return m.leave, nil
}
func (m *mockLeaveService) Cancel(_ context.Context, _ int64) (*dto.LeaveResponse, error) {
	m.cancelled = true
	return m.leave, nil
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	service.ScheduleService

	conflicts []dto.ScheduleResponse
	listErr   error
	imported  *dto.ICSImportResponse

	gotAssignee model.Assignee
	gotCreator  int64
	gotICS      string
	gotFilter   dto.ScheduleFilterRequest
}

func (m *mockScheduleService) List(_ context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	m.gotFilter = req.ScheduleFilterRequest
	return nil, 0, m.listErr
}
func (m *mockScheduleService) CheckConflicts(_ context.Context, a model.Assignee, _, _ time.Time, _ int64) ([]dto.ScheduleResponse, error) {
	m.gotAssignee = a
	return m.conflicts, nil
}
func (m *mockScheduleService) ImportICS(_ context.Context, r io.Reader, a model.Assignee, createdBy int64) (*dto.ICSImportResponse, error) {
	b, _ := io.ReadAll(r)
	m.gotICS = string(b)
	m.gotAssignee = a
	m.gotCreator = createdBy
	return m.imported, nil
}

// ── Mock ShiftExchangeService ──

type mockExchangeService struct {
	service.ShiftExchangeService

	exchange *dto.ShiftExchangeResponse
	accepted bool
}

func (m *mockExchangeService) GetByID(_ context.Context, _ int64) (*dto.ShiftExchangeResponse, error) {
	if m.exchange == nil {
		return nil, service.ErrShiftExchangeNotFound
	}
	return m.exchange, nil
}
func (m *mockExchangeService) Accept(_ context.Context, _ int64, _ *string) (*dto.ShiftExchangeResponse, error) {
	m.accepted = true
	return m.exchange, nil
}

// ── Mock ExportService ──

type mockExportService struct {
	service.ExportService
	err error
}

func (m *mockExportService) ExportSchedules(_ context.Context, _ *dto.ExportSchedulesRequest) (*bytes.Buffer, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return bytes.NewBufferString("xlsx"), "排班表_2025-03-01_2025-03-31.xlsx", nil
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// principal 模拟 JWTAuth 注入的登录身份
type principal struct {
	role      string
	profileID int64
}

var (
	asAdmin   = principal{role: RoleAdmin, profileID: 10}
	asStudent = principal{role: RoleStudent, profileID: 1}
)

func newRouter(p principal, register func(r gin.IRouter)) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if p.role != "" {
			c.Set("user_id", int64(100)+p.profileID)
			c.Set("role", p.role)
			c.Set("profile_id", p.profileID)
		}
		c.Next()
	})
	register(r)
	return r
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func validLeaveBody() io.Reader {
	return jsonBody(map[string]string{
		"leave_type": "sick",
		"start_date": "2025-03-10",
		"end_date":   "2025-03-12",
		"reason":     "发烧",
	})
}

// ═══════════════════════════════════════════════════════════
// LeaveHandler Tests
// ═══════════════════════════════════════════════════════════

func TestLeaveHandler_Create_StudentUsesOwnProfile(t *testing.T) {
	mock := &mockLeaveService{mutation: &dto.LeaveMutationResponse{Overlaps: []dto.LeaveResponse{}}}
	h := NewLeaveHandler(mock)
	r := newRouter(asStudent, func(r gin.IRouter) { r.POST("/leave-requests", h.Create) })

	w := serve(r, "POST", "/leave-requests", validLeaveBody())

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	if mock.gotStudentID != asStudent.profileID {
		t.Errorf("学生提交应以登录身份为准，实际 student_id=%d", mock.gotStudentID)
	}
}

func TestLeaveHandler_Create_AdminMustNameStudent(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveService{})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/leave-requests", h.Create) })

	w := serve(r, "POST", "/leave-requests", validLeaveBody())

	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11001 {
		t.Errorf("期望错误码 11001，实际 %d", resp.Code)
	}
}

func TestLeaveHandler_Create_BadJSON(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveService{})
	r := newRouter(asStudent, func(r gin.IRouter) { r.POST("/leave-requests", h.Create) })

	w := serve(r, "POST", "/leave-requests", strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

func TestLeaveHandler_Create_OverlapBlocked(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveService{createErr: service.ErrLeaveOverlap})
	r := newRouter(asStudent, func(r gin.IRouter) { r.POST("/leave-requests", h.Create) })

	w := serve(r, "POST", "/leave-requests", validLeaveBody())

	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 11104 {
		t.Errorf("期望错误码 11104，实际 %d", resp.Code)
	}
}

func TestLeaveHandler_Create_InvalidDateRange(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveService{createErr: service.ErrInvalidDateRange})
	r := newRouter(asStudent, func(r gin.IRouter) { r.POST("/leave-requests", h.Create) })

	w := serve(r, "POST", "/leave-requests", validLeaveBody())

	if resp := parseResponse(w); w.Code != http.StatusBadRequest || resp.Code != 11002 {
		t.Errorf("期望 400/11002，实际 %d/%d", w.Code, resp.Code)
	}
}

func TestLeaveHandler_List_StudentScoped(t *testing.T) {
	mock := &mockLeaveService{listItems: []dto.LeaveResponse{{ID: 1}}, listTotal: 1}
	h := NewLeaveHandler(mock)
	r := newRouter(asStudent, func(r gin.IRouter) { r.GET("/leave-requests", h.List) })

	w := serve(r, "GET", "/leave-requests?page=1&limit=10", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.listedBy != "student" || mock.gotStudentID != asStudent.profileID {
		t.Errorf("学生列表应限定本人，实际 %s/%d", mock.listedBy, mock.gotStudentID)
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Total != 1 || body.Data.Pagination.Limit != 10 || body.Data.Pagination.TotalPages != 1 {
		t.Errorf("分页信息不正确: %+v", body.Data.Pagination)
	}
}

func TestLeaveHandler_List_AdminSeesAll(t *testing.T) {
	mock := &mockLeaveService{}
	h := NewLeaveHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/leave-requests", h.List) })

	w := serve(r, "GET", "/leave-requests", nil)

	if w.Code != http.StatusOK || mock.listedBy != "all" {
		t.Errorf("管理员应查询全部，实际 %d/%s", w.Code, mock.listedBy)
	}
	if !strings.Contains(w.Body.String(), `"items":[]`) {
		t.Errorf("空列表应输出 []，实际 %s", w.Body.String())
	}
}

func TestLeaveHandler_GetByID_NotFound(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveService{getErr: service.ErrLeaveNotFound})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/leave-requests/:id", h.GetByID) })

	w := serve(r, "GET", "/leave-requests/99", nil)

	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 11101 {
		t.Errorf("期望 404/11101，实际 %d/%d", w.Code, resp.Code)
	}
}

func TestLeaveHandler_GetByID_InvalidID(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveService{})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/leave-requests/:id", h.GetByID) })

	w := serve(r, "GET", "/leave-requests/abc", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

func TestLeaveHandler_Update_OtherStudentForbidden(t *testing.T) {
	mock := &mockLeaveService{leave: &dto.LeaveResponse{ID: 5, StudentID: 2, Status: "pending"}}
	h := NewLeaveHandler(mock)
	r := newRouter(asStudent, func(r gin.IRouter) { r.PUT("/leave-requests/:id", h.Update) })

	w := serve(r, "PUT", "/leave-requests/5", jsonBody(map[string]string{"reason": "改"}))

	if resp := parseResponse(w); w.Code != http.StatusForbidden || resp.Code != 11105 {
		t.Errorf("期望 403/11105，实际 %d/%d", w.Code, resp.Code)
	}
}

func TestLeaveHandler_Cancel_StudentOwnPending(t *testing.T) {
	mock := &mockLeaveService{leave: &dto.LeaveResponse{ID: 5, StudentID: 1, Status: "pending"}}
	h := NewLeaveHandler(mock)
	r := newRouter(asStudent, func(r gin.IRouter) { r.POST("/leave-requests/:id/cancel", h.Cancel) })

	w := serve(r, "POST", "/leave-requests/5/cancel", nil)

	if w.Code != http.StatusOK || !mock.cancelled {
		t.Errorf("本人待审批申请应可撤销，实际 %d", w.Code)
	}
}

func TestLeaveHandler_Cancel_StudentDecidedForbidden(t *testing.T) {
	mock := &mockLeaveService{leave: &dto.LeaveResponse{ID: 5, StudentID: 1, Status: "approved"}}
	h := NewLeaveHandler(mock)
	r := newRouter(asStudent, func(r gin.IRouter) { r.POST("/leave-requests/:id/cancel", h.Cancel) })

	w := serve(r, "POST", "/leave-requests/5/cancel", nil)

	if resp := parseResponse(w); w.Code != http.StatusForbidden || resp.Code != 11106 {
		t.Errorf("期望 403/11106，实际 %d/%d", w.Code, resp.Code)
	}
	if mock.cancelled {
		t.Error("不应调用 Cancel")
	}
}

func TestLeaveHandler_Cancel_AdminAnyStatus(t *testing.T) {
	mock := &mockLeaveService{leave: &dto.LeaveResponse{ID: 5, StudentID: 2, Status: "approved"}}
	h := NewLeaveHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/leave-requests/:id/cancel", h.Cancel) })

	w := serve(r, "POST", "/leave-requests/5/cancel", nil)

	if w.Code != http.StatusOK || !mock.cancelled {
		t.Errorf("管理员撤销不受限制，实际 %d", w.Code)
	}
}

func TestLeaveHandler_Approve_StampsAdmin(t *testing.T) {
	mock := &mockLeaveService{leave: &dto.LeaveResponse{ID: 5, Status: "approved"}}
	h := NewLeaveHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/leave-requests/:id/approve", h.Approve) })

	w := serve(r, "POST", "/leave-requests/5/approve", jsonBody(map[string]string{"admin_notes": "注意休息"}))

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.gotAdminID != asAdmin.profileID {
		t.Errorf("审批人应为当前管理员，实际 %d", mock.gotAdminID)
	}
	if mock.gotNotes == nil || *mock.gotNotes != "注意休息" {
		t.Errorf("备注未透传: %v", mock.gotNotes)
	}
}

func TestLeaveHandler_Approve_EmptyBody(t *testing.T) {
	mock := &mockLeaveService{leave: &dto.LeaveResponse{ID: 5, Status: "approved"}}
	h := NewLeaveHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/leave-requests/:id/approve", h.Approve) })

	w := serve(r, "POST", "/leave-requests/5/approve", nil)

	if w.Code != http.StatusOK || mock.gotNotes != nil {
		t.Errorf("无请求体时应直接审批，实际 %d", w.Code)
	}
}

func TestLeaveHandler_Unauthenticated(t *testing.T) {
	h := NewLeaveHandler(&mockLeaveService{})
	r := newRouter(principal{}, func(r gin.IRouter) { r.GET("/leave-requests", h.List) })

	w := serve(r, "GET", "/leave-requests", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ScheduleHandler Tests
// ═══════════════════════════════════════════════════════════

func TestScheduleHandler_List_StudentForcedToSelf(t *testing.T) {
	mock := &mockScheduleService{}
	h := NewScheduleHandler(mock)
	r := newRouter(asStudent, func(r gin.IRouter) { r.GET("/schedules", h.List) })

	w := serve(r, "GET", "/schedules?assigned_to_type=admin&assigned_to_id=10", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.gotFilter.AssignedToType != "student" || mock.gotFilter.AssignedToID != asStudent.profileID {
		t.Errorf("学生查询应被限定为本人，实际 %+v", mock.gotFilter)
	}
}

func TestScheduleHandler_List_ConnectionFailure(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{listErr: fmt.Errorf("查询排班失败: %w", driver.ErrBadConn)})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/schedules", h.List) })

	w := serve(r, "GET", "/schedules", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("连接失败应返回 503，实际 %d", w.Code)
	}
}

func TestScheduleHandler_List_UnknownError(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{listErr: errors.New("boom")})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/schedules", h.List) })

	w := serve(r, "GET", "/schedules", nil)

	if resp := parseResponse(w); w.Code != http.StatusInternalServerError || resp.Code != 50000 {
		t.Errorf("期望 500/50000，实际 %d/%d", w.Code, resp.Code)
	}
}

func TestScheduleHandler_CheckConflicts(t *testing.T) {
	mock := &mockScheduleService{conflicts: []dto.ScheduleResponse{{ID: 7}}}
	h := NewScheduleHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/schedules/conflicts", h.CheckConflicts) })

	w := serve(r, "GET", "/schedules/conflicts?assigned_to_type=student&assigned_to_id=3"+
		"&start_time=2025-03-10T09:00:00Z&end_time=2025-03-10T11:00:00Z", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if mock.gotAssignee != model.StudentAssignee(3) {
		t.Errorf("归属人解析错误: %v", mock.gotAssignee)
	}
	if !strings.Contains(w.Body.String(), `"has_conflict":true`) {
		t.Errorf("应标记存在冲突: %s", w.Body.String())
	}
}

func TestScheduleHandler_CheckConflicts_MissingParams(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/schedules/conflicts", h.CheckConflicts) })

	w := serve(r, "GET", "/schedules/conflicts?assigned_to_type=student", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

func TestScheduleHandler_ImportICS(t *testing.T) {
	mock := &mockScheduleService{imported: &dto.ICSImportResponse{Created: 2, Skipped: []dto.ICSSkippedEvent{}}}
	h := NewScheduleHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/schedules/import", h.ImportICS) })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("assigned_to_type", "student")
	mw.WriteField("assigned_to_id", "3")
	fw, _ := mw.CreateFormFile("file", "timetable.ics")
	fw.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	if mock.gotAssignee != model.StudentAssignee(3) || mock.gotCreator != asAdmin.profileID {
		t.Errorf("归属人或创建人错误: %v / %d", mock.gotAssignee, mock.gotCreator)
	}
	if !strings.HasPrefix(mock.gotICS, "BEGIN:VCALENDAR") {
		t.Errorf("文件内容未透传: %q", mock.gotICS)
	}
}

func TestScheduleHandler_ImportICS_MissingFile(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/schedules/import", h.ImportICS) })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("assigned_to_type", "student")
	mw.WriteField("assigned_to_id", "3")
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/schedules/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if resp := parseResponse(w); w.Code != http.StatusBadRequest || resp.Code != 13002 {
		t.Errorf("期望 400/13002，实际 %d/%d", w.Code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ShiftExchangeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestShiftExchangeHandler_Accept_ByTarget(t *testing.T) {
	mock := &mockExchangeService{exchange: &dto.ShiftExchangeResponse{ID: 3, RequestingAdminID: 11, TargetAdminID: 10}}
	h := NewShiftExchangeHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/shift-exchanges/:id/accept", h.Accept) })

	w := serve(r, "POST", "/shift-exchanges/3/accept", nil)

	if w.Code != http.StatusOK || !mock.accepted {
		t.Errorf("目标管理员应可接受，实际 %d", w.Code)
	}
}

func TestShiftExchangeHandler_Accept_NotTarget(t *testing.T) {
	mock := &mockExchangeService{exchange: &dto.ShiftExchangeResponse{ID: 3, RequestingAdminID: 10, TargetAdminID: 12}}
	h := NewShiftExchangeHandler(mock)
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/shift-exchanges/:id/accept", h.Accept) })

	w := serve(r, "POST", "/shift-exchanges/3/accept", nil)

	if resp := parseResponse(w); w.Code != http.StatusForbidden || resp.Code != 14105 {
		t.Errorf("期望 403/14105，实际 %d/%d", w.Code, resp.Code)
	}
	if mock.accepted {
		t.Error("非目标管理员不应触发 Accept")
	}
}

func TestShiftExchangeHandler_Accept_NotFound(t *testing.T) {
	h := NewShiftExchangeHandler(&mockExchangeService{})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.POST("/shift-exchanges/:id/accept", h.Accept) })

	w := serve(r, "POST", "/shift-exchanges/3/accept", nil)

	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 14101 {
		t.Errorf("期望 404/14101，实际 %d/%d", w.Code, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler / HealthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportSchedules(t *testing.T) {
	h := NewExportHandler(&mockExportService{})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/export/schedules", h.ExportSchedules) })

	w := serve(r, "GET", "/export/schedules?start_date=2025-03-01&end_date=2025-03-31", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不正确: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename*=UTF-8''") {
		t.Errorf("Content-Disposition 不正确: %s", cd)
	}
}

func TestExportHandler_NoSchedules(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoSchedules})
	r := newRouter(asAdmin, func(r gin.IRouter) { r.GET("/export/schedules", h.ExportSchedules) })

	w := serve(r, "GET", "/export/schedules?start_date=2025-03-01&end_date=2025-03-31", nil)

	if resp := parseResponse(w); w.Code != http.StatusNotFound || resp.Code != 16101 {
		t.Errorf("期望 404/16101，实际 %d/%d", w.Code, resp.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	up := func(context.Context) error { return nil }

	cases := []struct {
		name   string
		checks []HealthCheck
		code   int
		status string
	}{
		{"全部正常", []HealthCheck{{Name: "database", Required: true, Ping: up}}, http.StatusOK, "ok"},
		{"可选依赖失败", []HealthCheck{{Name: "database", Required: true, Ping: up}, {Name: "redis", Ping: down}}, http.StatusOK, "degraded"},
		{"必需依赖失败", []HealthCheck{{Name: "database", Required: true, Ping: down}}, http.StatusServiceUnavailable, "down"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthHandler(tc.checks...)
			r := newRouter(principal{}, func(r gin.IRouter) { r.GET("/health", h.Check) })

			w := serve(r, "GET", "/health", nil)

			var body struct {
				Status string `json:"status"`
			}
			json.Unmarshal(w.Body.Bytes(), &body)
			if w.Code != tc.code || body.Status != tc.status {
				t.Errorf("期望 %d/%s，实际 %d/%s", tc.code, tc.status, w.Code, body.Status)
			}
		})
	}
}
