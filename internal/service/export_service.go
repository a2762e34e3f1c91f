package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/lindokuhlezulu42/E-LibraryLog/config"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/dto"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSchedules  = errors.New("所选日期范围内暂无排班")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
// 仅做格式化导出，不做统计汇总。
type ExportService interface {
	// ExportSchedules 导出日期区间内的排班为 Excel
	ExportSchedules(ctx context.Context, req *dto.ExportSchedulesRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.SchedulingConfig
	repo   *repository.Repository
	names  nameResolver
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.SchedulingConfig, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{
		cfg:    cfg,
		repo:   repo,
		names:  nameResolver{people: repo.Person},
		logger: logger,
	}
}

var exportHeaders = []string{"日期", "开始", "结束", "类型", "标题", "归属人", "人员类型", "地点", "状态"}

var scheduleTypeNames = map[model.ScheduleType]string{
	model.ScheduleClass: "课程",
	model.ScheduleShift: "值班",
}

var personTypeNames = map[model.PersonType]string{
	model.PersonAdmin:   "管理员",
	model.PersonStudent: "学生",
}

var scheduleStatusNames = map[model.ScheduleStatus]string{
	model.ScheduleActive:    "进行中",
	model.ScheduleCancelled: "已取消",
	model.ScheduleCompleted: "已完成",
}

// ═══════════════════════════════════════════════════════════
// ExportSchedules — 导出排班为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "排班表"
//   - 第 1 行标题（日期范围），第 2 行表头
//   - 数据行按开始时间升序，时间按排班时区显示
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSchedules(ctx context.Context, req *dto.ExportSchedulesRequest) (*bytes.Buffer, string, error) {
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, "", err
	}
	loc := s.cfg.Location()
	from, until := dayWindow(start, end, loc)

	// 1. 查询区间内排班
	filter := scheduleFilterFrom(&req.ScheduleFilterRequest)
	filter.EndsFrom = &from
	filter.StartsBefore = &until
	schedules, err := s.repo.Schedule.ListAll(ctx, filter)
	if err != nil {
		s.logger.Error("查询导出排班失败", zap.Error(err))
		return nil, "", fmt.Errorf("查询导出排班失败: %w", err)
	}
	if len(schedules) == 0 {
		return nil, "", ErrExportNoSchedules
	}

	// 2. 解析归属人姓名
	assignees := make([]model.Assignee, 0, len(schedules))
	for i := range schedules {
		assignees = append(assignees, schedules[i].Assignee())
	}
	names, err := s.names.resolve(ctx, assignees)
	if err != nil {
		s.logger.Error("查询归属人姓名失败", zap.Error(err))
		return nil, "", fmt.Errorf("查询归属人姓名失败: %w", err)
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "排班表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	widths := []float64{12, 8, 8, 8, 28, 16, 10, 16, 8}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("排班表 %s ~ %s", req.StartDate, req.EndDate))
	f.MergeCell(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(exportHeaders)-1), row), headerStyle)

	// 数据行
	for i := range schedules {
		row++
		sch := &schedules[i]
		st := sch.StartTime.In(loc)
		et := sch.EndTime.In(loc)
		location := ""
		if sch.Location != nil {
			location = *sch.Location
		}
		values := []any{
			st.Format(dto.DateLayout),
			st.Format("15:04"),
			et.Format("15:04"),
			scheduleTypeNames[sch.ScheduleType],
			sch.Title,
			names[sch.Assignee()],
			personTypeNames[sch.AssignedToType],
			location,
			scheduleStatusNames[sch.Status],
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("排班已导出", zap.Int("rows", len(schedules)))
	filename := fmt.Sprintf("排班表_%s_%s.xlsx", req.StartDate, req.EndDate)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
