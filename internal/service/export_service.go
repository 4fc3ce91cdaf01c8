package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成报表文件失败")
)

// ExportService 报表导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler / CLI 决定写入 HTTP 响应或本地文件。
type ExportService interface {
	// ExportPending 导出全部在职员工的待办合规项（.xlsx）
	ExportPending(ctx context.Context) (*bytes.Buffer, string, error)
	// ExportEmployeeCalendar 导出员工合规到期日历（.ics），每条有到期日的记录一个全天事件
	ExportEmployeeCalendar(ctx context.Context, employeeID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo     *repository.Repository
	settings SettingService
	loc      *time.Location
	now      clock
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, settings SettingService, loc *time.Location, now clock, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, settings: settings, loc: loc, now: now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportPending 生成待办合规项汇总表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "待办合规项"
//   - 列：员工 | 工号 | 职能 | 类型 | 项目 | 紧急程度 | 到期日
//   - 行顺序：员工按姓名，员工内按紧急程度

func (s *exportService) ExportPending(ctx context.Context) (*bytes.Buffer, string, error) {
	employees, err := s.repo.Employee.ListActiveWithFunction(ctx)
	if err != nil {
		s.logger.Error("查询在职员工失败", zap.Error(err))
		return nil, "", err
	}

	ids := make([]string, 0, len(employees))
	for _, e := range employees {
		ids = append(ids, e.EmployeeID)
	}
	records, err := s.repo.ComplianceRecord.ListByEmployeeIDs(ctx, ids)
	if err != nil {
		s.logger.Error("批量查询合规记录失败", zap.Error(err))
		return nil, "", err
	}
	byEmployee := make(map[string][]model.ComplianceRecord, len(employees))
	for _, r := range records {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	today := startOfDay(s.now(), s.loc)
	window := s.settings.WarningWindowDays(ctx)
	functions := make(map[string]*model.Function)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "待办合规项"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"员工", "工号", "职能", "类型", "项目", "紧急程度", "到期日"}
	widths := []float64{24, 12, 22, 10, 32, 14, 12}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, widths[i])
		f.SetCellValue(sheetName, cell(col, 1), h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	row := 2
	for _, e := range employees {
		if e.FunctionID == nil {
			continue
		}
		fn, ok := functions[*e.FunctionID]
		if !ok {
			fn, err = s.repo.Function.GetByID(ctx, *e.FunctionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					s.logger.Warn("员工职能不存在，跳过", zap.String("employee_id", e.EmployeeID))
					continue
				}
				s.logger.Error("查询职能失败", zap.Error(err))
				return nil, "", err
			}
			functions[*e.FunctionID] = fn
		}

		for _, item := range computePending(fn, byEmployee[e.EmployeeID], nil, today, window) {
			expires := "-"
			if item.ExpiresAt != nil {
				expires = *item.ExpiresAt
			}
			f.SetCellValue(sheetName, cell("A", row), e.Name)
			f.SetCellValue(sheetName, cell("B", row), e.Registration)
			f.SetCellValue(sheetName, cell("C", row), fn.Name)
			f.SetCellValue(sheetName, cell("D", row), string(item.Kind))
			f.SetCellValue(sheetName, cell("E", row), item.Name)
			f.SetCellValue(sheetName, cell("F", row), item.Urgency)
			f.SetCellValue(sheetName, cell("G", row), expires)
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("pendencias_%s.xlsx", today.Format(dateLayout))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportEmployeeCalendar 生成员工到期日历
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportEmployeeCalendar(ctx context.Context, employeeID string) (*bytes.Buffer, string, error) {
	employee, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", employeeID), zap.Error(err))
		return nil, "", err
	}

	records, err := s.repo.ComplianceRecord.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询合规记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, "", err
	}

	names := make(map[string]string)
	var examIDs, equipmentIDs []string
	for _, r := range records {
		switch r.Kind {
		case model.RecordKindExam:
			examIDs = append(examIDs, r.CatalogID)
		case model.RecordKindEquipment:
			equipmentIDs = append(equipmentIDs, r.CatalogID)
		}
	}
	if exams, err := s.repo.Exam.ListByIDs(ctx, dedupeIDs(examIDs)); err == nil {
		for _, e := range exams {
			names[e.ExamID] = e.Name
		}
	}
	if items, err := s.repo.Equipment.ListByIDs(ctx, dedupeIDs(equipmentIDs)); err == nil {
		for _, it := range items {
			names[it.EquipmentItemID] = it.Name
		}
	}

	cal := buildExpiryCalendar(employee, records, names, s.now())

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("vencimentos_%s.ics", employee.Registration)
	return buf, filename, nil
}

// buildExpiryCalendar 每条有到期日的记录生成一个全天事件；UID 取记录 ID 以便客户端去重
func buildExpiryCalendar(employee *model.Employee, records []model.ComplianceRecord, names map[string]string, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//conser-control//sst//PT")
	cal.SetXWRCalName(fmt.Sprintf("Vencimentos SST - %s", employee.Name))

	for _, r := range records {
		if r.ExpiresAt == nil {
			continue
		}
		name := names[r.CatalogID]
		if name == "" {
			name = string(r.Kind)
		}

		event := cal.AddEvent(r.RecordID + "@conser-control")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(*r.ExpiresAt)
		event.SetAllDayEndAt(r.ExpiresAt.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("Vencimento: %s", name))
		event.SetDescription(fmt.Sprintf("%s (%s) - realizado em %s",
			employee.Name, employee.Registration, r.PerformedAt.Format(brDateLayout)))
	}
	return cal
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
