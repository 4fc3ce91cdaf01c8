package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"conser-control/backend/internal/model"
	pkgerrors "conser-control/backend/pkg/errors"
)

// setupTestDB 使用内存 SQLite 创建全部表
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "打开 SQLite 失败")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接独立，限制为单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&model.Sector{},
		&model.Exam{},
		&model.ExamPrice{},
		&model.EquipmentItem{},
		&model.UniformItem{},
		&model.Function{},
		&model.FunctionEquipment{},
		&model.FunctionUniform{},
		&model.FunctionExam{},
		&model.Employee{},
		&model.DocumentTemplate{},
		&model.ComplianceRecord{},
		&model.ComplianceSetting{},
	)
	require.NoError(t, err, "AutoMigrate 失败")
	return db
}

func seedFunction(t *testing.T, repo *Repository) (*model.Sector, *model.Function) {
	t.Helper()
	ctx := context.Background()

	sector := &model.Sector{Name: "Operações", IsActive: true}
	require.NoError(t, repo.Sector.Create(ctx, sector))

	fn := &model.Function{Name: "Motorista", SectorID: sector.SectorID, IsActive: true}
	require.NoError(t, repo.Function.Create(ctx, fn))
	return sector, fn
}

func TestSectorRepo_CRUD(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	sector, _ := seedFunction(t, repo)
	require.NotEmpty(t, sector.SectorID, "主键应在应用侧生成")

	got, err := repo.Sector.GetByName(ctx, "Operações")
	require.NoError(t, err)
	assert.Equal(t, sector.SectorID, got.SectorID)

	count, err := repo.Sector.CountFunctions(ctx, sector.SectorID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got.IsActive = false
	require.NoError(t, repo.Sector.Update(ctx, got))

	active, err := repo.Sector.List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := repo.Sector.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Sector.Delete(ctx, sector.SectorID, "u-admin"))
	_, err = repo.Sector.GetByID(ctx, sector.SectorID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestFunctionRepo_ReplaceBindings(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	_, fn := seedFunction(t, repo)

	months := 12
	aso := &model.Exam{
		Name:                  "ASO Periódico",
		TriggerEvents:         model.TriggerEventSet{model.TriggerHiring, model.TriggerPeriodic},
		RenewalIntervalMonths: &months,
		IsActive:              true,
	}
	audio := &model.Exam{
		Name:          "Audiometria",
		TriggerEvents: model.TriggerEventSet{model.TriggerHiring},
		IsActive:      true,
	}
	require.NoError(t, repo.Exam.Create(ctx, aso))
	require.NoError(t, repo.Exam.Create(ctx, audio))

	boots := &model.EquipmentItem{Name: "Botina de segurança", IsActive: true}
	require.NoError(t, repo.Equipment.Create(ctx, boots))

	require.NoError(t, repo.Function.ReplaceExamsForTrigger(ctx, fn, model.TriggerHiring,
		[]string{aso.ExamID, audio.ExamID}, "u-sesmt"))
	require.NoError(t, repo.Function.ReplaceExamsForTrigger(ctx, fn, model.TriggerPeriodic,
		[]string{aso.ExamID}, "u-sesmt"))
	require.NoError(t, repo.Function.ReplaceEquipment(ctx, fn, []string{boots.EquipmentItemID}, "u-sesmt"))

	got, err := repo.Function.GetByID(ctx, fn.FunctionID)
	require.NoError(t, err)
	assert.Len(t, got.Exams, 3)
	require.Len(t, got.Equipment, 1)
	require.NotNil(t, got.Equipment[0].EquipmentItem)
	assert.Equal(t, "Botina de segurança", got.Equipment[0].EquipmentItem.Name)
	assert.Equal(t, fn.Version, got.Version, "每次替换都推进版本号")

	// 替换单个分桶不影响其他分桶
	require.NoError(t, repo.Function.ReplaceExamsForTrigger(ctx, fn, model.TriggerHiring, nil, "u-sesmt"))
	got, err = repo.Function.GetByID(ctx, fn.FunctionID)
	require.NoError(t, err)
	require.Len(t, got.Exams, 1)
	assert.Equal(t, model.TriggerPeriodic, got.Exams[0].TriggerEvent)
}

func TestFunctionRepo_OptimisticLock(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	_, fn := seedFunction(t, repo)

	stale := *fn

	fn.Description = "Condução de veículos"
	require.NoError(t, repo.Function.Update(ctx, fn))
	assert.Equal(t, stale.Version+1, fn.Version)

	stale.Description = "outra"
	err := repo.Function.Update(ctx, &stale)
	assert.True(t, errors.Is(err, pkgerrors.ErrOptimisticLock))

	err = repo.Function.ReplaceUniforms(ctx, &stale, nil, "u-sesmt")
	assert.True(t, errors.Is(err, pkgerrors.ErrOptimisticLock))
}

func TestEmployeeRepo_FiltersAndCascadeDelete(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	_, fn := seedFunction(t, repo)

	ana := &model.Employee{Name: "Ana Souza", Registration: "0001", FunctionID: &fn.FunctionID, IsActive: true}
	bruno := &model.Employee{Name: "Bruno Alves", Registration: "0002", IsActive: true}
	require.NoError(t, repo.Employee.Create(ctx, ana))
	require.NoError(t, repo.Employee.Create(ctx, bruno))

	list, total, err := repo.Employee.ListWithFilters(ctx, &EmployeeListFilters{Keyword: "0002"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Bruno Alves", list[0].Name)

	assigned, err := repo.Employee.ListActiveWithFunction(ctx)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, ana.EmployeeID, assigned[0].EmployeeID)

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rec := &model.ComplianceRecord{
		EmployeeID:  ana.EmployeeID,
		Kind:        model.RecordKindExam,
		CatalogID:   "exam-1",
		PerformedAt: day,
	}
	require.NoError(t, repo.ComplianceRecord.Create(ctx, rec))

	require.NoError(t, repo.Employee.Delete(ctx, ana.EmployeeID, "u-admin"))

	_, err = repo.Employee.GetByID(ctx, ana.EmployeeID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	_, err = repo.ComplianceRecord.GetByID(ctx, rec.RecordID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "员工删除应级联软删除合规记录")
}

func TestComplianceRecordRepo_OrderAndAttachment(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	older := &model.ComplianceRecord{
		EmployeeID:  "emp-1",
		Kind:        model.RecordKindExam,
		CatalogID:   "exam-1",
		PerformedAt: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &model.ComplianceRecord{
		EmployeeID:  "emp-1",
		Kind:        model.RecordKindExam,
		CatalogID:   "exam-1",
		PerformedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	other := &model.ComplianceRecord{
		EmployeeID:  "emp-2",
		Kind:        model.RecordKindEquipment,
		CatalogID:   "epi-1",
		PerformedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, r := range []*model.ComplianceRecord{older, newer, other} {
		require.NoError(t, repo.ComplianceRecord.Create(ctx, r))
	}

	records, err := repo.ComplianceRecord.ListByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.RecordID, records[0].RecordID, "按执行日期倒序")

	batch, err := repo.ComplianceRecord.ListByEmployeeIDs(ctx, []string{"emp-1", "emp-2"})
	require.NoError(t, err)
	assert.Len(t, batch, 3)

	empty, err := repo.ComplianceRecord.ListByEmployeeIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, repo.ComplianceRecord.UpdateAttachment(ctx, newer.RecordID, "records/aso.pdf", "u-sesmt"))
	got, err := repo.ComplianceRecord.GetByID(ctx, newer.RecordID)
	require.NoError(t, err)
	assert.Equal(t, "records/aso.pdf", got.AttachmentKey)

	require.NoError(t, repo.ComplianceRecord.Delete(ctx, older.RecordID, "u-sesmt"))
	records, err = repo.ComplianceRecord.ListByEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestComplianceSettingRepo_Upsert(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.ComplianceSetting.Get(ctx)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound), "未初始化时应返回 NotFound")

	require.NoError(t, repo.ComplianceSetting.Update(ctx, &model.ComplianceSetting{WarningWindowDays: 45}))
	require.NoError(t, repo.ComplianceSetting.Update(ctx, &model.ComplianceSetting{WarningWindowDays: 60}))

	got, err := repo.ComplianceSetting.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, got.WarningWindowDays)
}
