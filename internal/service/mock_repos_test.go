package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
	pkgerrors "conser-control/backend/pkg/errors"
)

// 所有 mock 以值存储、返回副本，避免 Service 修改后未落库的对象污染"数据库"。

// ── Mock SectorRepository ──

type mockSectorRepo struct {
	sectors   map[string]model.Sector
	functions *mockFunctionRepo
	seq       int
}

func newMockSectorRepo() *mockSectorRepo {
	return &mockSectorRepo{sectors: make(map[string]model.Sector)}
}

func (m *mockSectorRepo) Create(_ context.Context, sector *model.Sector) error {
	if sector.SectorID == "" {
		m.seq++
		sector.SectorID = fmt.Sprintf("sector-%d", m.seq)
	}
	m.sectors[sector.SectorID] = *sector
	return nil
}

func (m *mockSectorRepo) GetByID(_ context.Context, id string) (*model.Sector, error) {
	if s, ok := m.sectors[id]; ok {
		return &s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectorRepo) GetByName(_ context.Context, name string) (*model.Sector, error) {
	for _, s := range m.sectors {
		if s.Name == name {
			s := s
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSectorRepo) List(_ context.Context, includeInactive bool) ([]model.Sector, error) {
	var result []model.Sector
	for _, s := range m.sectors {
		if !includeInactive && !s.IsActive {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSectorRepo) Update(_ context.Context, sector *model.Sector) error {
	m.sectors[sector.SectorID] = *sector
	return nil
}

func (m *mockSectorRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.sectors, id)
	return nil
}

func (m *mockSectorRepo) CountFunctions(_ context.Context, sectorID string) (int64, error) {
	if m.functions == nil {
		return 0, nil
	}
	var n int64
	for _, f := range m.functions.functions {
		if f.SectorID == sectorID {
			n++
		}
	}
	return n, nil
}

// ── Mock ExamRepository ──

type mockExamRepo struct {
	exams map[string]model.Exam
	seq   int
}

func newMockExamRepo() *mockExamRepo {
	return &mockExamRepo{exams: make(map[string]model.Exam)}
}

func (m *mockExamRepo) Create(_ context.Context, exam *model.Exam) error {
	if exam.ExamID == "" {
		m.seq++
		exam.ExamID = fmt.Sprintf("exam-%d", m.seq)
	}
	for i := range exam.Prices {
		exam.Prices[i].ExamID = exam.ExamID
	}
	m.exams[exam.ExamID] = *exam
	return nil
}

func (m *mockExamRepo) GetByID(_ context.Context, id string) (*model.Exam, error) {
	if e, ok := m.exams[id]; ok {
		return &e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamRepo) ListByIDs(_ context.Context, ids []string) ([]model.Exam, error) {
	var result []model.Exam
	for _, id := range ids {
		if e, ok := m.exams[id]; ok {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockExamRepo) List(_ context.Context, includeInactive bool) ([]model.Exam, error) {
	var result []model.Exam
	for _, e := range m.exams {
		if !includeInactive && !e.IsActive {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockExamRepo) Update(_ context.Context, exam *model.Exam) error {
	m.exams[exam.ExamID] = *exam
	return nil
}

// ── Mock EquipmentRepository ──

type mockEquipmentRepo struct {
	items map[string]model.EquipmentItem
	seq   int
}

func newMockEquipmentRepo() *mockEquipmentRepo {
	return &mockEquipmentRepo{items: make(map[string]model.EquipmentItem)}
}

func (m *mockEquipmentRepo) Create(_ context.Context, item *model.EquipmentItem) error {
	if item.EquipmentItemID == "" {
		m.seq++
		item.EquipmentItemID = fmt.Sprintf("epi-%d", m.seq)
	}
	m.items[item.EquipmentItemID] = *item
	return nil
}

func (m *mockEquipmentRepo) GetByID(_ context.Context, id string) (*model.EquipmentItem, error) {
	if it, ok := m.items[id]; ok {
		return &it, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEquipmentRepo) ListByIDs(_ context.Context, ids []string) ([]model.EquipmentItem, error) {
	var result []model.EquipmentItem
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			result = append(result, it)
		}
	}
	return result, nil
}

func (m *mockEquipmentRepo) List(_ context.Context, includeInactive bool) ([]model.EquipmentItem, error) {
	var result []model.EquipmentItem
	for _, it := range m.items {
		if !includeInactive && !it.IsActive {
			continue
		}
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockEquipmentRepo) Update(_ context.Context, item *model.EquipmentItem) error {
	m.items[item.EquipmentItemID] = *item
	return nil
}

// ── Mock UniformRepository ──

type mockUniformRepo struct {
	items map[string]model.UniformItem
	seq   int
}

func newMockUniformRepo() *mockUniformRepo {
	return &mockUniformRepo{items: make(map[string]model.UniformItem)}
}

func (m *mockUniformRepo) Create(_ context.Context, item *model.UniformItem) error {
	if item.UniformItemID == "" {
		m.seq++
		item.UniformItemID = fmt.Sprintf("uniform-%d", m.seq)
	}
	m.items[item.UniformItemID] = *item
	return nil
}

func (m *mockUniformRepo) GetByID(_ context.Context, id string) (*model.UniformItem, error) {
	if it, ok := m.items[id]; ok {
		return &it, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUniformRepo) ListByIDs(_ context.Context, ids []string) ([]model.UniformItem, error) {
	var result []model.UniformItem
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			result = append(result, it)
		}
	}
	return result, nil
}

func (m *mockUniformRepo) List(_ context.Context, includeInactive bool) ([]model.UniformItem, error) {
	var result []model.UniformItem
	for _, it := range m.items {
		if !includeInactive && !it.IsActive {
			continue
		}
		result = append(result, it)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Description < result[j].Description })
	return result, nil
}

func (m *mockUniformRepo) Update(_ context.Context, item *model.UniformItem) error {
	m.items[item.UniformItemID] = *item
	return nil
}

// ── Mock FunctionRepository ──
//
// GetByID 模拟 GORM Preload，从其他 mock 中解引用目录对象。

type mockFunctionRepo struct {
	functions map[string]model.Function
	equipment map[string][]string
	uniforms  map[string][]string
	exams     map[string]map[model.TriggerEvent][]string

	sectors      *mockSectorRepo
	examRepo     *mockExamRepo
	equipRepo    *mockEquipmentRepo
	uniformRepo  *mockUniformRepo
	replaceCalls int
	seq          int
}

func newMockFunctionRepo(sectors *mockSectorRepo, exams *mockExamRepo, equip *mockEquipmentRepo, uniforms *mockUniformRepo) *mockFunctionRepo {
	m := &mockFunctionRepo{
		functions:   make(map[string]model.Function),
		equipment:   make(map[string][]string),
		uniforms:    make(map[string][]string),
		exams:       make(map[string]map[model.TriggerEvent][]string),
		sectors:     sectors,
		examRepo:    exams,
		equipRepo:   equip,
		uniformRepo: uniforms,
	}
	sectors.functions = m
	return m
}

func (m *mockFunctionRepo) Create(_ context.Context, function *model.Function) error {
	if function.FunctionID == "" {
		m.seq++
		function.FunctionID = fmt.Sprintf("fn-%d", m.seq)
	}
	if function.Version == 0 {
		function.Version = 1
	}
	stored := *function
	stored.Sector, stored.Equipment, stored.Uniforms, stored.Exams = nil, nil, nil, nil
	m.functions[function.FunctionID] = stored
	return nil
}

func (m *mockFunctionRepo) GetByID(_ context.Context, id string) (*model.Function, error) {
	f, ok := m.functions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.hydrate(f), nil
}

func (m *mockFunctionRepo) hydrate(f model.Function) *model.Function {
	if s, ok := m.sectors.sectors[f.SectorID]; ok {
		f.Sector = &s
	}
	f.Equipment = nil
	for _, id := range m.equipment[f.FunctionID] {
		fe := model.FunctionEquipment{FunctionID: f.FunctionID, EquipmentItemID: id}
		if it, ok := m.equipRepo.items[id]; ok {
			fe.EquipmentItem = &it
		}
		f.Equipment = append(f.Equipment, fe)
	}
	f.Uniforms = nil
	for _, id := range m.uniforms[f.FunctionID] {
		fu := model.FunctionUniform{FunctionID: f.FunctionID, UniformItemID: id}
		if it, ok := m.uniformRepo.items[id]; ok {
			fu.UniformItem = &it
		}
		f.Uniforms = append(f.Uniforms, fu)
	}
	f.Exams = nil
	for _, event := range model.AllTriggerEvents {
		for _, id := range m.exams[f.FunctionID][event] {
			fx := model.FunctionExam{FunctionID: f.FunctionID, TriggerEvent: event, ExamID: id}
			if e, ok := m.examRepo.exams[id]; ok {
				fx.Exam = &e
			}
			f.Exams = append(f.Exams, fx)
		}
	}
	return &f
}

func (m *mockFunctionRepo) List(_ context.Context, filters *repository.FunctionListFilters) ([]model.Function, error) {
	var result []model.Function
	for _, f := range m.functions {
		if filters != nil {
			if filters.SectorID != "" && f.SectorID != filters.SectorID {
				continue
			}
			if !filters.IncludeInactive && !f.IsActive {
				continue
			}
		}
		result = append(result, *m.hydrate(f))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockFunctionRepo) checkVersion(function *model.Function) error {
	stored, ok := m.functions[function.FunctionID]
	if !ok || stored.Version != function.Version {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (m *mockFunctionRepo) bump(function *model.Function, updatedBy string) {
	stored := m.functions[function.FunctionID]
	stored.Version++
	stored.UpdatedBy = &updatedBy
	m.functions[function.FunctionID] = stored
	function.Version = stored.Version
}

func (m *mockFunctionRepo) Update(_ context.Context, function *model.Function) error {
	if err := m.checkVersion(function); err != nil {
		return err
	}
	stored := *function
	stored.Sector, stored.Equipment, stored.Uniforms, stored.Exams = nil, nil, nil, nil
	stored.Version++
	m.functions[function.FunctionID] = stored
	function.Version = stored.Version
	return nil
}

func (m *mockFunctionRepo) ReplaceEquipment(_ context.Context, function *model.Function, ids []string, updatedBy string) error {
	if err := m.checkVersion(function); err != nil {
		return err
	}
	m.replaceCalls++
	m.equipment[function.FunctionID] = append([]string{}, ids...)
	m.bump(function, updatedBy)
	return nil
}

func (m *mockFunctionRepo) ReplaceUniforms(_ context.Context, function *model.Function, ids []string, updatedBy string) error {
	if err := m.checkVersion(function); err != nil {
		return err
	}
	m.replaceCalls++
	m.uniforms[function.FunctionID] = append([]string{}, ids...)
	m.bump(function, updatedBy)
	return nil
}

func (m *mockFunctionRepo) ReplaceExamsForTrigger(_ context.Context, function *model.Function, trigger model.TriggerEvent, ids []string, updatedBy string) error {
	if err := m.checkVersion(function); err != nil {
		return err
	}
	m.replaceCalls++
	if m.exams[function.FunctionID] == nil {
		m.exams[function.FunctionID] = make(map[model.TriggerEvent][]string)
	}
	m.exams[function.FunctionID][trigger] = append([]string{}, ids...)
	m.bump(function, updatedBy)
	return nil
}

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]model.Employee
	functions *mockFunctionRepo
	records   *mockComplianceRecordRepo
	seq       int
}

func newMockEmployeeRepo(functions *mockFunctionRepo, records *mockComplianceRecordRepo) *mockEmployeeRepo {
	return &mockEmployeeRepo{
		employees: make(map[string]model.Employee),
		functions: functions,
		records:   records,
	}
}

func (m *mockEmployeeRepo) hydrate(e model.Employee) *model.Employee {
	e.Function = nil
	if e.FunctionID != nil {
		if f, ok := m.functions.functions[*e.FunctionID]; ok {
			if s, ok := m.functions.sectors.sectors[f.SectorID]; ok {
				f.Sector = &s
			}
			e.Function = &f
		}
	}
	return &e
}

func (m *mockEmployeeRepo) Create(_ context.Context, employee *model.Employee) error {
	if employee.EmployeeID == "" {
		m.seq++
		employee.EmployeeID = fmt.Sprintf("emp-%d", m.seq)
	}
	stored := *employee
	stored.Function = nil
	m.employees[employee.EmployeeID] = stored
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return m.hydrate(e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByRegistration(_ context.Context, registration string) (*model.Employee, error) {
	for _, e := range m.employees {
		if e.Registration == registration {
			return m.hydrate(e), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) ListWithFilters(_ context.Context, filters *repository.EmployeeListFilters, offset, limit int) ([]model.Employee, int64, error) {
	var all []model.Employee
	for _, e := range m.employees {
		if filters != nil {
			if !filters.IncludeInactive && !e.IsActive {
				continue
			}
			if filters.FunctionID != "" && (e.FunctionID == nil || *e.FunctionID != filters.FunctionID) {
				continue
			}
			if filters.Keyword != "" && !strings.Contains(e.Name, filters.Keyword) && !strings.Contains(e.Registration, filters.Keyword) {
				continue
			}
		}
		all = append(all, *m.hydrate(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Employee{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockEmployeeRepo) ListActiveWithFunction(_ context.Context) ([]model.Employee, error) {
	var result []model.Employee
	for _, e := range m.employees {
		if e.IsActive && e.FunctionID != nil {
			result = append(result, *m.hydrate(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, employee *model.Employee) error {
	stored := *employee
	stored.Function = nil
	m.employees[employee.EmployeeID] = stored
	return nil
}

func (m *mockEmployeeRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	delete(m.employees, id)
	if m.records != nil {
		for rid, r := range m.records.records {
			if r.EmployeeID == id {
				_ = m.records.Delete(ctx, rid, deletedBy)
			}
		}
	}
	return nil
}

// ── Mock ComplianceRecordRepository ──

type mockComplianceRecordRepo struct {
	records map[string]model.ComplianceRecord
	seq     int
}

func newMockComplianceRecordRepo() *mockComplianceRecordRepo {
	return &mockComplianceRecordRepo{records: make(map[string]model.ComplianceRecord)}
}

func (m *mockComplianceRecordRepo) Create(_ context.Context, record *model.ComplianceRecord) error {
	if record.RecordID == "" {
		m.seq++
		record.RecordID = fmt.Sprintf("rec-%d", m.seq)
	}
	m.records[record.RecordID] = *record
	return nil
}

func (m *mockComplianceRecordRepo) GetByID(_ context.Context, id string) (*model.ComplianceRecord, error) {
	if r, ok := m.records[id]; ok {
		return &r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockComplianceRecordRepo) ListByEmployee(_ context.Context, employeeID string) ([]model.ComplianceRecord, error) {
	var result []model.ComplianceRecord
	for _, r := range m.records {
		if r.EmployeeID == employeeID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PerformedAt.Equal(result[j].PerformedAt) {
			return result[i].PerformedAt.After(result[j].PerformedAt)
		}
		return result[i].RecordID > result[j].RecordID
	})
	return result, nil
}

func (m *mockComplianceRecordRepo) ListByEmployeeIDs(ctx context.Context, employeeIDs []string) ([]model.ComplianceRecord, error) {
	var result []model.ComplianceRecord
	for _, id := range employeeIDs {
		rs, _ := m.ListByEmployee(ctx, id)
		result = append(result, rs...)
	}
	return result, nil
}

func (m *mockComplianceRecordRepo) UpdateAttachment(_ context.Context, id, key, updatedBy string) error {
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.AttachmentKey = key
	r.UpdatedBy = &updatedBy
	m.records[id] = r
	return nil
}

func (m *mockComplianceRecordRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.records, id)
	return nil
}

// ── Mock DocumentTemplateRepository ──

type mockDocumentTemplateRepo struct {
	templates map[string]model.DocumentTemplate
	seq       int
}

func newMockDocumentTemplateRepo() *mockDocumentTemplateRepo {
	return &mockDocumentTemplateRepo{templates: make(map[string]model.DocumentTemplate)}
}

func (m *mockDocumentTemplateRepo) Create(_ context.Context, tpl *model.DocumentTemplate) error {
	if tpl.DocumentTemplateID == "" {
		m.seq++
		tpl.DocumentTemplateID = fmt.Sprintf("tpl-%d", m.seq)
	}
	m.templates[tpl.DocumentTemplateID] = *tpl
	return nil
}

func (m *mockDocumentTemplateRepo) GetByID(_ context.Context, id string) (*model.DocumentTemplate, error) {
	if t, ok := m.templates[id]; ok {
		return &t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDocumentTemplateRepo) List(_ context.Context, includeInactive bool) ([]model.DocumentTemplate, error) {
	var result []model.DocumentTemplate
	for _, t := range m.templates {
		if !includeInactive && !t.IsActive {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDocumentTemplateRepo) Update(_ context.Context, tpl *model.DocumentTemplate) error {
	m.templates[tpl.DocumentTemplateID] = *tpl
	return nil
}

// ── Mock ComplianceSettingRepository ──

type mockComplianceSettingRepo struct {
	setting *model.ComplianceSetting
}

func newMockComplianceSettingRepo() *mockComplianceSettingRepo {
	return &mockComplianceSettingRepo{}
}

func (m *mockComplianceSettingRepo) Get(_ context.Context) (*model.ComplianceSetting, error) {
	if m.setting == nil {
		return nil, gorm.ErrRecordNotFound
	}
	s := *m.setting
	return &s, nil
}

func (m *mockComplianceSettingRepo) Update(_ context.Context, setting *model.ComplianceSetting) error {
	s := *setting
	m.setting = &s
	return nil
}

// ── 测试夹具 ──

// mockRepos 汇总全部 mock，便于测试直接预置数据
type mockRepos struct {
	sector    *mockSectorRepo
	exam      *mockExamRepo
	equipment *mockEquipmentRepo
	uniform   *mockUniformRepo
	function  *mockFunctionRepo
	employee  *mockEmployeeRepo
	record    *mockComplianceRecordRepo
	template  *mockDocumentTemplateRepo
	setting   *mockComplianceSettingRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		sector:    newMockSectorRepo(),
		exam:      newMockExamRepo(),
		equipment: newMockEquipmentRepo(),
		uniform:   newMockUniformRepo(),
		record:    newMockComplianceRecordRepo(),
		template:  newMockDocumentTemplateRepo(),
		setting:   newMockComplianceSettingRepo(),
	}
	m.function = newMockFunctionRepo(m.sector, m.exam, m.equipment, m.uniform)
	m.employee = newMockEmployeeRepo(m.function, m.record)

	repo := &repository.Repository{
		Sector:            m.sector,
		Exam:              m.exam,
		Equipment:         m.equipment,
		Uniform:           m.uniform,
		Function:          m.function,
		Employee:          m.employee,
		ComplianceRecord:  m.record,
		DocumentTemplate:  m.template,
		ComplianceSetting: m.setting,
	}
	return repo, m
}
