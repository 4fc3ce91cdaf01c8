package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Sector            SectorRepository
	Exam              ExamRepository
	Equipment         EquipmentRepository
	Uniform           UniformRepository
	Function          FunctionRepository
	Employee          EmployeeRepository
	ComplianceRecord  ComplianceRecordRepository
	DocumentTemplate  DocumentTemplateRepository
	ComplianceSetting ComplianceSettingRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Sector:            NewSectorRepo(db),
		Exam:              NewExamRepo(db),
		Equipment:         NewEquipmentRepo(db),
		Uniform:           NewUniformRepo(db),
		Function:          NewFunctionRepo(db),
		Employee:          NewEmployeeRepo(db),
		ComplianceRecord:  NewComplianceRecordRepo(db),
		DocumentTemplate:  NewDocumentTemplateRepo(db),
		ComplianceSetting: NewComplianceSettingRepo(db),
	}
}
