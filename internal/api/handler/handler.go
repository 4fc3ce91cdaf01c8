package handler

import "conser-control/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Sector     *SectorHandler
	Exam       *ExamHandler
	Equipment  *EquipmentHandler
	Function   *FunctionHandler
	Employee   *EmployeeHandler
	Compliance *ComplianceHandler
	Document   *DocumentHandler
	Setting    *SettingHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Sector:     NewSectorHandler(svc.Sector),
		Exam:       NewExamHandler(svc.Exam),
		Equipment:  NewEquipmentHandler(svc.Equipment),
		Function:   NewFunctionHandler(svc.Function),
		Employee:   NewEmployeeHandler(svc.Employee),
		Compliance: NewComplianceHandler(svc.Compliance),
		Document:   NewDocumentHandler(svc.Document),
		Setting:    NewSettingHandler(svc.Setting),
		Export:     NewExportHandler(svc.Export),
	}
}
