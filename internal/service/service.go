package service

import (
	"time"

	"go.uber.org/zap"

	"conser-control/backend/config"
	"conser-control/backend/internal/repository"
	"conser-control/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Sector     SectorService
	Exam       ExamService
	Equipment  EquipmentService
	Function   FunctionService
	Employee   EmployeeService
	Compliance ComplianceService
	Document   DocumentService
	Setting    SettingService
	Export     ExportService
}

// NewService 创建 Service 聚合
//
// rdb 与 signer 均可为 nil：前者关闭需求汇总缓存，后者关闭附件下载链接。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	signer AttachmentSigner,
	logger *zap.Logger,
) *Service {
	loc := cfg.Compliance.Location()
	now := clock(time.Now)
	cache := newRequirementsCache(rdb, cfg.Redis.RequirementsTTL, logger)
	settings := NewSettingService(repo, cfg.Compliance.DefaultWarningWindowDays, logger)

	return &Service{
		Sector:     NewSectorService(repo, cache, logger),
		Exam:       NewExamService(repo, cache, logger),
		Equipment:  NewEquipmentService(repo, cache, now, logger),
		Function:   NewFunctionService(repo, cache, now, logger),
		Employee:   NewEmployeeService(repo, loc, logger),
		Compliance: NewComplianceService(repo, settings, signer, loc, now, logger),
		Document:   NewDocumentService(repo, loc, now, logger),
		Setting:    settings,
		Export:     NewExportService(repo, settings, loc, now, logger),
	}
}
