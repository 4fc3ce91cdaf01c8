package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
	pkgerrors "conser-control/backend/pkg/errors"
)

// ── 合规台账模块业务错误 ──

var (
	ErrRecordNotFound            = fmt.Errorf("%w: 合规记录不存在", pkgerrors.ErrNotFound)
	ErrAttachmentMissing         = fmt.Errorf("%w: 该记录未关联附件", pkgerrors.ErrNotFound)
	ErrAttachmentStorageDisabled = fmt.Errorf("%w: 未启用对象存储", pkgerrors.ErrValidation)
)

// 待办项紧急程度，按此顺序排序
const (
	UrgencyMissing      = "Missing"
	UrgencyExpired      = string(StatusExpired)
	UrgencyExpiringSoon = string(StatusExpiringSoon)
)

var urgencyRank = map[string]int{
	UrgencyMissing:      0,
	UrgencyExpired:      1,
	UrgencyExpiringSoon: 2,
}

// AttachmentSigner 为附件 key 签发临时下载链接（pkg/storage.S3Storage 实现）
type AttachmentSigner interface {
	PresignDownload(ctx context.Context, key string) (string, time.Duration, error)
}

// ComplianceService 员工合规台账
//
// 记录的 status 从不落库，每次读取时以当天（业务时区）重新计算。
type ComplianceService interface {
	RecordExamPerformed(ctx context.Context, employeeID string, req *dto.RecordExamRequest, callerID string) (*dto.ComplianceRecordResponse, error)
	RecordEquipmentIssued(ctx context.Context, employeeID string, req *dto.RecordEquipmentRequest, callerID string) (*dto.ComplianceRecordResponse, error)
	RecordDocumentGenerated(ctx context.Context, employeeID string, req *dto.RecordDocumentRequest, callerID string) (*dto.ComplianceRecordResponse, error)
	GetRecordsForEmployee(ctx context.Context, employeeID string) ([]dto.ComplianceRecordResponse, error)
	// GetPendingForFunction function_id 为空时按员工当前职能计算
	GetPendingForFunction(ctx context.Context, employeeID string, req *dto.PendingRequest) ([]dto.PendingItemResponse, error)
	AttachFile(ctx context.Context, recordID string, req *dto.AttachFileRequest, callerID string) (*dto.ComplianceRecordResponse, error)
	GetAttachmentURL(ctx context.Context, recordID string) (*dto.AttachmentURLResponse, error)
	DeleteRecord(ctx context.Context, recordID string, callerID string) error
}

type complianceService struct {
	repo     *repository.Repository
	settings SettingService
	signer   AttachmentSigner
	loc      *time.Location
	now      clock
	logger   *zap.Logger
}

// NewComplianceService 创建 ComplianceService 实例；signer 为 nil 时附件下载不可用
func NewComplianceService(
	repo *repository.Repository,
	settings SettingService,
	signer AttachmentSigner,
	loc *time.Location,
	now clock,
	logger *zap.Logger,
) ComplianceService {
	return &complianceService{
		repo:     repo,
		settings: settings,
		signer:   signer,
		loc:      loc,
		now:      now,
		logger:   logger,
	}
}

// ────────────────────── RecordExamPerformed ──────────────────────

func (s *complianceService) RecordExamPerformed(ctx context.Context, employeeID string, req *dto.RecordExamRequest, callerID string) (*dto.ComplianceRecordResponse, error) {
	if _, err := activeEmployee(ctx, s.repo, employeeID); err != nil {
		return nil, err
	}
	exam, err := activeExam(ctx, s.repo, req.ExamID)
	if err != nil {
		return nil, err
	}
	if !req.TriggerEvent.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTriggerEvent, req.TriggerEvent)
	}
	if !model.ContainsTrigger(exam.TriggerEvents, req.TriggerEvent) {
		return nil, fmt.Errorf("%w: %s 不包含 %s", ErrExamTriggerMismatch, exam.Name, req.TriggerEvent)
	}
	performed, err := parseDate(req.PerformedDate, s.loc)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if exam.ExpiryPolicy() == model.ExpiryRenewable {
		expiresAt = expiryAfterMonths(performed, exam.RenewalIntervalMonths)
	}

	event := req.TriggerEvent
	record := &model.ComplianceRecord{
		EmployeeID:   employeeID,
		Kind:         model.RecordKindExam,
		CatalogID:    exam.ExamID,
		TriggerEvent: &event,
		PerformedAt:  performed,
		ExpiresAt:    expiresAt,
		ProviderID:   req.ProviderID,
		Result:       req.Result,
		Observations: req.Observations,
	}
	if err := s.createRecord(ctx, record, callerID); err != nil {
		return nil, err
	}

	return s.toRecordResponse(ctx, record, exam.Name), nil
}

// ────────────────────── RecordEquipmentIssued ──────────────────────

func (s *complianceService) RecordEquipmentIssued(ctx context.Context, employeeID string, req *dto.RecordEquipmentRequest, callerID string) (*dto.ComplianceRecordResponse, error) {
	if _, err := activeEmployee(ctx, s.repo, employeeID); err != nil {
		return nil, err
	}
	item, err := activeEquipment(ctx, s.repo, req.EquipmentID)
	if err != nil {
		return nil, err
	}
	issued, err := parseDate(req.IssuedDate, s.loc)
	if err != nil {
		return nil, err
	}

	record := &model.ComplianceRecord{
		EmployeeID:  employeeID,
		Kind:        model.RecordKindEquipment,
		CatalogID:   item.EquipmentItemID,
		PerformedAt: issued,
		ExpiresAt:   expiryAfterMonths(issued, item.ShelfLifeMonths),
	}
	if err := s.createRecord(ctx, record, callerID); err != nil {
		return nil, err
	}

	return s.toRecordResponse(ctx, record, item.Name), nil
}

// ────────────────────── RecordDocumentGenerated ──────────────────────

func (s *complianceService) RecordDocumentGenerated(ctx context.Context, employeeID string, req *dto.RecordDocumentRequest, callerID string) (*dto.ComplianceRecordResponse, error) {
	employee, err := activeEmployee(ctx, s.repo, employeeID)
	if err != nil {
		return nil, err
	}
	tpl, err := activeTemplate(ctx, s.repo, req.TemplateID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.now(), s.loc)
	generated := today
	if req.GeneratedDate != "" {
		if generated, err = parseDate(req.GeneratedDate, s.loc); err != nil {
			return nil, err
		}
	}

	record := &model.ComplianceRecord{
		EmployeeID:  employeeID,
		Kind:        model.RecordKindDocument,
		CatalogID:   tpl.DocumentTemplateID,
		PerformedAt: generated,
		ExpiresAt:   expiryAfterMonths(generated, tpl.ValidityMonths),
		Content:     RenderTemplate(tpl.Body, employee, generated),
	}
	if err := s.createRecord(ctx, record, callerID); err != nil {
		return nil, err
	}

	return s.toRecordResponse(ctx, record, tpl.Name), nil
}

// ────────────────────── GetRecordsForEmployee ──────────────────────

func (s *complianceService) GetRecordsForEmployee(ctx context.Context, employeeID string) ([]dto.ComplianceRecordResponse, error) {
	if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
		return nil, lookupErr(err, ErrEmployeeNotFound)
	}

	records, err := s.repo.ComplianceRecord.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询合规记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	names := s.catalogNames(ctx, records)
	today := startOfDay(s.now(), s.loc)
	window := s.settings.WarningWindowDays(ctx)

	result := make([]dto.ComplianceRecordResponse, 0, len(records))
	for i := range records {
		result = append(result, *toRecordResponse(&records[i], names[records[i].CatalogID], today, window))
	}
	return result, nil
}

// ────────────────────── GetPendingForFunction ──────────────────────

func (s *complianceService) GetPendingForFunction(ctx context.Context, employeeID string, req *dto.PendingRequest) ([]dto.PendingItemResponse, error) {
	employee, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		return nil, lookupErr(err, ErrEmployeeNotFound)
	}

	functionID := req.FunctionID
	if functionID == "" {
		if employee.FunctionID == nil {
			return nil, ErrEmployeeNoFunction
		}
		functionID = *employee.FunctionID
	}

	events := make([]model.TriggerEvent, 0, len(req.TriggerEvents))
	for _, raw := range req.TriggerEvents {
		event, err := model.ParseTriggerEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTriggerEvent, raw)
		}
		events = append(events, event)
	}

	fn, err := s.repo.Function.GetByID(ctx, functionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFunctionNotFound
		}
		s.logger.Error("查询职能失败", zap.String("id", functionID), zap.Error(err))
		return nil, err
	}

	records, err := s.repo.ComplianceRecord.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询合规记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	return computePending(fn, records, events, startOfDay(s.now(), s.loc), s.settings.WarningWindowDays(ctx)), nil
}

// ────────────────────── 附件 ──────────────────────

func (s *complianceService) AttachFile(ctx context.Context, recordID string, req *dto.AttachFileRequest, callerID string) (*dto.ComplianceRecordResponse, error) {
	record, err := s.repo.ComplianceRecord.GetByID(ctx, recordID)
	if err != nil {
		return nil, lookupErr(err, ErrRecordNotFound)
	}

	if err := s.repo.ComplianceRecord.UpdateAttachment(ctx, recordID, req.AttachmentKey, callerID); err != nil {
		s.logger.Error("关联附件失败", zap.String("record_id", recordID), zap.Error(err))
		return nil, err
	}
	record.AttachmentKey = req.AttachmentKey

	names := s.catalogNames(ctx, []model.ComplianceRecord{*record})
	return s.toRecordResponse(ctx, record, names[record.CatalogID]), nil
}

func (s *complianceService) GetAttachmentURL(ctx context.Context, recordID string) (*dto.AttachmentURLResponse, error) {
	record, err := s.repo.ComplianceRecord.GetByID(ctx, recordID)
	if err != nil {
		return nil, lookupErr(err, ErrRecordNotFound)
	}
	if record.AttachmentKey == "" {
		return nil, ErrAttachmentMissing
	}
	if s.signer == nil {
		return nil, ErrAttachmentStorageDisabled
	}

	url, ttl, err := s.signer.PresignDownload(ctx, record.AttachmentKey)
	if err != nil {
		s.logger.Error("签发附件下载链接失败", zap.String("record_id", recordID), zap.Error(err))
		return nil, err
	}
	return &dto.AttachmentURLResponse{URL: url, ExpiresIn: int(ttl.Seconds())}, nil
}

// ────────────────────── DeleteRecord ──────────────────────

func (s *complianceService) DeleteRecord(ctx context.Context, recordID string, callerID string) error {
	if _, err := s.repo.ComplianceRecord.GetByID(ctx, recordID); err != nil {
		return lookupErr(err, ErrRecordNotFound)
	}
	if err := s.repo.ComplianceRecord.Delete(ctx, recordID, callerID); err != nil {
		s.logger.Error("删除合规记录失败", zap.String("record_id", recordID), zap.Error(err))
		return err
	}
	s.logger.Info("合规记录已删除", zap.String("record_id", recordID), zap.String("by", callerID))
	return nil
}

// ── 辅助方法 ──

func (s *complianceService) createRecord(ctx context.Context, record *model.ComplianceRecord, callerID string) error {
	record.CreatedBy = &callerID
	record.UpdatedBy = &callerID
	if err := s.repo.ComplianceRecord.Create(ctx, record); err != nil {
		s.logger.Error("登记合规记录失败",
			zap.String("employee_id", record.EmployeeID),
			zap.String("kind", string(record.Kind)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *complianceService) toRecordResponse(ctx context.Context, record *model.ComplianceRecord, name string) *dto.ComplianceRecordResponse {
	return toRecordResponse(record, name, startOfDay(s.now(), s.loc), s.settings.WarningWindowDays(ctx))
}

// catalogNames 批量解析记录对应目录项名称；查询失败时名称留空
func (s *complianceService) catalogNames(ctx context.Context, records []model.ComplianceRecord) map[string]string {
	var examIDs, equipmentIDs []string
	hasDocument := false
	for _, r := range records {
		switch r.Kind {
		case model.RecordKindExam:
			examIDs = append(examIDs, r.CatalogID)
		case model.RecordKindEquipment:
			equipmentIDs = append(equipmentIDs, r.CatalogID)
		case model.RecordKindDocument:
			hasDocument = true
		}
	}

	names := make(map[string]string)
	if len(examIDs) > 0 {
		exams, err := s.repo.Exam.ListByIDs(ctx, dedupeIDs(examIDs))
		if err != nil {
			s.logger.Warn("批量查询体检名称失败", zap.Error(err))
		}
		for _, e := range exams {
			names[e.ExamID] = e.Name
		}
	}
	if len(equipmentIDs) > 0 {
		items, err := s.repo.Equipment.ListByIDs(ctx, dedupeIDs(equipmentIDs))
		if err != nil {
			s.logger.Warn("批量查询 EPI 名称失败", zap.Error(err))
		}
		for _, it := range items {
			names[it.EquipmentItemID] = it.Name
		}
	}
	if hasDocument {
		tpls, err := s.repo.DocumentTemplate.List(ctx, true)
		if err != nil {
			s.logger.Warn("查询文书模板名称失败", zap.Error(err))
		}
		for _, t := range tpls {
			names[t.DocumentTemplateID] = t.Name
		}
	}
	return names
}

func toRecordResponse(r *model.ComplianceRecord, name string, today time.Time, window int) *dto.ComplianceRecordResponse {
	return &dto.ComplianceRecordResponse{
		ID:            r.RecordID,
		EmployeeID:    r.EmployeeID,
		Kind:          r.Kind,
		CatalogID:     r.CatalogID,
		CatalogName:   name,
		TriggerEvent:  r.TriggerEvent,
		PerformedAt:   r.PerformedAt.Format(dateLayout),
		ExpiresAt:     formatDatePtr(r.ExpiresAt),
		ProviderID:    r.ProviderID,
		Result:        r.Result,
		Observations:  r.Observations,
		AttachmentKey: r.AttachmentKey,
		Content:       r.Content,
		Status:        string(ClassifyExpiry(r.ExpiresAt, today, window)),
	}
}

// ── 待办计算（纯函数） ──

// computePending 计算员工相对职能需求的待办项。
//
// 每个必需项（去重后的体检，可按触发事件过滤；全部必需 EPI）取员工的最佳记录：
// 永不过期优先，其次到期日最晚者。最佳记录为 Valid 或 NeverExpires 时不产生待办。
// 已停用的目录项不再要求。结果按 Missing、Expired、ExpiringSoon 排序，同级按名称。
func computePending(fn *model.Function, records []model.ComplianceRecord, events []model.TriggerEvent, today time.Time, window int) []dto.PendingItemResponse {
	best := make(map[string]*model.ComplianceRecord)
	for i := range records {
		r := &records[i]
		if r.Kind == model.RecordKindDocument {
			continue
		}
		key := string(r.Kind) + ":" + r.CatalogID
		if better(r, best[key]) {
			best[key] = r
		}
	}

	items := make([]dto.PendingItemResponse, 0)
	seen := make(map[string]bool)

	for _, fx := range fn.Exams {
		if fx.Exam == nil || !fx.Exam.IsActive || seen[fx.ExamID] {
			continue
		}
		if len(events) > 0 && !model.ContainsTrigger(events, fx.TriggerEvent) {
			continue
		}
		seen[fx.ExamID] = true
		if item, ok := pendingItem(model.RecordKindExam, fx.ExamID, fx.Exam.Name, false, best, today, window); ok {
			items = append(items, item)
		}
	}

	for _, fe := range fn.Equipment {
		if fe.EquipmentItem == nil || !fe.EquipmentItem.IsActive {
			continue
		}
		if item, ok := pendingItem(model.RecordKindEquipment, fe.EquipmentItemID, fe.EquipmentItem.Name, fe.EquipmentItem.IsMandatory, best, today, window); ok {
			items = append(items, item)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := urgencyRank[items[i].Urgency], urgencyRank[items[j].Urgency]
		if ri != rj {
			return ri < rj
		}
		return items[i].Name < items[j].Name
	})
	return items
}

func pendingItem(kind model.RecordKind, catalogID, name string, mandatory bool, best map[string]*model.ComplianceRecord, today time.Time, window int) (dto.PendingItemResponse, bool) {
	item := dto.PendingItemResponse{
		Kind:        kind,
		CatalogID:   catalogID,
		Name:        name,
		IsMandatory: mandatory,
	}

	r, ok := best[string(kind)+":"+catalogID]
	if !ok {
		item.Urgency = UrgencyMissing
		return item, true
	}

	status := ClassifyExpiry(r.ExpiresAt, today, window)
	if status.IsCurrent() {
		return item, false
	}
	item.Urgency = string(status)
	item.LastPerformedAt = strPtr(r.PerformedAt.Format(dateLayout))
	item.ExpiresAt = formatDatePtr(r.ExpiresAt)
	return item, true
}

// better 判断 candidate 是否优于 current：永不过期最优，否则到期日更晚者更优
func better(candidate, current *model.ComplianceRecord) bool {
	if current == nil {
		return true
	}
	if current.ExpiresAt == nil {
		return false
	}
	if candidate.ExpiresAt == nil {
		return true
	}
	return candidate.ExpiresAt.After(*current.ExpiresAt)
}
