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

// ── 职能需求绑定模块业务错误 ──

var (
	ErrFunctionNotFound    = fmt.Errorf("%w: 职能不存在", pkgerrors.ErrNotFound)
	ErrFunctionInactive    = fmt.Errorf("%w: 职能已停用", pkgerrors.ErrNotFound)
	ErrExamTriggerMismatch = fmt.Errorf("%w: 体检项目不适用于该触发事件", pkgerrors.ErrValidation)
)

// FunctionService 职能及其 EPI / 工服 / 体检需求绑定
//
// 绑定写操作均为整体替换，单事务内完成并受职能 version 乐观锁保护；
// 并发写冲突返回 pkgerrors.ErrOptimisticLock。
type FunctionService interface {
	Create(ctx context.Context, req *dto.CreateFunctionRequest, callerID string) (*dto.FunctionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.FunctionResponse, error)
	List(ctx context.Context, req *dto.FunctionListRequest) ([]dto.FunctionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateFunctionRequest, callerID string) (*dto.FunctionResponse, error)
	SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.FunctionResponse, error)

	SetEquipment(ctx context.Context, id string, equipmentIDs []string, callerID string) (*dto.RequirementsSummaryResponse, error)
	SetUniforms(ctx context.Context, id string, uniformIDs []string, callerID string) (*dto.RequirementsSummaryResponse, error)
	// SetExamsForTrigger 只替换 event 分桶；重复调用结果相同
	SetExamsForTrigger(ctx context.Context, id string, event model.TriggerEvent, examIDs []string, callerID string) (*dto.RequirementsSummaryResponse, error)

	GetRequirementsSummary(ctx context.Context, id string) (*dto.RequirementsSummaryResponse, error)
	CountDistinctExams(ctx context.Context, id string) (*dto.DistinctExamCountResponse, error)
}

type functionService struct {
	repo   *repository.Repository
	cache  *requirementsCache
	now    clock
	logger *zap.Logger
}

// NewFunctionService 创建 FunctionService 实例
func NewFunctionService(repo *repository.Repository, cache *requirementsCache, now clock, logger *zap.Logger) FunctionService {
	return &functionService{repo: repo, cache: cache, now: now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *functionService) Create(ctx context.Context, req *dto.CreateFunctionRequest, callerID string) (*dto.FunctionResponse, error) {
	sector, err := activeSector(ctx, s.repo, req.SectorID)
	if err != nil {
		return nil, err
	}

	duties := req.Duties
	if duties == nil {
		duties = []string{}
	}

	fn := &model.Function{
		Name:        req.Name,
		Description: req.Description,
		SectorID:    sector.SectorID,
		Duties:      duties,
		IsActive:    true,
	}
	fn.CreatedBy = &callerID
	fn.UpdatedBy = &callerID

	if err := s.repo.Function.Create(ctx, fn); err != nil {
		s.logger.Error("创建职能失败", zap.Error(err))
		return nil, err
	}
	fn.Sector = sector

	return toFunctionResponse(fn), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *functionService) GetByID(ctx context.Context, id string) (*dto.FunctionResponse, error) {
	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}
	return toFunctionResponse(fn), nil
}

// ────────────────────── List ──────────────────────

func (s *functionService) List(ctx context.Context, req *dto.FunctionListRequest) ([]dto.FunctionResponse, error) {
	fns, err := s.repo.Function.List(ctx, &repository.FunctionListFilters{
		SectorID:        req.SectorID,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		s.logger.Error("列出职能失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.FunctionResponse, 0, len(fns))
	for i := range fns {
		result = append(result, *toFunctionResponse(&fns[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *functionService) Update(ctx context.Context, id string, req *dto.UpdateFunctionRequest, callerID string) (*dto.FunctionResponse, error) {
	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SectorID != nil && *req.SectorID != fn.SectorID {
		sector, err := activeSector(ctx, s.repo, *req.SectorID)
		if err != nil {
			return nil, err
		}
		fn.SectorID = sector.SectorID
		fn.Sector = sector
	}
	if req.Name != nil {
		fn.Name = *req.Name
	}
	if req.Description != nil {
		fn.Description = *req.Description
	}
	if req.Duties != nil {
		fn.Duties = *req.Duties
		if fn.Duties == nil {
			fn.Duties = []string{}
		}
	}
	if req.IsActive != nil {
		fn.IsActive = *req.IsActive
	}
	fn.UpdatedBy = &callerID

	if err := s.repo.Function.Update(ctx, fn); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新职能失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	s.cache.invalidate(ctx)

	return toFunctionResponse(fn), nil
}

// ────────────────────── SetActive ──────────────────────

// SetActive 可逆操作，不影响需求绑定
func (s *functionService) SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.FunctionResponse, error) {
	return s.Update(ctx, id, &dto.UpdateFunctionRequest{IsActive: &active}, callerID)
}

// ────────────────────── SetEquipment ──────────────────────

func (s *functionService) SetEquipment(ctx context.Context, id string, equipmentIDs []string, callerID string) (*dto.RequirementsSummaryResponse, error) {
	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := dedupeIDs(equipmentIDs)
	items, err := s.repo.Equipment.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("批量查询 EPI 失败", zap.Error(err))
		return nil, err
	}
	found := make(map[string]*model.EquipmentItem, len(items))
	for i := range items {
		found[items[i].EquipmentItemID] = &items[i]
	}
	for _, eid := range ids {
		item, ok := found[eid]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrEquipmentNotFound, eid)
		}
		if !item.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrEquipmentInactive, eid)
		}
	}

	if err := s.repo.Function.ReplaceEquipment(ctx, fn, ids, callerID); err != nil {
		return nil, s.bindingErr("替换职能 EPI 需求失败", id, err)
	}
	s.cache.invalidate(ctx)

	return s.buildSummary(ctx, id)
}

// ────────────────────── SetUniforms ──────────────────────

func (s *functionService) SetUniforms(ctx context.Context, id string, uniformIDs []string, callerID string) (*dto.RequirementsSummaryResponse, error) {
	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := dedupeIDs(uniformIDs)
	items, err := s.repo.Uniform.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("批量查询工服失败", zap.Error(err))
		return nil, err
	}
	found := make(map[string]*model.UniformItem, len(items))
	for i := range items {
		found[items[i].UniformItemID] = &items[i]
	}
	for _, uid := range ids {
		item, ok := found[uid]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUniformNotFound, uid)
		}
		if !item.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrUniformInactive, uid)
		}
	}

	if err := s.repo.Function.ReplaceUniforms(ctx, fn, ids, callerID); err != nil {
		return nil, s.bindingErr("替换职能工服需求失败", id, err)
	}
	s.cache.invalidate(ctx)

	return s.buildSummary(ctx, id)
}

// ────────────────────── SetExamsForTrigger ──────────────────────

func (s *functionService) SetExamsForTrigger(ctx context.Context, id string, event model.TriggerEvent, examIDs []string, callerID string) (*dto.RequirementsSummaryResponse, error) {
	if !event.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTriggerEvent, event)
	}

	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := dedupeIDs(examIDs)
	exams, err := s.repo.Exam.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("批量查询体检项目失败", zap.Error(err))
		return nil, err
	}
	found := make(map[string]*model.Exam, len(exams))
	for i := range exams {
		found[exams[i].ExamID] = &exams[i]
	}
	for _, eid := range ids {
		exam, ok := found[eid]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrExamNotFound, eid)
		}
		if !exam.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrExamInactive, eid)
		}
		if !model.ContainsTrigger(exam.TriggerEvents, event) {
			return nil, fmt.Errorf("%w: %s 不包含 %s", ErrExamTriggerMismatch, exam.Name, event)
		}
	}

	if err := s.repo.Function.ReplaceExamsForTrigger(ctx, fn, event, ids, callerID); err != nil {
		return nil, s.bindingErr("替换职能体检需求失败", id, err)
	}
	s.cache.invalidate(ctx)

	return s.buildSummary(ctx, id)
}

// ────────────────────── GetRequirementsSummary ──────────────────────

func (s *functionService) GetRequirementsSummary(ctx context.Context, id string) (*dto.RequirementsSummaryResponse, error) {
	today := s.now()
	cached, key, ok := s.cache.get(ctx, id, today)
	if ok {
		return cached, nil
	}

	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := buildRequirementsSummary(fn, today)
	s.cache.set(ctx, key, summary)
	return summary, nil
}

// ────────────────────── CountDistinctExams ──────────────────────

func (s *functionService) CountDistinctExams(ctx context.Context, id string) (*dto.DistinctExamCountResponse, error) {
	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DistinctExamCountResponse{
		FunctionID:        fn.FunctionID,
		DistinctExamCount: countDistinctExams(fn.Exams),
	}, nil
}

// ── 辅助方法 ──

func (s *functionService) loadFunction(ctx context.Context, id string) (*model.Function, error) {
	fn, err := s.repo.Function.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFunctionNotFound
		}
		s.logger.Error("查询职能失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return fn, nil
}

func (s *functionService) bindingErr(msg, id string, err error) error {
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		s.logger.Error(msg, zap.String("function_id", id), zap.Error(err))
	}
	return err
}

func (s *functionService) buildSummary(ctx context.Context, id string) (*dto.RequirementsSummaryResponse, error) {
	fn, err := s.loadFunction(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildRequirementsSummary(fn, s.now()), nil
}

// buildRequirementsSummary 将职能的绑定解引用为完整目录对象。
// 已停用的目录项仍然列出（is_active=false），每个触发事件都有对应的键。
func buildRequirementsSummary(fn *model.Function, today time.Time) *dto.RequirementsSummaryResponse {
	summary := &dto.RequirementsSummaryResponse{
		FunctionID:     fn.FunctionID,
		FunctionName:   fn.Name,
		Duties:         append([]string{}, fn.Duties...),
		Equipment:      make([]dto.EquipmentResponse, 0, len(fn.Equipment)),
		Uniforms:       make([]dto.UniformResponse, 0, len(fn.Uniforms)),
		ExamsByTrigger: make(map[model.TriggerEvent][]dto.ExamResponse, len(model.AllTriggerEvents)),
	}
	if fn.Sector != nil {
		summary.Sector = &dto.SectorBrief{ID: fn.Sector.SectorID, Name: fn.Sector.Name}
	}

	for _, fe := range fn.Equipment {
		if fe.EquipmentItem != nil {
			summary.Equipment = append(summary.Equipment, *toEquipmentResponse(fe.EquipmentItem, today))
		}
	}
	sort.SliceStable(summary.Equipment, func(i, j int) bool { return summary.Equipment[i].Name < summary.Equipment[j].Name })

	for _, fu := range fn.Uniforms {
		if fu.UniformItem != nil {
			summary.Uniforms = append(summary.Uniforms, *toUniformResponse(fu.UniformItem))
		}
	}
	sort.SliceStable(summary.Uniforms, func(i, j int) bool { return summary.Uniforms[i].Description < summary.Uniforms[j].Description })

	for _, event := range model.AllTriggerEvents {
		summary.ExamsByTrigger[event] = []dto.ExamResponse{}
	}
	for _, fx := range fn.Exams {
		if fx.Exam == nil {
			continue
		}
		summary.ExamsByTrigger[fx.TriggerEvent] = append(summary.ExamsByTrigger[fx.TriggerEvent], *toExamResponse(fx.Exam))
	}
	for event := range summary.ExamsByTrigger {
		bucket := summary.ExamsByTrigger[event]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Name < bucket[j].Name })
	}

	summary.DistinctExamCount = countDistinctExams(fn.Exams)
	return summary
}

// countDistinctExams 同一体检出现在多个触发事件分桶中只计一次
func countDistinctExams(bindings []model.FunctionExam) int {
	seen := make(map[string]struct{}, len(bindings))
	for _, b := range bindings {
		seen[b.ExamID] = struct{}{}
	}
	return len(seen)
}

func toFunctionResponse(fn *model.Function) *dto.FunctionResponse {
	resp := &dto.FunctionResponse{
		ID:                fn.FunctionID,
		Name:              fn.Name,
		Description:       fn.Description,
		Duties:            append([]string{}, fn.Duties...),
		IsActive:          fn.IsActive,
		Version:           fn.Version,
		EquipmentCount:    len(fn.Equipment),
		UniformCount:      len(fn.Uniforms),
		DistinctExamCount: countDistinctExams(fn.Exams),
		CreatedAt:         fn.CreatedAt.Format(timeLayout),
		UpdatedAt:         fn.UpdatedAt.Format(timeLayout),
	}
	if fn.Sector != nil {
		resp.Sector = &dto.SectorBrief{ID: fn.Sector.SectorID, Name: fn.Sector.Name}
	}
	return resp
}
