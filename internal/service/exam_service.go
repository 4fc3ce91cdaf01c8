package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
	pkgerrors "conser-control/backend/pkg/errors"
)

// ── 体检项目模块业务错误 ──

var (
	ErrExamNotFound          = fmt.Errorf("%w: 体检项目不存在", pkgerrors.ErrNotFound)
	ErrExamInactive          = fmt.Errorf("%w: 体检项目已停用", pkgerrors.ErrNotFound)
	ErrExamPriceNotFound     = fmt.Errorf("%w: 该机构未报价", pkgerrors.ErrNotFound)
	ErrExamNoTriggerEvents   = fmt.Errorf("%w: 体检项目至少需要一个触发事件", pkgerrors.ErrValidation)
	ErrUnknownTriggerEvent   = fmt.Errorf("%w: 未知的触发事件", pkgerrors.ErrValidation)
	ErrExamIntervalRequired  = fmt.Errorf("%w: 定期体检必须配置复检间隔", pkgerrors.ErrValidation)
	ErrExamInvalidInterval   = fmt.Errorf("%w: 复检间隔必须为正整数（月）", pkgerrors.ErrValidation)
	ErrExamDuplicateProvider = fmt.Errorf("%w: 同一机构重复报价", pkgerrors.ErrValidation)
	ErrExamNegativePrice     = fmt.Errorf("%w: 报价不能为负数", pkgerrors.ErrValidation)
)

// ExamService 体检项目目录业务接口
type ExamService interface {
	Register(ctx context.Context, req *dto.CreateExamRequest, callerID string) (*dto.ExamResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateExamRequest, callerID string) (*dto.ExamResponse, error)
	SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.ExamResponse, error)
	List(ctx context.Context, req *dto.ExamListRequest) ([]dto.ExamResponse, error)
	// ListByTriggerEvent 列出适用于指定事件的启用中体检，按名称排序
	ListByTriggerEvent(ctx context.Context, event model.TriggerEvent) ([]dto.ExamResponse, error)
	// FindByID 停用或不存在均返回 NotFound
	FindByID(ctx context.Context, id string) (*dto.ExamResponse, error)
	FindByIDIncludingInactive(ctx context.Context, id string) (*dto.ExamResponse, error)
	PriceFor(ctx context.Context, examID, providerID string) (*dto.ExamPriceResponse, error)
}

type examService struct {
	repo   *repository.Repository
	cache  *requirementsCache
	logger *zap.Logger
}

// NewExamService 创建 ExamService 实例
func NewExamService(repo *repository.Repository, cache *requirementsCache, logger *zap.Logger) ExamService {
	return &examService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Register ──────────────────────

func (s *examService) Register(ctx context.Context, req *dto.CreateExamRequest, callerID string) (*dto.ExamResponse, error) {
	triggers, err := normalizeTriggers(req.TriggerEvents)
	if err != nil {
		return nil, err
	}
	if err := validateExamInterval(triggers, req.RenewalIntervalMonths); err != nil {
		return nil, err
	}
	prices, err := buildExamPrices(req.Prices)
	if err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Name:                  req.Name,
		TriggerEvents:         triggers,
		RenewalIntervalMonths: req.RenewalIntervalMonths,
		Preparation:           req.Preparation,
		IsActive:              true,
		Prices:                prices,
	}
	exam.CreatedBy = &callerID
	exam.UpdatedBy = &callerID

	if err := s.repo.Exam.Create(ctx, exam); err != nil {
		s.logger.Error("创建体检项目失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("体检项目已登记",
		zap.String("exam_id", exam.ExamID),
		zap.String("expiry_policy", string(exam.ExpiryPolicy())),
	)
	return toExamResponse(exam), nil
}

// ────────────────────── Update ──────────────────────

func (s *examService) Update(ctx context.Context, id string, req *dto.UpdateExamRequest, callerID string) (*dto.ExamResponse, error) {
	exam, err := s.repo.Exam.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		s.logger.Error("查询体检项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 在副本上应用补丁，整体校验通过后才落库
	if req.Name != nil {
		exam.Name = *req.Name
	}
	if req.TriggerEvents != nil {
		triggers, err := normalizeTriggers(*req.TriggerEvents)
		if err != nil {
			return nil, err
		}
		exam.TriggerEvents = triggers
	}
	if req.ClearRenewalInterval {
		exam.RenewalIntervalMonths = nil
	} else if req.RenewalIntervalMonths != nil {
		v := *req.RenewalIntervalMonths
		exam.RenewalIntervalMonths = &v
	}
	if err := validateExamInterval(exam.TriggerEvents, exam.RenewalIntervalMonths); err != nil {
		return nil, err
	}
	if req.Preparation != nil {
		exam.Preparation = *req.Preparation
	}
	if req.Prices != nil {
		prices, err := buildExamPrices(*req.Prices)
		if err != nil {
			return nil, err
		}
		for i := range prices {
			prices[i].ExamID = exam.ExamID
		}
		exam.Prices = prices
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
	exam.UpdatedBy = &callerID

	if err := s.repo.Exam.Update(ctx, exam); err != nil {
		s.logger.Error("更新体检项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.invalidate(ctx)

	return toExamResponse(exam), nil
}

// ────────────────────── SetActive ──────────────────────

// SetActive 停用不会解除已有职能绑定
func (s *examService) SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.ExamResponse, error) {
	return s.Update(ctx, id, &dto.UpdateExamRequest{IsActive: &active}, callerID)
}

// ────────────────────── List ──────────────────────

func (s *examService) List(ctx context.Context, req *dto.ExamListRequest) ([]dto.ExamResponse, error) {
	if req.TriggerEvent != "" {
		event, err := model.ParseTriggerEvent(req.TriggerEvent)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTriggerEvent, req.TriggerEvent)
		}
		if !req.IncludeInactive {
			return s.ListByTriggerEvent(ctx, event)
		}
	}

	exams, err := s.repo.Exam.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出体检项目失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ExamResponse, 0, len(exams))
	for i := range exams {
		if req.TriggerEvent != "" && !model.ContainsTrigger(exams[i].TriggerEvents, model.TriggerEvent(req.TriggerEvent)) {
			continue
		}
		result = append(result, *toExamResponse(&exams[i]))
	}
	return result, nil
}

// ────────────────────── ListByTriggerEvent ──────────────────────

func (s *examService) ListByTriggerEvent(ctx context.Context, event model.TriggerEvent) ([]dto.ExamResponse, error) {
	if !event.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTriggerEvent, event)
	}

	exams, err := s.repo.Exam.List(ctx, false)
	if err != nil {
		s.logger.Error("列出体检项目失败", zap.Error(err))
		return nil, err
	}

	matched := make([]model.Exam, 0, len(exams))
	for _, e := range exams {
		if e.IsActive && model.ContainsTrigger(e.TriggerEvents, event) {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	result := make([]dto.ExamResponse, 0, len(matched))
	for i := range matched {
		result = append(result, *toExamResponse(&matched[i]))
	}
	return result, nil
}

// ────────────────────── FindByID ──────────────────────

func (s *examService) FindByID(ctx context.Context, id string) (*dto.ExamResponse, error) {
	exam, err := activeExam(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return toExamResponse(exam), nil
}

func (s *examService) FindByIDIncludingInactive(ctx context.Context, id string) (*dto.ExamResponse, error) {
	exam, err := s.repo.Exam.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamNotFound
		}
		s.logger.Error("查询体检项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toExamResponse(exam), nil
}

// ────────────────────── PriceFor ──────────────────────

func (s *examService) PriceFor(ctx context.Context, examID, providerID string) (*dto.ExamPriceResponse, error) {
	exam, err := s.repo.Exam.GetByID(ctx, examID)
	if err != nil {
		return nil, lookupErr(err, ErrExamNotFound)
	}
	for _, p := range exam.Prices {
		if p.ProviderID == providerID {
			return &dto.ExamPriceResponse{ExamID: examID, ProviderID: providerID, Amount: p.Amount}, nil
		}
	}
	return nil, ErrExamPriceNotFound
}

// ── 校验与转换 ──

// normalizeTriggers 校验触发事件集合：非空、均为已知事件，重复项合并
func normalizeTriggers(events []model.TriggerEvent) (model.TriggerEventSet, error) {
	if len(events) == 0 {
		return nil, ErrExamNoTriggerEvents
	}
	out := make(model.TriggerEventSet, 0, len(events))
	for _, e := range events {
		if !e.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTriggerEvent, e)
		}
		if !model.ContainsTrigger(out, e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// validateExamInterval 定期体检必须有正数间隔；非定期体检可选填，但填写时也须为正数
func validateExamInterval(triggers []model.TriggerEvent, interval *int) error {
	if interval != nil && *interval <= 0 {
		return ErrExamInvalidInterval
	}
	if model.ContainsTrigger(triggers, model.TriggerPeriodic) && interval == nil {
		return ErrExamIntervalRequired
	}
	return nil
}

func buildExamPrices(items []dto.ExamPriceItem) ([]model.ExamPrice, error) {
	seen := make(map[string]bool, len(items))
	prices := make([]model.ExamPrice, 0, len(items))
	for _, item := range items {
		if seen[item.ProviderID] {
			return nil, fmt.Errorf("%w: %s", ErrExamDuplicateProvider, item.ProviderID)
		}
		seen[item.ProviderID] = true
		if item.Amount.IsNegative() {
			return nil, ErrExamNegativePrice
		}
		prices = append(prices, model.ExamPrice{ProviderID: item.ProviderID, Amount: item.Amount.Round(2)})
	}
	return prices, nil
}

// activeExam 获取启用中的体检项目
func activeExam(ctx context.Context, repo *repository.Repository, id string) (*model.Exam, error) {
	exam, err := repo.Exam.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrExamNotFound)
	}
	if !exam.IsActive {
		return nil, ErrExamInactive
	}
	return exam, nil
}

func toExamResponse(e *model.Exam) *dto.ExamResponse {
	triggers := make([]model.TriggerEvent, len(e.TriggerEvents))
	copy(triggers, e.TriggerEvents)

	prices := make([]dto.ExamPriceItem, 0, len(e.Prices))
	for _, p := range e.Prices {
		prices = append(prices, dto.ExamPriceItem{ProviderID: p.ProviderID, Amount: p.Amount})
	}

	return &dto.ExamResponse{
		ID:                    e.ExamID,
		Name:                  e.Name,
		TriggerEvents:         triggers,
		RenewalIntervalMonths: e.RenewalIntervalMonths,
		ExpiryPolicy:          e.ExpiryPolicy(),
		Preparation:           e.Preparation,
		Prices:                prices,
		IsActive:              e.IsActive,
		CreatedAt:             e.CreatedAt.Format(timeLayout),
		UpdatedAt:             e.UpdatedAt.Format(timeLayout),
	}
}
