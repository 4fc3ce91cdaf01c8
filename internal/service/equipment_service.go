package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
	pkgerrors "conser-control/backend/pkg/errors"
)

// ── EPI / 工服模块业务错误 ──

var (
	ErrEquipmentNotFound = fmt.Errorf("%w: EPI 不存在", pkgerrors.ErrNotFound)
	ErrEquipmentInactive = fmt.Errorf("%w: EPI 已停用", pkgerrors.ErrNotFound)
	ErrUniformNotFound   = fmt.Errorf("%w: 工服不存在", pkgerrors.ErrNotFound)
	ErrUniformInactive   = fmt.Errorf("%w: 工服已停用", pkgerrors.ErrNotFound)
	ErrInvalidShelfLife  = fmt.Errorf("%w: 有效期必须为正整数（月）", pkgerrors.ErrValidation)
)

// EquipmentService EPI 与工服目录业务接口
type EquipmentService interface {
	RegisterEquipment(ctx context.Context, req *dto.CreateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error)
	UpdateEquipment(ctx context.Context, id string, req *dto.UpdateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error)
	SetEquipmentActive(ctx context.Context, id string, active bool, callerID string) (*dto.EquipmentResponse, error)
	ListEquipment(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, error)
	FindEquipmentByID(ctx context.Context, id string) (*dto.EquipmentResponse, error)
	FindEquipmentByIDIncludingInactive(ctx context.Context, id string) (*dto.EquipmentResponse, error)
	IsMandatory(ctx context.Context, id string) (*dto.IsMandatoryResponse, error)

	RegisterUniform(ctx context.Context, req *dto.CreateUniformRequest, callerID string) (*dto.UniformResponse, error)
	UpdateUniform(ctx context.Context, id string, req *dto.UpdateUniformRequest, callerID string) (*dto.UniformResponse, error)
	SetUniformActive(ctx context.Context, id string, active bool, callerID string) (*dto.UniformResponse, error)
	ListUniforms(ctx context.Context, includeInactive bool) ([]dto.UniformResponse, error)
	FindUniformByID(ctx context.Context, id string) (*dto.UniformResponse, error)
	FindUniformByIDIncludingInactive(ctx context.Context, id string) (*dto.UniformResponse, error)
}

type equipmentService struct {
	repo   *repository.Repository
	cache  *requirementsCache
	now    clock
	logger *zap.Logger
}

// NewEquipmentService 创建 EquipmentService 实例
func NewEquipmentService(repo *repository.Repository, cache *requirementsCache, now clock, logger *zap.Logger) EquipmentService {
	return &equipmentService{repo: repo, cache: cache, now: now, logger: logger}
}

// ────────────────────── EPI: Register ──────────────────────

func (s *equipmentService) RegisterEquipment(ctx context.Context, req *dto.CreateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error) {
	if req.ShelfLifeMonths != nil && *req.ShelfLifeMonths <= 0 {
		return nil, ErrInvalidShelfLife
	}

	item := &model.EquipmentItem{
		Name:                req.Name,
		CertificationNumber: req.CertificationNumber,
		ShelfLifeMonths:     req.ShelfLifeMonths,
		IsMandatory:         req.IsMandatory,
		IsActive:            true,
	}
	item.CreatedBy = &callerID
	item.UpdatedBy = &callerID

	if err := s.repo.Equipment.Create(ctx, item); err != nil {
		s.logger.Error("创建 EPI 失败", zap.Error(err))
		return nil, err
	}
	return s.toEquipmentResponse(item), nil
}

// ────────────────────── EPI: Update ──────────────────────

func (s *equipmentService) UpdateEquipment(ctx context.Context, id string, req *dto.UpdateEquipmentRequest, callerID string) (*dto.EquipmentResponse, error) {
	item, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		s.logger.Error("查询 EPI 失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.CertificationNumber != nil {
		item.CertificationNumber = *req.CertificationNumber
	}
	if req.ClearShelfLife {
		item.ShelfLifeMonths = nil
	} else if req.ShelfLifeMonths != nil {
		if *req.ShelfLifeMonths <= 0 {
			return nil, ErrInvalidShelfLife
		}
		v := *req.ShelfLifeMonths
		item.ShelfLifeMonths = &v
	}
	if req.IsMandatory != nil {
		item.IsMandatory = *req.IsMandatory
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedBy = &callerID

	if err := s.repo.Equipment.Update(ctx, item); err != nil {
		s.logger.Error("更新 EPI 失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.invalidate(ctx)

	return s.toEquipmentResponse(item), nil
}

func (s *equipmentService) SetEquipmentActive(ctx context.Context, id string, active bool, callerID string) (*dto.EquipmentResponse, error) {
	return s.UpdateEquipment(ctx, id, &dto.UpdateEquipmentRequest{IsActive: &active}, callerID)
}

// ────────────────────── EPI: 查询 ──────────────────────

func (s *equipmentService) ListEquipment(ctx context.Context, req *dto.EquipmentListRequest) ([]dto.EquipmentResponse, error) {
	items, err := s.repo.Equipment.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出 EPI 失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EquipmentResponse, 0, len(items))
	for i := range items {
		if req.MandatoryOnly && !items[i].IsMandatory {
			continue
		}
		result = append(result, *s.toEquipmentResponse(&items[i]))
	}
	return result, nil
}

func (s *equipmentService) FindEquipmentByID(ctx context.Context, id string) (*dto.EquipmentResponse, error) {
	item, err := activeEquipment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return s.toEquipmentResponse(item), nil
}

func (s *equipmentService) FindEquipmentByIDIncludingInactive(ctx context.Context, id string) (*dto.EquipmentResponse, error) {
	item, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrEquipmentNotFound)
	}
	return s.toEquipmentResponse(item), nil
}

func (s *equipmentService) IsMandatory(ctx context.Context, id string) (*dto.IsMandatoryResponse, error) {
	item, err := s.repo.Equipment.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrEquipmentNotFound)
	}
	return &dto.IsMandatoryResponse{ID: item.EquipmentItemID, IsMandatory: item.IsMandatory}, nil
}

// ────────────────────── 工服 ──────────────────────

func (s *equipmentService) RegisterUniform(ctx context.Context, req *dto.CreateUniformRequest, callerID string) (*dto.UniformResponse, error) {
	item := &model.UniformItem{
		Description: req.Description,
		Category:    req.Category,
		IsActive:    true,
	}
	item.CreatedBy = &callerID
	item.UpdatedBy = &callerID

	if err := s.repo.Uniform.Create(ctx, item); err != nil {
		s.logger.Error("创建工服失败", zap.Error(err))
		return nil, err
	}
	return toUniformResponse(item), nil
}

func (s *equipmentService) UpdateUniform(ctx context.Context, id string, req *dto.UpdateUniformRequest, callerID string) (*dto.UniformResponse, error) {
	item, err := s.repo.Uniform.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUniformNotFound
		}
		s.logger.Error("查询工服失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedBy = &callerID

	if err := s.repo.Uniform.Update(ctx, item); err != nil {
		s.logger.Error("更新工服失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.invalidate(ctx)

	return toUniformResponse(item), nil
}

func (s *equipmentService) SetUniformActive(ctx context.Context, id string, active bool, callerID string) (*dto.UniformResponse, error) {
	return s.UpdateUniform(ctx, id, &dto.UpdateUniformRequest{IsActive: &active}, callerID)
}

func (s *equipmentService) ListUniforms(ctx context.Context, includeInactive bool) ([]dto.UniformResponse, error) {
	items, err := s.repo.Uniform.List(ctx, includeInactive)
	if err != nil {
		s.logger.Error("列出工服失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.UniformResponse, 0, len(items))
	for i := range items {
		result = append(result, *toUniformResponse(&items[i]))
	}
	return result, nil
}

func (s *equipmentService) FindUniformByID(ctx context.Context, id string) (*dto.UniformResponse, error) {
	item, err := s.repo.Uniform.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrUniformNotFound)
	}
	if !item.IsActive {
		return nil, ErrUniformInactive
	}
	return toUniformResponse(item), nil
}

func (s *equipmentService) FindUniformByIDIncludingInactive(ctx context.Context, id string) (*dto.UniformResponse, error) {
	item, err := s.repo.Uniform.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrUniformNotFound)
	}
	return toUniformResponse(item), nil
}

// ── 辅助方法 ──

func activeEquipment(ctx context.Context, repo *repository.Repository, id string) (*model.EquipmentItem, error) {
	item, err := repo.Equipment.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrEquipmentNotFound)
	}
	if !item.IsActive {
		return nil, ErrEquipmentInactive
	}
	return item, nil
}

func (s *equipmentService) toEquipmentResponse(item *model.EquipmentItem) *dto.EquipmentResponse {
	return toEquipmentResponse(item, s.now())
}

// toEquipmentResponse today 用于计算"今日发放"的到期日预览
func toEquipmentResponse(item *model.EquipmentItem, today time.Time) *dto.EquipmentResponse {
	return &dto.EquipmentResponse{
		ID:                      item.EquipmentItemID,
		Name:                    item.Name,
		CertificationNumber:     item.CertificationNumber,
		ShelfLifeMonths:         item.ShelfLifeMonths,
		IsMandatory:             item.IsMandatory,
		IsActive:                item.IsActive,
		ValidUntilIfIssuedToday: formatDatePtr(expiryAfterMonths(today, item.ShelfLifeMonths)),
	}
}

func toUniformResponse(item *model.UniformItem) *dto.UniformResponse {
	return &dto.UniformResponse{
		ID:          item.UniformItemID,
		Description: item.Description,
		Category:    item.Category,
		IsActive:    item.IsActive,
	}
}
