package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
	pkgerrors "conser-control/backend/pkg/errors"
)

// ── 部门/作业区模块业务错误 ──

var (
	ErrSectorNotFound   = fmt.Errorf("%w: 部门不存在", pkgerrors.ErrNotFound)
	ErrSectorInactive   = fmt.Errorf("%w: 部门已停用", pkgerrors.ErrNotFound)
	ErrSectorNameExists = fmt.Errorf("%w: 部门名称已存在", pkgerrors.ErrValidation)
	ErrSectorInUse      = fmt.Errorf("%w: 部门下仍有职能，无法删除", pkgerrors.ErrValidation)
)

// SectorService 部门业务接口
type SectorService interface {
	Create(ctx context.Context, req *dto.CreateSectorRequest, callerID string) (*dto.SectorResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SectorResponse, error)
	List(ctx context.Context, req *dto.SectorListRequest) ([]dto.SectorResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSectorRequest, callerID string) (*dto.SectorResponse, error)
	SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.SectorResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type sectorService struct {
	repo   *repository.Repository
	cache  *requirementsCache
	logger *zap.Logger
}

// NewSectorService 创建 SectorService 实例
func NewSectorService(repo *repository.Repository, cache *requirementsCache, logger *zap.Logger) SectorService {
	return &sectorService{repo: repo, cache: cache, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *sectorService) Create(ctx context.Context, req *dto.CreateSectorRequest, callerID string) (*dto.SectorResponse, error) {
	existing, err := s.repo.Sector.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询部门失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrSectorNameExists
	}

	sector := &model.Sector{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	sector.CreatedBy = &callerID
	sector.UpdatedBy = &callerID

	if err := s.repo.Sector.Create(ctx, sector); err != nil {
		s.logger.Error("创建部门失败", zap.Error(err))
		return nil, err
	}

	return s.toSectorResponse(ctx, sector), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *sectorService) GetByID(ctx context.Context, id string) (*dto.SectorResponse, error) {
	sector, err := s.repo.Sector.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectorNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.toSectorResponse(ctx, sector), nil
}

// ────────────────────── List ──────────────────────

func (s *sectorService) List(ctx context.Context, req *dto.SectorListRequest) ([]dto.SectorResponse, error) {
	sectors, err := s.repo.Sector.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出部门失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SectorResponse, 0, len(sectors))
	for i := range sectors {
		result = append(result, *s.toSectorResponse(ctx, &sectors[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *sectorService) Update(ctx context.Context, id string, req *dto.UpdateSectorRequest, callerID string) (*dto.SectorResponse, error) {
	sector, err := s.repo.Sector.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectorNotFound
		}
		s.logger.Error("查询部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != sector.Name {
		existing, err := s.repo.Sector.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.SectorID != id {
			return nil, ErrSectorNameExists
		}
		sector.Name = *req.Name
	}
	if req.Description != nil {
		sector.Description = *req.Description
	}
	if req.IsActive != nil {
		sector.IsActive = *req.IsActive
	}
	sector.UpdatedBy = &callerID

	if err := s.repo.Sector.Update(ctx, sector); err != nil {
		s.logger.Error("更新部门失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	// 汇总中包含部门名称
	s.cache.invalidate(ctx)

	return s.toSectorResponse(ctx, sector), nil
}

// ────────────────────── SetActive ──────────────────────

func (s *sectorService) SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.SectorResponse, error) {
	return s.Update(ctx, id, &dto.UpdateSectorRequest{IsActive: &active}, callerID)
}

// ────────────────────── Delete ──────────────────────

func (s *sectorService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Sector.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSectorNotFound
		}
		return err
	}

	count, err := s.repo.Sector.CountFunctions(ctx, id)
	if err != nil {
		s.logger.Error("统计部门职能数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrSectorInUse
	}

	if err := s.repo.Sector.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除部门失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助方法 ──

func (s *sectorService) toSectorResponse(ctx context.Context, sector *model.Sector) *dto.SectorResponse {
	count, err := s.repo.Sector.CountFunctions(ctx, sector.SectorID)
	if err != nil {
		s.logger.Warn("统计部门职能数失败", zap.String("id", sector.SectorID), zap.Error(err))
	}
	return &dto.SectorResponse{
		ID:            sector.SectorID,
		Name:          sector.Name,
		Description:   sector.Description,
		IsActive:      sector.IsActive,
		FunctionCount: count,
		CreatedAt:     sector.CreatedAt.Format(timeLayout),
		UpdatedAt:     sector.UpdatedAt.Format(timeLayout),
	}
}

// activeSector 获取启用中的部门，供职能创建/迁移时校验
func activeSector(ctx context.Context, repo *repository.Repository, id string) (*model.Sector, error) {
	sector, err := repo.Sector.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrSectorNotFound)
	}
	if !sector.IsActive {
		return nil, ErrSectorInactive
	}
	return sector, nil
}
