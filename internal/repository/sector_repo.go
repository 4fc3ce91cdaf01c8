package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
)

// SectorRepository 部门/作业区数据访问接口
type SectorRepository interface {
	Create(ctx context.Context, sector *model.Sector) error
	GetByID(ctx context.Context, id string) (*model.Sector, error)
	GetByName(ctx context.Context, name string) (*model.Sector, error)
	List(ctx context.Context, includeInactive bool) ([]model.Sector, error)
	Update(ctx context.Context, sector *model.Sector) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountFunctions(ctx context.Context, sectorID string) (int64, error)
}

type sectorRepo struct {
	db *gorm.DB
}

// NewSectorRepo 创建 SectorRepository 实例
func NewSectorRepo(db *gorm.DB) SectorRepository {
	return &sectorRepo{db: db}
}

func (r *sectorRepo) Create(ctx context.Context, sector *model.Sector) error {
	return r.db.WithContext(ctx).Create(sector).Error
}

func (r *sectorRepo) GetByID(ctx context.Context, id string) (*model.Sector, error) {
	var sector model.Sector
	err := r.db.WithContext(ctx).
		Where("sector_id = ?", id).
		First(&sector).Error
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *sectorRepo) GetByName(ctx context.Context, name string) (*model.Sector, error) {
	var sector model.Sector
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		First(&sector).Error
	if err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *sectorRepo) List(ctx context.Context, includeInactive bool) ([]model.Sector, error) {
	var sectors []model.Sector
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name ASC").Find(&sectors).Error
	return sectors, err
}

func (r *sectorRepo) Update(ctx context.Context, sector *model.Sector) error {
	return r.db.WithContext(ctx).Save(sector).Error
}

func (r *sectorRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Sector{}).
			Where("sector_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("sector_id = ?", id).Delete(&model.Sector{}).Error
	})
}

func (r *sectorRepo) CountFunctions(ctx context.Context, sectorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Function{}).
		Where("sector_id = ?", sectorID).
		Count(&count).Error
	return count, err
}
