package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
)

// UniformRepository 工服数据访问接口
type UniformRepository interface {
	Create(ctx context.Context, item *model.UniformItem) error
	GetByID(ctx context.Context, id string) (*model.UniformItem, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.UniformItem, error)
	List(ctx context.Context, includeInactive bool) ([]model.UniformItem, error)
	Update(ctx context.Context, item *model.UniformItem) error
}

type uniformRepo struct {
	db *gorm.DB
}

// NewUniformRepo 创建 UniformRepository 实例
func NewUniformRepo(db *gorm.DB) UniformRepository {
	return &uniformRepo{db: db}
}

func (r *uniformRepo) Create(ctx context.Context, item *model.UniformItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *uniformRepo) GetByID(ctx context.Context, id string) (*model.UniformItem, error) {
	var item model.UniformItem
	err := r.db.WithContext(ctx).
		Where("uniform_item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *uniformRepo) ListByIDs(ctx context.Context, ids []string) ([]model.UniformItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []model.UniformItem
	err := r.db.WithContext(ctx).
		Where("uniform_item_id IN ?", ids).
		Order("description ASC").
		Find(&items).Error
	return items, err
}

func (r *uniformRepo) List(ctx context.Context, includeInactive bool) ([]model.UniformItem, error) {
	var items []model.UniformItem
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("description ASC").Find(&items).Error
	return items, err
}

func (r *uniformRepo) Update(ctx context.Context, item *model.UniformItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
