package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
)

// EquipmentRepository EPI 数据访问接口
type EquipmentRepository interface {
	Create(ctx context.Context, item *model.EquipmentItem) error
	GetByID(ctx context.Context, id string) (*model.EquipmentItem, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.EquipmentItem, error)
	List(ctx context.Context, includeInactive bool) ([]model.EquipmentItem, error)
	Update(ctx context.Context, item *model.EquipmentItem) error
}

type equipmentRepo struct {
	db *gorm.DB
}

// NewEquipmentRepo 创建 EquipmentRepository 实例
func NewEquipmentRepo(db *gorm.DB) EquipmentRepository {
	return &equipmentRepo{db: db}
}

func (r *equipmentRepo) Create(ctx context.Context, item *model.EquipmentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *equipmentRepo) GetByID(ctx context.Context, id string) (*model.EquipmentItem, error) {
	var item model.EquipmentItem
	err := r.db.WithContext(ctx).
		Where("equipment_item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *equipmentRepo) ListByIDs(ctx context.Context, ids []string) ([]model.EquipmentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []model.EquipmentItem
	err := r.db.WithContext(ctx).
		Where("equipment_item_id IN ?", ids).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

func (r *equipmentRepo) List(ctx context.Context, includeInactive bool) ([]model.EquipmentItem, error) {
	var items []model.EquipmentItem
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *equipmentRepo) Update(ctx context.Context, item *model.EquipmentItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
