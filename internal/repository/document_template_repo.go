package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
)

// DocumentTemplateRepository 文书模板数据访问接口
type DocumentTemplateRepository interface {
	Create(ctx context.Context, tpl *model.DocumentTemplate) error
	GetByID(ctx context.Context, id string) (*model.DocumentTemplate, error)
	List(ctx context.Context, includeInactive bool) ([]model.DocumentTemplate, error)
	Update(ctx context.Context, tpl *model.DocumentTemplate) error
}

type documentTemplateRepo struct {
	db *gorm.DB
}

// NewDocumentTemplateRepo 创建 DocumentTemplateRepository 实例
func NewDocumentTemplateRepo(db *gorm.DB) DocumentTemplateRepository {
	return &documentTemplateRepo{db: db}
}

func (r *documentTemplateRepo) Create(ctx context.Context, tpl *model.DocumentTemplate) error {
	return r.db.WithContext(ctx).Create(tpl).Error
}

func (r *documentTemplateRepo) GetByID(ctx context.Context, id string) (*model.DocumentTemplate, error) {
	var tpl model.DocumentTemplate
	err := r.db.WithContext(ctx).
		Where("document_template_id = ?", id).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *documentTemplateRepo) List(ctx context.Context, includeInactive bool) ([]model.DocumentTemplate, error) {
	var tpls []model.DocumentTemplate
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name ASC").Find(&tpls).Error
	return tpls, err
}

func (r *documentTemplateRepo) Update(ctx context.Context, tpl *model.DocumentTemplate) error {
	return r.db.WithContext(ctx).Save(tpl).Error
}
