package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
)

// ComplianceSettingRepository 合规参数数据访问接口
type ComplianceSettingRepository interface {
	Get(ctx context.Context) (*model.ComplianceSetting, error)
	Update(ctx context.Context, setting *model.ComplianceSetting) error
}

type complianceSettingRepo struct {
	db *gorm.DB
}

// NewComplianceSettingRepo 创建 ComplianceSettingRepository 实例
func NewComplianceSettingRepo(db *gorm.DB) ComplianceSettingRepository {
	return &complianceSettingRepo{db: db}
}

func (r *complianceSettingRepo) Get(ctx context.Context) (*model.ComplianceSetting, error) {
	var setting model.ComplianceSetting
	err := r.db.WithContext(ctx).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// Update 单行表：不存在时插入，存在时覆盖
func (r *complianceSettingRepo) Update(ctx context.Context, setting *model.ComplianceSetting) error {
	setting.Singleton = true
	return r.db.WithContext(ctx).Save(setting).Error
}
