package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
)

// ComplianceRecordRepository 合规台账数据访问接口
type ComplianceRecordRepository interface {
	Create(ctx context.Context, record *model.ComplianceRecord) error
	GetByID(ctx context.Context, id string) (*model.ComplianceRecord, error)
	// ListByEmployee 按执行日期倒序返回员工全部记录
	ListByEmployee(ctx context.Context, employeeID string) ([]model.ComplianceRecord, error)
	ListByEmployeeIDs(ctx context.Context, employeeIDs []string) ([]model.ComplianceRecord, error)
	UpdateAttachment(ctx context.Context, id, attachmentKey, updatedBy string) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type complianceRecordRepo struct {
	db *gorm.DB
}

// NewComplianceRecordRepo 创建 ComplianceRecordRepository 实例
func NewComplianceRecordRepo(db *gorm.DB) ComplianceRecordRepository {
	return &complianceRecordRepo{db: db}
}

func (r *complianceRecordRepo) Create(ctx context.Context, record *model.ComplianceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *complianceRecordRepo) GetByID(ctx context.Context, id string) (*model.ComplianceRecord, error) {
	var record model.ComplianceRecord
	err := r.db.WithContext(ctx).
		Where("record_id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *complianceRecordRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.ComplianceRecord, error) {
	var records []model.ComplianceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("performed_at DESC, created_at DESC").
		Find(&records).Error
	return records, err
}

func (r *complianceRecordRepo) ListByEmployeeIDs(ctx context.Context, employeeIDs []string) ([]model.ComplianceRecord, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	var records []model.ComplianceRecord
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Order("performed_at DESC").
		Find(&records).Error
	return records, err
}

func (r *complianceRecordRepo) UpdateAttachment(ctx context.Context, id, attachmentKey, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.ComplianceRecord{}).
		Where("record_id = ?", id).
		Updates(map[string]interface{}{
			"attachment_key": attachmentKey,
			"updated_by":     updatedBy,
		}).Error
}

func (r *complianceRecordRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ComplianceRecord{}).
			Where("record_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("record_id = ?", id).Delete(&model.ComplianceRecord{}).Error
	})
}
