package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
)

// EmployeeListFilters 员工列表筛选条件
type EmployeeListFilters struct {
	FunctionID      string
	Keyword         string // 匹配姓名或工号
	IncludeInactive bool
}

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetByRegistration(ctx context.Context, registration string) (*model.Employee, error)
	ListWithFilters(ctx context.Context, filters *EmployeeListFilters, offset, limit int) ([]model.Employee, int64, error)
	// ListActiveWithFunction 列出所有已分配职能的在职员工（报表使用）
	ListActiveWithFunction(ctx context.Context) ([]model.Employee, error)
	Update(ctx context.Context, employee *model.Employee) error
	// Delete 软删除员工并级联软删除其全部合规记录
	Delete(ctx context.Context, id string, deletedBy string) error
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Omit("Function").Create(employee).Error
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Preload("Function").Preload("Function.Sector").
		Where("employee_id = ?", id).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) GetByRegistration(ctx context.Context, registration string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Where("registration = ?", registration).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) ListWithFilters(ctx context.Context, filters *EmployeeListFilters, offset, limit int) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Employee{})
	if filters != nil {
		if filters.FunctionID != "" {
			db = db.Where("function_id = ?", filters.FunctionID)
		}
		if filters.Keyword != "" {
			like := "%" + filters.Keyword + "%"
			db = db.Where("name LIKE ? OR registration LIKE ?", like, like)
		}
		if !filters.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Function").
		Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&employees).Error; err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (r *employeeRepo) ListActiveWithFunction(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).
		Preload("Function").
		Where("is_active = ? AND function_id IS NOT NULL", true).
		Order("name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *employeeRepo) Update(ctx context.Context, employee *model.Employee) error {
	return r.db.WithContext(ctx).Omit("Function").Save(employee).Error
}

func (r *employeeRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ComplianceRecord{}).
			Where("employee_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		if err := tx.Where("employee_id = ?", id).Delete(&model.ComplianceRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Employee{}).
			Where("employee_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("employee_id = ?", id).Delete(&model.Employee{}).Error
	})
}
