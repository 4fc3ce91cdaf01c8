package repository

import (
	"context"

	"gorm.io/gorm"

	"conser-control/backend/internal/model"
	pkgerrors "conser-control/backend/pkg/errors"
)

// FunctionListFilters 职能列表筛选条件
type FunctionListFilters struct {
	SectorID        string
	IncludeInactive bool
}

// FunctionRepository 职能及其需求绑定数据访问接口
//
// 所有写操作都带乐观锁：传入的 function.Version 必须与库中一致，
// 成功后 Version 自增；不一致时返回 pkgerrors.ErrOptimisticLock 且不做任何修改。
type FunctionRepository interface {
	Create(ctx context.Context, function *model.Function) error
	GetByID(ctx context.Context, id string) (*model.Function, error)
	List(ctx context.Context, filters *FunctionListFilters) ([]model.Function, error)
	Update(ctx context.Context, function *model.Function) error
	ReplaceEquipment(ctx context.Context, function *model.Function, equipmentIDs []string, updatedBy string) error
	ReplaceUniforms(ctx context.Context, function *model.Function, uniformIDs []string, updatedBy string) error
	ReplaceExamsForTrigger(ctx context.Context, function *model.Function, trigger model.TriggerEvent, examIDs []string, updatedBy string) error
}

type functionRepo struct {
	db *gorm.DB
}

// NewFunctionRepo 创建 FunctionRepository 实例
func NewFunctionRepo(db *gorm.DB) FunctionRepository {
	return &functionRepo{db: db}
}

func (r *functionRepo) Create(ctx context.Context, function *model.Function) error {
	return r.db.WithContext(ctx).Omit("Sector", "Equipment", "Uniforms", "Exams").Create(function).Error
}

func (r *functionRepo) GetByID(ctx context.Context, id string) (*model.Function, error) {
	var function model.Function
	err := r.db.WithContext(ctx).
		Preload("Sector").
		Preload("Equipment").Preload("Equipment.EquipmentItem").
		Preload("Uniforms").Preload("Uniforms.UniformItem").
		Preload("Exams").Preload("Exams.Exam").
		Where("function_id = ?", id).
		First(&function).Error
	if err != nil {
		return nil, err
	}
	return &function, nil
}

func (r *functionRepo) List(ctx context.Context, filters *FunctionListFilters) ([]model.Function, error) {
	var functions []model.Function
	q := r.db.WithContext(ctx).
		Preload("Sector").
		Preload("Equipment").Preload("Uniforms").Preload("Exams")
	if filters != nil {
		if filters.SectorID != "" {
			q = q.Where("sector_id = ?", filters.SectorID)
		}
		if !filters.IncludeInactive {
			q = q.Where("is_active = ?", true)
		}
	}
	err := q.Order("name ASC").Find(&functions).Error
	return functions, err
}

func (r *functionRepo) Update(ctx context.Context, function *model.Function) error {
	oldVersion := function.Version
	result := r.db.WithContext(ctx).
		Model(&model.Function{}).
		Where("function_id = ? AND version = ?", function.FunctionID, oldVersion).
		Updates(map[string]interface{}{
			"name":        function.Name,
			"description": function.Description,
			"sector_id":   function.SectorID,
			"duties":      function.Duties,
			"is_active":   function.IsActive,
			"updated_by":  function.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	function.Version = oldVersion + 1
	return nil
}

func (r *functionRepo) ReplaceEquipment(ctx context.Context, function *model.Function, equipmentIDs []string, updatedBy string) error {
	rows := make([]model.FunctionEquipment, 0, len(equipmentIDs))
	for _, id := range equipmentIDs {
		rows = append(rows, model.FunctionEquipment{FunctionID: function.FunctionID, EquipmentItemID: id})
	}
	return r.replace(ctx, function, updatedBy, func(tx *gorm.DB) error {
		if err := tx.Where("function_id = ?", function.FunctionID).
			Delete(&model.FunctionEquipment{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Omit("EquipmentItem").Create(&rows).Error
	})
}

func (r *functionRepo) ReplaceUniforms(ctx context.Context, function *model.Function, uniformIDs []string, updatedBy string) error {
	rows := make([]model.FunctionUniform, 0, len(uniformIDs))
	for _, id := range uniformIDs {
		rows = append(rows, model.FunctionUniform{FunctionID: function.FunctionID, UniformItemID: id})
	}
	return r.replace(ctx, function, updatedBy, func(tx *gorm.DB) error {
		if err := tx.Where("function_id = ?", function.FunctionID).
			Delete(&model.FunctionUniform{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Omit("UniformItem").Create(&rows).Error
	})
}

// ReplaceExamsForTrigger 仅替换指定触发事件分桶，其余分桶不受影响
func (r *functionRepo) ReplaceExamsForTrigger(ctx context.Context, function *model.Function, trigger model.TriggerEvent, examIDs []string, updatedBy string) error {
	rows := make([]model.FunctionExam, 0, len(examIDs))
	for _, id := range examIDs {
		rows = append(rows, model.FunctionExam{FunctionID: function.FunctionID, TriggerEvent: trigger, ExamID: id})
	}
	return r.replace(ctx, function, updatedBy, func(tx *gorm.DB) error {
		if err := tx.Where("function_id = ? AND trigger_event = ?", function.FunctionID, trigger).
			Delete(&model.FunctionExam{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Omit("Exam").Create(&rows).Error
	})
}

// replace 在单个事务内校验并推进版本号，再执行关联表替换
func (r *functionRepo) replace(ctx context.Context, function *model.Function, updatedBy string, fn func(tx *gorm.DB) error) error {
	oldVersion := function.Version
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Function{}).
			Where("function_id = ? AND version = ?", function.FunctionID, oldVersion).
			Updates(map[string]interface{}{
				"updated_by": updatedBy,
				"version":    oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		return fn(tx)
	})
	if err != nil {
		return err
	}
	function.Version = oldVersion + 1
	return nil
}
