package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"conser-control/backend/internal/model"
)

// ExamRepository 体检项目数据访问接口
// 查询结果包含停用项目，是否过滤由 Service 层决定。
type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	GetByID(ctx context.Context, id string) (*model.Exam, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Exam, error)
	List(ctx context.Context, includeInactive bool) ([]model.Exam, error)
	Update(ctx context.Context, exam *model.Exam) error
}

type examRepo struct {
	db *gorm.DB
}

// NewExamRepo 创建 ExamRepository 实例
func NewExamRepo(db *gorm.DB) ExamRepository {
	return &examRepo{db: db}
}

func (r *examRepo) Create(ctx context.Context, exam *model.Exam) error {
	// 报价随体检一并插入（同一事务）
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepo) GetByID(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.WithContext(ctx).
		Preload("Prices").
		Where("exam_id = ?", id).
		First(&exam).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Exam, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var exams []model.Exam
	err := r.db.WithContext(ctx).
		Preload("Prices").
		Where("exam_id IN ?", ids).
		Order("name ASC").
		Find(&exams).Error
	return exams, err
}

func (r *examRepo) List(ctx context.Context, includeInactive bool) ([]model.Exam, error) {
	var exams []model.Exam
	q := r.db.WithContext(ctx).Preload("Prices")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("name ASC").Find(&exams).Error
	return exams, err
}

// Update 更新体检项目并整体替换报价表
func (r *examRepo) Update(ctx context.Context, exam *model.Exam) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(exam).Error; err != nil {
			return err
		}
		// 硬删除旧报价（替换场景，无需软删除审计）
		if err := tx.Where("exam_id = ?", exam.ExamID).Delete(&model.ExamPrice{}).Error; err != nil {
			return err
		}
		if len(exam.Prices) > 0 {
			for i := range exam.Prices {
				exam.Prices[i].ExamID = exam.ExamID
			}
			if err := tx.Create(&exam.Prices).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
