package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
	pkgerrors "conser-control/backend/pkg/errors"
)

// ── 员工模块业务错误 ──

var (
	ErrEmployeeNotFound           = fmt.Errorf("%w: 员工不存在", pkgerrors.ErrNotFound)
	ErrEmployeeInactive           = fmt.Errorf("%w: 员工已离职", pkgerrors.ErrNotFound)
	ErrEmployeeRegistrationExists = fmt.Errorf("%w: 工号已存在", pkgerrors.ErrValidation)
	ErrEmployeeNoFunction         = fmt.Errorf("%w: 员工未分配职能", pkgerrors.ErrValidation)
)

// EmployeeService 员工业务接口
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error)
	// Delete 同时删除该员工的全部合规记录
	Delete(ctx context.Context, id string, callerID string) error
}

type employeeService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	existing, err := s.repo.Employee.GetByRegistration(ctx, req.Registration)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmployeeRegistrationExists
	}

	employee := &model.Employee{
		Name:           req.Name,
		Registration:   req.Registration,
		DocumentNumber: req.DocumentNumber,
		IsActive:       true,
	}
	if req.FunctionID != nil && *req.FunctionID != "" {
		fn, err := activeFunction(ctx, s.repo, *req.FunctionID)
		if err != nil {
			return nil, err
		}
		employee.FunctionID = &fn.FunctionID
		employee.Function = fn
	}
	if req.AdmissionDate != nil {
		d, err := parseDate(*req.AdmissionDate, s.loc)
		if err != nil {
			return nil, err
		}
		employee.AdmissionDate = &d
	}
	employee.CreatedBy = &callerID
	employee.UpdatedBy = &callerID

	if err := s.repo.Employee.Create(ctx, employee); err != nil {
		s.logger.Error("登记员工失败", zap.Error(err))
		return nil, err
	}

	return toEmployeeResponse(employee), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *employeeService) GetByID(ctx context.Context, id string) (*dto.EmployeeResponse, error) {
	employee, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toEmployeeResponse(employee), nil
}

// ────────────────────── List ──────────────────────

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	employees, total, err := s.repo.Employee.ListWithFilters(ctx, &repository.EmployeeListFilters{
		FunctionID:      req.FunctionID,
		Keyword:         req.Keyword,
		IncludeInactive: req.IncludeInactive,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		result = append(result, *toEmployeeResponse(&employees[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *employeeService) Update(ctx context.Context, id string, req *dto.UpdateEmployeeRequest, callerID string) (*dto.EmployeeResponse, error) {
	employee, err := s.repo.Employee.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		employee.Name = *req.Name
	}
	if req.DocumentNumber != nil {
		employee.DocumentNumber = *req.DocumentNumber
	}
	if req.ClearFunction {
		employee.FunctionID = nil
		employee.Function = nil
	} else if req.FunctionID != nil && (employee.FunctionID == nil || *employee.FunctionID != *req.FunctionID) {
		fn, err := activeFunction(ctx, s.repo, *req.FunctionID)
		if err != nil {
			return nil, err
		}
		employee.FunctionID = &fn.FunctionID
		employee.Function = fn
	}
	if req.AdmissionDate != nil {
		d, err := parseDate(*req.AdmissionDate, s.loc)
		if err != nil {
			return nil, err
		}
		employee.AdmissionDate = &d
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}
	employee.UpdatedBy = &callerID

	if err := s.repo.Employee.Update(ctx, employee); err != nil {
		s.logger.Error("更新员工失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toEmployeeResponse(employee), nil
}

// ────────────────────── Delete ──────────────────────

func (s *employeeService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Employee.GetByID(ctx, id); err != nil {
		return lookupErr(err, ErrEmployeeNotFound)
	}
	if err := s.repo.Employee.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除员工失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助方法 ──

// activeEmployee 登记合规记录前校验员工在职
func activeEmployee(ctx context.Context, repo *repository.Repository, id string) (*model.Employee, error) {
	employee, err := repo.Employee.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrEmployeeNotFound)
	}
	if !employee.IsActive {
		return nil, ErrEmployeeInactive
	}
	return employee, nil
}

func activeFunction(ctx context.Context, repo *repository.Repository, id string) (*model.Function, error) {
	fn, err := repo.Function.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrFunctionNotFound)
	}
	if !fn.IsActive {
		return nil, ErrFunctionInactive
	}
	return fn, nil
}

func toEmployeeResponse(e *model.Employee) *dto.EmployeeResponse {
	resp := &dto.EmployeeResponse{
		ID:             e.EmployeeID,
		Name:           e.Name,
		Registration:   e.Registration,
		DocumentNumber: e.DocumentNumber,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt.Format(timeLayout),
	}
	if e.Function != nil {
		resp.Function = &dto.FunctionBrief{ID: e.Function.FunctionID, Name: e.Function.Name}
	} else if e.FunctionID != nil {
		resp.Function = &dto.FunctionBrief{ID: *e.FunctionID}
	}
	if e.AdmissionDate != nil {
		resp.AdmissionDate = e.AdmissionDate.Format(dateLayout)
	}
	return resp
}
