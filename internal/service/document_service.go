package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/repository"
	pkgerrors "conser-control/backend/pkg/errors"
)

// ── 文书模板模块业务错误 ──

var (
	ErrTemplateNotFound        = fmt.Errorf("%w: 文书模板不存在", pkgerrors.ErrNotFound)
	ErrTemplateInactive        = fmt.Errorf("%w: 文书模板已停用", pkgerrors.ErrNotFound)
	ErrTemplateInvalidValidity = fmt.Errorf("%w: 文书有效期必须为正整数（月）", pkgerrors.ErrValidation)
)

// DocumentService 文书模板维护与渲染
type DocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentTemplateRequest, callerID string) (*dto.DocumentTemplateResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DocumentTemplateResponse, error)
	List(ctx context.Context, req *dto.DocumentTemplateListRequest) ([]dto.DocumentTemplateResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateDocumentTemplateRequest, callerID string) (*dto.DocumentTemplateResponse, error)
	SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.DocumentTemplateResponse, error)
	// Preview 为员工渲染模板但不登记记录
	Preview(ctx context.Context, id string, req *dto.PreviewDocumentRequest) (*dto.PreviewDocumentResponse, error)
}

type documentService struct {
	repo   *repository.Repository
	loc    *time.Location
	now    clock
	logger *zap.Logger
}

// NewDocumentService 创建 DocumentService 实例
func NewDocumentService(repo *repository.Repository, loc *time.Location, now clock, logger *zap.Logger) DocumentService {
	return &documentService{repo: repo, loc: loc, now: now, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentTemplateRequest, callerID string) (*dto.DocumentTemplateResponse, error) {
	if req.ValidityMonths != nil && *req.ValidityMonths <= 0 {
		return nil, ErrTemplateInvalidValidity
	}

	tpl := &model.DocumentTemplate{
		Name:           req.Name,
		Body:           req.Body,
		ValidityMonths: req.ValidityMonths,
		IsActive:       true,
	}
	tpl.CreatedBy = &callerID
	tpl.UpdatedBy = &callerID

	if err := s.repo.DocumentTemplate.Create(ctx, tpl); err != nil {
		s.logger.Error("创建文书模板失败", zap.Error(err))
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

// ────────────────────── GetByID / List ──────────────────────

func (s *documentService) GetByID(ctx context.Context, id string) (*dto.DocumentTemplateResponse, error) {
	tpl, err := s.repo.DocumentTemplate.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询文书模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

func (s *documentService) List(ctx context.Context, req *dto.DocumentTemplateListRequest) ([]dto.DocumentTemplateResponse, error) {
	tpls, err := s.repo.DocumentTemplate.List(ctx, req.IncludeInactive)
	if err != nil {
		s.logger.Error("列出文书模板失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.DocumentTemplateResponse, 0, len(tpls))
	for i := range tpls {
		result = append(result, *toTemplateResponse(&tpls[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *documentService) Update(ctx context.Context, id string, req *dto.UpdateDocumentTemplateRequest, callerID string) (*dto.DocumentTemplateResponse, error) {
	tpl, err := s.repo.DocumentTemplate.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("查询文书模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Body != nil {
		tpl.Body = *req.Body
	}
	if req.ClearValidity {
		tpl.ValidityMonths = nil
	} else if req.ValidityMonths != nil {
		if *req.ValidityMonths <= 0 {
			return nil, ErrTemplateInvalidValidity
		}
		v := *req.ValidityMonths
		tpl.ValidityMonths = &v
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	tpl.UpdatedBy = &callerID

	if err := s.repo.DocumentTemplate.Update(ctx, tpl); err != nil {
		s.logger.Error("更新文书模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

func (s *documentService) SetActive(ctx context.Context, id string, active bool, callerID string) (*dto.DocumentTemplateResponse, error) {
	return s.Update(ctx, id, &dto.UpdateDocumentTemplateRequest{IsActive: &active}, callerID)
}

// ────────────────────── Preview ──────────────────────

func (s *documentService) Preview(ctx context.Context, id string, req *dto.PreviewDocumentRequest) (*dto.PreviewDocumentResponse, error) {
	tpl, err := s.repo.DocumentTemplate.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrTemplateNotFound)
	}
	employee, err := s.repo.Employee.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, lookupErr(err, ErrEmployeeNotFound)
	}
	return &dto.PreviewDocumentResponse{
		Content: RenderTemplate(tpl.Body, employee, startOfDay(s.now(), s.loc)),
	}, nil
}

// ── 渲染 ──

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_]+)\s*\}\}`)

const brDateLayout = "02/01/2006"

// RenderTemplate 替换模板中的 {{占位符}}。
//
// 支持：nome 姓名、matricula 工号、cpf 证件号、funcao 职能、setor 部门、
// admissao 入职日期、data 生成日期（日期均为 dd/mm/yyyy）。
// 未知占位符或无值的占位符原样保留，从不返回错误。
func RenderTemplate(body string, employee *model.Employee, date time.Time) string {
	values := map[string]string{
		"nome":      employee.Name,
		"matricula": employee.Registration,
		"cpf":       employee.DocumentNumber,
		"data":      date.Format(brDateLayout),
	}
	if employee.Function != nil {
		values["funcao"] = employee.Function.Name
		if employee.Function.Sector != nil {
			values["setor"] = employee.Function.Sector.Name
		}
	}
	if employee.AdmissionDate != nil {
		values["admissao"] = employee.AdmissionDate.Format(brDateLayout)
	}

	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := values[key]; ok && v != "" {
			return v
		}
		return match
	})
}

// ── 辅助方法 ──

func activeTemplate(ctx context.Context, repo *repository.Repository, id string) (*model.DocumentTemplate, error) {
	tpl, err := repo.DocumentTemplate.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrTemplateNotFound)
	}
	if !tpl.IsActive {
		return nil, ErrTemplateInactive
	}
	return tpl, nil
}

func toTemplateResponse(t *model.DocumentTemplate) *dto.DocumentTemplateResponse {
	return &dto.DocumentTemplateResponse{
		ID:             t.DocumentTemplateID,
		Name:           t.Name,
		Body:           t.Body,
		ValidityMonths: t.ValidityMonths,
		IsActive:       t.IsActive,
		UpdatedAt:      t.UpdatedAt.Format(timeLayout),
	}
}
