package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
)

func TestRenderTemplate(t *testing.T) {
	admission := date(2021, time.March, 8)
	employee := &model.Employee{
		Name:           "João Pereira",
		Registration:   "00123",
		DocumentNumber: "123.456.789-00",
		AdmissionDate:  &admission,
		Function: &model.Function{
			Name:   "Eletricista",
			Sector: &model.Sector{Name: "Manutenção"},
		},
	}
	today := date(2024, time.July, 5)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"全部占位符", "{{nome}} {{matricula}} {{cpf}} {{funcao}} {{setor}} {{admissao}} {{data}}",
			"João Pereira 00123 123.456.789-00 Eletricista Manutenção 08/03/2021 05/07/2024"},
		{"占位符内含空格", "Sr(a). {{ nome }}", "Sr(a). João Pereira"},
		{"未知占位符原样保留", "{{nome}} - {{salario}}", "João Pereira - {{salario}}"},
		{"无占位符", "Termo de responsabilidade", "Termo de responsabilidade"},
		{"不完整的括号", "{{nome} {nome}}", "{{nome} {nome}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderTemplate(tt.body, employee, today))
		})
	}
}

func TestRenderTemplate_MissingValuesStayVerbatim(t *testing.T) {
	employee := &model.Employee{Name: "Ana", Registration: "9"}

	got := RenderTemplate("{{nome}} / {{funcao}} / {{setor}} / {{cpf}} / {{admissao}}", employee, date(2024, time.January, 1))
	assert.Equal(t, "Ana / {{funcao}} / {{setor}} / {{cpf}} / {{admissao}}", got)
}

// ── DocumentService ──

func setupTestDocumentService() (DocumentService, *mockRepos) {
	repo, mocks := newMockRepos()
	return NewDocumentService(repo, time.UTC, fixedClock, zap.NewNop()), mocks
}

func TestDocumentService_CreateAndPreview(t *testing.T) {
	svc, mocks := setupTestDocumentService()
	ctx := context.Background()
	mocks.employee.employees["emp-1"] = model.Employee{EmployeeID: "emp-1", Name: "Ana Lima", Registration: "77", IsActive: true}

	tpl, err := svc.Create(ctx, &dto.CreateDocumentTemplateRequest{
		Name: "Ficha de EPI",
		Body: "Recebi, {{nome}} ({{matricula}}), em {{data}}.",
	}, "admin-001")
	require.NoError(t, err)
	assert.True(t, tpl.IsActive)

	preview, err := svc.Preview(ctx, tpl.ID, &dto.PreviewDocumentRequest{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Equal(t, "Recebi, Ana Lima (77), em 01/03/2024.", preview.Content)
	assert.Empty(t, mocks.record.records, "预览不应登记记录")
}

func TestDocumentService_Validation(t *testing.T) {
	svc, _ := setupTestDocumentService()
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateDocumentTemplateRequest{Name: "X", Body: "b", ValidityMonths: intPtr(0)}, "admin-001")
	assert.True(t, errors.Is(err, ErrTemplateInvalidValidity))

	_, err = svc.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))

	_, err = svc.Preview(ctx, "missing", &dto.PreviewDocumentRequest{EmployeeID: "emp-1"})
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestDocumentService_UpdateAndSetActive(t *testing.T) {
	svc, _ := setupTestDocumentService()
	ctx := context.Background()

	tpl, err := svc.Create(ctx, &dto.CreateDocumentTemplateRequest{Name: "Ordem", Body: "a", ValidityMonths: intPtr(12)}, "admin-001")
	require.NoError(t, err)

	body := "b {{nome}}"
	updated, err := svc.Update(ctx, tpl.ID, &dto.UpdateDocumentTemplateRequest{Body: &body, ClearValidity: true}, "admin-001")
	require.NoError(t, err)
	assert.Equal(t, body, updated.Body)
	assert.Nil(t, updated.ValidityMonths)

	deactivated, err := svc.SetActive(ctx, tpl.ID, false, "admin-001")
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	active, err := svc.List(ctx, &dto.DocumentTemplateListRequest{})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(ctx, &dto.DocumentTemplateListRequest{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
