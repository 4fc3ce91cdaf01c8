package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"conser-control/backend/internal/dto"
)

func setupTestEquipmentService() (EquipmentService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewEquipmentService(repo, nil, fixedClock, zap.NewNop())
	return svc, mocks
}

func TestEquipmentService_RegisterEquipment_ValidUntilPreview(t *testing.T) {
	svc, _ := setupTestEquipmentService()

	result, err := svc.RegisterEquipment(context.Background(), &dto.CreateEquipmentRequest{
		Name:            "Protetor auricular",
		ShelfLifeMonths: intPtr(6),
		IsMandatory:     true,
	}, "admin-001")
	if err != nil {
		t.Fatalf("RegisterEquipment 应成功: %v", err)
	}
	if result.ValidUntilIfIssuedToday == nil || *result.ValidUntilIfIssuedToday != "2024-09-01" {
		t.Errorf("期望今日发放到期日 2024-09-01，实际=%v", result.ValidUntilIfIssuedToday)
	}
}

func TestEquipmentService_RegisterEquipment_InvalidShelfLife(t *testing.T) {
	svc, mocks := setupTestEquipmentService()

	_, err := svc.RegisterEquipment(context.Background(), &dto.CreateEquipmentRequest{
		Name:            "Luva",
		ShelfLifeMonths: intPtr(0),
	}, "admin-001")
	if !errors.Is(err, ErrInvalidShelfLife) {
		t.Errorf("期望 ErrInvalidShelfLife，实际: %v", err)
	}
	if len(mocks.equipment.items) != 0 {
		t.Error("校验失败时不应写入")
	}
}

func TestEquipmentService_SetActive_FindVariants(t *testing.T) {
	svc, _ := setupTestEquipmentService()
	ctx := context.Background()

	created, err := svc.RegisterEquipment(ctx, &dto.CreateEquipmentRequest{Name: "Capacete", IsMandatory: true}, "admin-001")
	if err != nil {
		t.Fatalf("RegisterEquipment 失败: %v", err)
	}
	if created.ValidUntilIfIssuedToday != nil {
		t.Error("无有效期的 EPI 不应有到期预览")
	}

	if _, err := svc.SetEquipmentActive(ctx, created.ID, false, "admin-001"); err != nil {
		t.Fatalf("SetEquipmentActive 失败: %v", err)
	}

	if _, err := svc.FindEquipmentByID(ctx, created.ID); !errors.Is(err, ErrEquipmentInactive) {
		t.Errorf("停用后 FindEquipmentByID 期望 ErrEquipmentInactive，实际: %v", err)
	}
	got, err := svc.FindEquipmentByIDIncludingInactive(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindEquipmentByIDIncludingInactive 应成功: %v", err)
	}
	if got.IsActive {
		t.Error("期望 IsActive=false")
	}

	mandatory, err := svc.IsMandatory(ctx, created.ID)
	if err != nil {
		t.Fatalf("IsMandatory 失败: %v", err)
	}
	if !mandatory.IsMandatory {
		t.Error("期望 IsMandatory=true")
	}

	list, err := svc.ListEquipment(ctx, &dto.EquipmentListRequest{})
	if err != nil {
		t.Fatalf("ListEquipment 失败: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("默认列表不含停用项，实际 %d 条", len(list))
	}
}

func TestEquipmentService_UpdateEquipment_NotFound(t *testing.T) {
	svc, _ := setupTestEquipmentService()

	_, err := svc.UpdateEquipment(context.Background(), "missing", &dto.UpdateEquipmentRequest{}, "admin-001")
	if !errors.Is(err, ErrEquipmentNotFound) {
		t.Errorf("期望 ErrEquipmentNotFound，实际: %v", err)
	}
}

func TestEquipmentService_Uniforms(t *testing.T) {
	svc, _ := setupTestEquipmentService()
	ctx := context.Background()

	u, err := svc.RegisterUniform(ctx, &dto.CreateUniformRequest{Description: "Camisa manga longa", Category: "camisa"}, "admin-001")
	if err != nil {
		t.Fatalf("RegisterUniform 失败: %v", err)
	}
	if _, err := svc.SetUniformActive(ctx, u.ID, false, "admin-001"); err != nil {
		t.Fatalf("SetUniformActive 失败: %v", err)
	}
	if _, err := svc.FindUniformByID(ctx, u.ID); !errors.Is(err, ErrUniformInactive) {
		t.Errorf("期望 ErrUniformInactive，实际: %v", err)
	}
	all, err := svc.ListUniforms(ctx, true)
	if err != nil {
		t.Fatalf("ListUniforms 失败: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("include_inactive 时期望 1 条，实际 %d", len(all))
	}
}
