package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestSectorService() (SectorService, *mockRepos) {
	repo, mocks := newMockRepos()
	return NewSectorService(repo, nil, zap.NewNop()), mocks
}

// ── Create 测试 ──

func TestSectorService_Create_Success(t *testing.T) {
	svc, _ := setupTestSectorService()

	result, err := svc.Create(context.Background(), &dto.CreateSectorRequest{
		Name:        "Logística",
		Description: "Frota e armazém",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "Logística" {
		t.Errorf("期望Name=Logística，实际=%s", result.Name)
	}
	if !result.IsActive {
		t.Error("期望默认IsActive=true")
	}
}

func TestSectorService_Create_NameExists(t *testing.T) {
	svc, mocks := setupTestSectorService()
	seedSector(mocks, "sector-1", "Logística", true)

	_, err := svc.Create(context.Background(), &dto.CreateSectorRequest{Name: "Logística"}, "admin-001")
	if !errors.Is(err, ErrSectorNameExists) {
		t.Errorf("期望 ErrSectorNameExists，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestSectorService_Update_NameConflict(t *testing.T) {
	svc, mocks := setupTestSectorService()
	seedSector(mocks, "sector-1", "Logística", true)
	seedSector(mocks, "sector-2", "Produção", true)

	name := "Produção"
	_, err := svc.Update(context.Background(), "sector-1", &dto.UpdateSectorRequest{Name: &name}, "admin-001")
	if !errors.Is(err, ErrSectorNameExists) {
		t.Errorf("期望 ErrSectorNameExists，实际: %v", err)
	}
}

func TestSectorService_SetActive(t *testing.T) {
	svc, mocks := setupTestSectorService()
	seedSector(mocks, "sector-1", "Logística", true)

	result, err := svc.SetActive(context.Background(), "sector-1", false, "admin-001")
	if err != nil {
		t.Fatalf("SetActive 应成功: %v", err)
	}
	if result.IsActive {
		t.Error("期望IsActive=false")
	}

	list, _ := svc.List(context.Background(), &dto.SectorListRequest{})
	if len(list) != 0 {
		t.Errorf("默认列表不应包含停用部门，实际 %d", len(list))
	}
	list, _ = svc.List(context.Background(), &dto.SectorListRequest{IncludeInactive: true})
	if len(list) != 1 {
		t.Errorf("include_inactive 应包含停用部门，实际 %d", len(list))
	}
}

// ── Delete 测试 ──

func TestSectorService_Delete_InUse(t *testing.T) {
	svc, mocks := setupTestSectorService()
	seedSector(mocks, "sector-ops", "Operações", true)
	_ = mocks.function.Create(context.Background(), &model.Function{SectorID: "sector-ops", Name: "Motorista", IsActive: true})

	err := svc.Delete(context.Background(), "sector-ops", "admin-001")
	if !errors.Is(err, ErrSectorInUse) {
		t.Errorf("期望 ErrSectorInUse，实际: %v", err)
	}
}

func TestSectorService_Delete_Success(t *testing.T) {
	svc, mocks := setupTestSectorService()
	seedSector(mocks, "sector-1", "Vazio", true)

	if err := svc.Delete(context.Background(), "sector-1", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "sector-1"); !errors.Is(err, ErrSectorNotFound) {
		t.Errorf("期望 ErrSectorNotFound，实际: %v", err)
	}
}
