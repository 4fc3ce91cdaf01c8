package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"conser-control/backend/internal/dto"
)

func TestSettingService_DefaultWhenUninitialized(t *testing.T) {
	repo, _ := newMockRepos()
	svc := NewSettingService(repo, 0, zap.NewNop())

	if got := svc.WarningWindowDays(context.Background()); got != DefaultWarningWindowDays {
		t.Errorf("期望默认 30 天，实际 %d", got)
	}
	result, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if result.WarningWindowDays != 30 {
		t.Errorf("期望WarningWindowDays=30，实际=%d", result.WarningWindowDays)
	}
}

func TestSettingService_ConfigDefault(t *testing.T) {
	repo, _ := newMockRepos()
	svc := NewSettingService(repo, 45, zap.NewNop())

	if got := svc.WarningWindowDays(context.Background()); got != 45 {
		t.Errorf("期望配置默认 45 天，实际 %d", got)
	}
}

func TestSettingService_Update(t *testing.T) {
	repo, mocks := newMockRepos()
	svc := NewSettingService(repo, 30, zap.NewNop())

	days := 15
	result, err := svc.Update(context.Background(), &dto.UpdateComplianceSettingRequest{WarningWindowDays: &days}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.WarningWindowDays != 15 {
		t.Errorf("期望WarningWindowDays=15，实际=%d", result.WarningWindowDays)
	}
	if mocks.setting.setting == nil {
		t.Fatal("未初始化时 Update 应插入参数行")
	}
	if got := svc.WarningWindowDays(context.Background()); got != 15 {
		t.Errorf("期望 15 天，实际 %d", got)
	}
}
