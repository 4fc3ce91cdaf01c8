package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestEmployeeService() (EmployeeService, FunctionService, *mockRepos) {
	repo, mocks := newMockRepos()
	return NewEmployeeService(repo, time.UTC, zap.NewNop()),
		NewFunctionService(repo, nil, fixedClock, zap.NewNop()),
		mocks
}

// ── Create 测试 ──

func TestEmployeeService_Create_Success(t *testing.T) {
	svc, fnSvc, mocks := setupTestEmployeeService()
	fnID := seedFunction(t, fnSvc, mocks, "Motorista")

	result, err := svc.Create(context.Background(), &dto.CreateEmployeeRequest{
		Name:          "Carlos Lima",
		Registration:  "0042",
		FunctionID:    &fnID,
		AdmissionDate: strPtr("2022-05-02"),
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Function == nil || result.Function.Name != "Motorista" {
		t.Error("期望返回职能信息")
	}
	if result.AdmissionDate != "2022-05-02" {
		t.Errorf("期望AdmissionDate=2022-05-02，实际=%s", result.AdmissionDate)
	}
}

func TestEmployeeService_Create_RegistrationExists(t *testing.T) {
	svc, _, mocks := setupTestEmployeeService()
	mocks.employee.employees["emp-1"] = model.Employee{EmployeeID: "emp-1", Name: "A", Registration: "0042", IsActive: true}

	_, err := svc.Create(context.Background(), &dto.CreateEmployeeRequest{Name: "B", Registration: "0042"}, "admin-001")
	if !errors.Is(err, ErrEmployeeRegistrationExists) {
		t.Errorf("期望 ErrEmployeeRegistrationExists，实际: %v", err)
	}
}

func TestEmployeeService_Create_InactiveFunction(t *testing.T) {
	svc, fnSvc, mocks := setupTestEmployeeService()
	fnID := seedFunction(t, fnSvc, mocks, "Motorista")
	if _, err := fnSvc.SetActive(context.Background(), fnID, false, "admin-001"); err != nil {
		t.Fatalf("SetActive 失败: %v", err)
	}

	_, err := svc.Create(context.Background(), &dto.CreateEmployeeRequest{Name: "B", Registration: "1", FunctionID: &fnID}, "admin-001")
	if !errors.Is(err, ErrFunctionInactive) {
		t.Errorf("期望 ErrFunctionInactive，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestEmployeeService_Update_ClearFunction(t *testing.T) {
	svc, fnSvc, mocks := setupTestEmployeeService()
	fnID := seedFunction(t, fnSvc, mocks, "Motorista")
	created, _ := svc.Create(context.Background(), &dto.CreateEmployeeRequest{Name: "C", Registration: "2", FunctionID: &fnID}, "admin-001")

	result, err := svc.Update(context.Background(), created.ID, &dto.UpdateEmployeeRequest{ClearFunction: true}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Function != nil {
		t.Error("期望已清除职能")
	}
}

// ── List 测试 ──

func TestEmployeeService_List_Pagination(t *testing.T) {
	svc, _, mocks := setupTestEmployeeService()
	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		mocks.employee.employees[name] = model.Employee{EmployeeID: name, Name: name, Registration: name, IsActive: true}
	}

	list, total, err := svc.List(context.Background(), &dto.EmployeeListRequest{
		PaginationRequest: dto.PaginationRequest{Page: 2, PageSize: 2},
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 3 {
		t.Errorf("期望total=3，实际=%d", total)
	}
	if len(list) != 1 || list[0].Name != "Carla" {
		t.Errorf("第二页应只有 Carla，实际 %+v", list)
	}
}

// ── Delete 测试 ──

func TestEmployeeService_Delete_CascadesRecords(t *testing.T) {
	svc, _, mocks := setupTestEmployeeService()
	mocks.employee.employees["emp-1"] = model.Employee{EmployeeID: "emp-1", Name: "A", Registration: "1", IsActive: true}
	mocks.record.records["rec-1"] = model.ComplianceRecord{RecordID: "rec-1", EmployeeID: "emp-1", Kind: model.RecordKindExam}
	mocks.record.records["rec-2"] = model.ComplianceRecord{RecordID: "rec-2", EmployeeID: "emp-2", Kind: model.RecordKindExam}

	if err := svc.Delete(context.Background(), "emp-1", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, ok := mocks.record.records["rec-1"]; ok {
		t.Error("员工的合规记录应一并删除")
	}
	if _, ok := mocks.record.records["rec-2"]; !ok {
		t.Error("其他员工的记录不应受影响")
	}
	if err := svc.Delete(context.Background(), "emp-1", "admin-001"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}
