package dto

import "conser-control/backend/internal/model"

// ── 职能需求绑定模块 DTO ──

// CreateFunctionRequest 创建职能请求
type CreateFunctionRequest struct {
	SectorID    string   `json:"sector_id"   binding:"required"`
	Name        string   `json:"name"        binding:"required,min=2,max=150"`
	Description string   `json:"description" binding:"omitempty,max=2000"`
	Duties      []string `json:"duties"      binding:"omitempty,dive,min=1,max=500"`
}

// UpdateFunctionRequest 更新职能基础信息请求（不涉及需求绑定）
type UpdateFunctionRequest struct {
	SectorID    *string   `json:"sector_id"`
	Name        *string   `json:"name"        binding:"omitempty,min=2,max=150"`
	Description *string   `json:"description" binding:"omitempty,max=2000"`
	Duties      *[]string `json:"duties"`
	IsActive    *bool     `json:"is_active"`
}

// FunctionListRequest 职能列表查询参数
type FunctionListRequest struct {
	SectorID        string `form:"sector_id"`
	IncludeInactive bool   `form:"include_inactive"`
}

// SetEquipmentRequest 整体替换职能 EPI 需求
type SetEquipmentRequest struct {
	EquipmentIDs []string `json:"equipment_ids"`
}

// SetUniformsRequest 整体替换职能工服需求
type SetUniformsRequest struct {
	UniformIDs []string `json:"uniform_ids"`
}

// SetExamsRequest 整体替换某一触发事件下的体检需求
type SetExamsRequest struct {
	ExamIDs []string `json:"exam_ids"`
}

// FunctionResponse 职能响应
type FunctionResponse struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description,omitempty"`
	Sector            *SectorBrief `json:"sector,omitempty"`
	Duties            []string     `json:"duties"`
	IsActive          bool         `json:"is_active"`
	Version           int          `json:"version"`
	EquipmentCount    int          `json:"equipment_count"`
	UniformCount      int          `json:"uniform_count"`
	DistinctExamCount int          `json:"distinct_exam_count"`
	CreatedAt         string       `json:"created_at"`
	UpdatedAt         string       `json:"updated_at"`
}

// FunctionBrief 职能简要信息
type FunctionBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RequirementsSummaryResponse 职能完整需求（已解引用的目录对象）
type RequirementsSummaryResponse struct {
	FunctionID        string                                `json:"function_id"`
	FunctionName      string                                `json:"function_name"`
	Sector            *SectorBrief                          `json:"sector,omitempty"`
	Duties            []string                              `json:"duties"`
	Equipment         []EquipmentResponse                   `json:"equipment"`
	Uniforms          []UniformResponse                     `json:"uniforms"`
	ExamsByTrigger    map[model.TriggerEvent][]ExamResponse `json:"exams_by_trigger"`
	DistinctExamCount int                                   `json:"distinct_exam_count"`
}

// DistinctExamCountResponse 去重后的体检数量
type DistinctExamCountResponse struct {
	FunctionID        string `json:"function_id"`
	DistinctExamCount int    `json:"distinct_exam_count"`
}
