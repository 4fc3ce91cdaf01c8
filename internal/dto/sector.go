package dto

// ── 部门/作业区模块 DTO ──

// CreateSectorRequest 创建部门请求
type CreateSectorRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// UpdateSectorRequest 更新部门请求
type UpdateSectorRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

// SectorListRequest 部门列表查询参数
type SectorListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// SectorResponse 部门详细信息响应
type SectorResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
	FunctionCount int64  `json:"function_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// SectorBrief 部门简要信息
type SectorBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
