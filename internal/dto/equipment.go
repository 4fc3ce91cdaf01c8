package dto

// ── EPI / 工服模块 DTO ──

// CreateEquipmentRequest 登记 EPI 请求
type CreateEquipmentRequest struct {
	Name                string `json:"name"                 binding:"required,min=2,max=150"`
	CertificationNumber string `json:"certification_number" binding:"omitempty,max=50"`
	ShelfLifeMonths     *int   `json:"shelf_life_months"`
	IsMandatory         bool   `json:"is_mandatory"`
}

// UpdateEquipmentRequest 更新 EPI 请求（补丁语义）
type UpdateEquipmentRequest struct {
	Name                *string `json:"name"                 binding:"omitempty,min=2,max=150"`
	CertificationNumber *string `json:"certification_number" binding:"omitempty,max=50"`
	ShelfLifeMonths     *int    `json:"shelf_life_months"`
	ClearShelfLife      bool    `json:"clear_shelf_life"`
	IsMandatory         *bool   `json:"is_mandatory"`
	IsActive            *bool   `json:"is_active"`
}

// EquipmentListRequest EPI 列表查询参数
type EquipmentListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
	MandatoryOnly   bool `form:"mandatory_only"`
}

// EquipmentResponse EPI 响应
type EquipmentResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	CertificationNumber string `json:"certification_number,omitempty"`
	ShelfLifeMonths     *int   `json:"shelf_life_months,omitempty"`
	IsMandatory         bool   `json:"is_mandatory"`
	IsActive            bool   `json:"is_active"`
	// ValidUntilIfIssuedToday 今日发放时的到期日预览（无有效期时为空）
	ValidUntilIfIssuedToday *string `json:"valid_until_if_issued_today,omitempty"`
}

// CreateUniformRequest 登记工服请求
type CreateUniformRequest struct {
	Description string `json:"description" binding:"required,min=2,max=200"`
	Category    string `json:"category"    binding:"omitempty,max=50"`
}

// UpdateUniformRequest 更新工服请求
type UpdateUniformRequest struct {
	Description *string `json:"description" binding:"omitempty,min=2,max=200"`
	Category    *string `json:"category"    binding:"omitempty,max=50"`
	IsActive    *bool   `json:"is_active"`
}

// UniformResponse 工服响应
type UniformResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// IsMandatoryResponse EPI 是否必配
type IsMandatoryResponse struct {
	ID          string `json:"id"`
	IsMandatory bool   `json:"is_mandatory"`
}
