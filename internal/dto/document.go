package dto

// ── 文书模板模块 DTO ──

// CreateDocumentTemplateRequest 创建文书模板请求
type CreateDocumentTemplateRequest struct {
	Name           string `json:"name"            binding:"required,min=2,max=150"`
	Body           string `json:"body"            binding:"required"`
	ValidityMonths *int   `json:"validity_months"`
}

// UpdateDocumentTemplateRequest 更新文书模板请求
type UpdateDocumentTemplateRequest struct {
	Name           *string `json:"name"            binding:"omitempty,min=2,max=150"`
	Body           *string `json:"body"`
	ValidityMonths *int    `json:"validity_months"`
	ClearValidity  bool    `json:"clear_validity"`
	IsActive       *bool   `json:"is_active"`
}

// DocumentTemplateListRequest 文书模板列表查询参数
type DocumentTemplateListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// DocumentTemplateResponse 文书模板响应
type DocumentTemplateResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Body           string `json:"body"`
	ValidityMonths *int   `json:"validity_months,omitempty"`
	IsActive       bool   `json:"is_active"`
	UpdatedAt      string `json:"updated_at"`
}

// PreviewDocumentRequest 预览渲染请求
type PreviewDocumentRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
}

// PreviewDocumentResponse 预览渲染结果
type PreviewDocumentResponse struct {
	Content string `json:"content"`
}
