package dto

// ── 员工模块 DTO ──

// CreateEmployeeRequest 登记员工请求
type CreateEmployeeRequest struct {
	Name           string  `json:"name"            binding:"required,min=2,max=150"`
	Registration   string  `json:"registration"    binding:"required,max=30"`
	DocumentNumber string  `json:"document_number" binding:"omitempty,max=20"`
	FunctionID     *string `json:"function_id"`
	AdmissionDate  *string `json:"admission_date"  binding:"omitempty,datetime=2006-01-02"`
}

// UpdateEmployeeRequest 更新员工请求
type UpdateEmployeeRequest struct {
	Name           *string `json:"name"            binding:"omitempty,min=2,max=150"`
	DocumentNumber *string `json:"document_number" binding:"omitempty,max=20"`
	FunctionID     *string `json:"function_id"`
	ClearFunction  bool    `json:"clear_function"`
	AdmissionDate  *string `json:"admission_date"  binding:"omitempty,datetime=2006-01-02"`
	IsActive       *bool   `json:"is_active"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	FunctionID      string `form:"function_id"`
	Keyword         string `form:"keyword"          binding:"omitempty,max=50"`
	IncludeInactive bool   `form:"include_inactive"`
}

// EmployeeResponse 员工响应
type EmployeeResponse struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Registration   string         `json:"registration"`
	DocumentNumber string         `json:"document_number,omitempty"`
	Function       *FunctionBrief `json:"function,omitempty"`
	AdmissionDate  string         `json:"admission_date,omitempty"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      string         `json:"created_at"`
}
