package dto

// ── 合规参数模块 DTO ──

// UpdateComplianceSettingRequest 更新合规参数请求
type UpdateComplianceSettingRequest struct {
	WarningWindowDays *int `json:"warning_window_days" binding:"omitempty,min=1,max=365"`
}

// ComplianceSettingResponse 合规参数响应
type ComplianceSettingResponse struct {
	WarningWindowDays int    `json:"warning_window_days"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}
