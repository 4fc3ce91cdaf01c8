package dto

import (
	"github.com/shopspring/decimal"

	"conser-control/backend/internal/model"
)

// ── 体检项目模块 DTO ──

// ExamPriceItem 单个体检机构报价
type ExamPriceItem struct {
	ProviderID string          `json:"provider_id" binding:"required,max=64"`
	Amount     decimal.Decimal `json:"amount"`
}

// CreateExamRequest 登记体检项目请求
// trigger_events 的合法性由 Service 层校验（返回 ValidationError）
type CreateExamRequest struct {
	Name                  string               `json:"name"                    binding:"required,min=2,max=150"`
	TriggerEvents         []model.TriggerEvent `json:"trigger_events"`
	RenewalIntervalMonths *int                 `json:"renewal_interval_months"`
	Preparation           string               `json:"preparation"             binding:"omitempty,max=2000"`
	Prices                []ExamPriceItem      `json:"prices"                  binding:"omitempty,dive"`
}

// UpdateExamRequest 更新体检项目请求（补丁语义，nil 字段不修改）
type UpdateExamRequest struct {
	Name                  *string               `json:"name"                    binding:"omitempty,min=2,max=150"`
	TriggerEvents         *[]model.TriggerEvent `json:"trigger_events"`
	RenewalIntervalMonths *int                  `json:"renewal_interval_months"`
	ClearRenewalInterval  bool                  `json:"clear_renewal_interval"`
	Preparation           *string               `json:"preparation"             binding:"omitempty,max=2000"`
	Prices                *[]ExamPriceItem      `json:"prices"`
	IsActive              *bool                 `json:"is_active"`
}

// ExamListRequest 体检项目列表查询参数
type ExamListRequest struct {
	IncludeInactive bool   `form:"include_inactive"`
	TriggerEvent    string `form:"trigger_event"`
}

// ExamResponse 体检项目响应
type ExamResponse struct {
	ID                    string               `json:"id"`
	Name                  string               `json:"name"`
	TriggerEvents         []model.TriggerEvent `json:"trigger_events"`
	RenewalIntervalMonths *int                 `json:"renewal_interval_months,omitempty"`
	ExpiryPolicy          model.ExpiryPolicy   `json:"expiry_policy"`
	Preparation           string               `json:"preparation,omitempty"`
	Prices                []ExamPriceItem      `json:"prices"`
	IsActive              bool                 `json:"is_active"`
	CreatedAt             string               `json:"created_at"`
	UpdatedAt             string               `json:"updated_at"`
}

// ExamPriceResponse 指定机构报价
type ExamPriceResponse struct {
	ExamID     string          `json:"exam_id"`
	ProviderID string          `json:"provider_id"`
	Amount     decimal.Decimal `json:"amount"`
}
