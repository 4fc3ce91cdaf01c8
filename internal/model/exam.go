package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Exam 职业健康体检项目 — 对应 exams
type Exam struct {
	ExamID                string          `gorm:"type:uuid;primaryKey"       json:"exam_id"`
	Name                  string          `gorm:"type:varchar(150);not null" json:"name"`
	TriggerEvents         TriggerEventSet `gorm:"not null"                   json:"trigger_events"`
	RenewalIntervalMonths *int            `json:"renewal_interval_months,omitempty"`
	Preparation           string          `gorm:"type:text"                  json:"preparation,omitempty"`
	IsActive              bool            `gorm:"not null;default:true"      json:"is_active"`
	VersionedModel

	// 关联
	Prices []ExamPrice `gorm:"foreignKey:ExamID;references:ExamID" json:"prices,omitempty"`
}

func (Exam) TableName() string { return "exams" }

func (e *Exam) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.ExamID)
	return nil
}

// ExpiryPolicy 体检结果的有效期策略
type ExpiryPolicy string

const (
	// ExpiryRenewable 定期体检：到期日 = 执行日 + 复检间隔
	ExpiryRenewable ExpiryPolicy = "renewable"
	// ExpirySingleOccurrence 单次体检（如入职、离职）：结果永不过期
	ExpirySingleOccurrence ExpiryPolicy = "single_occurrence"
)

// ExpiryPolicy 返回该体检的有效期策略。
// 仅当触发事件包含 Periodic 且配置了正数复检间隔时才会过期；
// 非定期体检即使填写了间隔也按单次处理。
func (e *Exam) ExpiryPolicy() ExpiryPolicy {
	if ContainsTrigger(e.TriggerEvents, TriggerPeriodic) &&
		e.RenewalIntervalMonths != nil && *e.RenewalIntervalMonths > 0 {
		return ExpiryRenewable
	}
	return ExpirySingleOccurrence
}

// ExamPrice 体检机构报价 — 对应 exam_prices
type ExamPrice struct {
	ExamID     string          `gorm:"type:uuid;primaryKey"           json:"exam_id"`
	ProviderID string          `gorm:"type:varchar(64);primaryKey"    json:"provider_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null"    json:"amount"`
}

func (ExamPrice) TableName() string { return "exam_prices" }
