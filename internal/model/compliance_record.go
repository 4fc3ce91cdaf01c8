package model

import (
	"time"

	"gorm.io/gorm"
)

// RecordKind 合规记录类型
type RecordKind string

const (
	RecordKindExam      RecordKind = "exam"
	RecordKindEquipment RecordKind = "equipment"
	RecordKindDocument  RecordKind = "document"
)

// ComplianceRecord 员工合规台账 — 对应 compliance_records
// 状态（status）不落库，每次读取时按当前时间重新计算。
type ComplianceRecord struct {
	RecordID      string        `gorm:"type:uuid;primaryKey"       json:"record_id"`
	EmployeeID    string        `gorm:"type:uuid;not null;index"   json:"employee_id"`
	Kind          RecordKind    `gorm:"type:varchar(20);not null"  json:"kind"`
	CatalogID     string        `gorm:"type:uuid;not null"         json:"catalog_id"` // exam / equipment_item / document_template
	TriggerEvent  *TriggerEvent `gorm:"type:varchar(20)"           json:"trigger_event,omitempty"`
	PerformedAt   time.Time     `gorm:"type:date;not null"         json:"performed_at"`
	ExpiresAt     *time.Time    `gorm:"type:date"                  json:"expires_at,omitempty"`
	ProviderID    string        `gorm:"type:varchar(64)"           json:"provider_id,omitempty"`
	Result        string        `gorm:"type:varchar(100)"          json:"result,omitempty"`
	Observations  string        `gorm:"type:text"                  json:"observations,omitempty"`
	AttachmentKey string        `gorm:"type:varchar(500)"          json:"attachment_key,omitempty"`
	Content       string        `gorm:"type:text"                  json:"content,omitempty"`
	SoftDeleteModel
}

func (ComplianceRecord) TableName() string { return "compliance_records" }

func (r *ComplianceRecord) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.RecordID)
	return nil
}
