package model

import "gorm.io/gorm"

// DocumentTemplate 职业安全文书模板 — 对应 document_templates
type DocumentTemplate struct {
	DocumentTemplateID string `gorm:"type:uuid;primaryKey"       json:"document_template_id"`
	Name               string `gorm:"type:varchar(150);not null" json:"name"`
	Body               string `gorm:"type:text;not null"         json:"body"`
	ValidityMonths     *int   `json:"validity_months,omitempty"`
	IsActive           bool   `gorm:"not null;default:true"      json:"is_active"`
	VersionedModel
}

func (DocumentTemplate) TableName() string { return "document_templates" }

func (d *DocumentTemplate) BeforeCreate(_ *gorm.DB) error {
	ensureID(&d.DocumentTemplateID)
	return nil
}
