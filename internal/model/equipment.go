package model

import "gorm.io/gorm"

// EquipmentItem 个人防护装备（EPI）— 对应 equipment_items
type EquipmentItem struct {
	EquipmentItemID     string `gorm:"type:uuid;primaryKey"        json:"equipment_item_id"`
	Name                string `gorm:"type:varchar(150);not null"  json:"name"`
	CertificationNumber string `gorm:"type:varchar(50)"            json:"certification_number,omitempty"` // CA 证书号
	ShelfLifeMonths     *int   `json:"shelf_life_months,omitempty"`                                       // 有效期（月），空表示不过期
	IsMandatory         bool   `gorm:"not null;default:false"      json:"is_mandatory"`
	IsActive            bool   `gorm:"not null;default:true"       json:"is_active"`
	VersionedModel
}

func (EquipmentItem) TableName() string { return "equipment_items" }

func (e *EquipmentItem) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EquipmentItemID)
	return nil
}

// UniformItem 工服 — 对应 uniform_items（无有效期）
type UniformItem struct {
	UniformItemID string `gorm:"type:uuid;primaryKey"        json:"uniform_item_id"`
	Description   string `gorm:"type:varchar(200);not null"  json:"description"`
	Category      string `gorm:"type:varchar(50)"            json:"category,omitempty"`
	IsActive      bool   `gorm:"not null;default:true"       json:"is_active"`
	VersionedModel
}

func (UniformItem) TableName() string { return "uniform_items" }

func (u *UniformItem) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.UniformItemID)
	return nil
}
