package model

import "gorm.io/gorm"

// Sector 部门/作业区 — 对应 sectors
type Sector struct {
	SectorID    string `gorm:"type:uuid;primaryKey"          json:"sector_id"`
	Name        string `gorm:"type:varchar(100);not null"    json:"name"`
	Description string `gorm:"type:text"                     json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"         json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Sector) TableName() string { return "sectors" }

// BeforeCreate 生成主键
func (s *Sector) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.SectorID)
	return nil
}
