package model

// ComplianceSetting 合规参数表 — 对应 compliance_settings（单行强类型）
type ComplianceSetting struct {
	Singleton         bool `gorm:"primaryKey;default:true" json:"-"`
	WarningWindowDays int  `gorm:"not null;default:30"     json:"warning_window_days"`
	BaseModel
}

// TableName 指定表名
func (ComplianceSetting) TableName() string { return "compliance_settings" }
