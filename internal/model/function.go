package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Function 岗位/职能 — 对应 functions
// 需求绑定以三张关联表保存，写操作整体替换。
type Function struct {
	FunctionID  string                      `gorm:"type:uuid;primaryKey"       json:"function_id"`
	Name        string                      `gorm:"type:varchar(150);not null" json:"name"`
	Description string                      `gorm:"type:text"                  json:"description,omitempty"`
	SectorID    string                      `gorm:"type:uuid;not null"         json:"sector_id"`
	Duties      datatypes.JSONSlice[string] `json:"duties"`
	IsActive    bool                        `gorm:"not null;default:true"      json:"is_active"`
	VersionedModel

	// 关联
	Sector    *Sector             `gorm:"foreignKey:SectorID;references:SectorID"     json:"sector,omitempty"`
	Equipment []FunctionEquipment `gorm:"foreignKey:FunctionID;references:FunctionID" json:"equipment,omitempty"`
	Uniforms  []FunctionUniform   `gorm:"foreignKey:FunctionID;references:FunctionID" json:"uniforms,omitempty"`
	Exams     []FunctionExam      `gorm:"foreignKey:FunctionID;references:FunctionID" json:"exams,omitempty"`
}

func (Function) TableName() string { return "functions" }

func (f *Function) BeforeCreate(_ *gorm.DB) error {
	ensureID(&f.FunctionID)
	return nil
}

// FunctionEquipment 职能 ↔ EPI — 对应 function_equipment
type FunctionEquipment struct {
	FunctionID      string `gorm:"type:uuid;primaryKey" json:"function_id"`
	EquipmentItemID string `gorm:"type:uuid;primaryKey" json:"equipment_item_id"`

	EquipmentItem *EquipmentItem `gorm:"foreignKey:EquipmentItemID;references:EquipmentItemID" json:"equipment_item,omitempty"`
}

func (FunctionEquipment) TableName() string { return "function_equipment" }

// FunctionUniform 职能 ↔ 工服 — 对应 function_uniforms
type FunctionUniform struct {
	FunctionID    string `gorm:"type:uuid;primaryKey" json:"function_id"`
	UniformItemID string `gorm:"type:uuid;primaryKey" json:"uniform_item_id"`

	UniformItem *UniformItem `gorm:"foreignKey:UniformItemID;references:UniformItemID" json:"uniform_item,omitempty"`
}

func (FunctionUniform) TableName() string { return "function_uniforms" }

// FunctionExam 职能 ↔ 体检（按触发事件分桶）— 对应 function_exams
type FunctionExam struct {
	FunctionID   string       `gorm:"type:uuid;primaryKey"        json:"function_id"`
	TriggerEvent TriggerEvent `gorm:"type:varchar(20);primaryKey" json:"trigger_event"`
	ExamID       string       `gorm:"type:uuid;primaryKey"        json:"exam_id"`

	Exam *Exam `gorm:"foreignKey:ExamID;references:ExamID" json:"exam,omitempty"`
}

func (FunctionExam) TableName() string { return "function_exams" }
