package model

import (
	"time"

	"gorm.io/gorm"
)

// Employee 员工 — 对应 employees
type Employee struct {
	EmployeeID     string     `gorm:"type:uuid;primaryKey"       json:"employee_id"`
	Name           string     `gorm:"type:varchar(150);not null" json:"name"`
	Registration   string     `gorm:"type:varchar(30);not null"  json:"registration"`              // 工号（matrícula）
	DocumentNumber string     `gorm:"type:varchar(20)"           json:"document_number,omitempty"` // CPF
	FunctionID     *string    `gorm:"type:uuid"                  json:"function_id,omitempty"`
	AdmissionDate  *time.Time `gorm:"type:date"                  json:"admission_date,omitempty"`
	IsActive       bool       `gorm:"not null;default:true"      json:"is_active"`
	VersionedModel

	// 关联
	Function *Function `gorm:"foreignKey:FunctionID;references:FunctionID" json:"function,omitempty"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

func (e *Employee) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EmployeeID)
	return nil
}
