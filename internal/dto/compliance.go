package dto

import "conser-control/backend/internal/model"

// ── 合规台账模块 DTO ──

// RecordExamRequest 登记体检执行记录
type RecordExamRequest struct {
	ExamID        string             `json:"exam_id"        binding:"required"`
	TriggerEvent  model.TriggerEvent `json:"trigger_event"  binding:"required"`
	PerformedDate string             `json:"performed_date" binding:"required,datetime=2006-01-02"`
	ProviderID    string             `json:"provider_id"    binding:"omitempty,max=64"`
	Result        string             `json:"result"         binding:"omitempty,max=100"`
	Observations  string             `json:"observations"   binding:"omitempty,max=2000"`
}

// RecordEquipmentRequest 登记 EPI 发放记录
type RecordEquipmentRequest struct {
	EquipmentID string `json:"equipment_id" binding:"required"`
	IssuedDate  string `json:"issued_date"  binding:"required,datetime=2006-01-02"`
}

// RecordDocumentRequest 生成并归档文书
type RecordDocumentRequest struct {
	TemplateID    string `json:"template_id"    binding:"required"`
	GeneratedDate string `json:"generated_date" binding:"omitempty,datetime=2006-01-02"`
}

// AttachFileRequest 关联附件（对象存储 key，不透明）
type AttachFileRequest struct {
	AttachmentKey string `json:"attachment_key" binding:"required,max=500"`
}

// PendingRequest 待办合规项查询参数
// function_id 为空时使用员工当前职能
type PendingRequest struct {
	FunctionID    string   `form:"function_id"`
	TriggerEvents []string `form:"trigger_event"`
}

// ComplianceRecordResponse 合规记录响应（status 实时计算）
type ComplianceRecordResponse struct {
	ID            string              `json:"id"`
	EmployeeID    string              `json:"employee_id"`
	Kind          model.RecordKind    `json:"kind"`
	CatalogID     string              `json:"catalog_id"`
	CatalogName   string              `json:"catalog_name,omitempty"`
	TriggerEvent  *model.TriggerEvent `json:"trigger_event,omitempty"`
	PerformedAt   string              `json:"performed_at"`
	ExpiresAt     *string             `json:"expires_at,omitempty"`
	ProviderID    string              `json:"provider_id,omitempty"`
	Result        string              `json:"result,omitempty"`
	Observations  string              `json:"observations,omitempty"`
	AttachmentKey string              `json:"attachment_key,omitempty"`
	Content       string              `json:"content,omitempty"`
	Status        string              `json:"status"`
}

// PendingItemResponse 待办合规项
type PendingItemResponse struct {
	Kind            model.RecordKind `json:"kind"`
	CatalogID       string           `json:"catalog_id"`
	Name            string           `json:"name"`
	Urgency         string           `json:"urgency"` // Missing | Expired | ExpiringSoon
	IsMandatory     bool             `json:"is_mandatory,omitempty"`
	LastPerformedAt *string          `json:"last_performed_at,omitempty"`
	ExpiresAt       *string          `json:"expires_at,omitempty"`
}

// AttachmentURLResponse 附件临时下载链接
type AttachmentURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // 秒
}
