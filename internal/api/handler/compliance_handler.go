package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/response"
)

// ComplianceHandler 合规台账 HTTP 处理器
type ComplianceHandler struct {
	complianceSvc service.ComplianceService
}

// NewComplianceHandler 创建 ComplianceHandler
func NewComplianceHandler(complianceSvc service.ComplianceService) *ComplianceHandler {
	return &ComplianceHandler{complianceSvc: complianceSvc}
}

// ListRecords 获取员工合规记录（含实时状态）
// GET /api/v1/employees/:id/records
func (h *ComplianceHandler) ListRecords(c *gin.Context) {
	records, err := h.complianceSvc.GetRecordsForEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": records})
}

// GetPending 获取员工待办合规项
// GET /api/v1/employees/:id/pending?function_id=&trigger_event=
func (h *ComplianceHandler) GetPending(c *gin.Context) {
	var req dto.PendingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items, err := h.complianceSvc.GetPendingForFunction(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// RecordExam 登记体检执行
// POST /api/v1/employees/:id/records/exams
func (h *ComplianceHandler) RecordExam(c *gin.Context) {
	var req dto.RecordExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.complianceSvc.RecordExamPerformed(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.Created(c, record)
}

// RecordEquipment 登记 EPI 发放
// POST /api/v1/employees/:id/records/equipment
func (h *ComplianceHandler) RecordEquipment(c *gin.Context) {
	var req dto.RecordEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.complianceSvc.RecordEquipmentIssued(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.Created(c, record)
}

// RecordDocument 生成并归档文书
// POST /api/v1/employees/:id/records/documents
func (h *ComplianceHandler) RecordDocument(c *gin.Context) {
	var req dto.RecordDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.complianceSvc.RecordDocumentGenerated(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.Created(c, record)
}

// AttachFile 为记录关联附件
// PUT /api/v1/records/:id/attachment
func (h *ComplianceHandler) AttachFile(c *gin.Context) {
	var req dto.AttachFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.complianceSvc.AttachFile(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.OK(c, record)
}

// GetAttachmentURL 获取附件临时下载链接
// GET /api/v1/records/:id/attachment
func (h *ComplianceHandler) GetAttachmentURL(c *gin.Context) {
	result, err := h.complianceSvc.GetAttachmentURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteRecord 删除合规记录
// DELETE /api/v1/records/:id
func (h *ComplianceHandler) DeleteRecord(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.complianceSvc.DeleteRecord(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleComplianceError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ComplianceHandler) handleComplianceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 18001, "员工不存在")
	case errors.Is(err, service.ErrEmployeeInactive):
		response.NotFound(c, 18002, "员工已离职")
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 18003, "合规记录不存在")
	case errors.Is(err, service.ErrExamTriggerMismatch):
		response.BadRequest(c, 18004, "体检项目不适用于该触发事件")
	case errors.Is(err, service.ErrEmployeeNoFunction):
		response.BadRequest(c, 18005, "员工未分配职能")
	case errors.Is(err, service.ErrAttachmentMissing):
		response.NotFound(c, 18006, "该记录未关联附件")
	case errors.Is(err, service.ErrAttachmentStorageDisabled):
		response.BadRequest(c, 18007, "未启用对象存储")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 18008, "日期格式错误")
	default:
		respondCategory(c, err)
	}
}
