package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/response"
)

// DocumentHandler 文书模板 HTTP 处理器
type DocumentHandler struct {
	documentSvc service.DocumentService
}

// NewDocumentHandler 创建 DocumentHandler
func NewDocumentHandler(documentSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentSvc: documentSvc}
}

// ListTemplates 获取文书模板列表
// GET /api/v1/document-templates
func (h *DocumentHandler) ListTemplates(c *gin.Context) {
	var req dto.DocumentTemplateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	templates, err := h.documentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": templates})
}

// GetTemplate 获取文书模板详情
// GET /api/v1/document-templates/:id
func (h *DocumentHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.documentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, tpl)
}

// CreateTemplate 创建文书模板
// POST /api/v1/document-templates
func (h *DocumentHandler) CreateTemplate(c *gin.Context) {
	var req dto.CreateDocumentTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tpl, err := h.documentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.Created(c, tpl)
}

// UpdateTemplate 更新文书模板
// PUT /api/v1/document-templates/:id
func (h *DocumentHandler) UpdateTemplate(c *gin.Context) {
	var req dto.UpdateDocumentTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tpl, err := h.documentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, tpl)
}

// SetTemplateActive 启用/停用文书模板
// PATCH /api/v1/document-templates/:id/active
func (h *DocumentHandler) SetTemplateActive(c *gin.Context) {
	active, ok := setActiveFromBody(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	tpl, err := h.documentSvc.SetActive(c.Request.Context(), c.Param("id"), active, callerID)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, tpl)
}

// PreviewTemplate 为员工预览渲染结果
// POST /api/v1/document-templates/:id/preview
func (h *DocumentHandler) PreviewTemplate(c *gin.Context) {
	var req dto.PreviewDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.documentSvc.Preview(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *DocumentHandler) handleDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrTemplateInactive):
		response.NotFound(c, 19001, "文书模板不存在")
	case errors.Is(err, service.ErrTemplateInvalidValidity):
		response.BadRequest(c, 19002, "文书有效期必须为正整数（月）")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 19003, "员工不存在")
	default:
		respondCategory(c, err)
	}
}
