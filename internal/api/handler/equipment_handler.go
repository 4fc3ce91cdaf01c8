package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/response"
)

// EquipmentHandler EPI 与工服目录 HTTP 处理器
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

// NewEquipmentHandler 创建 EquipmentHandler
func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

// ── EPI ──

// ListEquipment 获取 EPI 列表
// GET /api/v1/equipment
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	var req dto.EquipmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items, err := h.equipmentSvc.ListEquipment(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// GetEquipment 获取 EPI 详情
// GET /api/v1/equipment/:id
func (h *EquipmentHandler) GetEquipment(c *gin.Context) {
	var (
		item *dto.EquipmentResponse
		err  error
	)
	if c.Query("include_inactive") == "true" {
		item, err = h.equipmentSvc.FindEquipmentByIDIncludingInactive(c.Request.Context(), c.Param("id"))
	} else {
		item, err = h.equipmentSvc.FindEquipmentByID(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, item)
}

// IsMandatory 查询 EPI 是否强制
// GET /api/v1/equipment/:id/mandatory
func (h *EquipmentHandler) IsMandatory(c *gin.Context) {
	result, err := h.equipmentSvc.IsMandatory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, result)
}

// RegisterEquipment 登记 EPI
// POST /api/v1/equipment
func (h *EquipmentHandler) RegisterEquipment(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.equipmentSvc.RegisterEquipment(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateEquipment 更新 EPI
// PUT /api/v1/equipment/:id
func (h *EquipmentHandler) UpdateEquipment(c *gin.Context) {
	var req dto.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.equipmentSvc.UpdateEquipment(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, item)
}

// SetEquipmentActive 启用/停用 EPI
// PATCH /api/v1/equipment/:id/active
func (h *EquipmentHandler) SetEquipmentActive(c *gin.Context) {
	active, ok := setActiveFromBody(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.equipmentSvc.SetEquipmentActive(c.Request.Context(), c.Param("id"), active, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, item)
}

// ── 工服 ──

// ListUniforms 获取工服列表
// GET /api/v1/uniforms
func (h *EquipmentHandler) ListUniforms(c *gin.Context) {
	items, err := h.equipmentSvc.ListUniforms(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// GetUniform 获取工服详情
// GET /api/v1/uniforms/:id
func (h *EquipmentHandler) GetUniform(c *gin.Context) {
	var (
		item *dto.UniformResponse
		err  error
	)
	if c.Query("include_inactive") == "true" {
		item, err = h.equipmentSvc.FindUniformByIDIncludingInactive(c.Request.Context(), c.Param("id"))
	} else {
		item, err = h.equipmentSvc.FindUniformByID(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, item)
}

// RegisterUniform 登记工服
// POST /api/v1/uniforms
func (h *EquipmentHandler) RegisterUniform(c *gin.Context) {
	var req dto.CreateUniformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.equipmentSvc.RegisterUniform(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.Created(c, item)
}

// UpdateUniform 更新工服
// PUT /api/v1/uniforms/:id
func (h *EquipmentHandler) UpdateUniform(c *gin.Context) {
	var req dto.UpdateUniformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.equipmentSvc.UpdateUniform(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, item)
}

// SetUniformActive 启用/停用工服
// PATCH /api/v1/uniforms/:id/active
func (h *EquipmentHandler) SetUniformActive(c *gin.Context) {
	active, ok := setActiveFromBody(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	item, err := h.equipmentSvc.SetUniformActive(c.Request.Context(), c.Param("id"), active, callerID)
	if err != nil {
		h.handleEquipmentError(c, err)
		return
	}

	response.OK(c, item)
}

func (h *EquipmentHandler) handleEquipmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEquipmentNotFound), errors.Is(err, service.ErrEquipmentInactive):
		response.NotFound(c, 15001, "EPI 不存在")
	case errors.Is(err, service.ErrUniformNotFound), errors.Is(err, service.ErrUniformInactive):
		response.NotFound(c, 15002, "工服不存在")
	case errors.Is(err, service.ErrInvalidShelfLife):
		response.BadRequest(c, 15003, "有效期必须为正整数（月）")
	default:
		respondCategory(c, err)
	}
}
