package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/response"
)

// SectorHandler 部门模块 HTTP 处理器
type SectorHandler struct {
	sectorSvc service.SectorService
}

// NewSectorHandler 创建 SectorHandler
func NewSectorHandler(sectorSvc service.SectorService) *SectorHandler {
	return &SectorHandler{sectorSvc: sectorSvc}
}

// ListSectors 获取部门列表
// GET /api/v1/sectors
func (h *SectorHandler) ListSectors(c *gin.Context) {
	var req dto.SectorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sectors, err := h.sectorSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": sectors})
}

// GetSector 获取部门详情
// GET /api/v1/sectors/:id
func (h *SectorHandler) GetSector(c *gin.Context) {
	sector, err := h.sectorSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSectorError(c, err)
		return
	}

	response.OK(c, sector)
}

// CreateSector 创建部门
// POST /api/v1/sectors
func (h *SectorHandler) CreateSector(c *gin.Context) {
	var req dto.CreateSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sector, err := h.sectorSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSectorError(c, err)
		return
	}

	response.Created(c, sector)
}

// UpdateSector 更新部门
// PUT /api/v1/sectors/:id
func (h *SectorHandler) UpdateSector(c *gin.Context) {
	var req dto.UpdateSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sector, err := h.sectorSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleSectorError(c, err)
		return
	}

	response.OK(c, sector)
}

// SetSectorActive 启用/停用部门
// PATCH /api/v1/sectors/:id/active
func (h *SectorHandler) SetSectorActive(c *gin.Context) {
	active, ok := setActiveFromBody(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sector, err := h.sectorSvc.SetActive(c.Request.Context(), c.Param("id"), active, callerID)
	if err != nil {
		h.handleSectorError(c, err)
		return
	}

	response.OK(c, sector)
}

// DeleteSector 删除部门
// DELETE /api/v1/sectors/:id
func (h *SectorHandler) DeleteSector(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.sectorSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleSectorError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleSectorError 统一处理部门模块业务错误
func (h *SectorHandler) handleSectorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSectorNotFound):
		response.NotFound(c, 13001, "部门不存在")
	case errors.Is(err, service.ErrSectorNameExists):
		response.BadRequest(c, 13002, "部门名称已存在")
	case errors.Is(err, service.ErrSectorInUse):
		response.BadRequest(c, 13003, "部门下仍有职能，无法删除")
	default:
		respondCategory(c, err)
	}
}
