package handler

import (
	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/response"
)

// SettingHandler 合规参数 HTTP 处理器
type SettingHandler struct {
	settingSvc service.SettingService
}

// NewSettingHandler 创建 SettingHandler
func NewSettingHandler(settingSvc service.SettingService) *SettingHandler {
	return &SettingHandler{settingSvc: settingSvc}
}

// GetSetting 获取合规参数
// GET /api/v1/compliance-settings
func (h *SettingHandler) GetSetting(c *gin.Context) {
	setting, err := h.settingSvc.Get(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, setting)
}

// UpdateSetting 更新合规参数
// PUT /api/v1/compliance-settings
func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	var req dto.UpdateComplianceSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	setting, err := h.settingSvc.Update(c.Request.Context(), &req, callerID)
	if err != nil {
		respondCategory(c, err)
		return
	}

	response.OK(c, setting)
}
