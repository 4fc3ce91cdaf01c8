package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/response"
)

// FunctionHandler 职能与需求绑定 HTTP 处理器
type FunctionHandler struct {
	functionSvc service.FunctionService
}

// NewFunctionHandler 创建 FunctionHandler
func NewFunctionHandler(functionSvc service.FunctionService) *FunctionHandler {
	return &FunctionHandler{functionSvc: functionSvc}
}

// ListFunctions 获取职能列表
// GET /api/v1/functions
func (h *FunctionHandler) ListFunctions(c *gin.Context) {
	var req dto.FunctionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	functions, err := h.functionSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": functions})
}

// GetFunction 获取职能详情
// GET /api/v1/functions/:id
func (h *FunctionHandler) GetFunction(c *gin.Context) {
	fn, err := h.functionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, fn)
}

// CreateFunction 创建职能
// POST /api/v1/functions
func (h *FunctionHandler) CreateFunction(c *gin.Context) {
	var req dto.CreateFunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fn, err := h.functionSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.Created(c, fn)
}

// UpdateFunction 更新职能；并发修改冲突返回 409
// PUT /api/v1/functions/:id
func (h *FunctionHandler) UpdateFunction(c *gin.Context) {
	var req dto.UpdateFunctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fn, err := h.functionSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, fn)
}

// SetFunctionActive 启用/停用职能
// PATCH /api/v1/functions/:id/active
func (h *FunctionHandler) SetFunctionActive(c *gin.Context) {
	active, ok := setActiveFromBody(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fn, err := h.functionSvc.SetActive(c.Request.Context(), c.Param("id"), active, callerID)
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, fn)
}

// GetRequirements 获取职能需求汇总
// GET /api/v1/functions/:id/requirements
func (h *FunctionHandler) GetRequirements(c *gin.Context) {
	summary, err := h.functionSvc.GetRequirementsSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, summary)
}

// CountDistinctExams 统计职能去重后的体检项目数
// GET /api/v1/functions/:id/exams/count
func (h *FunctionHandler) CountDistinctExams(c *gin.Context) {
	result, err := h.functionSvc.CountDistinctExams(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, result)
}

// SetEquipment 整体替换职能 EPI 需求
// PUT /api/v1/functions/:id/equipment
func (h *FunctionHandler) SetEquipment(c *gin.Context) {
	var req dto.SetEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.functionSvc.SetEquipment(c.Request.Context(), c.Param("id"), req.EquipmentIDs, callerID)
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, summary)
}

// SetUniforms 整体替换职能工服需求
// PUT /api/v1/functions/:id/uniforms
func (h *FunctionHandler) SetUniforms(c *gin.Context) {
	var req dto.SetUniformsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	summary, err := h.functionSvc.SetUniforms(c.Request.Context(), c.Param("id"), req.UniformIDs, callerID)
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, summary)
}

// SetExamsForTrigger 整体替换某一触发事件下的体检需求
// PUT /api/v1/functions/:id/exams/:trigger
func (h *FunctionHandler) SetExamsForTrigger(c *gin.Context) {
	var req dto.SetExamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	event := model.TriggerEvent(c.Param("trigger"))
	summary, err := h.functionSvc.SetExamsForTrigger(c.Request.Context(), c.Param("id"), event, req.ExamIDs, callerID)
	if err != nil {
		h.handleFunctionError(c, err)
		return
	}

	response.OK(c, summary)
}

func (h *FunctionHandler) handleFunctionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFunctionNotFound), errors.Is(err, service.ErrFunctionInactive):
		response.NotFound(c, 16001, "职能不存在")
	case errors.Is(err, service.ErrExamTriggerMismatch):
		response.BadRequest(c, 16002, "体检项目不适用于该触发事件")
	case errors.Is(err, service.ErrUnknownTriggerEvent):
		response.BadRequest(c, 16003, "未知的触发事件")
	default:
		respondCategory(c, err)
	}
}
