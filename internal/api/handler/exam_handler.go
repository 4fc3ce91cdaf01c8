package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	"conser-control/backend/internal/model"
	"conser-control/backend/internal/service"
	"conser-control/backend/pkg/response"
)

// ExamHandler 体检目录 HTTP 处理器
type ExamHandler struct {
	examSvc service.ExamService
}

// NewExamHandler 创建 ExamHandler
func NewExamHandler(examSvc service.ExamService) *ExamHandler {
	return &ExamHandler{examSvc: examSvc}
}

// ListExams 获取体检项目列表，trigger_event 非空时只返回适用于该事件的启用项目
// GET /api/v1/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	var req dto.ExamListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var (
		exams []dto.ExamResponse
		err   error
	)
	if req.TriggerEvent != "" {
		exams, err = h.examSvc.ListByTriggerEvent(c.Request.Context(), model.TriggerEvent(req.TriggerEvent))
	} else {
		exams, err = h.examSvc.List(c.Request.Context(), &req)
	}
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, gin.H{"list": exams})
}

// GetExam 获取体检项目详情；include_inactive=true 时可查看已停用项目
// GET /api/v1/exams/:id
func (h *ExamHandler) GetExam(c *gin.Context) {
	var (
		exam *dto.ExamResponse
		err  error
	)
	if c.Query("include_inactive") == "true" {
		exam, err = h.examSvc.FindByIDIncludingInactive(c.Request.Context(), c.Param("id"))
	} else {
		exam, err = h.examSvc.FindByID(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, exam)
}

// GetExamPrice 查询体检机构报价
// GET /api/v1/exams/:id/prices/:provider_id
func (h *ExamHandler) GetExamPrice(c *gin.Context) {
	price, err := h.examSvc.PriceFor(c.Request.Context(), c.Param("id"), c.Param("provider_id"))
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, price)
}

// RegisterExam 登记体检项目
// POST /api/v1/exams
func (h *ExamHandler) RegisterExam(c *gin.Context) {
	var req dto.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	exam, err := h.examSvc.Register(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.Created(c, exam)
}

// UpdateExam 更新体检项目
// PUT /api/v1/exams/:id
func (h *ExamHandler) UpdateExam(c *gin.Context) {
	var req dto.UpdateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	exam, err := h.examSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, exam)
}

// SetExamActive 启用/停用体检项目
// PATCH /api/v1/exams/:id/active
func (h *ExamHandler) SetExamActive(c *gin.Context) {
	active, ok := setActiveFromBody(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	exam, err := h.examSvc.SetActive(c.Request.Context(), c.Param("id"), active, callerID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	response.OK(c, exam)
}

func (h *ExamHandler) handleExamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrExamInactive):
		response.NotFound(c, 14001, "体检项目不存在")
	case errors.Is(err, service.ErrExamPriceNotFound):
		response.NotFound(c, 14002, "该机构未报价")
	case errors.Is(err, service.ErrUnknownTriggerEvent):
		response.BadRequest(c, 14003, "未知的触发事件")
	case errors.Is(err, service.ErrExamIntervalRequired):
		response.BadRequest(c, 14004, "定期体检必须配置复检间隔")
	default:
		respondCategory(c, err)
	}
}
