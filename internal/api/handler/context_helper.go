package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"conser-control/backend/internal/dto"
	pkgerrors "conser-control/backend/pkg/errors"
	"conser-control/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// respondCategory 未被模块 switch 命中的错误按类别兜底：
// NotFound → 404，ValidationError → 400，乐观锁冲突 → 409，其余 500。
func respondCategory(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10009, pkgerrors.ErrOptimisticLock.Error())
	case pkgerrors.IsNotFound(err):
		response.NotFound(c, 10004, err.Error())
	case pkgerrors.IsValidation(err):
		response.BadRequest(c, 10003, err.Error())
	default:
		response.InternalError(c)
	}
}

// respondBindError 请求绑定失败：400 + 10001，details 携带校验器原始信息
func respondBindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}

// setActiveFromBody 解析 {"is_active": bool}
func setActiveFromBody(c *gin.Context) (bool, bool) {
	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return false, false
	}
	return *req.IsActive, true
}
