package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/response"
)

// 登录角色
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// MustGetRole 从 Gin 上下文中安全提取 role。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
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

// MustGetProfileID 从 Gin 上下文中安全提取 profile_id（admins.id 或 students.id）。
func MustGetProfileID(c *gin.Context) (int64, bool) {
	return mustGetInt64(c, "profile_id")
}

// currentAssignee 当前登录人对应的排班归属人
func currentAssignee(c *gin.Context) (model.Assignee, bool) {
	role, ok := MustGetRole(c)
	if !ok {
		return model.Assignee{}, false
	}
	profileID, ok := MustGetProfileID(c)
	if !ok {
		return model.Assignee{}, false
	}
	if role == RoleAdmin {
		return model.AdminAssignee(profileID), true
	}
	return model.StudentAssignee(profileID), true
}

func mustGetInt64(c *gin.Context, key string) (int64, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// parseIDParam 解析路径参数中的正整数 ID；失败时写入 400 响应
func parseIDParam(c *gin.Context, name string, code int) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, code, "ID 格式无效")
		return 0, false
	}
	return id, true
}

// bindOptionalJSON 请求体可省略；提交了请求体时按 JSON 校验
func bindOptionalJSON(c *gin.Context, obj interface{}, code int) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		response.BadRequest(c, code, "参数校验失败")
		return false
	}
	return true
}
