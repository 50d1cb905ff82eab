package shared

import (
	"strconv"
	"strings"

	"github.com/mealbasket/internal/auth"
	"github.com/mealbasket/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PrincipalContextKey 中间件写入登录身份的上下文键
const PrincipalContextKey = "principal"

// SetPrincipal 写入登录身份
func SetPrincipal(c *gin.Context, principal auth.Principal) {
	c.Set(PrincipalContextKey, principal)
	c.Set("user_id", principal.UserID)
}

// GetPrincipal 从上下文读取登录身份并统一处理错误响应。
func GetPrincipal(c *gin.Context) (auth.Principal, bool) {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return auth.Principal{}, false
	}
	principal, ok := value.(auth.Principal)
	if !ok {
		RespondError(c, response.CodeInternal, "error.principal_invalid", nil)
		return auth.Principal{}, false
	}
	if principal.UserID == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return auth.Principal{}, false
	}
	return principal, true
}

// ParseUintParam 解析路径中的正整数 ID
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.param_invalid", nil)
		return 0, false
	}
	return uint(value), true
}

// ParseIntParam 解析路径中的整数（允许 0 与负数）
func ParseIntParam(c *gin.Context, name string) (int, bool) {
	raw := strings.TrimSpace(c.Param(name))
	value, err := strconv.Atoi(raw)
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.param_invalid", nil)
		return 0, false
	}
	return value, true
}
