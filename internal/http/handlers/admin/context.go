package admin

import (
	"net/url"
	"strings"

	"github.com/mealbasket/internal/auth"
	handlershared "github.com/mealbasket/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getPrincipal(c *gin.Context) (auth.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

func decodeRoleParam(value string) string {
	decoded, err := url.QueryUnescape(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(decoded)
}
