package public

import (
	"strconv"
	"strings"

	"github.com/mealbasket/internal/auth"
	handlershared "github.com/mealbasket/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getPrincipal(c *gin.Context) (auth.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	return handlershared.ParseUintParam(c, name)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error, fallbackKey string) {
	handlershared.RespondServiceError(c, err, fallbackKey)
}

func queryUint(raw string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
