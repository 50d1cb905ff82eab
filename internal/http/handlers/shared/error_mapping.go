package shared

import (
	"errors"

	"github.com/mealbasket/internal/http/response"
	"github.com/mealbasket/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
type MappedHandlerError struct {
	Target error
	Code   int
	Key    string
}

// 具体错误排在类别之前，命中第一条即返回
var serviceErrorRules = []MappedHandlerError{
	{Target: service.ErrProductNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrAlertNotFound, Code: response.CodeNotFound, Key: "error.alert_not_found"},
	{Target: service.ErrCartVendorMismatch, Code: response.CodeBadRequest, Key: "error.cart_vendor_mismatch"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeBadRequest, Key: "error.order_status_invalid"},
	{Target: service.ErrEmptyCart, Code: response.CodeBadRequest, Key: "error.cart_empty"},
	{Target: service.ErrProductUnavailable, Code: response.CodeBadRequest, Key: "error.product_unavailable"},
	{Target: service.ErrInvalidTransition, Code: response.CodeBadRequest, Key: "error.invalid_transition"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.order_conflict"},
	{Target: service.ErrBusy, Code: response.CodeTooManyRequests, Key: "error.lock_timeout"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrUnauthenticated, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
}

// RespondServiceError 按映射表返回业务错误，未命中时按内部错误记录
func RespondServiceError(c *gin.Context, err error, fallbackKey string) {
	RespondWithMappedError(c, err, serviceErrorRules, response.CodeInternal, fallbackKey)
}

// RespondWithMappedError 依次匹配规则，未命中时使用兜底响应
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}
