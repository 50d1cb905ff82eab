package i18n

var zhCN = map[string]string{
	"error.bad_request":            "请求参数错误",
	"error.unauthorized":           "未登录或登录已失效",
	"error.forbidden":              "无权访问",
	"error.not_found":              "资源不存在",
	"error.too_many_requests":      "请求过于频繁，请稍后再试",
	"error.internal":               "服务器内部错误",
	"error.user_id_invalid":        "用户ID无效",
	"error.principal_invalid":      "登录身份无效",
	"error.param_invalid":          "路径参数无效",
	"error.lock_timeout":           "操作繁忙，请稍后重试",
	"error.product_not_found":      "商品不存在或已下架",
	"error.product_fetch_failed":   "获取商品失败",
	"error.cart_item_not_found":    "购物车项不存在",
	"error.cart_failed":            "购物车操作失败",
	"error.cart_empty":             "购物车为空",
	"error.cart_vendor_mismatch":   "购物车只能包含同一商家的商品",
	"error.product_unavailable":    "购物车中有商品已不可购买",
	"error.order_not_found":        "订单不存在",
	"error.order_create_failed":    "创建订单失败",
	"error.order_fetch_failed":     "获取订单失败",
	"error.order_update_failed":    "更新订单失败",
	"error.order_status_invalid":   "订单状态无效",
	"error.invalid_transition":     "当前订单状态不允许该变更",
	"error.order_conflict":         "订单已被其他操作修改，请刷新后重试",
	"error.alert_not_found":        "库存告警不存在",
	"error.alert_failed":           "库存告警处理失败",
	"error.stock_invalid":          "库存数量无效",
	"error.auth_header_missing":    "缺少 Authorization 请求头",
	"error.auth_header_invalid":    "Authorization 格式错误",
	"error.token_invalid":          "登录凭证无效或已过期",
	"error.jwt_secret_missing":     "服务端未配置签名密钥",
	"error.rate_limited":           "操作过于频繁，请 %d 秒后重试",
	"error.rate_limit_unavailable": "限流服务不可用",
}

var enUS = map[string]string{
	"error.bad_request":            "Invalid request",
	"error.unauthorized":           "Authentication required",
	"error.forbidden":              "Access denied",
	"error.not_found":              "Resource not found",
	"error.too_many_requests":      "Too many requests, please try again later",
	"error.internal":               "Internal server error",
	"error.user_id_invalid":        "Invalid user id",
	"error.principal_invalid":      "Invalid principal",
	"error.param_invalid":          "Invalid path parameter",
	"error.lock_timeout":           "Resource busy, please retry",
	"error.product_not_found":      "Product not found",
	"error.product_fetch_failed":   "Failed to load product",
	"error.cart_item_not_found":    "Cart item not found",
	"error.cart_failed":            "Cart operation failed",
	"error.cart_empty":             "Cart is empty",
	"error.cart_vendor_mismatch":   "Cart may only contain products from one vendor",
	"error.product_unavailable":    "Some products in the cart are no longer available",
	"error.order_not_found":        "Order not found",
	"error.order_create_failed":    "Failed to create order",
	"error.order_fetch_failed":     "Failed to fetch orders",
	"error.order_update_failed":    "Failed to update order",
	"error.order_status_invalid":   "Invalid order status",
	"error.invalid_transition":     "Status transition is not allowed",
	"error.order_conflict":         "Order was modified concurrently, please refresh",
	"error.alert_not_found":        "Stock alert not found",
	"error.alert_failed":           "Failed to process stock alert",
	"error.stock_invalid":          "Invalid stock value",
	"error.auth_header_missing":    "Authorization header is missing",
	"error.auth_header_invalid":    "Authorization header is malformed",
	"error.token_invalid":          "Token is invalid or expired",
	"error.jwt_secret_missing":     "Token signing secret is not configured",
	"error.rate_limited":           "Too many requests, retry in %d seconds",
	"error.rate_limit_unavailable": "Rate limiter unavailable",
}
