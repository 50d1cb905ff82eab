package public

import "github.com/mealbasket/internal/provider"

// Handler 前台/用户侧接口处理器入口
// 说明：商品目录无需登录，购物车与订单需要 user 角色。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
