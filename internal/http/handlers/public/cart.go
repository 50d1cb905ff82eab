package public

import (
	"github.com/mealbasket/internal/http/response"
	"github.com/mealbasket/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest 修改数量请求，0 表示移除
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required,notblank,max=500"`
	Phone           string `json:"phone" binding:"max=40"`
	Notes           string `json:"notes"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	view, err := h.CartService.ListItems(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err, "error.cart_failed")
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车，同一商品数量累加
func (h *Handler) AddCartItem(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.CartService.AddItem(c.Request.Context(), principal, req.ProductID, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "error.cart_failed")
		return
	}
	response.Success(c, item)
}

// UpdateCartItem 修改购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	itemID, ok := parseUintParam(c, "itemId")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.CartService.SetQuantity(c.Request.Context(), principal, itemID, *req.Quantity)
	if err != nil {
		respondServiceError(c, err, "error.cart_failed")
		return
	}
	if item == nil {
		response.Success(c, gin.H{"removed": true, "id": itemID})
		return
	}
	response.Success(c, item)
}

// RemoveCartItem 删除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	itemID, ok := parseUintParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.CartService.RemoveItem(c.Request.Context(), principal, itemID); err != nil {
		respondServiceError(c, err, "error.cart_failed")
		return
	}
	response.Success(c, gin.H{"removed": true, "id": itemID})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), principal); err != nil {
		respondServiceError(c, err, "error.cart_failed")
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// Checkout 购物车结算
func (h *Handler) Checkout(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.CheckoutService.Checkout(c.Request.Context(), principal, service.CheckoutInput{
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(c, err, "error.order_create_failed")
		return
	}
	response.Success(c, order)
}
