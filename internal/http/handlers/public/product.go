package public

import (
	"strings"

	handlershared "github.com/mealbasket/internal/http/handlers/shared"
	"github.com/mealbasket/internal/http/response"
	"github.com/mealbasket/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListProducts 上架商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := handlershared.QueryPagination(c)
	var vendorID uint
	if raw := strings.TrimSpace(c.Query("vendor_id")); raw != "" {
		id, ok := queryUint(raw)
		if !ok {
			respondError(c, response.CodeBadRequest, "error.param_invalid", nil)
			return
		}
		vendorID = id
	}

	products, total, err := h.CatalogService.ListProducts(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: vendorID,
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondServiceError(c, err, "error.product_fetch_failed")
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	productID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	product, err := h.CatalogService.GetProduct(productID)
	if err != nil {
		respondServiceError(c, err, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}
