package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/mealbasket/internal/http/handlers/shared"
	"github.com/mealbasket/internal/http/response"
	"github.com/mealbasket/internal/service"

	"github.com/gin-gonic/gin"
)

// ListStockAlerts 全部库存告警，可按 vendor_id / product_id 过滤
func (h *Handler) ListStockAlerts(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.QueryPagination(c)
	query := service.AlertQuery{Page: page, PageSize: pageSize}
	for name, target := range map[string]*uint{"vendor_id": &query.VendorID, "product_id": &query.ProductID} {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			respondError(c, response.CodeBadRequest, "error.param_invalid", nil)
			return
		}
		*target = uint(id)
	}

	alerts, total, err := h.InventoryService.ListAll(c.Request.Context(), principal, query)
	if err != nil {
		respondServiceError(c, err, "error.alert_failed")
		return
	}
	response.SuccessWithPage(c, alerts, response.NewPagination(page, pageSize, total))
}

// DeleteStockAlert 删除库存告警
func (h *Handler) DeleteStockAlert(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	alertID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.InventoryService.Delete(c.Request.Context(), principal, alertID); err != nil {
		respondServiceError(c, err, "error.alert_failed")
		return
	}
	response.Success(c, gin.H{"deleted": true, "id": alertID})
}
