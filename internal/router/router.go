package router

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/mealbasket/internal/authz"
	"github.com/mealbasket/internal/cache"
	"github.com/mealbasket/internal/config"
	adminhandlers "github.com/mealbasket/internal/http/handlers/admin"
	publichandlers "github.com/mealbasket/internal/http/handlers/public"
	handlershared "github.com/mealbasket/internal/http/handlers/shared"
	vendorhandlers "github.com/mealbasket/internal/http/handlers/vendor"
	"github.com/mealbasket/internal/http/response"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/provider"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// publicRoutes 无需登录的接口，不参与 RBAC 与权限目录
var publicRoutes = map[string]struct{}{
	"/products":     {},
	"/products/:id": {},
}

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	if err := handlershared.RegisterValidators(); err != nil {
		log.Sugar().Warnw("router_validator_register_failed", "error", err)
	}
	r := gin.New()

	// 初始化 Handler（按用户/商家/后台分组）
	publicHandler := publichandlers.New(c)
	vendorHandler := vendorhandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "mb"
	}
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
	}
	checkoutLimiter := MemoryRateLimitMiddleware(checkoutRule, KeyByPrincipal)
	if cache.Enabled() {
		checkoutLimiter = RateLimitMiddleware(cache.Client(), checkoutRule, KeyByPrincipal)
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware(c.Metrics))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group(apiPrefix)
	{
		// 商品目录（公开）
		apiV1.GET("/products", publicHandler.ListProducts)
		apiV1.GET("/products/:id", publicHandler.GetProduct)

		secured := apiV1.Group("")
		secured.Use(PrincipalAuthMiddleware(cfg.JWT.SecretKey), RoleRBACMiddleware(c.AuthzService))
		{
			// 购物车
			secured.GET("/cart", publicHandler.GetCart)
			secured.POST("/cart/add", publicHandler.AddCartItem)
			secured.POST("/cart/checkout", checkoutLimiter, publicHandler.Checkout)
			secured.PUT("/cart/:itemId", publicHandler.UpdateCartItem)
			secured.DELETE("/cart/:itemId", publicHandler.RemoveCartItem)
			secured.DELETE("/cart", publicHandler.ClearCart)

			// 用户订单
			secured.GET("/orders/user", publicHandler.ListMyOrders)
			secured.GET("/orders/:id", publicHandler.GetMyOrder)

			// 商家订单
			secured.GET("/vendor/:vendorId/orders", vendorHandler.ListOrders)
			secured.GET("/vendor/:vendorId/orders/:orderId", vendorHandler.GetOrder)
			secured.PUT("/vendor/:vendorId/orders/:orderId", vendorHandler.TransitionOrder)
			secured.GET("/vendor/:vendorId/orders/:orderId/logs", vendorHandler.ListOrderLogs)

			// 库存告警
			secured.POST("/stock-alerts/monitor/:vendorId/:productId/:currentStock", vendorHandler.MonitorStock)
			secured.POST("/stock-alerts/predict/:vendorId/:productId/:currentStock", vendorHandler.PredictStock)
			secured.PUT("/stock-alerts/deactivate/:alertId", vendorHandler.DeactivateAlert)
			secured.GET("/stock-alerts/vendor/:vendorId", vendorHandler.ListVendorAlerts)
			secured.GET("/stock-alerts/active", vendorHandler.ListActiveAlerts)
			secured.GET("/stock-alerts/critical", vendorHandler.ListCriticalAlerts)
			secured.GET("/stock-alerts/recent", vendorHandler.ListRecentAlerts)

			// 管理端
			admin := secured.Group("/admin")
			{
				admin.GET("/stock-alerts", adminHandler.ListStockAlerts)
				admin.DELETE("/stock-alerts/:id", adminHandler.DeleteStockAlert)

				admin.GET("/authz/me", adminHandler.GetAuthzMe)
				admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
				admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
				admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
				admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.Metrics.Handler()))
	}

	return r
}

type permissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildPermissionCatalog(engine *gin.Engine) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, apiPrefix+"/") {
			continue
		}
		path := strings.TrimPrefix(item.Path, apiPrefix)
		if _, public := publicRoutes[path]; public {
			continue
		}
		object := authz.NormalizeObject(path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Module:     derivePermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func derivePermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}
