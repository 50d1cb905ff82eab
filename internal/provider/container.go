package provider

import (
	"strings"
	"time"

	"github.com/mealbasket/internal/authz"
	"github.com/mealbasket/internal/cache"
	"github.com/mealbasket/internal/config"
	"github.com/mealbasket/internal/lock"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/metrics"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/queue"
	"github.com/mealbasket/internal/repository"
	"github.com/mealbasket/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Locker      lock.Locker
	Registry    *prometheus.Registry
	Metrics     *metrics.Metrics

	// Repositories
	ProductRepo    repository.ProductRepository
	VendorRepo     repository.VendorRepository
	CartRepo       repository.CartRepository
	OrderRepo      repository.OrderRepository
	StockAlertRepo repository.StockAlertRepository

	// Services
	AuthzService     *authz.Service
	CatalogService   *service.CatalogService
	CartService      *service.CartService
	CheckoutService  *service.CheckoutService
	OrderService     *service.OrderService
	VendorOrderView  *service.VendorOrderView
	InventoryService *service.InventoryService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initMetrics()
	c.Locker = buildLocker(cfg)

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initMetrics() {
	if !c.Config.Metrics.Enabled {
		return
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Registry = reg
	c.Metrics = metrics.New(reg)
}

// buildLocker 单实例用进程内锁，多实例部署需要 redis
func buildLocker(cfg *config.Config) lock.Locker {
	opts := lock.Options{
		TTL:  time.Duration(cfg.Lock.TTLSeconds) * time.Second,
		Wait: time.Duration(cfg.Lock.WaitMillis) * time.Millisecond,
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Lock.Driver), "redis") {
		locker, err := lock.NewRedisLocker(cache.Client(), cfg.Redis.Prefix, opts)
		if err == nil {
			return locker
		}
		logger.Warnw("provider_init_redis_lock_failed", "error", err)
	}
	return lock.NewKeyedMutex(opts)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.VendorRepo = repository.NewVendorRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.StockAlertRepo = repository.NewStockAlertRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CatalogService = service.NewCatalogService(c.ProductRepo, c.VendorRepo, c.Config.Catalog.CacheTTLSeconds)
	c.CartService = service.NewCartService(c.CartRepo, c.CatalogService, c.Locker)
	c.CheckoutService = service.NewCheckoutService(c.CartRepo, c.OrderRepo, c.CatalogService.Fresh(), c.Locker, service.CheckoutOptions{
		Queue:            c.QueueClient,
		Metrics:          c.Metrics,
		CartClearRetries: c.Config.Checkout.CartClearRetries,
	})
	c.OrderService = service.NewOrderService(c.OrderRepo, c.QueueClient, c.Metrics)
	c.VendorOrderView = service.NewVendorOrderView(c.OrderRepo)
	c.InventoryService = service.NewInventoryService(c.StockAlertRepo, c.Locker, service.InventoryOptions{
		MinThreshold:   c.Config.Inventory.DefaultMinThreshold,
		MaxThreshold:   c.Config.Inventory.DefaultMaxThreshold,
		PredictionDays: c.Config.Inventory.PredictionDays,
		Metrics:        c.Metrics,
		Catalog:        c.CatalogService,
	})
}

// Close 释放队列与缓存连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return multierr.Combine(c.QueueClient.Close(), cache.Close())
}
