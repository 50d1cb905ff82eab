package worker

import (
	"context"
	"errors"
	"time"

	"github.com/mealbasket/internal/config"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultStockSweepInterval = 10 * time.Minute

// ActiveProductLister 巡检取数
type ActiveProductLister interface {
	ListActiveProducts() ([]models.Product, error)
}

// StockMonitorEnqueuer 巡检任务投递
type StockMonitorEnqueuer interface {
	EnqueueStockMonitor(payload queue.StockMonitorPayload, uniqueFor time.Duration) error
}

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepEnabled  bool
	sweepInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(&cfg.Queue)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	interval := time.Duration(cfg.Inventory.SweepIntervalSecond) * time.Second
	if interval <= 0 {
		interval = defaultStockSweepInterval
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepEnabled:  cfg.Inventory.SweepEnabled,
		sweepInterval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.sweepEnabled && s.consumer != nil && s.consumer.CatalogService != nil && s.consumer.QueueClient != nil {
		go s.runStockSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runStockSweepLoop(ctx context.Context) {
	runOnce := func() {
		enqueued, err := SweepStock(s.consumer.CatalogService, s.consumer.QueueClient, s.sweepInterval)
		if err != nil {
			logger.Warnw("worker_stock_sweep_failed", "error", err)
			return
		}
		logger.Debugw("worker_stock_sweep_done", "enqueued", enqueued)
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// SweepStock 为每个上架商品投递一次库存巡检任务，单个商品投递失败不中断
func SweepStock(lister ActiveProductLister, enqueuer StockMonitorEnqueuer, uniqueFor time.Duration) (int, error) {
	products, err := lister.ListActiveProducts()
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, product := range products {
		if product.VendorID == 0 {
			continue
		}
		err := enqueuer.EnqueueStockMonitor(queue.StockMonitorPayload{
			VendorID:     product.VendorID,
			ProductID:    product.ID,
			CurrentStock: product.Stock,
		}, uniqueFor)
		if err != nil {
			logger.Warnw("worker_stock_sweep_enqueue_failed", "product_id", product.ID, "error", err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}
