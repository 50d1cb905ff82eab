package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mealbasket/internal/constants"
	"github.com/mealbasket/internal/lock"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/provider"
	"github.com/mealbasket/internal/queue"
	"github.com/mealbasket/internal/repository"
	"github.com/mealbasket/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*gorm.DB, *Consumer) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	locker := lock.NewKeyedMutex(lock.Options{Wait: time.Second})
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	catalog := service.NewCatalogService(repository.NewProductRepository(db), repository.NewVendorRepository(db), 0)
	container := &provider.Container{
		CartRepo:         cartRepo,
		CatalogService:   catalog,
		CheckoutService:  service.NewCheckoutService(cartRepo, orderRepo, catalog, locker, service.CheckoutOptions{}),
		InventoryService: service.NewInventoryService(repository.NewStockAlertRepository(db), locker, service.InventoryOptions{}),
	}
	return db, NewConsumer(container)
}

func mustTask(t *testing.T, typename string, payload interface{}) *asynq.Task {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(typename, body)
}

func TestHandleCartClearRemovesSnapshotOnly(t *testing.T) {
	db, consumer := setupWorkerTest(t)
	now := time.Now()
	cartRepo := repository.NewCartRepository(db)
	a, _ := cartRepo.AddQuantity(7, 10, 1, now)
	b, _ := cartRepo.AddQuantity(7, 11, 1, now)
	if _, err := cartRepo.MarkCheckedOut(7, 1, []uint{a.ID}); err != nil {
		t.Fatalf("mark checked out failed: %v", err)
	}

	task := mustTask(t, queue.TaskCartClear, queue.CartClearPayload{UserID: 7, OrderID: 1, ItemIDs: []uint{a.ID}})
	if err := consumer.handleCartClear(context.Background(), task); err != nil {
		t.Fatalf("handle cart clear failed: %v", err)
	}
	if err := consumer.handleCartClear(context.Background(), task); err != nil {
		t.Fatalf("repeat cart clear should succeed: %v", err)
	}
	items, _ := cartRepo.ListByUser(7)
	if len(items) != 1 || items[0].ID != b.ID {
		t.Fatalf("only snapshot item should be removed: %+v", items)
	}

	bad := asynq.NewTask(queue.TaskCartClear, []byte("{"))
	if err := consumer.handleCartClear(context.Background(), bad); err == nil {
		t.Fatalf("malformed payload should return error")
	}
	empty := mustTask(t, queue.TaskCartClear, queue.CartClearPayload{UserID: 7})
	if err := consumer.handleCartClear(context.Background(), empty); err != nil {
		t.Fatalf("payload without order should be skipped: %v", err)
	}
	var rows int64
	db.Model(&models.CartItem{}).Where("user_id = ?", 7).Count(&rows)
	if rows != 1 {
		t.Fatalf("open cart row must survive, got %d rows", rows)
	}
}

func TestHandleStockMonitorUpsertsAlert(t *testing.T) {
	db, consumer := setupWorkerTest(t)
	task := mustTask(t, queue.TaskStockMonitor, queue.StockMonitorPayload{VendorID: 1, ProductID: 10, CurrentStock: 0})
	if err := consumer.handleStockMonitor(context.Background(), task); err != nil {
		t.Fatalf("handle stock monitor failed: %v", err)
	}
	if err := consumer.handleStockMonitor(context.Background(), task); err != nil {
		t.Fatalf("repeat stock monitor failed: %v", err)
	}
	var alerts []models.StockAlert
	db.Where("vendor_id = ? AND product_id = ?", 1, 10).Find(&alerts)
	if len(alerts) != 1 || alerts[0].AlertType != constants.AlertTypeOutOfStock {
		t.Fatalf("want one OUT_OF_STOCK alert got %+v", alerts)
	}

	invalid := mustTask(t, queue.TaskStockMonitor, queue.StockMonitorPayload{ProductID: 10})
	if err := consumer.handleStockMonitor(context.Background(), invalid); err != nil {
		t.Fatalf("invalid payload should be skipped: %v", err)
	}
}

func TestHandleOrderStatusChanged(t *testing.T) {
	_, consumer := setupWorkerTest(t)
	task := mustTask(t, queue.TaskOrderStatusChanged, queue.OrderStatusChangedPayload{OrderID: 3, FromStatus: "PENDING", ToStatus: "CONFIRMED"})
	if err := consumer.handleOrderStatusChanged(context.Background(), task); err != nil {
		t.Fatalf("handle status changed failed: %v", err)
	}
	var nilConsumer *Consumer
	if err := nilConsumer.handleOrderStatusChanged(context.Background(), task); err != nil {
		t.Fatalf("nil consumer should skip: %v", err)
	}
}

type stubLister struct {
	products []models.Product
	err      error
}

func (s stubLister) ListActiveProducts() ([]models.Product, error) {
	return s.products, s.err
}

type stubEnqueuer struct {
	payloads []queue.StockMonitorPayload
	failFor  uint
}

func (s *stubEnqueuer) EnqueueStockMonitor(payload queue.StockMonitorPayload, _ time.Duration) error {
	if payload.ProductID == s.failFor {
		return errors.New("redis down")
	}
	s.payloads = append(s.payloads, payload)
	return nil
}

func TestSweepStockEnqueuesActiveProducts(t *testing.T) {
	lister := stubLister{products: []models.Product{
		{ID: 1, VendorID: 1, Stock: 3},
		{ID: 2, VendorID: 1, Stock: 30},
		{ID: 3, VendorID: 0, Stock: 5},
		{ID: 4, VendorID: 2, Stock: 0},
	}}
	enqueuer := &stubEnqueuer{failFor: 2}
	enqueued, err := SweepStock(lister, enqueuer, time.Minute)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if enqueued != 2 || len(enqueuer.payloads) != 2 {
		t.Fatalf("want 2 enqueued got %d", enqueued)
	}
	if enqueuer.payloads[1].ProductID != 4 || enqueuer.payloads[1].CurrentStock != 0 {
		t.Fatalf("unexpected payload: %+v", enqueuer.payloads[1])
	}

	if _, err := SweepStock(stubLister{err: errors.New("db down")}, enqueuer, time.Minute); err == nil {
		t.Fatalf("lister error should surface")
	}
}
