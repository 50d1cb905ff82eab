package service

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mealbasket/internal/auth"
	"github.com/mealbasket/internal/constants"
	"github.com/mealbasket/internal/lock"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/queue"
	"github.com/mealbasket/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type serviceFixture struct {
	db        *gorm.DB
	cartRepo  *repository.GormCartRepository
	orderRepo *repository.GormOrderRepository
	alertRepo *repository.GormStockAlertRepository
	catalog   *CatalogService
	locker    *lock.KeyedMutex
	queue     *recordingQueue
}

func setupServiceTest(t *testing.T) *serviceFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	return &serviceFixture{
		db:        db,
		cartRepo:  repository.NewCartRepository(db),
		orderRepo: repository.NewOrderRepository(db),
		alertRepo: repository.NewStockAlertRepository(db),
		catalog:   NewCatalogService(repository.NewProductRepository(db), repository.NewVendorRepository(db), 0),
		locker:    lock.NewKeyedMutex(lock.Options{Wait: 2 * time.Second}),
		queue:     &recordingQueue{},
	}
}

func (f *serviceFixture) cartService() *CartService {
	return NewCartService(f.cartRepo, f.catalog, f.locker)
}

func (f *serviceFixture) checkoutService() *CheckoutService {
	return NewCheckoutService(f.cartRepo, f.orderRepo, f.catalog, f.locker, CheckoutOptions{Queue: f.queue})
}

func seedVendor(t *testing.T, db *gorm.DB, id uint, shop string) {
	t.Helper()
	vendor := models.Vendor{ID: id, Name: shop, Email: fmt.Sprintf("vendor%d@example.com", id), ShopName: shop}
	if err := db.Create(&vendor).Error; err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
}

func seedProduct(t *testing.T, db *gorm.DB, id, vendorID uint, name, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       id,
		VendorID: vendorID,
		Name:     name,
		Price:    models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		Stock:    20,
		InStock:  true,
		IsActive: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func deactivateProduct(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	if err := db.Model(&models.Product{}).Where("id = ?", id).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
}

func shopper(id uint) auth.Principal {
	return auth.Principal{UserID: id, Role: constants.RoleUser}
}

func vendorPrincipal(userID, vendorID uint) auth.Principal {
	return auth.Principal{UserID: userID, Role: constants.RoleVendor, VendorID: vendorID}
}

func adminPrincipal() auth.Principal {
	return auth.Principal{UserID: 1000, Role: constants.RoleAdmin}
}

type recordingQueue struct {
	mu           sync.Mutex
	cartClears   []queue.CartClearPayload
	notices      []queue.OrderStatusChangedPayload
	stockMonitor []queue.StockMonitorPayload
	err          error
}

func (q *recordingQueue) EnqueueCartClear(payload queue.CartClearPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.cartClears = append(q.cartClears, payload)
	return nil
}

func (q *recordingQueue) EnqueueOrderStatusChanged(payload queue.OrderStatusChangedPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.notices = append(q.notices, payload)
	return nil
}

func (q *recordingQueue) EnqueueStockMonitor(payload queue.StockMonitorPayload, _ time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.stockMonitor = append(q.stockMonitor, payload)
	return nil
}
