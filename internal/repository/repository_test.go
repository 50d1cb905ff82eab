package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mealbasket/internal/constants"
	"github.com/mealbasket/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestCartAddQuantityMergesRows(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCartRepository(db)
	now := time.Now()

	first, err := repo.AddQuantity(1, 10, 2, now)
	if err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	second, err := repo.AddQuantity(1, 10, 3, now.Add(time.Second))
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("merge should keep the same row, got %d and %d", first.ID, second.ID)
	}
	if second.Quantity != 5 {
		t.Fatalf("quantity want 5 got %d", second.Quantity)
	}

	var count int64
	db.Model(&models.CartItem{}).Where("user_id = ? AND product_id = ?", 1, 10).Count(&count)
	if count != 1 {
		t.Fatalf("row count want 1 got %d", count)
	}

	other, err := repo.AddQuantity(2, 10, 1, now)
	if err != nil {
		t.Fatalf("other user add failed: %v", err)
	}
	if other.ID == first.ID || other.Quantity != 1 {
		t.Fatalf("other user should get its own row: %+v", other)
	}
}

func TestCartOwnershipScopedMutations(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCartRepository(db)
	item, err := repo.AddQuantity(1, 10, 1, time.Now())
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if got, err := repo.GetByIDAndUser(item.ID, 2); err != nil || got != nil {
		t.Fatalf("foreign user lookup want nil,nil got %+v,%v", got, err)
	}
	if ok, err := repo.UpdateQuantity(item.ID, 2, 9, time.Now()); err != nil || ok {
		t.Fatalf("foreign user update should not apply: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.DeleteByIDAndUser(item.ID, 2); err != nil || ok {
		t.Fatalf("foreign user delete should not apply: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.UpdateQuantity(item.ID, 1, 4, time.Now()); err != nil || !ok {
		t.Fatalf("owner update should apply: ok=%v err=%v", ok, err)
	}
	got, _ := repo.GetByIDAndUser(item.ID, 1)
	if got == nil || got.Quantity != 4 {
		t.Fatalf("quantity want 4 got %+v", got)
	}
}

func TestCartCheckedOutRowsLifecycle(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCartRepository(db)
	a, _ := repo.AddQuantity(1, 10, 1, time.Now())
	b, _ := repo.AddQuantity(1, 11, 1, time.Now())

	marked, err := repo.MarkCheckedOut(1, 50, []uint{a.ID, b.ID})
	if err != nil || marked != 2 {
		t.Fatalf("mark want 2 got %d err=%v", marked, err)
	}
	if again, _ := repo.MarkCheckedOut(1, 51, []uint{a.ID}); again != 0 {
		t.Fatalf("row already held by an order must not be re-marked, got %d", again)
	}
	c, _ := repo.AddQuantity(1, 12, 1, time.Now())

	items, _ := repo.ListByUser(1)
	if len(items) != 1 || items[0].ID != c.ID {
		t.Fatalf("checked out rows should be hidden: %+v", items)
	}
	if got, _ := repo.GetByIDAndUser(a.ID, 1); got != nil {
		t.Fatalf("checked out row should not be loadable: %+v", got)
	}
	if ok, _ := repo.UpdateQuantity(a.ID, 1, 5, time.Now()); ok {
		t.Fatalf("checked out row should not be updatable")
	}
	if ok, _ := repo.DeleteByIDAndUser(a.ID, 1); ok {
		t.Fatalf("checked out row should not be removable as a cart item")
	}

	removed, err := repo.DeleteCheckedOut(1, 50)
	if err != nil || removed != 2 {
		t.Fatalf("first delete want 2 got %d err=%v", removed, err)
	}
	removed, err = repo.DeleteCheckedOut(1, 50)
	if err != nil || removed != 0 {
		t.Fatalf("second delete want 0 got %d err=%v", removed, err)
	}

	d, _ := repo.AddQuantity(1, 13, 1, time.Now())
	if _, err := repo.MarkCheckedOut(1, 52, []uint{d.ID}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	purged, err := repo.PurgeCheckedOut(1)
	if err != nil || purged != 1 {
		t.Fatalf("purge want 1 got %d err=%v", purged, err)
	}
	items, _ = repo.ListByUser(1)
	if len(items) != 1 || items[0].ProductID != 12 {
		t.Fatalf("item added after snapshot should survive: %+v", items)
	}
}

func createTestOrder(t *testing.T, repo *GormOrderRepository, userID, vendorID uint, no string) *models.Order {
	t.Helper()
	order, err := models.NewOrder(models.OrderDraft{
		OrderNo:         no,
		UserID:          userID,
		VendorID:        vendorID,
		DeliveryAddress: "1 Road",
	}, []models.OrderLine{
		{ProductID: 1, ProductName: "A", UnitPrice: decimal.RequireFromString("3.50"), Quantity: 2},
	})
	if err != nil {
		t.Fatalf("build order failed: %v", err)
	}
	if err := repo.Create(order, order.Items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderCreateAndListByVendor(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	createTestOrder(t, repo, 1, 7, "MB-1")
	createTestOrder(t, repo, 2, 7, "MB-2")
	createTestOrder(t, repo, 1, 8, "MB-3")

	orders, total, err := repo.ListByVendor(OrderListFilter{VendorID: 7})
	if err != nil {
		t.Fatalf("list by vendor failed: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("vendor orders want 2 got total=%d len=%d", total, len(orders))
	}
	for _, order := range orders {
		if order.VendorID != 7 {
			t.Fatalf("foreign vendor order leaked: %+v", order)
		}
		if len(order.Items) != 1 {
			t.Fatalf("items should be preloaded: %+v", order)
		}
	}
	if orders[0].OrderNo != "MB-2" {
		t.Fatalf("newest order should come first, got %s", orders[0].OrderNo)
	}

	mine, total, err := repo.ListByUser(OrderListFilter{UserID: 1, Page: 1, PageSize: 1})
	if err != nil || total != 2 || len(mine) != 1 {
		t.Fatalf("user pagination unexpected total=%d len=%d err=%v", total, len(mine), err)
	}
}

func TestOrderCompareAndSwapStatus(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)
	order := createTestOrder(t, repo, 1, 7, "MB-CAS")
	now := time.Now()

	ok, err := repo.CompareAndSwapStatus(order.ID, constants.OrderStatusPending, 0, constants.OrderStatusConfirmed, now)
	if err != nil || !ok {
		t.Fatalf("first swap should succeed: ok=%v err=%v", ok, err)
	}
	ok, err = repo.CompareAndSwapStatus(order.ID, constants.OrderStatusPending, 0, constants.OrderStatusCancelled, now)
	if err != nil || ok {
		t.Fatalf("stale swap should fail: ok=%v err=%v", ok, err)
	}
	stored, _ := repo.GetByID(order.ID)
	if stored.Status != constants.OrderStatusConfirmed || stored.Version != 1 {
		t.Fatalf("stored order unexpected: status=%s version=%d", stored.Status, stored.Version)
	}
}

func TestStockAlertMonitorKeyUnique(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewStockAlertRepository(db)
	key := models.StockMonitorKey(1, 2)
	now := time.Now()
	first := &models.StockAlert{VendorID: 1, ProductID: 2, MonitorKey: &key, CurrentStock: 5, MinimumThreshold: 10, MaximumThreshold: 100, AlertType: constants.AlertTypeLowStock, IsActive: true, AlertTime: now}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create monitor alert failed: %v", err)
	}
	dup := &models.StockAlert{VendorID: 1, ProductID: 2, MonitorKey: &key, CurrentStock: 5, MinimumThreshold: 10, MaximumThreshold: 100, AlertType: constants.AlertTypeLowStock, IsActive: true, AlertTime: now}
	if err := repo.Create(dup); err == nil {
		t.Fatalf("second monitor row for same key should violate unique index")
	}
	for i := 0; i < 2; i++ {
		prediction := &models.StockAlert{VendorID: 1, ProductID: 2, CurrentStock: 5, MinimumThreshold: 10, MaximumThreshold: 100, AlertType: constants.AlertTypePrediction, IsActive: true, AlertTime: now}
		if err := repo.Create(prediction); err != nil {
			t.Fatalf("prediction rows should not collide: %v", err)
		}
	}

	found, err := repo.GetByMonitorKeyForUpdate(key)
	if err != nil || found == nil || found.ID != first.ID {
		t.Fatalf("lookup by key unexpected: %+v err=%v", found, err)
	}

	all, total, err := repo.List(StockAlertListFilter{VendorID: 1})
	if err != nil || total != 3 || len(all) != 3 {
		t.Fatalf("list want 3 got total=%d len=%d err=%v", total, len(all), err)
	}

	if ok, err := repo.SetActive(first.ID, false); err != nil || !ok {
		t.Fatalf("deactivate failed: ok=%v err=%v", ok, err)
	}
	active, total, _ := repo.List(StockAlertListFilter{VendorID: 1, ActiveOnly: true})
	if total != 2 || len(active) != 2 {
		t.Fatalf("active list want 2 got %d", total)
	}
}

func TestApplyPaginationCapsPageSize(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewCartRepository(db)
	for i := 0; i < maxPageSize+5; i++ {
		if _, err := repo.AddQuantity(uint(i+1), 10, 1, time.Now()); err != nil {
			t.Fatalf("seed cart row failed: %v", err)
		}
	}

	var items []models.CartItem
	if err := applyPagination(db.Model(&models.CartItem{}), 1, 1000).Find(&items).Error; err != nil {
		t.Fatalf("paged query failed: %v", err)
	}
	if len(items) != maxPageSize {
		t.Fatalf("page size should be capped at %d, got %d", maxPageSize, len(items))
	}
	items = nil
	if err := applyPagination(db.Model(&models.CartItem{}).Order("id asc"), 0, 100).Find(&items).Error; err != nil {
		t.Fatalf("paged query failed: %v", err)
	}
	if len(items) != maxPageSize || items[0].UserID != 1 {
		t.Fatalf("page 0 should read as the first page, got %d rows", len(items))
	}
	items = nil
	if err := applyPagination(db.Model(&models.CartItem{}), 2, 0).Find(&items).Error; err != nil {
		t.Fatalf("unpaged query failed: %v", err)
	}
	if len(items) != maxPageSize+5 {
		t.Fatalf("non positive page size should return everything, got %d", len(items))
	}
}
