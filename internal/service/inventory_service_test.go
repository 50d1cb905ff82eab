package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mealbasket/internal/constants"
	"github.com/mealbasket/internal/models"
)

type fixedForecaster struct {
	predicted int
}

func (f fixedForecaster) Forecast(currentStock, _ int) Forecast {
	return Forecast{PredictedStock: f.predicted, Confidence: PredictionConfidence(currentStock - f.predicted)}
}

func (f *serviceFixture) inventoryService(opts InventoryOptions) *InventoryService {
	return NewInventoryService(f.alertRepo, f.locker, opts)
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		stock int
		min   int
		want  string
	}{
		{0, 10, constants.AlertTypeOutOfStock},
		{-1, 10, constants.AlertTypeOutOfStock},
		{1, 10, constants.AlertTypeLowStock},
		{10, 10, constants.AlertTypeLowStock},
		{11, 10, constants.AlertTypeNormal},
	}
	for _, tc := range cases {
		got, message := Classify(tc.stock, tc.min)
		if got != tc.want {
			t.Fatalf("Classify(%d,%d) want %s got %s", tc.stock, tc.min, tc.want, got)
		}
		if message == "" {
			t.Fatalf("Classify(%d,%d) returned empty message", tc.stock, tc.min)
		}
	}
}

func TestPredictionConfidence(t *testing.T) {
	cases := map[int]float64{0: 0.85, 2: 0.85, 3: 0.70, 5: 0.70, 6: 0.50, -2: 0.85, -9: 0.50}
	for diff, want := range cases {
		if got := PredictionConfidence(diff); got != want {
			t.Fatalf("confidence(%d) want %v got %v", diff, want, got)
		}
	}
}

func TestRandomDecrementForecasterRange(t *testing.T) {
	forecaster := NewRandomDecrementForecaster()
	for i := 0; i < 50; i++ {
		result := forecaster.Forecast(20, 7)
		if result.PredictedStock < 15 || result.PredictedStock > 19 {
			t.Fatalf("predicted stock out of range: %d", result.PredictedStock)
		}
		if result.Confidence != 0.85 && result.Confidence != 0.70 {
			t.Fatalf("unexpected confidence: %v", result.Confidence)
		}
	}
}

func TestMonitorKeepsSingleRowPerProduct(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.inventoryService(InventoryOptions{})
	ctx := context.Background()

	first, err := svc.Monitor(ctx, vendorPrincipal(3, 1), 1, 10, 5)
	if err != nil {
		t.Fatalf("first monitor failed: %v", err)
	}
	if first.AlertType != constants.AlertTypeLowStock || first.MinimumThreshold != constants.DefaultMinimumThreshold {
		t.Fatalf("first monitor unexpected: %+v", first)
	}

	second, err := svc.Monitor(ctx, vendorPrincipal(3, 1), 1, 10, 0)
	if err != nil {
		t.Fatalf("second monitor failed: %v", err)
	}
	if second.ID != first.ID || second.AlertType != constants.AlertTypeOutOfStock || second.CurrentStock != 0 {
		t.Fatalf("second monitor should update the same row: %+v", second)
	}

	var count int64
	f.db.Model(&models.StockAlert{}).Where("vendor_id = ? AND product_id = ?", 1, 10).Count(&count)
	if count != 1 {
		t.Fatalf("want one monitor row got %d", count)
	}
}

func TestMonitorUsesStoredThresholdAndReactivates(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.inventoryService(InventoryOptions{})
	ctx := context.Background()

	alert, err := svc.Monitor(ctx, vendorPrincipal(3, 1), 1, 10, 50)
	if err != nil {
		t.Fatalf("monitor failed: %v", err)
	}
	if alert.AlertType != constants.AlertTypeNormal {
		t.Fatalf("want NORMAL got %s", alert.AlertType)
	}
	if err := f.db.Model(&models.StockAlert{}).Where("id = ?", alert.ID).Update("minimum_threshold", 60).Error; err != nil {
		t.Fatalf("raise threshold failed: %v", err)
	}
	if _, err := svc.Deactivate(ctx, vendorPrincipal(3, 1), alert.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	updated, err := svc.Monitor(ctx, vendorPrincipal(3, 1), 1, 10, 50)
	if err != nil {
		t.Fatalf("monitor failed: %v", err)
	}
	if updated.AlertType != constants.AlertTypeLowStock || !updated.IsActive {
		t.Fatalf("stored threshold should classify as low stock and reactivate: %+v", updated)
	}
}

func TestMonitorAuthorization(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.inventoryService(InventoryOptions{})
	ctx := context.Background()

	if _, err := svc.Monitor(ctx, vendorPrincipal(3, 2), 1, 10, 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other vendor want ErrForbidden got %v", err)
	}
	if _, err := svc.Monitor(ctx, shopper(7), 1, 10, 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("shopper want ErrForbidden got %v", err)
	}
	if _, err := svc.Monitor(ctx, vendorPrincipal(3, 1), 1, 0, 5); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing product want ErrInvalidInput got %v", err)
	}
	if _, err := svc.Monitor(ctx, adminPrincipal(), 1, 10, 5); err != nil {
		t.Fatalf("admin monitor failed: %v", err)
	}
	if _, err := svc.MonitorSystem(ctx, 1, 10, 3); err != nil {
		t.Fatalf("system monitor failed: %v", err)
	}
}

func TestPredictAppendsRows(t *testing.T) {
	f := setupServiceTest(t)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := f.inventoryService(InventoryOptions{Forecaster: fixedForecaster{predicted: 4}})
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := svc.Predict(ctx, vendorPrincipal(3, 1), 1, 10, 6)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if first.AlertType != constants.AlertTypePrediction || first.MonitorKey != nil {
		t.Fatalf("prediction row unexpected: %+v", first)
	}
	if *first.PredictedStock != 4 || *first.Confidence != 0.85 {
		t.Fatalf("forecast not stored: predicted=%d confidence=%v", *first.PredictedStock, *first.Confidence)
	}
	if !first.PredictionDate.Equal(now.AddDate(0, 0, constants.DefaultPredictionDays)) {
		t.Fatalf("prediction date want +7d got %v", first.PredictionDate)
	}
	if first.Message != "Stock Prediction: Product may run out of stock within 7 days" {
		t.Fatalf("unexpected message: %s", first.Message)
	}

	svc.forecaster = fixedForecaster{predicted: 40}
	second, err := svc.Predict(ctx, vendorPrincipal(3, 1), 1, 10, 45)
	if err != nil {
		t.Fatalf("second predict failed: %v", err)
	}
	if second.ID == first.ID || second.Message != "Stock Prediction: Product stock levels are stable for next 7 days" {
		t.Fatalf("second prediction unexpected: %+v", second)
	}

	var count int64
	f.db.Model(&models.StockAlert{}).Where("alert_type = ?", constants.AlertTypePrediction).Count(&count)
	if count != 2 {
		t.Fatalf("predictions should append, got %d rows", count)
	}
}

func TestAlertQueries(t *testing.T) {
	f := setupServiceTest(t)
	svc := f.inventoryService(InventoryOptions{})
	ctx := context.Background()
	base := time.Now()

	svc.now = func() time.Time { return base.Add(-48 * time.Hour) }
	old, err := svc.Monitor(ctx, vendorPrincipal(3, 1), 1, 10, 0)
	if err != nil {
		t.Fatalf("old monitor failed: %v", err)
	}
	svc.now = func() time.Time { return base }
	if _, err := svc.Monitor(ctx, vendorPrincipal(3, 1), 1, 11, 3); err != nil {
		t.Fatalf("monitor failed: %v", err)
	}
	if _, err := svc.Monitor(ctx, vendorPrincipal(4, 2), 2, 20, 0); err != nil {
		t.Fatalf("vendor 2 monitor failed: %v", err)
	}

	mine, total, err := svc.ListByVendor(ctx, vendorPrincipal(3, 1), AlertQuery{VendorID: 1})
	if err != nil || total != 2 || len(mine) != 2 {
		t.Fatalf("vendor list want 2 got %d err=%v", total, err)
	}
	if _, _, err := svc.ListByVendor(ctx, vendorPrincipal(3, 1), AlertQuery{VendorID: 2}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign vendor list want ErrForbidden got %v", err)
	}

	critical, total, err := svc.ListCritical(ctx, vendorPrincipal(3, 1), AlertQuery{})
	if err != nil || total != 1 || critical[0].ID != old.ID {
		t.Fatalf("critical list unexpected total=%d err=%v", total, err)
	}

	recent, total, err := svc.ListRecent(ctx, vendorPrincipal(3, 1), AlertQuery{}, 24)
	if err != nil || total != 1 || recent[0].ProductID != 11 {
		t.Fatalf("recent list unexpected total=%d err=%v", total, err)
	}

	if _, err := svc.Deactivate(ctx, vendorPrincipal(4, 2), old.ID); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("foreign deactivate want ErrAlertNotFound got %v", err)
	}
	if _, err := svc.Deactivate(ctx, vendorPrincipal(3, 1), old.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	active, total, _ := svc.ListActive(ctx, vendorPrincipal(3, 1), AlertQuery{})
	if total != 1 || active[0].ProductID != 11 {
		t.Fatalf("active list unexpected: %+v", active)
	}
	var stored models.StockAlert
	if err := f.db.First(&stored, old.ID).Error; err != nil || stored.IsActive {
		t.Fatalf("deactivated alert should be kept inactive: %+v err=%v", stored, err)
	}

	all, total, err := svc.ListAll(ctx, adminPrincipal(), AlertQuery{})
	if err != nil || total != 3 || len(all) != 3 {
		t.Fatalf("admin list want 3 got %d err=%v", total, err)
	}
	if _, _, err := svc.ListAll(ctx, vendorPrincipal(3, 1), AlertQuery{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("vendor admin list want ErrForbidden got %v", err)
	}
	if err := svc.Delete(ctx, vendorPrincipal(3, 1), old.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("vendor delete want ErrForbidden got %v", err)
	}
	if err := svc.Delete(ctx, adminPrincipal(), old.ID); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
	if err := svc.Delete(ctx, adminPrincipal(), old.ID); !errors.Is(err, ErrAlertNotFound) {
		t.Fatalf("second delete want ErrAlertNotFound got %v", err)
	}
}

func TestInventoryRejectsProductOfOtherVendor(t *testing.T) {
	f := setupServiceTest(t)
	seedVendor(t, f.db, 1, "Green Grocer")
	seedVendor(t, f.db, 2, "Oven House")
	seedProduct(t, f.db, 10, 1, "A", "10.00")
	seedProduct(t, f.db, 20, 2, "Pizza", "12.00")
	svc := f.inventoryService(InventoryOptions{Catalog: f.catalog, Forecaster: fixedForecaster{predicted: 3}})
	ctx := context.Background()

	if _, err := svc.Monitor(ctx, vendorPrincipal(50, 1), 1, 20, 4); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("monitor of another vendor's product want ErrProductNotFound got %v", err)
	}
	if _, err := svc.Predict(ctx, vendorPrincipal(50, 1), 1, 99, 4); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("predict of unknown product want ErrProductNotFound got %v", err)
	}
	if _, err := svc.Monitor(ctx, adminPrincipal(), 1, 20, 4); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("admin must also name the owning vendor, got %v", err)
	}
	var count int64
	f.db.Model(&models.StockAlert{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected calls must not write alerts, got %d", count)
	}

	alert, err := svc.Monitor(ctx, vendorPrincipal(50, 1), 1, 10, 4)
	if err != nil || alert.AlertType != constants.AlertTypeLowStock {
		t.Fatalf("own product monitor unexpected: %+v err=%v", alert, err)
	}
	if _, err := svc.Predict(ctx, adminPrincipal(), 2, 20, 8); err != nil {
		t.Fatalf("admin predict for owning vendor failed: %v", err)
	}
}
