package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mealbasket/internal/auth"
	"github.com/mealbasket/internal/constants"
	"github.com/mealbasket/internal/lock"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/metrics"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/repository"

	"gorm.io/gorm"
)

const defaultRecentAlertHours = 24

// InventoryOptions 库存监控参数
type InventoryOptions struct {
	MinThreshold   int
	MaxThreshold   int
	PredictionDays int
	Forecaster     Forecaster
	Metrics        *metrics.Metrics
	Catalog        ProductCatalog // 非空时校验商品归属
}

// InventoryService 库存告警与预测
type InventoryService struct {
	alertRepo      repository.StockAlertRepository
	locker         lock.Locker
	forecaster     Forecaster
	metrics        *metrics.Metrics
	catalog        ProductCatalog
	minThreshold   int
	maxThreshold   int
	predictionDays int
	now            func() time.Time
}

// NewInventoryService 创建库存监控服务
func NewInventoryService(alertRepo repository.StockAlertRepository, locker lock.Locker, opts InventoryOptions) *InventoryService {
	svc := &InventoryService{
		alertRepo:      alertRepo,
		locker:         locker,
		forecaster:     opts.Forecaster,
		metrics:        opts.Metrics,
		catalog:        opts.Catalog,
		minThreshold:   opts.MinThreshold,
		maxThreshold:   opts.MaxThreshold,
		predictionDays: opts.PredictionDays,
		now:            time.Now,
	}
	if svc.forecaster == nil {
		svc.forecaster = NewRandomDecrementForecaster()
	}
	if svc.minThreshold <= 0 {
		svc.minThreshold = constants.DefaultMinimumThreshold
	}
	if svc.maxThreshold <= 0 {
		svc.maxThreshold = constants.DefaultMaximumThreshold
	}
	if svc.predictionDays <= 0 {
		svc.predictionDays = constants.DefaultPredictionDays
	}
	return svc
}

// Classify 由库存与最低阈值得出告警类型与提示语
func Classify(currentStock, minThreshold int) (string, string) {
	switch {
	case currentStock <= 0:
		return constants.AlertTypeOutOfStock, constants.AlertMessageOutOfStock
	case currentStock <= minThreshold:
		return constants.AlertTypeLowStock, constants.AlertMessageLowStock
	default:
		return constants.AlertTypeNormal, constants.AlertMessageNormal
	}
}

func authorizeVendor(principal auth.Principal, vendorID uint) error {
	if principal.UserID == 0 {
		return ErrUnauthenticated
	}
	if vendorID == 0 {
		return ErrInvalidInput
	}
	if !principal.CanActForVendor(vendorID) {
		return ErrForbidden
	}
	return nil
}

// requireVendorProduct 商品须存在且属于该商家，其他商家的商品同样视为不存在
func (s *InventoryService) requireVendorProduct(ctx context.Context, vendorID, productID uint) error {
	if productID == 0 {
		return ErrInvalidInput
	}
	if s.catalog == nil {
		return nil
	}
	products, err := s.catalog.Lookup(ctx, []uint{productID})
	if err != nil {
		return ErrCatalogFailed
	}
	product, ok := products[productID]
	if !ok || product.VendorID != vendorID {
		return ErrProductNotFound
	}
	return nil
}

// Monitor 刷新 (商家, 商品) 的监控记录，不存在则创建
// 同一键加进程锁，数据库侧依赖 monitor_key 唯一索引与行锁
func (s *InventoryService) Monitor(ctx context.Context, principal auth.Principal, vendorID, productID uint, currentStock int) (*models.StockAlert, error) {
	if err := authorizeVendor(principal, vendorID); err != nil {
		return nil, err
	}
	if err := s.requireVendorProduct(ctx, vendorID, productID); err != nil {
		return nil, err
	}
	return s.monitor(ctx, vendorID, productID, currentStock)
}

func (s *InventoryService) monitor(ctx context.Context, vendorID, productID uint, currentStock int) (*models.StockAlert, error) {
	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, fmt.Sprintf(constants.LockKeyStock, vendorID, productID))
		if err != nil {
			if errors.Is(err, lock.ErrLockTimeout) {
				return nil, ErrBusy
			}
			return nil, err
		}
		defer unlock()
	}

	key := models.StockMonitorKey(vendorID, productID)
	now := s.now()
	var result *models.StockAlert
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		alertRepo := s.alertRepo.WithTx(tx)
		existing, err := alertRepo.GetByMonitorKeyForUpdate(key)
		if err != nil {
			return err
		}
		if existing == nil {
			alertType, message := Classify(currentStock, s.minThreshold)
			monitorKey := key
			created := &models.StockAlert{
				VendorID:         vendorID,
				ProductID:        productID,
				MonitorKey:       &monitorKey,
				CurrentStock:     currentStock,
				MinimumThreshold: s.minThreshold,
				MaximumThreshold: s.maxThreshold,
				AlertType:        alertType,
				Message:          message,
				IsActive:         true,
				AlertTime:        now,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := alertRepo.Create(created); err != nil {
				return err
			}
			result = created
			return nil
		}

		minThreshold := existing.MinimumThreshold
		if minThreshold <= 0 {
			minThreshold = s.minThreshold
		}
		alertType, message := Classify(currentStock, minThreshold)
		existing.CurrentStock = currentStock
		existing.AlertType = alertType
		existing.Message = message
		existing.IsActive = true
		existing.AlertTime = now
		existing.UpdatedAt = now
		if err := alertRepo.UpdateMonitor(existing); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		logger.Errorw("stock_monitor_failed",
			"vendor_id", vendorID,
			"product_id", productID,
			"error", err,
		)
		return nil, ErrAlertFailed
	}
	s.metrics.IncStockAlert(result.AlertType)
	if result.AlertType != constants.AlertTypeNormal {
		logger.Infow("stock_alert_raised",
			"vendor_id", vendorID,
			"product_id", productID,
			"alert_type", result.AlertType,
			"current_stock", currentStock,
		)
	}
	return result, nil
}

// MonitorSystem 巡检任务调用，不校验身份
func (s *InventoryService) MonitorSystem(ctx context.Context, vendorID, productID uint, currentStock int) (*models.StockAlert, error) {
	if vendorID == 0 || productID == 0 {
		return nil, ErrInvalidInput
	}
	return s.monitor(ctx, vendorID, productID, currentStock)
}

// Predict 追加一条预测记录
func (s *InventoryService) Predict(ctx context.Context, principal auth.Principal, vendorID, productID uint, currentStock int) (*models.StockAlert, error) {
	if err := authorizeVendor(principal, vendorID); err != nil {
		return nil, err
	}
	if err := s.requireVendorProduct(ctx, vendorID, productID); err != nil {
		return nil, err
	}

	forecast := s.forecaster.Forecast(currentStock, s.predictionDays)
	now := s.now()
	predictionDate := now.AddDate(0, 0, s.predictionDays)
	predicted := forecast.PredictedStock
	confidence := forecast.Confidence
	message := fmt.Sprintf(constants.AlertMessagePredictionStable, s.predictionDays)
	if predicted <= constants.PredictionLowStockCeiling {
		message = fmt.Sprintf(constants.AlertMessagePredictionLow, s.predictionDays)
	}

	alert := &models.StockAlert{
		VendorID:         vendorID,
		ProductID:        productID,
		CurrentStock:     currentStock,
		MinimumThreshold: s.minThreshold,
		MaximumThreshold: s.maxThreshold,
		AlertType:        constants.AlertTypePrediction,
		Message:          message,
		IsActive:         true,
		AlertTime:        now,
		PredictedStock:   &predicted,
		PredictionDate:   &predictionDate,
		Confidence:       &confidence,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.alertRepo.Create(alert); err != nil {
		logger.Errorw("stock_prediction_failed",
			"vendor_id", vendorID,
			"product_id", productID,
			"error", err,
		)
		return nil, ErrAlertFailed
	}
	s.metrics.IncStockAlert(constants.AlertTypePrediction)
	return alert, nil
}

// Deactivate 关闭告警，保留历史
func (s *InventoryService) Deactivate(ctx context.Context, principal auth.Principal, alertID uint) (*models.StockAlert, error) {
	alert, err := s.ownedAlert(principal, alertID)
	if err != nil {
		return nil, err
	}
	if _, err := s.alertRepo.SetActive(alert.ID, false); err != nil {
		return nil, ErrAlertFailed
	}
	alert.IsActive = false
	return alert, nil
}

func (s *InventoryService) ownedAlert(principal auth.Principal, alertID uint) (*models.StockAlert, error) {
	if principal.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !principal.IsAdmin() && !principal.IsVendor() {
		return nil, ErrForbidden
	}
	alert, err := s.alertRepo.GetByID(alertID)
	if err != nil {
		return nil, ErrAlertFailed
	}
	if alert == nil {
		return nil, ErrAlertNotFound
	}
	if !principal.CanActForVendor(alert.VendorID) {
		return nil, ErrAlertNotFound
	}
	return alert, nil
}

// AlertQuery 告警列表查询
type AlertQuery struct {
	Page      int
	PageSize  int
	VendorID  uint
	ProductID uint
}

// scopedFilter 商家只能看到自己的告警
func scopedFilter(principal auth.Principal, query AlertQuery) (repository.StockAlertListFilter, error) {
	filter := repository.StockAlertListFilter{
		Page:      query.Page,
		PageSize:  query.PageSize,
		VendorID:  query.VendorID,
		ProductID: query.ProductID,
	}
	if principal.UserID == 0 {
		return filter, ErrUnauthenticated
	}
	switch {
	case principal.IsAdmin():
	case principal.IsVendor():
		if filter.VendorID != 0 && filter.VendorID != principal.VendorID {
			return filter, ErrForbidden
		}
		filter.VendorID = principal.VendorID
	default:
		return filter, ErrForbidden
	}
	return filter, nil
}

func (s *InventoryService) list(filter repository.StockAlertListFilter) ([]models.StockAlert, int64, error) {
	alerts, total, err := s.alertRepo.List(filter)
	if err != nil {
		return nil, 0, ErrAlertFailed
	}
	return alerts, total, nil
}

// ListByVendor 商家全部告警
func (s *InventoryService) ListByVendor(ctx context.Context, principal auth.Principal, query AlertQuery) ([]models.StockAlert, int64, error) {
	if err := authorizeVendor(principal, query.VendorID); err != nil {
		return nil, 0, err
	}
	filter, err := scopedFilter(principal, query)
	if err != nil {
		return nil, 0, err
	}
	return s.list(filter)
}

// ListActive 有效告警
func (s *InventoryService) ListActive(ctx context.Context, principal auth.Principal, query AlertQuery) ([]models.StockAlert, int64, error) {
	filter, err := scopedFilter(principal, query)
	if err != nil {
		return nil, 0, err
	}
	filter.ActiveOnly = true
	return s.list(filter)
}

// ListCritical 有效的缺货告警
func (s *InventoryService) ListCritical(ctx context.Context, principal auth.Principal, query AlertQuery) ([]models.StockAlert, int64, error) {
	filter, err := scopedFilter(principal, query)
	if err != nil {
		return nil, 0, err
	}
	filter.ActiveOnly = true
	filter.AlertType = constants.AlertTypeOutOfStock
	return s.list(filter)
}

// ListRecent 最近 hours 小时内的告警
func (s *InventoryService) ListRecent(ctx context.Context, principal auth.Principal, query AlertQuery, hours int) ([]models.StockAlert, int64, error) {
	filter, err := scopedFilter(principal, query)
	if err != nil {
		return nil, 0, err
	}
	if hours <= 0 {
		hours = defaultRecentAlertHours
	}
	since := s.now().Add(-time.Duration(hours) * time.Hour)
	filter.Since = &since
	return s.list(filter)
}

// ListAll 管理端告警列表
func (s *InventoryService) ListAll(ctx context.Context, principal auth.Principal, query AlertQuery) ([]models.StockAlert, int64, error) {
	if !principal.IsAdmin() {
		return nil, 0, ErrForbidden
	}
	return s.list(repository.StockAlertListFilter{
		Page:      query.Page,
		PageSize:  query.PageSize,
		VendorID:  query.VendorID,
		ProductID: query.ProductID,
	})
}

// Delete 管理端删除告警
func (s *InventoryService) Delete(ctx context.Context, principal auth.Principal, alertID uint) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	deleted, err := s.alertRepo.Delete(alertID)
	if err != nil {
		return ErrAlertFailed
	}
	if !deleted {
		return ErrAlertNotFound
	}
	logger.Infow("stock_alert_deleted", "alert_id", alertID, "operator_id", principal.UserID)
	return nil
}
