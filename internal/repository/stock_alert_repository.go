package repository

import (
	"errors"

	"github.com/mealbasket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockAlertRepository 库存告警数据访问接口
type StockAlertRepository interface {
	GetByID(id uint) (*models.StockAlert, error)
	GetByMonitorKeyForUpdate(key string) (*models.StockAlert, error)
	Create(alert *models.StockAlert) error
	UpdateMonitor(alert *models.StockAlert) error
	SetActive(id uint, active bool) (bool, error)
	Delete(id uint) (bool, error)
	List(filter StockAlertListFilter) ([]models.StockAlert, int64, error)
	WithTx(tx *gorm.DB) *GormStockAlertRepository
}

// GormStockAlertRepository GORM 实现
type GormStockAlertRepository struct {
	db *gorm.DB
}

// NewStockAlertRepository 创建库存告警仓库
func NewStockAlertRepository(db *gorm.DB) *GormStockAlertRepository {
	return &GormStockAlertRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockAlertRepository) WithTx(tx *gorm.DB) *GormStockAlertRepository {
	if tx == nil {
		return r
	}
	return &GormStockAlertRepository{db: tx}
}

// GetByID 根据 ID 获取告警
func (r *GormStockAlertRepository) GetByID(id uint) (*models.StockAlert, error) {
	var alert models.StockAlert
	if err := r.db.First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// GetByMonitorKeyForUpdate 加行锁读取监控记录
func (r *GormStockAlertRepository) GetByMonitorKeyForUpdate(key string) (*models.StockAlert, error) {
	var alert models.StockAlert
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("monitor_key = ?", key).
		First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// Create 创建告警
func (r *GormStockAlertRepository) Create(alert *models.StockAlert) error {
	return r.db.Create(alert).Error
}

// UpdateMonitor 刷新监控记录的库存、分类与时间
func (r *GormStockAlertRepository) UpdateMonitor(alert *models.StockAlert) error {
	if alert == nil || alert.ID == 0 {
		return nil
	}
	return r.db.Model(&models.StockAlert{}).Where("id = ?", alert.ID).Updates(map[string]interface{}{
		"current_stock": alert.CurrentStock,
		"alert_type":    alert.AlertType,
		"message":       alert.Message,
		"is_active":     alert.IsActive,
		"alert_time":    alert.AlertTime,
		"updated_at":    alert.UpdatedAt,
	}).Error
}

// SetActive 设置告警有效状态
func (r *GormStockAlertRepository) SetActive(id uint, active bool) (bool, error) {
	result := r.db.Model(&models.StockAlert{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除告警
func (r *GormStockAlertRepository) Delete(id uint) (bool, error) {
	result := r.db.Delete(&models.StockAlert{}, id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 告警列表（按告警时间倒序）
func (r *GormStockAlertRepository) List(filter StockAlertListFilter) ([]models.StockAlert, int64, error) {
	query := r.db.Model(&models.StockAlert{})
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.AlertType != "" {
		query = query.Where("alert_type = ?", filter.AlertType)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Since != nil {
		query = query.Where("alert_time >= ?", *filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var alerts []models.StockAlert
	if err := query.Order("alert_time desc, id desc").Find(&alerts).Error; err != nil {
		return nil, 0, err
	}
	return alerts, total, nil
}
