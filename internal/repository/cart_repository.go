package repository

import (
	"errors"
	"time"

	"github.com/mealbasket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetByIDAndUser(id, userID uint) (*models.CartItem, error)
	GetByUserAndProduct(userID, productID uint) (*models.CartItem, error)
	AddQuantity(userID, productID uint, quantity int, now time.Time) (*models.CartItem, error)
	UpdateQuantity(id, userID uint, quantity int, now time.Time) (bool, error)
	DeleteByIDAndUser(id, userID uint) (bool, error)
	MarkCheckedOut(userID, orderID uint, ids []uint) (int64, error)
	DeleteCheckedOut(userID, orderID uint) (int64, error)
	PurgeCheckedOut(userID uint) (int64, error)
	ClearByUser(userID uint) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

const openCartCondition = "checkout_order_id IS NULL"

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车项（按主键升序，顺序稳定），已被订单占用的行不返回
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("user_id = ?", userID).Where(openCartCondition).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByIDAndUser 获取属于用户的购物车项
func (r *GormCartRepository) GetByIDAndUser(id, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Where(openCartCondition).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByUserAndProduct 按用户与商品获取购物车项
func (r *GormCartRepository) GetByUserAndProduct(userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Where(openCartCondition).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// AddQuantity 累加购物车数量，行不存在时插入
// 依赖 (user_id, product_id) 唯一索引做原子 upsert；调用前需先 PurgeCheckedOut，避免累加到已占用的行
func (r *GormCartRepository) AddQuantity(userID, productID uint, quantity int, now time.Time) (*models.CartItem, error) {
	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": now,
		}),
	}).Create(item).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserAndProduct(userID, productID)
}

// UpdateQuantity 设置购物车项数量
func (r *GormCartRepository) UpdateQuantity(id, userID uint, quantity int, now time.Time) (bool, error) {
	result := r.db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Where(openCartCondition).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteByIDAndUser 删除属于用户的购物车项
func (r *GormCartRepository) DeleteByIDAndUser(id, userID uint) (bool, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Where(openCartCondition).Delete(&models.CartItem{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkCheckedOut 将下单快照中的购物车项标记为被订单占用，需与订单写入同一事务
func (r *GormCartRepository) MarkCheckedOut(userID, orderID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Where(openCartCondition).
		Update("checkout_order_id", orderID)
	return result.RowsAffected, result.Error
}

// DeleteCheckedOut 删除被指定订单占用的购物车项，重复执行无副作用
func (r *GormCartRepository) DeleteCheckedOut(userID, orderID uint) (int64, error) {
	result := r.db.Where("user_id = ? AND checkout_order_id = ?", userID, orderID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// PurgeCheckedOut 删除用户所有已被订单占用的购物车项
func (r *GormCartRepository) PurgeCheckedOut(userID uint) (int64, error) {
	result := r.db.Where("user_id = ? AND checkout_order_id IS NOT NULL", userID).Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// ClearByUser 清空购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
