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
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemView 购物车项展示（读取时关联商品实时信息）
type CartItemView struct {
	ID          uint         `json:"id"`
	ProductID   uint         `json:"product_id"`
	Quantity    int          `json:"quantity"`
	ProductName string       `json:"product_name"`
	Image       string       `json:"image"`
	UnitPrice   models.Money `json:"unit_price"`
	Subtotal    models.Money `json:"subtotal"`
	VendorID    uint         `json:"vendor_id"`
	VendorName  string       `json:"vendor_name"`
	Available   bool         `json:"available"`
}

// CartView 购物车汇总
type CartView struct {
	Items       []CartItemView `json:"items"`
	VendorID    uint           `json:"vendor_id"`
	ItemCount   int            `json:"item_count"`
	TotalAmount models.Money   `json:"total_amount"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo repository.CartRepository
	catalog  ProductCatalog
	locker   lock.Locker
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, catalog ProductCatalog, locker lock.Locker) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		catalog:  catalog,
		locker:   locker,
	}
}

func cartLockKey(userID uint) string {
	return fmt.Sprintf(constants.LockKeyCartUser, userID)
}

func requireShopper(principal auth.Principal) error {
	if principal.UserID == 0 {
		return ErrUnauthenticated
	}
	if !principal.CanShop() {
		return ErrForbidden
	}
	return nil
}

// lockUser 获取用户级购物车锁，加购与下单共用
func lockUser(ctx context.Context, locker lock.Locker, userID uint) (lock.Unlock, error) {
	if locker == nil {
		return func() {}, nil
	}
	unlock, err := locker.Lock(ctx, cartLockKey(userID))
	if err != nil {
		if errors.Is(err, lock.ErrLockTimeout) {
			return nil, ErrBusy
		}
		return nil, err
	}
	return unlock, nil
}

// purgeCheckedOut 清理上次下单未能删除的购物车项，需在用户锁内调用
func purgeCheckedOut(cartRepo repository.CartRepository, userID uint) error {
	removed, err := cartRepo.PurgeCheckedOut(userID)
	if err != nil {
		logger.Warnw("cart_purge_checked_out_failed", "user_id", userID, "error", err)
		return err
	}
	if removed > 0 {
		logger.Infow("cart_purge_checked_out", "user_id", userID, "removed", removed)
	}
	return nil
}

// AddItem 加入购物车，同一商品累加数量
func (s *CartService) AddItem(ctx context.Context, principal auth.Principal, productID uint, quantity int) (*models.CartItem, error) {
	if err := requireShopper(principal); err != nil {
		return nil, err
	}
	if productID == 0 || quantity <= 0 {
		return nil, ErrQuantityInvalid
	}
	unlock, err := lockUser(ctx, s.locker, principal.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := purgeCheckedOut(s.cartRepo, principal.UserID); err != nil {
		return nil, ErrCartFailed
	}
	existing, err := s.cartRepo.ListByUser(principal.UserID)
	if err != nil {
		return nil, ErrCartFailed
	}
	ids := make([]uint, 0, len(existing)+1)
	ids = append(ids, productID)
	for _, item := range existing {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, ErrCatalogFailed
	}
	product, ok := products[productID]
	if !ok || !product.IsActive {
		return nil, ErrProductNotFound
	}
	if vendorID := cartVendor(existing, products); vendorID != 0 && vendorID != product.VendorID {
		return nil, ErrCartVendorMismatch
	}

	item, err := s.cartRepo.AddQuantity(principal.UserID, productID, quantity, time.Now())
	if err != nil {
		logger.Errorw("cart_add_failed", "user_id", principal.UserID, "product_id", productID, "error", err)
		return nil, ErrCartFailed
	}
	return item, nil
}

// cartVendor 购物车中第一个仍存在的商品所属商家
func cartVendor(items []models.CartItem, products map[uint]CatalogProduct) uint {
	for _, item := range items {
		if product, ok := products[item.ProductID]; ok {
			return product.VendorID
		}
	}
	return 0
}

// SetQuantity 修改数量，0 表示移除
func (s *CartService) SetQuantity(ctx context.Context, principal auth.Principal, itemID uint, quantity int) (*models.CartItem, error) {
	if err := requireShopper(principal); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, ErrQuantityInvalid
	}
	if quantity == 0 {
		return nil, s.RemoveItem(ctx, principal, itemID)
	}
	unlock, err := lockUser(ctx, s.locker, principal.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated, err := s.cartRepo.UpdateQuantity(itemID, principal.UserID, quantity, time.Now())
	if err != nil {
		return nil, ErrCartFailed
	}
	if !updated {
		return nil, ErrCartItemNotFound
	}
	item, err := s.cartRepo.GetByIDAndUser(itemID, principal.UserID)
	if err != nil {
		return nil, ErrCartFailed
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(ctx context.Context, principal auth.Principal, itemID uint) error {
	if err := requireShopper(principal); err != nil {
		return err
	}
	unlock, err := lockUser(ctx, s.locker, principal.UserID)
	if err != nil {
		return err
	}
	defer unlock()

	deleted, err := s.cartRepo.DeleteByIDAndUser(itemID, principal.UserID)
	if err != nil {
		return ErrCartFailed
	}
	if !deleted {
		return ErrCartItemNotFound
	}
	return nil
}

// ListItems 购物车列表，商品已失效的项标记为不可用
func (s *CartService) ListItems(ctx context.Context, principal auth.Principal) (*CartView, error) {
	if err := requireShopper(principal); err != nil {
		return nil, err
	}
	items, err := s.cartRepo.ListByUser(principal.UserID)
	if err != nil {
		return nil, ErrCartFailed
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, ErrCatalogFailed
	}

	view := &CartView{Items: make([]CartItemView, 0, len(items))}
	total := decimal.Zero
	for _, item := range items {
		row := CartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
		if product, ok := products[item.ProductID]; ok {
			row.ProductName = product.Name
			row.Image = product.Image
			row.UnitPrice = product.Price
			row.VendorID = product.VendorID
			row.VendorName = product.VendorName
			row.Available = product.IsActive
			row.Subtotal = product.Price.Mul(item.Quantity)
			if row.Available {
				total = total.Add(row.Subtotal.Decimal)
				if view.VendorID == 0 {
					view.VendorID = product.VendorID
				}
			}
		}
		view.ItemCount += item.Quantity
		view.Items = append(view.Items, row)
	}
	view.TotalAmount = models.NewMoneyFromDecimal(total)
	return view, nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, principal auth.Principal) error {
	if err := requireShopper(principal); err != nil {
		return err
	}
	unlock, err := lockUser(ctx, s.locker, principal.UserID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.cartRepo.ClearByUser(principal.UserID); err != nil {
		return ErrCartFailed
	}
	return nil
}
