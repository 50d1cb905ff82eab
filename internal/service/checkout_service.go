package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/mealbasket/internal/auth"
	"github.com/mealbasket/internal/lock"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/metrics"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/queue"
	"github.com/mealbasket/internal/repository"

	"gorm.io/gorm"
)

const defaultCartClearRetries = 3

// CheckoutInput 下单输入，商品与数量一律以服务端购物车为准
type CheckoutInput struct {
	DeliveryAddress string
	Phone           string
	Notes           string
}

// CartClearQueue 购物车清理兜底队列
type CartClearQueue interface {
	EnqueueCartClear(payload queue.CartClearPayload) error
}

// CheckoutService 下单服务
type CheckoutService struct {
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	catalog      ProductCatalog
	locker       lock.Locker
	queue        CartClearQueue
	metrics      *metrics.Metrics
	clearRetries int
	retryBackoff time.Duration
}

// CheckoutOptions 下单服务可选依赖
type CheckoutOptions struct {
	Queue            CartClearQueue
	Metrics          *metrics.Metrics
	CartClearRetries int
}

// NewCheckoutService 创建下单服务
func NewCheckoutService(cartRepo repository.CartRepository, orderRepo repository.OrderRepository, catalog ProductCatalog, locker lock.Locker, opts CheckoutOptions) *CheckoutService {
	retries := opts.CartClearRetries
	if retries <= 0 {
		retries = defaultCartClearRetries
	}
	return &CheckoutService{
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		catalog:      catalog,
		locker:       locker,
		queue:        opts.Queue,
		metrics:      opts.Metrics,
		clearRetries: retries,
		retryBackoff: 20 * time.Millisecond,
	}
}

// Checkout 将购物车转为订单
// 订单与订单项在同一事务内写入；购物车清理在提交之后执行，失败不回滚订单
func (s *CheckoutService) Checkout(ctx context.Context, principal auth.Principal, input CheckoutInput) (*models.Order, error) {
	started := time.Now()
	order, err := s.checkout(ctx, principal, input)
	s.metrics.ObserveCheckout(checkoutResult(err), time.Since(started))
	return order, err
}

func (s *CheckoutService) checkout(ctx context.Context, principal auth.Principal, input CheckoutInput) (*models.Order, error) {
	if err := requireShopper(principal); err != nil {
		return nil, err
	}
	address := strings.TrimSpace(input.DeliveryAddress)
	if address == "" {
		return nil, ErrAddressRequired
	}

	unlock, err := lockUser(ctx, s.locker, principal.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 已占用的行对下单不可见，清理失败不阻塞本次下单
	_ = purgeCheckedOut(s.cartRepo, principal.UserID)

	items, err := s.cartRepo.ListByUser(principal.UserID)
	if err != nil {
		return nil, ErrCartFailed
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, ErrCatalogFailed
	}

	lines := make([]models.OrderLine, 0, len(items))
	snapshotIDs := make([]uint, 0, len(items))
	var vendorID uint
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || !product.IsActive {
			logger.Infow("checkout_product_unavailable",
				"user_id", principal.UserID,
				"product_id", item.ProductID,
			)
			return nil, ErrProductUnavailable
		}
		if vendorID == 0 {
			vendorID = product.VendorID
		} else if product.VendorID != vendorID {
			return nil, ErrCartVendorMismatch
		}
		lines = append(lines, models.OrderLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price.Decimal,
			Quantity:    item.Quantity,
		})
		snapshotIDs = append(snapshotIDs, item.ID)
	}

	order, err := models.NewOrder(models.OrderDraft{
		OrderNo:         generateOrderNo(),
		UserID:          principal.UserID,
		VendorID:        vendorID,
		DeliveryAddress: address,
		Phone:           input.Phone,
		Notes:           input.Notes,
		Now:             time.Now(),
	}, lines)
	if err != nil {
		return nil, ErrQuantityInvalid
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, order.Items); err != nil {
			return err
		}
		marked, err := s.cartRepo.WithTx(tx).MarkCheckedOut(principal.UserID, order.ID, snapshotIDs)
		if err != nil {
			return err
		}
		if marked != int64(len(snapshotIDs)) {
			return fmt.Errorf("cart snapshot changed: marked %d of %d", marked, len(snapshotIDs))
		}
		return nil
	})
	if err != nil {
		logger.Errorw("checkout_order_create_failed",
			"user_id", principal.UserID,
			"order_no", order.OrderNo,
			"error", err,
		)
		return nil, ErrOrderCreateFailed
	}
	logger.Infow("checkout_order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", principal.UserID,
		"vendor_id", vendorID,
		"total_amount", order.TotalAmount.String(),
	)

	s.clearCart(ctx, principal.UserID, order.ID, snapshotIDs)
	return order, nil
}

// clearCart 删除被订单占用的购物车项，重试后仍失败则交给队列
// 队列也不可用时这些行保持占用状态，由下次加购或下单时清理
func (s *CheckoutService) clearCart(ctx context.Context, userID, orderID uint, itemIDs []uint) {
	var lastErr error
	attempts := 0
	for attempts < s.clearRetries {
		attempts++
		_, err := s.cartRepo.DeleteCheckedOut(userID, orderID)
		if err == nil {
			if attempts == 1 {
				s.metrics.IncCartClear("cleared")
			} else {
				s.metrics.IncCartClear("retried")
			}
			return
		}
		lastErr = err
		if attempts == s.clearRetries || !sleepContext(ctx, time.Duration(attempts)*s.retryBackoff) {
			break
		}
	}

	logger.Warnw("checkout_cart_clear_failed",
		"order_id", orderID,
		"user_id", userID,
		"attempts", attempts,
		"error", lastErr,
	)
	if s.queue != nil {
		err := s.queue.EnqueueCartClear(queue.CartClearPayload{
			UserID:  userID,
			OrderID: orderID,
			ItemIDs: itemIDs,
		})
		if err == nil {
			s.metrics.IncCartClear("enqueued")
			return
		}
		logger.Errorw("checkout_cart_clear_enqueue_failed",
			"order_id", orderID,
			"user_id", userID,
			"error", err,
		)
	}
	s.metrics.IncCartClear("failed")
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, ErrCartVendorMismatch):
		return "vendor_mismatch"
	case errors.Is(err, ErrBusy):
		return "busy"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrUnauthenticated):
		return "denied"
	default:
		return "error"
	}
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("MB%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

// ClearCartItems 删除被订单占用的购物车项，队列任务复用
func (s *CheckoutService) ClearCartItems(ctx context.Context, userID, orderID uint) (int64, error) {
	if userID == 0 || orderID == 0 {
		return 0, ErrInvalidInput
	}
	unlock, err := lockUser(ctx, s.locker, userID)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return s.cartRepo.DeleteCheckedOut(userID, orderID)
}
