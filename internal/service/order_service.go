package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mealbasket/internal/auth"
	"github.com/mealbasket/internal/constants"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/metrics"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/queue"
	"github.com/mealbasket/internal/repository"

	"gorm.io/gorm"
)

// OrderNotifier 状态变更通知
type OrderNotifier interface {
	EnqueueOrderStatusChanged(payload queue.OrderStatusChangedPayload) error
}

// OrderService 订单状态机与用户订单查询
type OrderService struct {
	orderRepo repository.OrderRepository
	notifier  OrderNotifier
	metrics   *metrics.Metrics
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, notifier OrderNotifier, m *metrics.Metrics) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		notifier:  notifier,
		metrics:   m,
	}
}

var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusPreparing: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusPreparing: {
		constants.OrderStatusReady:     true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusReady: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
}

var knownStatuses = map[string]struct{}{
	constants.OrderStatusPending:   {},
	constants.OrderStatusConfirmed: {},
	constants.OrderStatusPreparing: {},
	constants.OrderStatusReady:     {},
	constants.OrderStatusDelivered: {},
	constants.OrderStatusCancelled: {},
}

// ParseOrderStatus 解析状态（不区分大小写）
func ParseOrderStatus(raw string) (string, bool) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	_, ok := knownStatuses[status]
	return status, ok
}

// isTransitionAllowed 同状态不算流转
func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// IsTerminalStatus 是否终态
func IsTerminalStatus(status string) bool {
	return status == constants.OrderStatusDelivered || status == constants.OrderStatusCancelled
}

// Transition 商家推进订单状态
func (s *OrderService) Transition(ctx context.Context, principal auth.Principal, vendorID, orderID uint, targetStatus string) (*models.Order, error) {
	target, ok := ParseOrderStatus(targetStatus)
	if !ok {
		return nil, ErrOrderStatusInvalid
	}
	if principal.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !principal.CanActForVendor(vendorID) {
		return nil, ErrForbidden
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || order.VendorID != vendorID {
		return nil, ErrOrderNotFound
	}
	if !isTransitionAllowed(order.Status, target) {
		return nil, ErrInvalidTransition
	}

	from := order.Status
	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		swapped, err := orderRepo.CompareAndSwapStatus(order.ID, from, order.Version, target, now)
		if err != nil {
			return err
		}
		if !swapped {
			return ErrConflict
		}
		return orderRepo.CreateStatusLog(&models.OrderStatusLog{
			OrderID:      order.ID,
			FromStatus:   from,
			ToStatus:     target,
			OperatorRole: principal.Role,
			OperatorID:   principal.UserID,
			CreatedAt:    now,
		})
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			logger.Warnw("order_transition_conflict",
				"order_id", order.ID,
				"from_status", from,
				"to_status", target,
			)
			return nil, ErrConflict
		}
		logger.Errorw("order_transition_failed", "order_id", order.ID, "error", err)
		return nil, ErrOrderUpdateFailed
	}

	order.Status = target
	order.UpdatedAt = now
	order.Version++
	s.metrics.IncTransition(from, target)
	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"from_status", from,
		"to_status", target,
		"operator_role", principal.Role,
		"operator_id", principal.UserID,
	)
	s.notify(order, from, principal.Role)
	return order, nil
}

func (s *OrderService) notify(order *models.Order, from, operatorRole string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.EnqueueOrderStatusChanged(queue.OrderStatusChangedPayload{
		OrderID:      order.ID,
		OrderNo:      order.OrderNo,
		UserID:       order.UserID,
		VendorID:     order.VendorID,
		FromStatus:   from,
		ToStatus:     order.Status,
		OperatorRole: operatorRole,
	})
	if err != nil {
		logger.Warnw("order_enqueue_status_changed_failed",
			"order_id", order.ID,
			"status", order.Status,
			"error", err,
		)
	}
}

// ListUserOrders 用户订单列表（新到旧）
func (s *OrderService) ListUserOrders(ctx context.Context, principal auth.Principal, page, pageSize int) ([]models.Order, int64, error) {
	if principal.UserID == 0 {
		return nil, 0, ErrUnauthenticated
	}
	orders, total, err := s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   principal.UserID,
	})
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// GetUserOrder 用户订单详情，非本人订单按不存在处理
func (s *OrderService) GetUserOrder(ctx context.Context, principal auth.Principal, orderID uint) (*models.Order, error) {
	if principal.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, principal.UserID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListStatusLogs 订单状态变更记录，仅所属商家与管理员可见
func (s *OrderService) ListStatusLogs(ctx context.Context, principal auth.Principal, vendorID, orderID uint) ([]models.OrderStatusLog, error) {
	if principal.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !principal.CanActForVendor(vendorID) {
		return nil, ErrForbidden
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || order.VendorID != vendorID {
		return nil, ErrOrderNotFound
	}
	logs, err := s.orderRepo.ListStatusLogs(order.ID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	return logs, nil
}
