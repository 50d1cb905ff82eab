package service

import (
	"errors"
	"fmt"
)

// 通用错误类别，处理层按类别映射响应码
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict")
	ErrBusy               = errors.New("resource busy")
	ErrInternal           = errors.New("internal error")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// 具体错误，均可用 errors.Is 归到上面的类别
var (
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrCartItemNotFound   = fmt.Errorf("cart item %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrAlertNotFound      = fmt.Errorf("stock alert %w", ErrNotFound)
	ErrCartVendorMismatch = fmt.Errorf("cart vendor mismatch: %w", ErrInvalidInput)
	ErrQuantityInvalid    = fmt.Errorf("quantity: %w", ErrInvalidInput)
	ErrAddressRequired    = fmt.Errorf("delivery address: %w", ErrInvalidInput)
	ErrOrderStatusInvalid = fmt.Errorf("order status: %w", ErrInvalidInput)
	ErrOrderCreateFailed  = fmt.Errorf("order create failed: %w", ErrInternal)
	ErrOrderFetchFailed   = fmt.Errorf("order fetch failed: %w", ErrInternal)
	ErrOrderUpdateFailed  = fmt.Errorf("order update failed: %w", ErrInternal)
	ErrCartFailed         = fmt.Errorf("cart operation failed: %w", ErrInternal)
	ErrAlertFailed        = fmt.Errorf("stock alert failed: %w", ErrInternal)
	ErrCatalogFailed      = fmt.Errorf("catalog lookup failed: %w", ErrInternal)
)
