package auth

import (
	"strings"

	"github.com/mealbasket/internal/constants"
)

// Principal 已认证的调用方
// 由中间件构建，作为参数显式传入服务层
type Principal struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	VendorID uint   `json:"vendor_id,omitempty"`
}

// Valid 身份是否完整
func (p Principal) Valid() bool {
	if p.UserID == 0 {
		return false
	}
	switch p.Role {
	case constants.RoleUser, constants.RoleAdmin:
		return true
	case constants.RoleVendor:
		return p.VendorID != 0
	default:
		return false
	}
}

// IsAdmin 是否管理员
func (p Principal) IsAdmin() bool {
	return p.Role == constants.RoleAdmin
}

// IsVendor 是否商家
func (p Principal) IsVendor() bool {
	return p.Role == constants.RoleVendor
}

// CanActForVendor 管理员或该商家本人
func (p Principal) CanActForVendor(vendorID uint) bool {
	if p.IsAdmin() {
		return true
	}
	return p.IsVendor() && vendorID != 0 && p.VendorID == vendorID
}

// CanShop 是否可使用购物车与下单
func (p Principal) CanShop() bool {
	return p.UserID != 0 && (p.Role == constants.RoleUser || p.IsAdmin())
}

// NormalizeRole 统一角色写法
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
