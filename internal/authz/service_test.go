package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceRoleWithGrantedPolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("courier", "/vendor/:vendorId/orders/:orderId", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}

	allow, err := svc.EnforceRole("courier", "/api/v1/vendor/3/orders/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceRole("courier", "/api/v1/vendor/3/orders/42", "PUT")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}

	policies, err := svc.GetRolePolicies("courier")
	if err != nil || len(policies) != 1 {
		t.Fatalf("want 1 policy got %v err=%v", policies, err)
	}
	if err := svc.RevokeRolePolicy("courier", "/vendor/:vendorId/orders/:orderId", "GET"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, _ = svc.EnforceRole("courier", "/vendor/3/orders/42", "GET")
	if allow {
		t.Fatalf("revoked policy should deny")
	}
	if err := svc.DeleteRole("courier"); err != nil {
		t.Fatalf("delete role failed: %v", err)
	}
	roles, _ := svc.ListRoles()
	for _, role := range roles {
		if role == "role:courier" {
			t.Fatalf("deleted role still listed")
		}
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/vendor/1/orders/:orderId", want: "/vendor/1/orders/:orderId"},
		{in: "/cart/checkout", want: "/cart/checkout"},
		{in: "cart", want: "/cart"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	if got, err := NormalizeRole(" Vendor "); err != nil || got != "role:vendor" {
		t.Fatalf("want role:vendor got %q err=%v", got, err)
	}
	if _, err := NormalizeRole("  "); err == nil {
		t.Fatalf("blank role should fail")
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap must be repeatable: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	wantRoles := map[string]bool{
		"role:user":   true,
		"role:vendor": true,
		"role:admin":  true,
	}
	for _, role := range roles {
		delete(wantRoles, role)
	}
	if len(wantRoles) != 0 {
		t.Fatalf("builtin roles missing: %v", wantRoles)
	}

	cases := []struct {
		role   string
		path   string
		method string
		want   bool
	}{
		{"user", "/api/v1/cart/checkout", "POST", true},
		{"user", "/api/v1/cart/12", "PUT", true},
		{"user", "/api/v1/orders/5", "GET", true},
		{"user", "/api/v1/vendor/1/orders", "GET", false},
		{"user", "/api/v1/stock-alerts/active", "GET", false},
		{"vendor", "/api/v1/vendor/1/orders/9", "PUT", true},
		{"vendor", "/api/v1/stock-alerts/monitor/1/2/3", "POST", true},
		{"vendor", "/api/v1/cart/checkout", "POST", false},
		{"vendor", "/api/v1/admin/stock-alerts", "GET", false},
		{"admin", "/api/v1/admin/stock-alerts/4", "DELETE", true},
		{"admin", "/api/v1/vendor/1/orders", "GET", true},
		{"admin", "/api/v1/cart", "GET", true},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, tc.path, tc.method)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.method, tc.path, err)
		}
		if allow != tc.want {
			t.Fatalf("%s %s %s want %v got %v", tc.role, tc.method, tc.path, tc.want, allow)
		}
	}
}
