package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mealbasket/internal/constants"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParseToken(t *testing.T) {
	token, expiresAt, err := IssueToken("secret", Principal{UserID: 3, Role: "Vendor", VendorID: 9}, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry should be in the future")
	}
	principal, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if principal.UserID != 3 || principal.Role != constants.RoleVendor || principal.VendorID != 9 {
		t.Fatalf("unexpected principal: %+v", principal)
	}
}

func TestParseTokenRejectsWrongSecretAndExpired(t *testing.T) {
	token, _, err := IssueToken("secret", Principal{UserID: 1, Role: constants.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := ParseToken("other", token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong secret want ErrTokenInvalid got %v", err)
	}

	claims := Claims{
		UserID: 1,
		Role:   constants.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := ParseToken("secret", expired); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired want ErrTokenInvalid got %v", err)
	}
}

func TestParseTokenRejectsIncompletePrincipal(t *testing.T) {
	token, _, err := IssueToken("secret", Principal{UserID: 1, Role: constants.RoleVendor}, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := ParseToken("secret", token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("vendor without vendor id should be rejected, got %v", err)
	}
	if _, _, err := IssueToken(" ", Principal{UserID: 1, Role: constants.RoleUser}, 0); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("empty secret want ErrSecretRequired got %v", err)
	}
}

func TestPrincipalPermissions(t *testing.T) {
	vendor := Principal{UserID: 2, Role: constants.RoleVendor, VendorID: 5}
	admin := Principal{UserID: 1, Role: constants.RoleAdmin}
	user := Principal{UserID: 3, Role: constants.RoleUser}

	if !vendor.CanActForVendor(5) || vendor.CanActForVendor(6) {
		t.Fatalf("vendor should act only for own vendor id")
	}
	if !admin.CanActForVendor(6) {
		t.Fatalf("admin should act for any vendor")
	}
	if user.CanActForVendor(5) {
		t.Fatalf("user should not act for vendor")
	}
	if vendor.CanShop() || !user.CanShop() || !admin.CanShop() {
		t.Fatalf("unexpected shop permissions")
	}
}

func TestBearerToken(t *testing.T) {
	if token, ok := BearerToken("Bearer abc"); !ok || token != "abc" {
		t.Fatalf("unexpected bearer parse: %q %v", token, ok)
	}
	if token, ok := BearerToken("bearer   xyz "); !ok || token != "xyz" {
		t.Fatalf("case-insensitive prefix expected: %q %v", token, ok)
	}
	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc", strings.Repeat("x", 3)} {
		if _, ok := BearerToken(header); ok {
			t.Fatalf("header %q should be rejected", header)
		}
	}
}
