package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid token 无效或已过期
	ErrTokenInvalid = errors.New("invalid token")
	// ErrSecretRequired 未配置签名密钥
	ErrSecretRequired = errors.New("jwt secret is required")
)

// Claims JWT 声明
type Claims struct {
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	VendorID uint   `json:"vendor_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal 转换为调用方身份
func (c *Claims) Principal() Principal {
	return Principal{
		UserID:   c.UserID,
		Role:     NormalizeRole(c.Role),
		VendorID: c.VendorID,
	}
}

// IssueToken 签发 HS256 token，供种子工具与测试使用
func IssueToken(secret string, principal Principal, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, ErrSecretRequired
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID:   principal.UserID,
		Role:     NormalizeRole(principal.Role),
		VendorID: principal.VendorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseToken 校验签名与有效期并解析身份
func ParseToken(secret, tokenString string) (Principal, error) {
	if strings.TrimSpace(secret) == "" {
		return Principal{}, ErrSecretRequired
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return Principal{}, errors.Join(ErrTokenInvalid, err)
	}
	if !token.Valid {
		return Principal{}, ErrTokenInvalid
	}
	principal := claims.Principal()
	if !principal.Valid() {
		return Principal{}, ErrTokenInvalid
	}
	return principal, nil
}

// BearerToken 从 Authorization 头提取 token
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
