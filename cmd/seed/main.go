package main

import (
	"fmt"
	"time"

	"github.com/mealbasket/internal/auth"
	"github.com/mealbasket/internal/config"
	"github.com/mealbasket/internal/constants"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/models"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	Name        string
	Description string
	Category    string
	Price       string
	Stock       int
}

type seedVendor struct {
	Vendor   models.Vendor
	Products []seedProduct
}

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	seeds := []seedVendor{
		{
			Vendor: models.Vendor{Name: "Lin", Email: "lin@greenbowl.example", ShopName: "Green Bowl"},
			Products: []seedProduct{
				{Name: "Caesar Salad", Description: "Romaine, parmesan, croutons", Category: "salad", Price: "8.50", Stock: 40},
				{Name: "Quinoa Bowl", Description: "Quinoa, roasted vegetables, tahini", Category: "bowl", Price: "11.00", Stock: 25},
				{Name: "Lemonade", Description: "Fresh squeezed", Category: "drink", Price: "3.20", Stock: 8},
			},
		},
		{
			Vendor: models.Vendor{Name: "Marco", Email: "marco@ovenhouse.example", ShopName: "Oven House"},
			Products: []seedProduct{
				{Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", Category: "pizza", Price: "12.00", Stock: 30},
				{Name: "Garlic Bread", Description: "Toasted with herb butter", Category: "side", Price: "4.50", Stock: 0},
			},
		},
	}

	var firstVendorID uint
	for _, seed := range seeds {
		vendor := seed.Vendor
		var existing models.Vendor
		if err := models.DB.Where("email = ?", vendor.Email).First(&existing).Error; err == nil {
			stdLog.Printf("Vendor already exists: %s", vendor.Email)
			vendor = existing
		} else if err := models.DB.Create(&vendor).Error; err != nil {
			stdLog.Printf("Failed to create vendor %s: %v", vendor.Email, err)
			continue
		} else {
			stdLog.Printf("Created vendor: %s (id=%d)", vendor.DisplayName(), vendor.ID)
		}
		if firstVendorID == 0 {
			firstVendorID = vendor.ID
		}

		for _, item := range seed.Products {
			var count int64
			models.DB.Model(&models.Product{}).Where("vendor_id = ? AND name = ?", vendor.ID, item.Name).Count(&count)
			if count > 0 {
				stdLog.Printf("Product already exists: %s", item.Name)
				continue
			}
			product := models.Product{
				VendorID:    vendor.ID,
				Name:        item.Name,
				Description: item.Description,
				Category:    item.Category,
				Price:       models.NewMoneyFromDecimal(decimal.RequireFromString(item.Price)),
				Stock:       item.Stock,
				InStock:     item.Stock > 0,
				IsActive:    true,
			}
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", item.Name, err)
				continue
			}
			// in_stock 列带默认值，false 需要单独写入
			if !product.InStock {
				models.DB.Model(&product).Update("in_stock", false)
			}
			stdLog.Printf("Created product: %s (id=%d)", product.Name, product.ID)
		}
	}

	// 生成本地调试用的访问令牌
	ttl := time.Duration(cfg.JWT.ExpireHours) * time.Hour
	principals := []struct {
		Label     string
		Principal auth.Principal
	}{
		{Label: "user", Principal: auth.Principal{UserID: 1, Role: constants.RoleUser}},
		{Label: "vendor", Principal: auth.Principal{UserID: 100, Role: constants.RoleVendor, VendorID: firstVendorID}},
		{Label: "admin", Principal: auth.Principal{UserID: 900, Role: constants.RoleAdmin}},
	}
	fmt.Println("Seed completed. Development tokens:")
	for _, item := range principals {
		token, expiresAt, err := auth.IssueToken(cfg.JWT.SecretKey, item.Principal, ttl)
		if err != nil {
			stdLog.Printf("Failed to issue %s token: %v", item.Label, err)
			continue
		}
		fmt.Printf("%-7s %s (expires %s)\n", item.Label, token, expiresAt.Format(time.RFC3339))
	}
}
