package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mealbasket/internal/cache"
	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/repository"
)

// CatalogProduct 商品目录快照
type CatalogProduct struct {
	ID         uint         `json:"id"`
	VendorID   uint         `json:"vendor_id"`
	VendorName string       `json:"vendor_name"`
	Name       string       `json:"name"`
	Image      string       `json:"image"`
	Category   string       `json:"category"`
	Price      models.Money `json:"price"`
	Stock      int          `json:"stock"`
	IsActive   bool         `json:"is_active"`
}

// ProductCatalog 只读商品查询
// Lookup 返回存在的商品，缺失的 id 不出现在结果中
type ProductCatalog interface {
	Lookup(ctx context.Context, ids []uint) (map[uint]CatalogProduct, error)
}

// CatalogService 商品目录服务，Redis 启用时按商品缓存快照
type CatalogService struct {
	productRepo repository.ProductRepository
	vendorRepo  repository.VendorRepository
	ttl         time.Duration
	skipRead    bool
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(productRepo repository.ProductRepository, vendorRepo repository.VendorRepository, ttlSeconds int) *CatalogService {
	ttl := time.Duration(ttlSeconds) * time.Second
	if ttl < 0 {
		ttl = 0
	}
	return &CatalogService{
		productRepo: productRepo,
		vendorRepo:  vendorRepo,
		ttl:         ttl,
	}
}

// Fresh 返回不读缓存的目录视图，下单按它取实时价格与上架状态
// 查到的快照仍会回写缓存
func (s *CatalogService) Fresh() *CatalogService {
	fresh := *s
	fresh.skipRead = true
	return &fresh
}

func catalogCacheKey(productID uint) string {
	return fmt.Sprintf("catalog:product:%d", productID)
}

// Lookup 批量查询商品快照
func (s *CatalogService) Lookup(ctx context.Context, ids []uint) (map[uint]CatalogProduct, error) {
	result := make(map[uint]CatalogProduct, len(ids))
	missing := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if s.ttl > 0 && !s.skipRead {
			var cached CatalogProduct
			hit, err := cache.GetJSON(ctx, catalogCacheKey(id), &cached)
			if err != nil {
				logger.Warnw("catalog_cache_get_failed", "product_id", id, "error", err)
			}
			if hit {
				result[id] = cached
				continue
			}
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}

	products, err := s.productRepo.ListByIDs(missing)
	if err != nil {
		return nil, err
	}
	vendorIDs := make([]uint, 0, len(products))
	for _, product := range products {
		vendorIDs = append(vendorIDs, product.VendorID)
	}
	vendors, err := s.vendorRepo.ListByIDs(vendorIDs)
	if err != nil {
		return nil, err
	}
	vendorNames := make(map[uint]string, len(vendors))
	for i := range vendors {
		vendorNames[vendors[i].ID] = vendors[i].DisplayName()
	}

	for _, product := range products {
		snapshot := CatalogProduct{
			ID:         product.ID,
			VendorID:   product.VendorID,
			VendorName: vendorNames[product.VendorID],
			Name:       product.Name,
			Image:      product.Image,
			Category:   product.Category,
			Price:      product.Price,
			Stock:      product.Stock,
			IsActive:   product.IsActive,
		}
		result[product.ID] = snapshot
		if s.ttl > 0 {
			if err := cache.SetJSON(ctx, catalogCacheKey(product.ID), snapshot, s.ttl); err != nil {
				logger.Warnw("catalog_cache_set_failed", "product_id", product.ID, "error", err)
			}
		}
	}
	return result, nil
}

// GetProduct 获取单个商品详情
func (s *CatalogService) GetProduct(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrProductNotFound
	}
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, ErrCatalogFailed
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListProducts 上架商品列表
func (s *CatalogService) ListProducts(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	products, total, err := s.productRepo.List(filter)
	if err != nil {
		return nil, 0, ErrCatalogFailed
	}
	return products, total, nil
}

// ListActiveProducts 全部上架商品（库存巡检使用）
func (s *CatalogService) ListActiveProducts() ([]models.Product, error) {
	page := 1
	const pageSize = 100
	var all []models.Product
	for {
		products, total, err := s.productRepo.List(repository.ProductListFilter{Page: page, PageSize: pageSize, OnlyActive: true})
		if err != nil {
			return nil, err
		}
		all = append(all, products...)
		if len(products) < pageSize || int64(len(all)) >= total {
			return all, nil
		}
		page++
	}
}
