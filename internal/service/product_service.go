package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desi-etsy/internal/cache"
	"github.com/desi-etsy/internal/logger"
	"github.com/desi-etsy/internal/models"
	"github.com/desi-etsy/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const maxPublicPageSize = 100

// ProductService 商品业务服务
type ProductService struct {
	repo     repository.ProductRepository
	cacheTTL time.Duration
}

// NewProductService 创建商品服务，cacheTTL <= 0 时不缓存
func NewProductService(repo repository.ProductRepository, cacheTTL time.Duration) *ProductService {
	return &ProductService{repo: repo, cacheTTL: cacheTTL}
}

// CreateProductInput 创建商品输入
type CreateProductInput struct {
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	Image       string
	IsActive    *bool
	SortOrder   int
}

// PublicListInput 公开列表查询参数
type PublicListInput struct {
	Search   string
	Category string
	Page     int
	PageSize int
}

type cachedProductList struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
}

// ListPublic 获取公开商品列表，page_size 为 0 时返回全部
func (s *ProductService) ListPublic(ctx context.Context, input PublicListInput) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       input.Page,
		PageSize:   input.PageSize,
		Category:   input.Category,
		Search:     strings.TrimSpace(input.Search),
		OnlyActive: true,
	}
	if filter.PageSize > maxPublicPageSize {
		filter.PageSize = maxPublicPageSize
	}
	if filter.PageSize < 0 {
		filter.PageSize = 0
	}

	cacheKey := fmt.Sprintf("catalog:products:%s:%s:%d:%d",
		strings.ToLower(filter.Search),
		filter.Category,
		filter.Page,
		filter.PageSize,
	)
	if s.cacheTTL > 0 {
		var cached cachedProductList
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr != nil {
			logger.Warnw("catalog_cache_read_failed", "key", cacheKey, "error", cacheErr)
		}
		if cacheErr == nil && hit {
			return cached.Items, cached.Total, nil
		}
	}

	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	if products == nil {
		products = []models.Product{}
	}
	if s.cacheTTL > 0 {
		_ = cache.SetJSON(ctx, cacheKey, cachedProductList{Items: products, Total: total}, s.cacheTTL)
	}
	return products, total, nil
}

// Categories 获取公开分类列表
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	const cacheKey = "catalog:categories"
	if s.cacheTTL > 0 {
		var cached []string
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return cached, nil
		}
	}
	categories, err := s.repo.ListCategories(true)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	if s.cacheTTL > 0 {
		_ = cache.SetJSON(ctx, cacheKey, categories, s.cacheTTL)
	}
	return categories, nil
}

// GetPublicByID 获取公开商品详情
func (s *ProductService) GetPublicByID(id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	product, err := s.repo.GetByID(id, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品并失效列表缓存
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.Price.IsNegative() {
		return nil, ErrInvalidInput
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := &models.Product{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Price:       models.NewMoneyFromDecimal(input.Price),
		Image:       strings.TrimSpace(input.Image),
		IsActive:    true,
		SortOrder:   input.SortOrder,
	}
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(product); err != nil {
			return err
		}
		if !isActive {
			// is_active 的零值会被默认值覆盖，创建后单独落库
			product.IsActive = false
			return repo.Update(product)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// Delete 删除商品并失效列表缓存
func (s *ProductService) Delete(ctx context.Context, id string) error {
	product, err := s.repo.GetByID(id, false)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if _, err := cache.DelByPattern(ctx, "catalog:*"); err != nil {
		logger.Warnw("catalog_cache_invalidate_failed", "error", err)
	}
}
