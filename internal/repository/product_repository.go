package repository

import (
	"errors"
	"strings"

	"github.com/desi-etsy/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	ListCategories(onlyActive bool) ([]string, error)
	GetByID(id string, onlyActive bool) (*models.Product, error)
	GetByTitle(title string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product

	query := r.db.Model(&models.Product{}).Scopes(activeOnly(filter.OnlyActive), inCategory(filter.Category))
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, like := buildContainsCondition(r.db, "title_search", search)
		query = query.Where(condition, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("sort_order DESC, created_at DESC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListCategories 去重后的非空分类名，按字母序
func (r *GormProductRepository) ListCategories(onlyActive bool) ([]string, error) {
	query := r.db.Model(&models.Product{}).Scopes(activeOnly(onlyActive)).Where("category <> ?", "")
	var categories []string
	if err := query.Distinct("category").Order("category ASC").Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id string, onlyActive bool) (*models.Product, error) {
	query := r.db.Scopes(activeOnly(onlyActive)).Where("id = ?", id)
	var product models.Product
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByTitle 根据标题获取商品
func (r *GormProductRepository) GetByTitle(title string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("title = ?", title).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Product{}).Error
}
