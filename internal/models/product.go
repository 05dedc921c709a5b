package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID          string         `gorm:"primarykey;type:varchar(36)" json:"_id"`             // 主键（UUID）
	Title       string         `gorm:"type:varchar(255);not null;index" json:"title"`      // 标题
	TitleSearch string         `gorm:"type:varchar(255);index" json:"-"`                   // 标题小写形式，供搜索使用
	Description string         `gorm:"type:text" json:"description"`                       // 描述
	Category    string         `gorm:"type:varchar(100);index" json:"category"`            // 分类名
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 价格
	Image       string         `gorm:"type:varchar(500)" json:"image"`                     // 主图地址
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`                // 是否上架
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`                  // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                         // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                     // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 未指定主键时生成 UUID
func (p *Product) BeforeCreate(*gorm.DB) error {
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave 同步标题的小写形式，sqlite 的 LOWER 只处理 ASCII
func (p *Product) BeforeSave(*gorm.DB) error {
	p.TitleSearch = strings.ToLower(p.Title)
	return nil
}
