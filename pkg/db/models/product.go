package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a storefront listing with live stock counters.
type Product struct {
	ID            int64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CategoryID    int64            `gorm:"column:category_id;not null;index" json:"category_id"`
	Name          string           `gorm:"column:name;not null" json:"name"`
	Slug          string           `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description   *string          `gorm:"column:description" json:"description,omitempty"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"column:discount_price;type:numeric(12,2)" json:"discount_price,omitempty"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	SoldCount     int              `gorm:"column:sold_count;not null;default:0" json:"sold_count"`
	ViewCount     int              `gorm:"column:view_count;not null;default:0" json:"view_count"`
	ImageURL      *string          `gorm:"column:image_url" json:"image_url,omitempty"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Category      *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// EffectivePrice returns the discount price when set and lower than the list
// price, otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}
