package models

import "time"

// Category groups products for browsing and coupon scoping.
type Category struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Slug        string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
