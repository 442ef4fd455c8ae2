package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuCategory 菜单分类，归属于营业点
type MenuCategory struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RevenueCenterID int64     `gorm:"index;not null" json:"revenue_center_id"`
	Name            string    `gorm:"type:varchar(100);not null" json:"name"`
	Description     *string   `gorm:"type:varchar(500)" json:"description,omitempty"`
	SortOrder       int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Items []MenuItem `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}

// TableName 表名
func (MenuCategory) TableName() string {
	return "menu_categories"
}

// MenuItem 菜品
type MenuItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  int64           `gorm:"index;not null" json:"category_id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description *string         `gorm:"type:varchar(500)" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`
	PrepTime    int             `gorm:"not null;default:0" json:"prep_time"` // 分钟
	ImageURL    *string         `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Category *MenuCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName 表名
func (MenuItem) TableName() string {
	return "menu_items"
}

// ComboMeal 套餐，归属于餐厅，价格独立于组成菜品
type ComboMeal struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64           `gorm:"index;not null" json:"restaurant_id"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	Description  *string         `gorm:"type:varchar(500)" json:"description,omitempty"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	IsAvailable  bool            `gorm:"not null" json:"is_available"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Items []ComboMealItem `gorm:"foreignKey:ComboMealID" json:"items,omitempty"`
}

// TableName 表名
func (ComboMeal) TableName() string {
	return "combo_meals"
}

// ComboMealItem 套餐组成
type ComboMealItem struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ComboMealID int64 `gorm:"index;not null" json:"combo_meal_id"`
	MenuItemID  int64 `gorm:"index;not null" json:"menu_item_id"`
	Quantity    int   `gorm:"not null;default:1" json:"quantity"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID" json:"menu_item,omitempty"`
}

// TableName 表名
func (ComboMealItem) TableName() string {
	return "combo_meal_items"
}
