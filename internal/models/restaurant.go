package models

import "time"

// Restaurant 餐厅（租户）
type Restaurant struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   int64     `gorm:"index;not null" json:"owner_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Address   *string   `gorm:"type:varchar(255)" json:"address,omitempty"`
	Phone     *string   `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Domain    string    `gorm:"type:varchar(63);uniqueIndex;not null" json:"domain"`
	Status    string    `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owner          *KitchenOwner   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	RevenueCenters []RevenueCenter `gorm:"foreignKey:RestaurantID" json:"revenue_centers,omitempty"`
}

// TableName 表名
func (Restaurant) TableName() string {
	return "restaurants"
}

// RestaurantStatus 餐厅状态
const (
	RestaurantStatusActive    = "active"
	RestaurantStatusInactive  = "inactive"
	RestaurantStatusSuspended = "suspended"
)

// IsValidRestaurantStatus 校验餐厅状态
func IsValidRestaurantStatus(s string) bool {
	switch s {
	case RestaurantStatusActive, RestaurantStatusInactive, RestaurantStatusSuspended:
		return true
	}
	return false
}

// RevenueCenter 营业点
type RevenueCenter struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID int64     `gorm:"index;not null" json:"restaurant_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Type         string    `gorm:"type:varchar(20);not null" json:"type"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	BusinessHours []BusinessHours `gorm:"foreignKey:RevenueCenterID" json:"business_hours,omitempty"`
}

// TableName 表名
func (RevenueCenter) TableName() string {
	return "revenue_centers"
}

// RevenueCenterType 营业点类型
const (
	RevenueCenterTypeRestaurant = "restaurant"
	RevenueCenterTypeBar        = "bar"
	RevenueCenterTypePatio      = "patio"
	RevenueCenterTypeTakeout    = "takeout"
)

// IsValidRevenueCenterType 校验营业点类型
func IsValidRevenueCenterType(t string) bool {
	switch t {
	case RevenueCenterTypeRestaurant, RevenueCenterTypeBar, RevenueCenterTypePatio, RevenueCenterTypeTakeout:
		return true
	}
	return false
}

// BusinessHours 营业时间，每个营业点每周每天一行
type BusinessHours struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RevenueCenterID int64     `gorm:"uniqueIndex:uk_business_hours_center_day;not null" json:"revenue_center_id"`
	DayOfWeek       int       `gorm:"uniqueIndex:uk_business_hours_center_day;not null" json:"day_of_week"` // 0=周日
	OpenTime        *string   `gorm:"type:varchar(8)" json:"open_time,omitempty"`                           // HH:MM[:SS]
	CloseTime       *string   `gorm:"type:varchar(8)" json:"close_time,omitempty"`
	IsClosed        bool      `gorm:"not null;default:false" json:"is_closed"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (BusinessHours) TableName() string {
	return "business_hours"
}
