package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuthAccount 本地身份账号
type AuthAccount struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;index" json:"role"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (AuthAccount) TableName() string {
	return "auth_accounts"
}

// 账号角色
const (
	RolePlatformAdmin = "platform_admin"
	RoleKitchenOwner  = "kitchen_owner"
	RoleManager       = "manager"
	RoleStaff         = "staff"
)

// KitchenOwner 店主（租户拥有者）
type KitchenOwner struct {
	ID                    int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthAccountID         *int64          `gorm:"uniqueIndex" json:"auth_account_id,omitempty"`
	Email                 string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName              string          `gorm:"type:varchar(100);not null" json:"full_name"`
	SubscriptionPlan      string          `gorm:"type:varchar(50);not null" json:"subscription_plan"`
	PaymentID             string          `gorm:"type:varchar(100);not null" json:"payment_id"`
	SubscriptionAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"subscription_amount"`
	SubscriptionExpiresAt time.Time       `gorm:"not null" json:"subscription_expires_at"`
	Status                string          `gorm:"type:varchar(20);not null;default:active" json:"status"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Restaurants []Restaurant `gorm:"foreignKey:OwnerID" json:"restaurants,omitempty"`
}

// TableName 表名
func (KitchenOwner) TableName() string {
	return "kitchen_owners"
}

// OwnerStatus 店主状态
const (
	OwnerStatusActive    = "active"
	OwnerStatusSuspended = "suspended"
)
