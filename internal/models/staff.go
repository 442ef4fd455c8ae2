package models

import "time"

// User 餐厅员工或经理
type User struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID  int64     `gorm:"index;not null" json:"restaurant_id"`
	AuthAccountID *int64    `gorm:"uniqueIndex" json:"auth_account_id,omitempty"`
	Email         string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName      string    `gorm:"type:varchar(100);not null" json:"full_name"`
	Role          string    `gorm:"type:varchar(20);not null" json:"role"` // manager, staff
	IsActive      bool      `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Assignments []StaffAssignment `gorm:"foreignKey:UserID" json:"assignments,omitempty"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// StaffAssignment 员工与营业点的分配关系，决定员工可见的营业点
type StaffAssignment struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          int64     `gorm:"uniqueIndex:uk_staff_assignment;not null" json:"user_id"`
	RevenueCenterID int64     `gorm:"uniqueIndex:uk_staff_assignment;index;not null" json:"revenue_center_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (StaffAssignment) TableName() string {
	return "staff_assignments"
}
