// Package models 定义数据库实体
package models

import "gorm.io/gorm"

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&AuthAccount{},
		&KitchenOwner{},
		&Restaurant{},
		&RevenueCenter{},
		&BusinessHours{},
		&MenuCategory{},
		&MenuItem{},
		&ComboMeal{},
		&ComboMealItem{},
		&Customer{},
		&Order{},
		&OrderItem{},
		&OrderSequence{},
		&Payment{},
		&User{},
		&StaffAssignment{},
	}
}

// AutoMigrate 迁移全部表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
