package mqtt

import (
	"fmt"
	"strings"
)

// 后厨事件类型
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderItemsChanged  = "order.items_changed"
)

// KitchenTopic 返回餐厅订单事件主题 {prefix}restaurants/{id}/orders
func KitchenTopic(prefix string, restaurantID int64) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%srestaurants/%d/orders", prefix, restaurantID)
}

// OrderEvent 推送给后厨显示屏的订单事件
type OrderEvent struct {
	Event        string           `json:"event"`
	RestaurantID int64            `json:"restaurant_id"`
	OrderID      int64            `json:"order_id"`
	OrderNumber  string           `json:"order_number"`
	OrderType    string           `json:"order_type"`
	Status       string           `json:"status"`
	FromStatus   string           `json:"from_status,omitempty"`
	TableNumber  string           `json:"table_number,omitempty"`
	Items        []OrderEventItem `json:"items,omitempty"`
	Timestamp    int64            `json:"timestamp"`
}

// OrderEventItem 订单事件中的明细
type OrderEventItem struct {
	RevenueCenterID int64  `json:"revenue_center_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
}
