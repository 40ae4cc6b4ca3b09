package model

import "time"

// カートの明細
// (cart_id, menu_item_id) はユニーク。同じ商品の追加は数量加算。
type CartItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID     int64     `gorm:"not null;index;uniqueIndex:ux_cart_menu_item,priority:1" json:"cart_id"`
	MenuItemID int64     `gorm:"not null;index;uniqueIndex:ux_cart_menu_item,priority:2" json:"menu_item_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
