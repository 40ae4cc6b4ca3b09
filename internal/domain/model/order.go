package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSuccess   OrderStatus = "success"
	OrderStatusChallenge OrderStatus = "challenge"
	OrderStatusFailed    OrderStatus = "failed"
)

// success / failed は終端。以後の通知で巻き戻さない。
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusSuccess || s == OrderStatusFailed
}

// 注文。statusの更新は通知ハンドラだけが行う。
type Order struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64       `gorm:"not null;index;uniqueIndex:ux_order_user_idem,priority:1" json:"user_id"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Total  int64       `gorm:"not null" json:"total"`
	//キーはユーザー単位で一意。他人のキー再利用は衝突にならない。
	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_order_user_idem,priority:2" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
