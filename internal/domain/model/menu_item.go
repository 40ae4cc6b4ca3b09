package model

import "time"

// メニュー商品。コアフローからは参照のみ（価格の正はここ）。
type MenuItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	ImageURL    string    `gorm:"type:varchar(1024)" json:"image_url"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(100);not null;index" json:"category"`
	Stock       int64     `gorm:"not null" json:"stock"`
	Price       int64     `gorm:"not null" json:"price"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
