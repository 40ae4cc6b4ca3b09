package model

import "time"

// 認証プロバイダのIDと1:1で紐づくローカルユーザー。
// 初回ログイン同期で作成され、削除はしない。
type User struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ExternalID  string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"external_id"`
	Email       string    `gorm:"type:varchar(255);not null" json:"email"`
	DisplayName string    `gorm:"type:varchar(255)" json:"display_name"`
	ImageURL    string    `gorm:"type:varchar(1024)" json:"image_url"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
