package model

import "time"

// ゲートウェイ側トランザクションのローカルミラー。注文と1:1。
// TransactionID は ORDER-{orderID}-{epochMillis} 形式でゲートウェイと共有する。
type Payment struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID         int64     `gorm:"not null;uniqueIndex" json:"order_id"`
	TransactionID   string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"transaction_id"`
	PaymentType     string    `gorm:"type:varchar(50);not null" json:"payment_type"`
	StatusCode      string    `gorm:"type:varchar(10);not null" json:"status_code"`
	GrossAmount     int64     `gorm:"not null" json:"gross_amount"`
	FraudStatus     *string   `gorm:"type:varchar(20)" json:"fraud_status"`
	SnapToken       string    `gorm:"type:varchar(255)" json:"-"`
	RedirectURL     string    `gorm:"type:varchar(1024)" json:"-"`
	TransactionTime time.Time `gorm:"not null" json:"transaction_time"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
