package repository

import (
	"context"

	"coffeeshop/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (int64, error)
	FindByOrderID(ctx context.Context, orderID int64) (model.Payment, error)
	//通知処理の直列化のため行ロック付きで取得する（トランザクション内でのみ使う）
	FindByTransactionIDForUpdate(ctx context.Context, transactionID string) (model.Payment, error)
	Update(ctx context.Context, p model.Payment) error
	//チェックアウトの再送で同じtokenを返すために保存する
	UpdateSnapToken(ctx context.Context, paymentID int64, token string, redirectURL string) error
}
