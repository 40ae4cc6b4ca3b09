package repository

import (
	"context"

	"coffeeshop/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	//認証プロバイダのIDから1件取得する。
	FindByExternalID(ctx context.Context, externalID string) (model.User, error)
	//新規ユーザー作成
	Create(ctx context.Context, user model.User) (model.User, error)
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (model.User, error)
}
