package repository

import (
	"context"
	"errors"

	"coffeeshop/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// メニューの永続化（保存・取得）だけを約束。
type MenuRepository interface {
	//公開一覧（名前昇順）
	ListPublic(ctx context.Context) ([]model.MenuItem, error)
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)

	Create(ctx context.Context, m model.MenuItem) (model.MenuItem, error)
	Update(ctx context.Context, m model.MenuItem) error
	Delete(ctx context.Context, id int64) error
}
