package usecase

import (
	"context"
	"net/http"
	"strings"

	"coffeeshop/internal/domain/model"
	repo "coffeeshop/internal/repository"
)

// SyncUsecase は認証済みの外部IDにローカルのUser/Cartを対応づける。
// 初回ログイン時に1回呼ばれる想定だが、何回呼んでも同じ結果になる。
type SyncUsecase struct {
	tx repo.TransactionManager
}

func NewSyncUsecase(tx repo.TransactionManager) *SyncUsecase {
	return &SyncUsecase{tx: tx}
}

type SyncInput struct {
	ExternalID  string
	Email       string
	DisplayName string
	ImageURL    string
}

type SyncOutput struct {
	User    model.User `json:"user"`
	Created bool       `json:"created"`
}

func (u *SyncUsecase) SyncUser(ctx context.Context, in SyncInput) (SyncOutput, error) {
	if strings.TrimSpace(in.ExternalID) == "" {
		return SyncOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out SyncOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, err := r.Users().FindByExternalID(ctx, in.ExternalID)
		if err == nil {
			//カートが無い場合だけ作る（過去の同期失敗の救済）
			if _, err := r.Carts().GetOrCreateByUserID(ctx, existing.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = SyncOutput{User: existing, Created: false}
			return nil
		}
		if err != repo.ErrNotFound {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created, err := r.Users().Create(ctx, model.User{
			ExternalID:  in.ExternalID,
			Email:       in.Email,
			DisplayName: strings.TrimSpace(in.DisplayName),
			ImageURL:    in.ImageURL,
		})
		if err != nil {
			//同時同期でuniqueIndexに負けた場合はもう一度探して同じ結果を返す
			retry, retryErr := r.Users().FindByExternalID(ctx, in.ExternalID)
			if retryErr != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if _, err := r.Carts().GetOrCreateByUserID(ctx, retry.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = SyncOutput{User: retry, Created: false}
			return nil
		}

		//Userと同時にカートも作る（1ユーザー1カート）
		if _, err := r.Carts().GetOrCreateByUserID(ctx, created.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = SyncOutput{User: created, Created: true}
		return nil
	})

	if err != nil {
		return SyncOutput{}, err
	}
	return out, nil
}
