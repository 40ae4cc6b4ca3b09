package usecase

import (
	"context"
	"net/http"
	"time"

	"coffeeshop/internal/domain/model"
	repo "coffeeshop/internal/repository"
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	users repo.UserRepository
}

func NewOrderUsecase(tx repo.TransactionManager, users repo.UserRepository) *OrderUsecase {
	return &OrderUsecase{tx: tx, users: users}
}

type OrderItemOutput struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
}

type PaymentOutput struct {
	TransactionID string `json:"transaction_id"`
	PaymentType   string `json:"payment_type"`
	StatusCode    string `json:"status_code"`
}

type OrderOutput struct {
	ID        int64             `json:"id"`
	UserID    int64             `json:"user_id"`
	Status    string            `json:"status"`
	Total     int64             `json:"total"`
	CreatedAt time.Time         `json:"created_at"`
	Items     []OrderItemOutput `json:"items"`
	Payment   *PaymentOutput    `json:"payment,omitempty"`
}

func (u *OrderUsecase) resolveUser(ctx context.Context, externalID string) (int64, error) {
	if externalID == "" {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.users.FindByExternalID(ctx, externalID)
	if err == repo.ErrNotFound {
		return 0, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return user.ID, nil
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, externalID string) ([]OrderOutput, error) {
	userID, err := u.resolveUser(ctx, externalID)
	if err != nil {
		return []OrderOutput{}, err
	}

	var outs []OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out := toOrderOutput(o, items)
			if p, err := r.Payments().FindByOrderID(ctx, o.ID); err == nil {
				out.Payment = &PaymentOutput{
					TransactionID: p.TransactionID,
					PaymentType:   p.PaymentType,
					StatusCode:    p.StatusCode,
				}
			}
			outs = append(outs, out)
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, externalID string, orderID int64) (OrderOutput, error) {
	userID, err := u.resolveUser(ctx, externalID)
	if err != nil {
		return OrderOutput{}, err
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		if p, err := r.Payments().FindByOrderID(ctx, o.ID); err == nil {
			out.Payment = &PaymentOutput{
				TransactionID: p.TransactionID,
				PaymentType:   p.PaymentType,
				StatusCode:    p.StatusCode,
			}
		}
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			MenuItemID: it.MenuItemID,
			Name:       it.NameSnapshot,
			Price:      it.UnitPriceSnapshot,
			Quantity:   it.Quantity,
		})
	}

	return OrderOutput{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    string(o.Status),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
		Items:     outItems,
	}
}
