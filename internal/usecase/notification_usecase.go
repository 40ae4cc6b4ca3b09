package usecase

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"coffeeshop/internal/domain/model"
	repo "coffeeshop/internal/repository"
)

// ゲートウェイからの非同期通知を注文・支払い状態に反映する。
// ここがコアの状態機械で、Order/Payment/Cartを書き換えるのはこのusecaseだけ。
type NotificationUsecase struct {
	tx        repo.TransactionManager
	serverKey string
	// capture + challenge をどちらに写すか（challenge / success）
	challengeStatus model.OrderStatus
	clock           Clock
}

func NewNotificationUsecase(
	tx repo.TransactionManager,
	serverKey string,
	challengeStatus string,
	clock Clock,
) *NotificationUsecase {
	cs := model.OrderStatusChallenge
	if challengeStatus == "success" {
		cs = model.OrderStatusSuccess
	}
	return &NotificationUsecase{
		tx:              tx,
		serverKey:       serverKey,
		challengeStatus: cs,
		clock:           clock,
	}
}

// 通知ペイロード。ゲートウェイの語彙のまま受ける。
type NotificationInput struct {
	OrderID           string
	StatusCode        string
	GrossAmount       string
	SignatureKey      string
	TransactionStatus string
	FraudStatus       string
	PaymentType       string
	TransactionTime   string
}

type NotificationOutput struct {
	Success     bool      `json:"success"`
	OrderID     string    `json:"order_id"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
}

func (u *NotificationUsecase) Process(ctx context.Context, in NotificationInput) (NotificationOutput, error) {
	if in.OrderID == "" {
		return NotificationOutput{}, NewHTTPError(http.StatusBadRequest, "missing order_id")
	}

	//真正性チェック。環境を問わず必ず行う。
	//どの項目が違ったかは返さない。
	expected := SignatureFor(in.OrderID, in.StatusCode, in.GrossAmount, u.serverKey)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(in.SignatureKey)) != 1 {
		return NotificationOutput{}, NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	newStatus := u.mapStatus(in.TransactionStatus, in.FraudStatus)

	var finalStatus model.OrderStatus

	//支払い行をロックして同一取引の通知を直列化する
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Payments().FindByTransactionIDForUpdate(ctx, in.OrderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "payment not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err := r.Orders().FindByID(ctx, p.OrderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//支払いミラーは毎回ペイロードの値で更新する
		p.PaymentType = defaultIfBlank(in.PaymentType, "unknown")
		p.StatusCode = defaultIfBlank(in.StatusCode, "200")
		if in.FraudStatus != "" {
			fs := in.FraudStatus
			p.FraudStatus = &fs
		} else {
			p.FraudStatus = nil
		}
		p.TransactionTime = u.parseTransactionTime(in.TransactionTime)

		if err := r.Payments().Update(ctx, p); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//終端状態からは巻き戻さない（遅延したpendingや再配送を無害化する）
		finalStatus = newStatus
		if o.Status.IsTerminal() && o.Status != newStatus {
			finalStatus = o.Status
		}

		if finalStatus != o.Status {
			if err := r.Orders().UpdateStatus(ctx, o.ID, finalStatus); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		//成功時だけカートを全クリア（空でも成功する）
		if finalStatus == model.OrderStatusSuccess {
			cart, err := r.Carts().FindByUserID(ctx, o.UserID)
			if err == nil {
				if err := r.Carts().Clear(ctx, cart.ID); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			} else if err != repo.ErrNotFound {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		return nil
	})

	if err != nil {
		return NotificationOutput{}, err
	}

	return NotificationOutput{
		Success:     true,
		OrderID:     in.OrderID,
		Status:      string(finalStatus),
		ProcessedAt: u.clock.Now(),
	}, nil
}

// ゲートウェイのtransaction_statusを注文状態に写す。
// 未知の値はpending扱い（エラーにしない）。
func (u *NotificationUsecase) mapStatus(transactionStatus string, fraudStatus string) model.OrderStatus {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return model.OrderStatusSuccess
		}
		return u.challengeStatus
	case "settlement":
		return model.OrderStatusSuccess
	case "pending":
		return model.OrderStatusPending
	case "deny", "cancel", "expire", "failure":
		return model.OrderStatusFailed
	default:
		return model.OrderStatusPending
	}
}

// ゲートウェイの時刻形式（"2006-01-02 15:04:05"）→RFC3339→現在時刻の順で解釈する
func (u *NotificationUsecase) parseTransactionTime(v string) time.Time {
	if v == "" {
		return u.clock.Now()
	}
	if t, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	return u.clock.Now()
}

// SignatureFor はゲートウェイ規約の署名を計算する。
// sha512(order_id + status_code + gross_amount + serverKey) のhex。
func SignatureFor(orderID string, statusCode string, grossAmount string, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
