package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"coffeeshop/internal/domain/model"
	"coffeeshop/internal/gateway"
	repo "coffeeshop/internal/repository"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() string
}

// CheckoutUsecase は POST /payment/create の業務ロジック。
// クライアントからは (menu_item_id, quantity) だけを受け取り、
// 価格と合計はトランザクション内でメニューから引き直す。
type CheckoutUsecase struct {
	tx      repo.TransactionManager
	users   repo.UserRepository
	gw      gateway.SnapGateway
	idGen   IDGenerator
	clock   Clock
	baseURL string
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	gw gateway.SnapGateway,
	idGen IDGenerator,
	clock Clock,
	baseURL string,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:      tx,
		users:   users,
		gw:      gw,
		idGen:   idGen,
		clock:   clock,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// 1明細あたりの数量上限。ゲートウェイ明細の数量はint32なので
// それより十分小さい値で止める。
const maxItemQuantity = 1000

type CheckoutItemInput struct {
	MenuItemID int64
	Quantity   int64
}

type CustomerDetailsInput struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

type CheckoutInput struct {
	Items          []CheckoutItemInput
	Customer       CustomerDetailsInput
	IdempotencyKey string
}

type CheckoutOutput struct {
	Success       bool   `json:"success"`
	Token         string `json:"token"`
	RedirectURL   string `json:"redirect_url"`
	OrderID       int64  `json:"order_id"`
	TransactionID string `json:"transaction_id"`
}

func (u *CheckoutUsecase) Checkout(ctx context.Context, externalID string, in CheckoutInput) (CheckoutOutput, error) {
	if externalID == "" {
		return CheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.users.FindByExternalID(ctx, externalID)
	if err == repo.ErrNotFound {
		return CheckoutOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if len(in.Items) == 0 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	for _, it := range in.Items {
		if it.MenuItemID <= 0 || it.Quantity < 1 || it.Quantity > maxItemQuantity {
			return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}

	// 二重送信防止キー。無ければ新規発行（その場合リトライ保護は効かない）
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = u.idGen.NewID()
	}
	if len(key) > 255 {
		return CheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var (
		out        CheckoutOutput
		replayed   bool
		orderID    int64
		paymentID  int64
		orderItems []model.OrderItem
		total      int64
		txnID      string
	)

	//注文＋明細＋支払いレコードは1トランザクションで作る
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, user.ID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//失敗で終わった注文は再利用しない。空tokenを成功として返すより
			//元のエラーを返す方がましで、クライアントは新しいキーでやり直せる。
			if existing.Status == model.OrderStatusFailed {
				return NewHTTPError(http.StatusInternalServerError, "payment gateway error")
			}

			p, err := r.Payments().FindByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//token未保存＝ゲートウェイ呼び出し前に落ちている。
			//既存の注文と取引IDのままゲートウェイだけやり直す。
			if p.SnapToken == "" {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				orderID = existing.ID
				paymentID = p.ID
				orderItems = items
				total = existing.Total
				txnID = p.TransactionID
				return nil
			}

			out = CheckoutOutput{
				Success:       true,
				Token:         p.SnapToken,
				RedirectURL:   p.RedirectURL,
				OrderID:       existing.ID,
				TransactionID: p.TransactionID,
			}
			replayed = true
			return nil
		}

		//価格はクライアントを信用せずメニューから引き直す
		orderItems = make([]model.OrderItem, 0, len(in.Items))
		total = 0
		now := u.clock.Now()

		for _, it := range in.Items {
			m, err := r.Menu().FindByID(ctx, it.MenuItemID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid menu item")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//スナップショット
			orderItems = append(orderItems, model.OrderItem{
				MenuItemID:        m.ID,
				NameSnapshot:      m.Name,
				UnitPriceSnapshot: m.Price,
				Quantity:          it.Quantity,
				CreatedAt:         now,
			})

			total += m.Price * it.Quantity
		}

		// 注文作成
		orderID, err = r.Orders().Create(ctx, model.Order{
			UserID:         user.ID,
			Status:         model.OrderStatusPending,
			Total:          total,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			//競合（同時で同じキーが入った等）はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, user.ID, key)
			if err2 == nil && found2 {
				if ex2.Status == model.OrderStatusFailed {
					return NewHTTPError(http.StatusInternalServerError, "payment gateway error")
				}

				p, err3 := r.Payments().FindByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}

				if p.SnapToken == "" {
					items, err4 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
					if err4 != nil {
						return NewHTTPError(http.StatusInternalServerError, "db error")
					}
					orderID = ex2.ID
					paymentID = p.ID
					orderItems = items
					total = ex2.Total
					txnID = p.TransactionID
					return nil
				}

				out = CheckoutOutput{
					Success:       true,
					Token:         p.SnapToken,
					RedirectURL:   p.RedirectURL,
					OrderID:       ex2.ID,
					TransactionID: p.TransactionID,
				}
				replayed = true
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//ゲートウェイと共有する取引ID
		txnID = fmt.Sprintf("ORDER-%d-%d", orderID, now.UnixMilli())

		paymentID, err = r.Payments().Create(ctx, model.Payment{
			OrderID:         orderID,
			TransactionID:   txnID,
			PaymentType:     "pending",
			StatusCode:      "201",
			GrossAmount:     total,
			TransactionTime: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}
	if replayed {
		return out, nil
	}

	//ゲートウェイに取引作成を依頼（コミット後に1回だけ）
	result, gwErr := u.gw.CreateTransaction(ctx, gateway.TransactionRequest{
		TransactionID:   txnID,
		GrossAmount:     total,
		Items:           toGatewayItems(orderItems),
		Customer:        u.customerWithDefaults(in.Customer, user),
		FinishURL:       fmt.Sprintf("%s/payment/success?order_id=%s", u.baseURL, txnID),
		ErrorURL:        fmt.Sprintf("%s/payment/error?order_id=%s", u.baseURL, txnID),
		PendingURL:      fmt.Sprintf("%s/payment/pending?order_id=%s", u.baseURL, txnID),
		NotificationURL: u.baseURL + "/payment/notification",
	})
	if gwErr != nil {
		//作ってしまった注文はfailedにして孤児pendingを残さない
		_ = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
			return r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusFailed)
		})
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "payment gateway error")
	}

	//再送時に同じtokenを返せるように保存
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		return r.Payments().UpdateSnapToken(ctx, paymentID, result.Token, result.RedirectURL)
	})
	if err != nil {
		return CheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CheckoutOutput{
		Success:       true,
		Token:         result.Token,
		RedirectURL:   result.RedirectURL,
		OrderID:       orderID,
		TransactionID: txnID,
	}, nil
}

func toGatewayItems(items []model.OrderItem) []gateway.LineItem {
	out := make([]gateway.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, gateway.LineItem{
			ID:       strconv.FormatInt(it.MenuItemID, 10),
			Name:     it.NameSnapshot,
			Price:    it.UnitPriceSnapshot,
			Quantity: int32(it.Quantity),
		})
	}
	return out
}

// 空欄の請求先はユーザー情報→固定デフォルトの順で埋める
func (u *CheckoutUsecase) customerWithDefaults(c CustomerDetailsInput, user model.User) gateway.CustomerDetails {
	firstName := strings.TrimSpace(c.FirstName)
	lastName := strings.TrimSpace(c.LastName)
	if firstName == "" {
		parts := strings.Fields(user.DisplayName)
		if len(parts) > 0 {
			firstName = parts[0]
			if lastName == "" && len(parts) > 1 {
				lastName = strings.Join(parts[1:], " ")
			}
		}
	}
	if firstName == "" {
		firstName = "Customer"
	}

	email := strings.TrimSpace(c.Email)
	if email == "" {
		email = user.Email
	}

	return gateway.CustomerDetails{
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      defaultIfBlank(c.Phone, "08123456789"),
		Address:    defaultIfBlank(c.Address, "Jl. Example No. 123"),
		City:       defaultIfBlank(c.City, "Jakarta"),
		PostalCode: defaultIfBlank(c.PostalCode, "12345"),
	}
}

func defaultIfBlank(v string, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
