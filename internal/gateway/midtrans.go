package gateway

import (
	"context"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// 取引作成に渡す明細（usecase側をSDKの型に依存させない）
type LineItem struct {
	ID       string
	Name     string
	Price    int64
	Quantity int32
}

// 請求先。空欄はusecase側でデフォルトを埋めてから渡す。
type CustomerDetails struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

type TransactionRequest struct {
	TransactionID   string
	GrossAmount     int64
	Items           []LineItem
	Customer        CustomerDetails
	FinishURL       string
	ErrorURL        string
	PendingURL      string
	NotificationURL string
}

type TransactionResult struct {
	Token       string
	RedirectURL string
}

// 決済ゲートウェイの取引作成。テストではモックに差し替える。
type SnapGateway interface {
	CreateTransaction(ctx context.Context, req TransactionRequest) (TransactionResult, error)
}

type MidtransSnapGateway struct {
	serverKey string
	env       midtrans.EnvironmentType
}

func NewMidtransSnapGateway(serverKey string, isProduction bool) *MidtransSnapGateway {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}
	return &MidtransSnapGateway{serverKey: serverKey, env: env}
}

func (g *MidtransSnapGateway) CreateTransaction(ctx context.Context, req TransactionRequest) (TransactionResult, error) {
	//Optionsはリクエストごとに違うのでクライアントは都度作る
	var client snap.Client
	client.New(g.serverKey, g.env)
	client.Options.SetContext(ctx)
	if req.NotificationURL != "" {
		client.Options.SetPaymentOverrideNotification(req.NotificationURL)
	}

	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    it.ID,
			Name:  it.Name,
			Price: it.Price,
			Qty:   it.Quantity,
		})
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.TransactionID,
			GrossAmt: req.GrossAmount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.FirstName,
			LName: req.Customer.LastName,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
			BillAddr: &midtrans.CustomerAddress{
				FName:       req.Customer.FirstName,
				LName:       req.Customer.LastName,
				Phone:       req.Customer.Phone,
				Address:     req.Customer.Address,
				City:        req.Customer.City,
				Postcode:    req.Customer.PostalCode,
				CountryCode: "IDN",
			},
		},
		//SDKがサポートするのはfinishのみ。error/pendingはfinishページ側で振り分ける。
		Callbacks: &snap.Callbacks{Finish: req.FinishURL},
	}

	resp, err := client.CreateTransaction(snapReq)
	if err != nil {
		return TransactionResult{}, err
	}

	return TransactionResult{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}
