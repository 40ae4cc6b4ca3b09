package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// TestNotificationUsecase はゲートウェイのコールバックが届かない環境
// （ローカルやトンネル越しの開発）向けに、合成した通知を自分の
// /payment/notification に送る。本番では公開しない。
type TestNotificationUsecase struct {
	serverKey string
	baseURL   string
	clock     Clock
	client    *http.Client
}

func NewTestNotificationUsecase(serverKey string, baseURL string, clock Clock) *TestNotificationUsecase {
	return &TestNotificationUsecase{
		serverKey: serverKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		clock:     clock,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// 合成通知。settlementの固定形。
type testNotificationPayload struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	SignatureKey      string `json:"signature_key"`
}

type TestNotificationOutput struct {
	Success              bool                   `json:"success"`
	NotificationSent     map[string]string      `json:"notification_sent"`
	NotificationResponse map[string]interface{} `json:"notification_response"`
}

func (u *TestNotificationUsecase) Send(ctx context.Context, transactionID string) (TestNotificationOutput, error) {
	if strings.TrimSpace(transactionID) == "" {
		return TestNotificationOutput{}, NewHTTPError(http.StatusBadRequest, "transaction_id required")
	}

	//署名は本物を計算する。通知側の検証は環境によらず常に有効なので、
	//ダミー署名では必ず弾かれてしまう。
	payload := testNotificationPayload{
		OrderID:           transactionID,
		StatusCode:        "200",
		GrossAmount:       "100000.00",
		TransactionStatus: "settlement",
		FraudStatus:       "accept",
		PaymentType:       "credit_card",
		TransactionTime:   u.clock.Now().Format("2006-01-02 15:04:05"),
		SignatureKey:      SignatureFor(transactionID, "200", "100000.00", u.serverKey),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return TestNotificationOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/payment/notification", bytes.NewReader(body))
	if err != nil {
		return TestNotificationOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Midtrans-TestSuite/1.0")

	//1回だけ送る。リトライはしない。
	resp, err := u.client.Do(req)
	if err != nil {
		return TestNotificationOutput{}, NewHTTPError(http.StatusInternalServerError, "notification endpoint unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return TestNotificationOutput{}, NewHTTPError(http.StatusInternalServerError, "invalid response from notification endpoint")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TestNotificationOutput{}, NewHTTPError(http.StatusInternalServerError, "notification endpoint rejected the payload")
	}

	return TestNotificationOutput{
		Success: true,
		NotificationSent: map[string]string{
			"order_id":           payload.OrderID,
			"status_code":        payload.StatusCode,
			"gross_amount":       payload.GrossAmount,
			"transaction_status": payload.TransactionStatus,
			"fraud_status":       payload.FraudStatus,
			"payment_type":       payload.PaymentType,
			"transaction_time":   payload.TransactionTime,
		},
		NotificationResponse: result,
	}, nil
}
