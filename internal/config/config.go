package config

import (
	"fmt"
	"os"
	"strings"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // 認証プロバイダのセッショントークン検証用シークレット

	MidtransServerKey    string // 署名検証とSnap API呼び出しに使う
	MidtransClientKey    string
	MidtransIsProduction bool // sandbox/production切り替え

	PublicBaseURL string // コールバック・通知URLの組み立てに使う

	// capture + challenge の扱い（challenge / success）。
	// 観測された実装が2通りあるため設定で選ぶ。
	ChallengeOrderStatus string

	GoEnv string // dev/production（test-notificationの公開可否）
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		MidtransServerKey:    os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey:    os.Getenv("MIDTRANS_CLIENT_KEY"),
		MidtransIsProduction: os.Getenv("MIDTRANS_IS_PRODUCTION") == "true",

		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),

		ChallengeOrderStatus: os.Getenv("CHALLENGE_ORDER_STATUS"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	if cfg.ChallengeOrderStatus == "" {
		cfg.ChallengeOrderStatus = "challenge"
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MidtransServerKey == "" {
		return Config{}, fmt.Errorf("MIDTRANS_SERVER_KEY is required")
	}
	if cfg.MidtransClientKey == "" {
		return Config{}, fmt.Errorf("MIDTRANS_CLIENT_KEY is required")
	}
	if cfg.PublicBaseURL == "" {
		return Config{}, fmt.Errorf("PUBLIC_BASE_URL is required")
	}
	if cfg.ChallengeOrderStatus != "challenge" && cfg.ChallengeOrderStatus != "success" {
		return Config{}, fmt.Errorf("CHALLENGE_ORDER_STATUS must be challenge or success")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

// test-notificationを公開してよい環境か
func (c Config) IsProductionEnv() bool {
	return c.GoEnv == "production" || c.GoEnv == "prod"
}
