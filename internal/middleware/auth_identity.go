package middleware

import (
	"errors"
	"net/http"
	"strings"

	"coffeeshop/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxExternalIDKey  = "external_id"  // string
	CtxEmailKey       = "email"        // string
	CtxDisplayNameKey = "display_name" // string
	CtxImageURLKey    = "image_url"    // string
	CtxRoleKey        = "role"         // string
)

// bearerAuth用のJWT検証ミドルウェア。
// 認証プロバイダが発行したセッショントークンを検証して、
// 外部IDとプロフィールをcontextに載せる。ローカルユーザーへの解決はusecase側。
func AuthIdentity(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//JWTをパースして検証する
			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//claimsを取り出す
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//subは外部ID（不透明な文字列）
			externalID, err := parseString(claims["sub"])
			if err != nil || externalID == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//プロフィール系claimは無くてもよい
			email, _ := parseString(claims["email"])
			name, _ := parseString(claims["name"])
			picture, _ := parseString(claims["picture"])
			role, _ := parseString(claims["role"])

			//contextへ保存
			c.Set(CtxExternalIDKey, externalID)
			c.Set(CtxEmailKey, email)
			c.Set(CtxDisplayNameKey, name)
			c.Set(CtxImageURLKey, picture)
			c.Set(CtxRoleKey, role)

			return next(c)
		}
	}
}

// 管理者専用ルート用。AuthIdentityの後に使う。
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRoleKey).(string)
			if role != "admin" {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func parseString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("invalid string")
	}
	return s, nil
}
