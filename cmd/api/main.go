package main

import (
	"time"

	"coffeeshop/internal/config"
	"coffeeshop/internal/domain/model"
	"coffeeshop/internal/gateway"
	"coffeeshop/internal/handler"
	"coffeeshop/internal/infra/db"
	infraRepo "coffeeshop/internal/infra/repository"
	"coffeeshop/internal/server"
	"coffeeshop/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Cart{},
		&model.CartItem{},
		&model.MenuItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	snapGW := gateway.NewMidtransSnapGateway(cfg.MidtransServerKey, cfg.MidtransIsProduction)

	//Usecase生成
	syncUC := usecase.NewSyncUsecase(txManager)
	menuUC := usecase.NewMenuUsecase(menuRepo)
	cartUC := usecase.NewCartUsecase(userRepo, cartRepo, cartRepo, menuRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, userRepo, snapGW, idGen, clock, cfg.PublicBaseURL)
	notifyUC := usecase.NewNotificationUsecase(txManager, cfg.MidtransServerKey, cfg.ChallengeOrderStatus, clock)
	testNotifyUC := usecase.NewTestNotificationUsecase(cfg.MidtransServerKey, cfg.PublicBaseURL, clock)
	orderUC := usecase.NewOrderUsecase(txManager, userRepo)

	//Handler生成
	syncH := handler.NewSyncHandler(syncUC)
	menuH := handler.NewMenuHandler(menuUC)
	cartH := handler.NewCartHandler(cartUC)
	paymentH := handler.NewPaymentHandler(checkoutUC, notifyUC, testNotifyUC)
	orderH := handler.NewOrderHandler(orderUC)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, cfg, syncH, menuH, cartH, paymentH, orderH); err != nil {
		panic(err)
	}
}
