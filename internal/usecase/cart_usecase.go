package usecase

import (
	"context"
	"net/http"

	repo "coffeeshop/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// 明細は (menu_item_id, quantity) だけを持ち、価格は常にメニューの現在値を正とする。
type CartUsecase struct {
	userRepo     repo.UserRepository
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	menuRepo     repo.MenuRepository
}

func NewCartUsecase(
	userRepo repo.UserRepository,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	menuRepo repo.MenuRepository,
) *CartUsecase {
	return &CartUsecase{
		userRepo:     userRepo,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		menuRepo:     menuRepo,
	}
}

type CartItemResponse struct {
	ID         int64  `json:"id"`
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int64  `json:"quantity"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total int64              `json:"total"`
}

type AddCartInput struct {
	MenuItemID int64
	Quantity   int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// 外部IDからローカルユーザーを解決する。未同期なら404。
func (u *CartUsecase) resolveUser(ctx context.Context, externalID string) (int64, error) {
	if externalID == "" {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	user, err := u.userRepo.FindByExternalID(ctx, externalID)
	if err == repo.ErrNotFound {
		return 0, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return user.ID, nil
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, externalID string) (CartResponse, error) {
	userID, err := u.resolveUser(ctx, externalID)
	if err != nil {
		return CartResponse{}, err
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, externalID string, in AddCartInput) (CartResponse, error) {
	userID, err := u.resolveUser(ctx, externalID)
	if err != nil {
		return CartResponse{}, err
	}
	if in.MenuItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid menu_item_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 商品チェック
	m, err := u.menuRepo.FindByID(ctx, in.MenuItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 既存数量＋追加分が在庫を超えないか
	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.MenuItemID == in.MenuItemID {
			existingQty = it.Quantity
			break
		}
	}

	newQty := existingQty + in.Quantity
	if newQty > m.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpsertByCartAndMenuItem(ctx, cart.ID, in.MenuItemID, in.Quantity); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 数量変更（所有チェック＋在庫チェック）。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, externalID string, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	userID, err := u.resolveUser(ctx, externalID)
	if err != nil {
		return CartResponse{}, err
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//商品の在庫チェック
	m, err := u.menuRepo.FindByID(ctx, item.MenuItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if in.Quantity > m.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, externalID string, cartItemID int64) (CartResponse, error) {
	userID, err := u.resolveUser(ctx, externalID)
	if err != nil {
		return CartResponse{}, err
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 全明細削除
func (u *CartUsecase) ClearCart(ctx context.Context, externalID string) (CartResponse, error) {
	userID, err := u.resolveUser(ctx, externalID)
	if err != nil {
		return CartResponse{}, err
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// cartIDの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total int64 = 0

	for _, it := range items {
		m, err := u.menuRepo.FindByID(ctx, it.MenuItemID)
		if err != nil {
			//消えた商品は表示しない
			continue
		}

		respItems = append(respItems, CartItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   it.Quantity,
		})

		total += m.Price * it.Quantity
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
