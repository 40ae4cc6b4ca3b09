package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"coffeeshop/internal/domain/model"
	repo "coffeeshop/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

type MenuUsecase struct {
	menuRepo repo.MenuRepository
}

// DI
func NewMenuUsecase(menuRepo repo.MenuRepository) *MenuUsecase {
	return &MenuUsecase{menuRepo: menuRepo}
}

// 管理者CRUDの入力DTO
type MenuItemInput struct {
	Name        string
	ImageURL    string
	Description string
	Category    string
	Stock       int64
	Price       int64
}

// 公開一覧（名前昇順）
func (u *MenuUsecase) List(ctx context.Context) ([]model.MenuItem, error) {
	items, err := u.menuRepo.ListPublic(ctx)
	if err != nil {
		return []model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *MenuUsecase) Detail(ctx context.Context, id int64) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := u.menuRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m, nil
}

func (u *MenuUsecase) Create(ctx context.Context, in MenuItemInput) (model.MenuItem, error) {
	if err := validateMenuInput(in); err != nil {
		return model.MenuItem{}, err
	}

	m, err := u.menuRepo.Create(ctx, model.MenuItem{
		Name:        strings.TrimSpace(in.Name),
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		Price:       in.Price,
	})
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m, nil
}

func (u *MenuUsecase) Update(ctx context.Context, id int64, in MenuItemInput) (model.MenuItem, error) {
	if id <= 0 {
		return model.MenuItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateMenuInput(in); err != nil {
		return model.MenuItem{}, err
	}

	err := u.menuRepo.Update(ctx, model.MenuItem{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		ImageURL:    in.ImageURL,
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
		Price:       in.Price,
	})
	if err == repo.ErrNotFound {
		return model.MenuItem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	m, err := u.menuRepo.FindByID(ctx, id)
	if err != nil {
		return model.MenuItem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m, nil
}

func (u *MenuUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.menuRepo.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateMenuInput(in MenuItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if in.Price <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid stock")
	}
	return nil
}
