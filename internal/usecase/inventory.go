package usecase

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/domain"
)

type InventoryUsecase struct {
	repo     InventoryRepository
	validate *validator.Validate
}

func NewInventoryUsecase(repo InventoryRepository) *InventoryUsecase {
	return &InventoryUsecase{
		repo:     repo,
		validate: validator.New(),
	}
}

func (uc *InventoryUsecase) Create(ctx context.Context, content inventory.Content) (domain.Inventory, error) {
	if err := uc.validate.Struct(content); err != nil {
		return domain.Inventory{}, domain.ValidationError{Reason: err.Error()}
	}

	now := time.Now().UTC()
	inv := domain.Inventory{
		ID:        uuid.NewString(),
		Status:    domain.StatusDraft,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, inv); err != nil {
		return domain.Inventory{}, err
	}

	return inv, nil
}

func (uc *InventoryUsecase) Get(ctx context.Context, id string) (domain.Inventory, error) {
	return uc.repo.Get(ctx, id)
}

func (uc *InventoryUsecase) List(ctx context.Context) ([]domain.Inventory, error) {
	return uc.repo.List(ctx)
}

func (uc *InventoryUsecase) UpdateContent(ctx context.Context, id string, content inventory.Content) (domain.Inventory, error) {
	if err := uc.validate.Struct(content); err != nil {
		return domain.Inventory{}, domain.ValidationError{Reason: err.Error()}
	}

	if err := uc.repo.UpdateContent(ctx, id, content); err != nil {
		return domain.Inventory{}, err
	}

	return uc.repo.Get(ctx, id)
}

func (uc *InventoryUsecase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}
