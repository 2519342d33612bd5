package usecase

import (
	"context"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/domain"
)

type TokenUsecase struct {
	repo TokenRepository
}

func NewTokenUsecase(repo TokenRepository) *TokenUsecase {
	return &TokenUsecase{repo: repo}
}

// IssueOrGet mints a share token for the inventory, or returns the existing
// one unchanged. A previously distributed link stays valid for the lifetime
// of the record.
func (uc *TokenUsecase) IssueOrGet(ctx context.Context, inventoryID string) (string, error) {
	token, err := inventory.NewToken()
	if err != nil {
		return "", err
	}
	return uc.repo.Attach(ctx, inventoryID, token)
}

func (uc *TokenUsecase) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.NotFoundError{Resource: "inventory"}
	}
	return uc.repo.Resolve(ctx, token)
}
