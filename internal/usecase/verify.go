package usecase

import (
	"context"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/domain"
)

type VerifyUsecase struct {
	tokens      TokenRepository
	inventories InventoryRepository
	ledger      LedgerRepository
	cache       VerificationCache
}

func NewVerifyUsecase(tokens TokenRepository, inventories InventoryRepository, ledger LedgerRepository, cache VerificationCache) *VerifyUsecase {
	return &VerifyUsecase{
		tokens:      tokens,
		inventories: inventories,
		ledger:      ledger,
		cache:       cache,
	}
}

// Verify builds the read-only projection for a token holder. A valid token
// on a not-yet-signed inventory yields Locked=false, not an error. Locked
// records are immutable and therefore cacheable indefinitely.
func (uc *VerifyUsecase) Verify(ctx context.Context, token string) (inventory.VerificationRecord, error) {
	if uc.cache != nil {
		if rec, found := uc.cache.Get(token); found {
			return rec, nil
		}
	}

	id, err := uc.tokens.Resolve(ctx, token)
	if err != nil {
		return inventory.VerificationRecord{}, err
	}

	inv, err := uc.inventories.Get(ctx, id)
	if err != nil {
		return inventory.VerificationRecord{}, err
	}

	entries, err := uc.ledger.Entries(ctx, id)
	if err != nil {
		return inventory.VerificationRecord{}, err
	}

	rec := inventory.VerificationRecord{
		InventoryID:     inv.ID,
		PropertyAddress: inv.Content.PropertyOverview.Address,
		Status:          string(inv.Status),
		Locked:          inv.Status.Locked(),
		TenantPresent:   inv.TenantPresent,
		Signatures:      domain.SignatureViews(entries),
	}

	if rec.Locked && uc.cache != nil {
		uc.cache.Set(token, rec)
	}

	return rec, nil
}
