package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/domain"
)

const signatureBlobKind = "signatures"

type LedgerUsecase struct {
	ledger   LedgerRepository
	blobs    BlobStore
	ink      InkScanner
	validate *validator.Validate
}

func NewLedgerUsecase(ledger LedgerRepository, blobs BlobStore, ink InkScanner) *LedgerUsecase {
	return &LedgerUsecase{
		ledger:   ledger,
		blobs:    blobs,
		ink:      ink,
		validate: validator.New(),
	}
}

func (uc *LedgerUsecase) Entries(ctx context.Context, inventoryID string) ([]domain.SignatureEntry, error) {
	return uc.ledger.Entries(ctx, inventoryID)
}

// Append validates one signer's submission and records it. The timestamp and
// the capture source address are assigned here, never taken from the payload.
// The first entry for an inventory fixes the tenant-presence declaration;
// later submissions may carry the flag but cannot change it.
func (uc *LedgerUsecase) Append(ctx context.Context, inventoryID string, sub inventory.SignatureSubmission, sourceAddr string) (domain.SignatureEntry, error) {
	if err := uc.validate.Struct(sub); err != nil {
		return domain.SignatureEntry{}, domain.ValidationError{Reason: err.Error()}
	}

	role := domain.Role(sub.Role)
	if !role.Recognized() {
		return domain.SignatureEntry{}, domain.ValidationError{Reason: "unrecognized signer role"}
	}

	data, err := inventory.DecodeSignatureData(sub.SignatureData)
	if err != nil || len(data) == 0 {
		return domain.SignatureEntry{}, domain.ErrInvalidSignature
	}

	inked, err := uc.ink.HasInk(ctx, data)
	if err != nil || !inked {
		return domain.SignatureEntry{}, domain.ErrInvalidSignature
	}

	ref, err := uc.blobs.Store(ctx, signatureBlobKind, ".png", data)
	if err != nil {
		return domain.SignatureEntry{}, err
	}

	entry := domain.SignatureEntry{
		InventoryID: inventoryID,
		SignerName:  sub.SignerName,
		Role:        role,
		Email:       sub.Email,
		ImageRef:    ref,
		SourceAddr:  sourceAddr,
		SignedAt:    time.Now().UTC(),
	}

	stored, err := uc.ledger.Append(ctx, entry, sub.TenantPresent)
	if err != nil {
		// The raster was persisted before the ledger rejected the entry;
		// remove it so rejections do not accumulate orphans.
		if rmErr := uc.blobs.Remove(ctx, ref); rmErr != nil {
			slog.WarnContext(ctx, "failed to remove rejected signature raster",
				slog.String("error", rmErr.Error()),
				slog.String("module", "usecase"),
			)
		}
		return domain.SignatureEntry{}, err
	}

	return stored, nil
}

// Lock performs the one-way sent -> signed transition. Exactly one caller
// succeeds under concurrent invocation.
func (uc *LedgerUsecase) Lock(ctx context.Context, inventoryID string) error {
	return uc.ledger.Lock(ctx, inventoryID)
}
