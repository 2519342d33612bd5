package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bergason/inventory/internal/domain"
	"github.com/bergason/inventory/internal/infra/database/models"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Entries(ctx context.Context, inventoryID string) ([]domain.SignatureEntry, error) {

	var exists int64
	err := r.db.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", inventoryID).
		Count(&exists).Error
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, domain.NotFoundError{Resource: "inventory"}
	}

	var ms []models.SignatureEntry
	err = r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("c_date ASC, id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	entries := make([]domain.SignatureEntry, 0, len(ms))
	for _, m := range ms {
		entries = append(entries, entryFromModel(m))
	}
	return entries, nil
}

// Append records one attestation. The parent row is locked for the duration
// so the status check, the first-entry presence capture and the insert are
// one atomic unit; concurrent first-writers serialize here.
func (r *LedgerRepository) Append(ctx context.Context, entry domain.SignatureEntry, tenantPresent bool) (domain.SignatureEntry, error) {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var inv models.Inventory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", entry.InventoryID).
			Take(&inv).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "inventory"}
			}
			return err
		}

		status := domain.Status(inv.Status)
		if status.Locked() {
			return domain.ErrAlreadyLocked
		}
		if status != domain.StatusSent {
			// No share token has been issued yet, so from the signer's
			// point of view the record does not exist.
			return domain.NotFoundError{Resource: "inventory"}
		}

		var count int64
		err = tx.Model(&models.SignatureEntry{}).
			Where("inventory_id = ?", entry.InventoryID).
			Count(&count).Error
		if err != nil {
			return err
		}

		if count == 0 {
			err = tx.Model(&models.Inventory{}).
				Where("id = ?", entry.InventoryID).
				Update("tenant_present", tenantPresent).Error
			if err != nil {
				return err
			}
		}

		m := models.SignatureEntry{
			InventoryID: entry.InventoryID,
			SignerName:  entry.SignerName,
			Role:        string(entry.Role),
			Email:       entry.Email,
			ImageRef:    entry.ImageRef,
			SourceAddr:  entry.SourceAddr,
			CDate:       entry.SignedAt,
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		entry.ID = m.ID
		return nil
	})
	if err != nil {
		return domain.SignatureEntry{}, err
	}

	return entry, nil
}

// Lock is the one-way sent -> signed transition. The guarded update is the
// compare-and-set; the row lock already serializes callers, the status
// predicate is the proof no second caller can win.
func (r *LedgerRepository) Lock(ctx context.Context, inventoryID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var inv models.Inventory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", inventoryID).
			Take(&inv).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "inventory"}
			}
			return err
		}

		if domain.Status(inv.Status).Locked() {
			return domain.ErrAlreadyLocked
		}

		var count int64
		err = tx.Model(&models.SignatureEntry{}).
			Where("inventory_id = ?", inventoryID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrEmptyLedger
		}

		result := tx.Model(&models.Inventory{}).
			Where("id = ? AND status = ?", inventoryID, string(domain.StatusSent)).
			Updates(map[string]any{
				"status": string(domain.StatusSigned),
				"m_date": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrAlreadyLocked
		}
		return nil
	})
}

func entryFromModel(m models.SignatureEntry) domain.SignatureEntry {
	return domain.SignatureEntry{
		ID:          m.ID,
		InventoryID: m.InventoryID,
		SignerName:  m.SignerName,
		Role:        domain.Role(m.Role),
		Email:       m.Email,
		ImageRef:    m.ImageRef,
		SourceAddr:  m.SourceAddr,
		SignedAt:    m.CDate,
	}
}
