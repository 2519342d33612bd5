package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/domain"
	"github.com/bergason/inventory/internal/infra/database/models"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, inv domain.Inventory) error {
	m, err := toModel(inv)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *InventoryRepository) Get(ctx context.Context, id string) (domain.Inventory, error) {
	var m models.Inventory
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Inventory{}, domain.NotFoundError{Resource: "inventory"}
		}
		return domain.Inventory{}, err
	}
	return fromModel(m)
}

func (r *InventoryRepository) List(ctx context.Context) ([]domain.Inventory, error) {
	var ms []models.Inventory
	err := r.db.WithContext(ctx).
		Order("c_date DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	invs := make([]domain.Inventory, 0, len(ms))
	for _, m := range ms {
		inv, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, nil
}

// UpdateContent rewrites the structured content. The row is locked for the
// status check so a concurrent lock cannot slip in between check and write.
func (r *InventoryRepository) UpdateContent(ctx context.Context, id string, content inventory.Content) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var m models.Inventory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "inventory"}
			}
			return err
		}

		if domain.Status(m.Status).Locked() {
			return domain.ErrAlreadyLocked
		}

		serialized, err := json.Marshal(content)
		if err != nil {
			return err
		}

		return tx.Model(&models.Inventory{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"content": string(serialized),
				"m_date":  time.Now().UTC(),
			}).Error
	})
}

// Delete removes a draft. Anything past draft has either been distributed or
// signed and stays on record.
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var m models.Inventory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			Take(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "inventory"}
			}
			return err
		}

		if domain.Status(m.Status).Locked() {
			return domain.ErrAlreadyLocked
		}
		if domain.Status(m.Status) != domain.StatusDraft {
			return domain.ValidationError{Reason: "only draft inventories can be deleted"}
		}

		return tx.Delete(&models.Inventory{}, "id = ?", id).Error
	})
}

func toModel(inv domain.Inventory) (models.Inventory, error) {
	serialized, err := json.Marshal(inv.Content)
	if err != nil {
		return models.Inventory{}, err
	}
	return models.Inventory{
		ID:            inv.ID,
		Status:        string(inv.Status),
		Content:       string(serialized),
		Token:         inv.Token,
		TenantPresent: inv.TenantPresent,
		CDate:         inv.CreatedAt,
		MDate:         inv.UpdatedAt,
	}, nil
}

func fromModel(m models.Inventory) (domain.Inventory, error) {
	var content inventory.Content
	if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
		return domain.Inventory{}, err
	}
	return domain.Inventory{
		ID:            m.ID,
		Status:        domain.Status(m.Status),
		Content:       content,
		Token:         m.Token,
		TenantPresent: m.TenantPresent,
		CreatedAt:     m.CDate,
		UpdatedAt:     m.MDate,
	}, nil
}
