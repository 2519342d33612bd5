package repository

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/domain"
	"github.com/bergason/inventory/internal/infra/database/models"
)

const resolveCacheTTL = 10 * time.Minute

type TokenRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewTokenRepository(db *gorm.DB, rdb *redis.Client) *TokenRepository {
	return &TokenRepository{db: db, rdb: rdb}
}

// Attach is the idempotent half of issuance. The row lock makes concurrent
// first issues agree on a single token.
func (r *TokenRepository) Attach(ctx context.Context, inventoryID, token string) (string, error) {
	canonical := token

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		var m models.Inventory
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", inventoryID).
			Take(&m).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "inventory"}
			}
			return err
		}

		if m.Token != nil {
			canonical = *m.Token
			return nil
		}

		digest := inventory.TokenDigest(token)
		updates := map[string]any{
			"token":        token,
			"token_digest": digest,
			"m_date":       time.Now().UTC(),
		}
		if domain.Status(m.Status) == domain.StatusDraft {
			updates["status"] = string(domain.StatusSent)
		}

		return tx.Model(&models.Inventory{}).
			Where("id = ?", inventoryID).
			Updates(updates).Error
	})
	if err != nil {
		return "", err
	}

	return canonical, nil
}

// Resolve looks a token up by its digest, then compares the stored plaintext
// in constant time. The token is a bearer credential; lookup cost must not
// correlate with how close a guess is.
func (r *TokenRepository) Resolve(ctx context.Context, token string) (string, error) {
	cacheKey := inventory.TokenCacheKey("resolve", token)

	if r.rdb != nil {
		if id, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil && id != "" {
			return id, nil
		}
	}

	digest := inventory.TokenDigest(token)

	var m models.Inventory
	err := r.db.WithContext(ctx).
		Where("token_digest = ?", digest).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.NotFoundError{Resource: "inventory"}
		}
		return "", err
	}

	if m.Token == nil || subtle.ConstantTimeCompare([]byte(*m.Token), []byte(token)) != 1 {
		return "", domain.NotFoundError{Resource: "inventory"}
	}

	if r.rdb != nil {
		if err := r.rdb.Set(ctx, cacheKey, m.ID, resolveCacheTTL).Err(); err != nil {
			slog.WarnContext(ctx, "failed to cache token resolution",
				slog.String("error", err.Error()),
				slog.String("module", "repository"),
			)
		}
	}

	return m.ID, nil
}
