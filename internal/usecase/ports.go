package usecase

import (
	"context"

	"github.com/bergason/inventory"
	"github.com/bergason/inventory/internal/domain"
)

// InventoryRepository defines persistence for inventory records and their
// content. Content writes must be rejected once the record is locked.
type InventoryRepository interface {
	Create(ctx context.Context, inv domain.Inventory) error
	Get(ctx context.Context, id string) (domain.Inventory, error)
	List(ctx context.Context) ([]domain.Inventory, error)
	UpdateContent(ctx context.Context, id string, content inventory.Content) error
	Delete(ctx context.Context, id string) error
}

// TokenRepository defines share-token persistence and lookup.
type TokenRepository interface {
	// Attach stores token on the inventory unless one already exists and
	// returns whichever token is on record afterwards. Attaching to a draft
	// inventory moves it to sent.
	Attach(ctx context.Context, inventoryID, token string) (string, error)
	// Resolve maps a token to its inventory id in O(1).
	Resolve(ctx context.Context, token string) (string, error)
}

// LedgerRepository defines the append-only signature ledger. Append and Lock
// must serialize per inventory so first-entry presence capture and the lock
// transition are race-free.
type LedgerRepository interface {
	Entries(ctx context.Context, inventoryID string) ([]domain.SignatureEntry, error)
	Append(ctx context.Context, entry domain.SignatureEntry, tenantPresent bool) (domain.SignatureEntry, error)
	Lock(ctx context.Context, inventoryID string) error
}

// BlobStore persists opaque binary assets and returns a stable reference.
// Remove undoes a store when the surrounding operation fails.
type BlobStore interface {
	Store(ctx context.Context, kind, ext string, data []byte) (string, error)
	Remove(ctx context.Context, ref string) error
}

// InkScanner checks a signature raster for visible ink.
type InkScanner interface {
	HasInk(ctx context.Context, data []byte) (bool, error)
}

// VerificationCache holds verification records for locked inventories. Only
// locked records may be cached; they are immutable.
type VerificationCache interface {
	Get(token string) (inventory.VerificationRecord, bool)
	Set(token string, rec inventory.VerificationRecord)
}
