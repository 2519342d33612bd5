package domain

import (
	"time"

	"github.com/bergason/inventory"
)

// Status is the inventory lifecycle state. Transitions are strictly
// monotonic: draft -> sent -> signed -> archived.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusSigned   Status = "signed"
	StatusArchived Status = "archived"
)

// Locked reports whether the inventory and its ledger are permanently
// read-only.
func (s Status) Locked() bool {
	return s == StatusSigned || s == StatusArchived
}

// Inventory is the unit of work. Content is mutable only while the status is
// draft or sent; Token is nil until a share link is first issued and is never
// reassigned afterwards.
type Inventory struct {
	ID            string            `json:"id"`
	Status        Status            `json:"status"`
	Content       inventory.Content `json:"content"`
	Token         *string           `json:"-"`
	TenantPresent *bool             `json:"tenantPresent,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// View projects the inventory into its wire form.
func (i Inventory) View() inventory.InventoryView {
	return inventory.InventoryView{
		ID:            i.ID,
		Status:        string(i.Status),
		Content:       i.Content,
		TenantPresent: i.TenantPresent,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}
