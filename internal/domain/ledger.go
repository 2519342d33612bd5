package domain

import (
	"time"

	"github.com/bergason/inventory"
)

// Role identifies the capacity a signer attests in.
type Role string

const (
	RoleInspector Role = "Inspector"
	RoleTenant    Role = "Tenant"
)

// Recognized reports whether the role is an accepted value. The set is kept
// here so adding a role is a one-line change.
func (r Role) Recognized() bool {
	switch r {
	case RoleInspector, RoleTenant:
		return true
	}
	return false
}

// SignatureEntry is one signer's attestation. SignedAt and SourceAddr are
// server-assigned, never taken from caller input. Entries are immutable once
// appended.
type SignatureEntry struct {
	ID          int64     `json:"id"`
	InventoryID string    `json:"inventoryId"`
	SignerName  string    `json:"signerName"`
	Role        Role      `json:"role"`
	Email       string    `json:"email,omitempty"`
	ImageRef    string    `json:"imageRef"`
	SourceAddr  string    `json:"-"`
	SignedAt    time.Time `json:"signedAt"`
}

// View projects the entry into its wire form. The capture source address
// stays server-side.
func (e SignatureEntry) View() inventory.SignatureView {
	return inventory.SignatureView{
		SignerName: e.SignerName,
		Role:       string(e.Role),
		Email:      e.Email,
		ImageRef:   e.ImageRef,
		SignedAt:   e.SignedAt,
	}
}

// SignatureViews maps a ledger read into wire form, preserving order.
func SignatureViews(entries []SignatureEntry) []inventory.SignatureView {
	views := make([]inventory.SignatureView, 0, len(entries))
	for _, e := range entries {
		views = append(views, e.View())
	}
	return views
}
