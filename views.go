package inventory

import (
	"encoding/base64"
	"strings"
	"time"
)

// SignatureSubmission is the payload one signer sends against a share token.
// SignatureData carries the raster either as plain base64 or as a data URI.
type SignatureSubmission struct {
	SignerName    string `json:"signerName" validate:"required"`
	Role          string `json:"role" validate:"required"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	SignatureData string `json:"signatureData" validate:"required"`
	TenantPresent bool   `json:"tenantPresent"`
}

// SignatureView is one ledger entry as exposed to callers. The raster itself
// is referenced, never inlined.
type SignatureView struct {
	SignerName string    `json:"signerName"`
	Role       string    `json:"role"`
	Email      string    `json:"email,omitempty"`
	ImageRef   string    `json:"imageRef"`
	SignedAt   time.Time `json:"signedAt"`
}

type InventoryView struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	Content       Content   `json:"content"`
	TenantPresent *bool     `json:"tenantPresent,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SigningView is what a token holder sees on the signing page: the current
// projection plus the ledger so far.
type SigningView struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Content       Content         `json:"content"`
	TenantPresent *bool           `json:"tenantPresent,omitempty"`
	Locked        bool            `json:"locked"`
	Signatures    []SignatureView `json:"signatures"`
}

// VerificationRecord is the read-only projection proving an inventory's
// signed state. Locked is false for inventories that are valid but not yet
// signed; that is an expected outcome, not an error.
type VerificationRecord struct {
	InventoryID     string          `json:"inventoryId"`
	PropertyAddress string          `json:"propertyAddress"`
	Status          string          `json:"status"`
	Locked          bool            `json:"locked"`
	TenantPresent   *bool           `json:"tenantPresent,omitempty"`
	Signatures      []SignatureView `json:"signatures"`
}

type ShareLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type UploadResult struct {
	FileRef          string    `json:"fileRef"`
	ThumbnailRef     string    `json:"thumbnailRef,omitempty"`
	OriginalFilename string    `json:"originalFilename,omitempty"`
	RoomReference    string    `json:"roomReference,omitempty"`
	Description      string    `json:"description,omitempty"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

const (
	EventSignatureAppended = "ledger.signature"
	EventLocked            = "ledger.lock"
)

// Event is published on an inventory's ledger channel whenever the ledger
// changes. Payloads never carry the share token.
type Event struct {
	Type        string    `json:"type"`
	InventoryID string    `json:"inventoryId"`
	SignerName  string    `json:"signerName,omitempty"`
	Role        string    `json:"role,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// DecodeSignatureData accepts either a raw base64 raster or a browser data
// URI ("data:image/png;base64,....") and returns the image bytes.
func DecodeSignatureData(s string) ([]byte, error) {
	if idx := strings.Index(s, ";base64,"); idx >= 0 && strings.HasPrefix(s, "data:") {
		s = s[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}
