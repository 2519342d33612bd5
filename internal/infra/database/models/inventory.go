package models

import (
	"time"
)

type Inventory struct {
	ID      string `json:"id" gorm:"primaryKey;type:text"`
	Status  string `json:"status" gorm:"type:text;not null;default:'draft';index"`
	Content string `json:"content" gorm:"type:text;not null"`
	// Token is kept in plaintext so idempotent re-issue can return it; the
	// digest column is the lookup index.
	Token         *string   `json:"-" gorm:"type:text"`
	TokenDigest   *string   `json:"-" gorm:"type:text;uniqueIndex"`
	TenantPresent *bool     `json:"tenantPresent" gorm:"type:boolean"`
	CDate         time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate         time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type SignatureEntry struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	InventoryID string    `json:"inventoryID" gorm:"type:text;not null;index"`
	Inventory   Inventory `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
	SignerName  string    `json:"signerName" gorm:"type:text;not null"`
	Role        string    `json:"role" gorm:"type:text;not null"`
	Email       string    `json:"email" gorm:"type:text"`
	ImageRef    string    `json:"imageRef" gorm:"type:text;not null"`
	SourceAddr  string    `json:"-" gorm:"type:text"`
	CDate       time.Time `json:"cdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}
