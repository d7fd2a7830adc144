// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"gorm.io/gorm"
)

// LineItem represents a cart row stored in the database for
// authenticated users. Catalog fields are denormalized at add time.
type LineItem struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index:idx_cart_owner_ref,priority:1" json:"user_id"`
	StickerID      uint           `gorm:"not null;index:idx_cart_owner_ref,priority:2" json:"sticker_id"`
	StickerType    sticker.Type   `gorm:"not null;size:20;index:idx_cart_owner_ref,priority:3" json:"sticker_type"`
	Name           string         `gorm:"not null;size:255" json:"name"`
	Category       string         `gorm:"size:255" json:"category"`
	Price          float64        `gorm:"not null" json:"price"` // Unit price at time of adding
	Currency       string         `gorm:"size:3;default:'USD'" json:"currency"`
	Quantity       int            `gorm:"not null;default:1" json:"quantity"`
	ImageURL       string         `gorm:"size:500" json:"image_url"`
	Specifications string         `gorm:"type:text" json:"-"` // JSON map: size/shape/finish
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (LineItem) TableName() string {
	return "cart_items"
}

// SessionCart represents the cart of an anonymous session, stored in
// Redis. For authenticated users the same structure doubles as a
// non-authoritative mirror used when the database is unreachable.
type SessionCart struct {
	SessionID string        `json:"session_id"`
	Items     []SessionItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// SessionItem is a line item in a session cart, identified by its
// sticker reference rather than a server row id
type SessionItem struct {
	RowID          uint              `json:"row_id,omitempty"` // Server row id, set when mirroring an authenticated cart
	StickerID      uint              `json:"sticker_id"`
	StickerType    sticker.Type      `json:"sticker_type"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Price          float64           `json:"price"`
	Currency       string            `json:"currency"`
	Quantity       int               `json:"quantity"`
	ImageURL       string            `json:"image_url"`
	Specifications map[string]string `json:"specifications,omitempty"`
	AddedAt        time.Time         `json:"added_at"`
}

// Provenance marks whether an in-memory item reflects server-confirmed
// state or a locally assumed view (mirror fallback, optimistic merge)
type Provenance string

const (
	ProvenanceConfirmed  Provenance = "confirmed"
	ProvenanceOptimistic Provenance = "optimistic"
)

// Item is the single line-item shape served to clients regardless of
// which backend produced it
type Item struct {
	ID             uint              `json:"id,omitempty"` // Server row id, authenticated carts only
	StickerID      uint              `json:"sticker_id"`
	StickerType    sticker.Type      `json:"sticker_type"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Price          float64           `json:"price"`
	Currency       string            `json:"currency"`
	Quantity       int               `json:"quantity"`
	ImageURL       string            `json:"image_url"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Provenance     Provenance        `json:"provenance"`
	AddedAt        time.Time         `json:"added_at"`
}

// SameRef reports whether two items reference the same sticker
func (i Item) SameRef(stickerID uint, stickerType sticker.Type) bool {
	return i.StickerID == stickerID && i.StickerType == stickerType
}

// Totals summarizes a cart. Monetary totals live in the checkout
// service so display and payment never diverge.
type Totals struct {
	ItemCount     int `json:"item_count"`     // Number of unique line items
	TotalQuantity int `json:"total_quantity"` // Sum of all quantities
}

// Cart is the single cart abstraction presented to the rest of the
// application, assembled from whichever backend is authoritative
type Cart struct {
	SessionID     string    `json:"session_id,omitempty"`
	UserID        *uint     `json:"user_id,omitempty"`
	Items         []Item    `json:"items"`
	Totals        Totals    `json:"totals"`
	Authoritative string    `json:"authoritative"` // "server" or "session"
	UpdatedAt     time.Time `json:"updated_at"`
}

// Identity captures who owns the cart for the current request. The
// authoritative backend is derived from it: server rows when a user id
// is present, the session cart otherwise.
type Identity struct {
	UserID    *uint
	SessionID string
}

// Authenticated reports whether the server backend is authoritative
func (id Identity) Authenticated() bool {
	return id.UserID != nil
}
