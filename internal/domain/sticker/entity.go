// internal/domain/sticker/entity.go
package sticker

import (
	"time"

	"gorm.io/gorm"
)

// Type distinguishes catalog templates from user-created designs
type Type string

const (
	TypeTemplate    Type = "template"
	TypeUserCreated Type = "user_created"
)

// Valid reports whether t is a known sticker type
func (t Type) Valid() bool {
	return t == TypeTemplate || t == TypeUserCreated
}

// Category represents a sticker template category
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"size:500" json:"description"`
	Image       string         `gorm:"size:500" json:"image"`
	SortOrder   int            `gorm:"default:0" json:"sort_order"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Templates []Template `gorm:"foreignKey:CategoryID" json:"templates,omitempty"`
}

// Template represents a catalog sticker template
type Template struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Slug        string         `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	Price       float64        `gorm:"not null" json:"price"` // Decimal price in Currency
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	ImageURL    string         `gorm:"not null;size:500" json:"image_url"`
	Tags        string         `gorm:"size:500" json:"tags"` // Comma-separated tags
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsFeatured  bool           `gorm:"default:false" json:"is_featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"category"`
}

// CustomSticker represents a user-created sticker design,
// either uploaded or generated from a prompt
type CustomSticker struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	ImageURL    string         `gorm:"not null;size:500" json:"image_url"`
	Source      string         `gorm:"not null;size:20" json:"source"` // upload, generated
	Prompt      string         `gorm:"size:500" json:"prompt,omitempty"`
	Price       float64        `gorm:"not null" json:"price"`
	Currency    string         `gorm:"size:3;default:'USD'" json:"currency"`
	IsPublished bool           `gorm:"default:false;index" json:"is_published"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides
func (Category) TableName() string      { return "sticker_categories" }
func (Template) TableName() string      { return "sticker_templates" }
func (CustomSticker) TableName() string { return "custom_stickers" }

// Snapshot is the catalog view of a sticker reference, denormalized
// into cart line items and order items at the moment of use
type Snapshot struct {
	StickerID uint    `json:"sticker_id"`
	Type      Type    `json:"sticker_type"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	ImageURL  string  `json:"image_url"`
}
