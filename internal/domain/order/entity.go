// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"gorm.io/gorm"
)

// Status represents the payment lifecycle of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Order represents a checkout attempt. Line items are snapshotted from
// the cart at creation time and never change afterwards; the recorded
// total is the amount sent to the payment gateway, in subunits of the
// display currency.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Email       string `gorm:"not null;size:255" json:"email"`
	Status      Status `gorm:"not null;default:'pending'" json:"status"`

	// Amount charged, in currency subunits (e.g. cents, paise)
	TotalAmount int64  `gorm:"not null" json:"total_amount"`
	Currency    string `gorm:"size:3;default:'USD'" json:"currency"`

	// Gateway references
	GatewayOrderID   string `gorm:"size:100;index" json:"gateway_order_id"`
	GatewayPaymentID string `gorm:"size:100" json:"gateway_payment_id"`

	PaidAt    *time.Time     `json:"paid_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Items []Item `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// Item represents a snapshotted cart line inside an order
type Item struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	OrderID     uint         `gorm:"not null;index" json:"order_id"`
	StickerID   uint         `gorm:"not null" json:"sticker_id"`
	StickerType sticker.Type `gorm:"not null;size:20" json:"sticker_type"`
	Name        string       `gorm:"not null;size:255" json:"name"`
	Category    string       `gorm:"size:255" json:"category"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	Price       float64      `gorm:"not null" json:"price"` // Unit price at checkout time
	Currency    string       `gorm:"size:3;default:'USD'" json:"currency"`
	ImageURL    string       `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time    `json:"created_at"`
}

// TableName overrides the table name
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name
func (Item) TableName() string {
	return "order_items"
}

// CanTransitionTo reports whether a status change is allowed. Paid is
// terminal: no later gateway callback may downgrade it.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return false
	}
	switch s {
	case StatusPending:
		return target == StatusPaid || target == StatusFailed || target == StatusCancelled
	case StatusFailed:
		return target == StatusPaid || target == StatusCancelled
	default:
		return false
	}
}

// GenerateOrderNumber creates a unique order number
func GenerateOrderNumber() string {
	now := time.Now().UTC()
	return fmt.Sprintf("STK-%s-%d", now.Format("20060102"), now.UnixNano()%1000000)
}
