// internal/domain/social/entity.go
package social

import (
	"time"
)

// StickerLike represents a like on a published custom sticker. One row
// per (user, sticker) pair; unliking deletes the row outright so a
// later re-like never collides with the unique index.
type StickerLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_sticker,priority:1" json:"user_id"`
	StickerID uint      `gorm:"not null;uniqueIndex:idx_like_user_sticker,priority:2;index" json:"sticker_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name
func (StickerLike) TableName() string {
	return "sticker_likes"
}
