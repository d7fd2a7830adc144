// internal/domain/social/service.go
package social

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"github.com/stickerly/stickershop-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Service handles likes, publishing and public profiles
type Service struct {
	db       *gorm.DB
	stickers *sticker.Service
	logger   *logrus.Logger
}

// NewService creates a new social service
func NewService(db *gorm.DB, stickers *sticker.Service, logger *logrus.Logger) *Service {
	return &Service{db: db, stickers: stickers, logger: logger}
}

// PublishedSticker is a published custom sticker with its like count
type PublishedSticker struct {
	Sticker   sticker.CustomSticker `json:"sticker"`
	LikeCount int64                 `json:"like_count"`
}

// Profile is a user's public page: display name and published stickers
type Profile struct {
	UserID   uint               `json:"user_id"`
	Name     string             `json:"name"`
	Avatar   string             `json:"avatar,omitempty"`
	Stickers []PublishedSticker `json:"stickers"`
}

// Like records a like on a published sticker. Liking twice is a no-op.
func (s *Service) Like(ctx context.Context, userID, stickerID uint) error {
	var target sticker.CustomSticker
	err := s.db.WithContext(ctx).First(&target, stickerID).Error
	if err == gorm.ErrRecordNotFound {
		return fmt.Errorf("sticker not found")
	} else if err != nil {
		return fmt.Errorf("failed to look up sticker: %w", err)
	}
	if !target.IsPublished && target.UserID != userID {
		return fmt.Errorf("sticker not found")
	}

	like := StickerLike{UserID: userID, StickerID: stickerID}
	err = s.db.WithContext(ctx).Create(&like).Error
	if err != nil {
		if isDuplicate(err) {
			return nil
		}
		return fmt.Errorf("failed to like sticker: %w", err)
	}
	return nil
}

// Unlike removes a like. Removing a like that does not exist is fine.
func (s *Service) Unlike(ctx context.Context, userID, stickerID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND sticker_id = ?", userID, stickerID).
		Delete(&StickerLike{}).Error
	if err != nil {
		return fmt.Errorf("failed to unlike sticker: %w", err)
	}
	return nil
}

// LikeCount returns the number of likes on a sticker
func (s *Service) LikeCount(ctx context.Context, stickerID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&StickerLike{}).
		Where("sticker_id = ?", stickerID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// Liked reports whether the user has liked the sticker
func (s *Service) Liked(ctx context.Context, userID, stickerID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&StickerLike{}).
		Where("user_id = ? AND sticker_id = ?", userID, stickerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return count > 0, nil
}

// Publish toggles a custom sticker's published flag, owner only
func (s *Service) Publish(ctx context.Context, userID, stickerID uint, published bool) (*sticker.CustomSticker, error) {
	return s.stickers.SetPublished(ctx, userID, stickerID, published)
}

// Profile assembles a user's public page
func (s *Service) Profile(ctx context.Context, userID uint) (*Profile, error) {
	var owner user.User
	err := s.db.WithContext(ctx).First(&owner, userID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("user not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	var published []sticker.CustomSticker
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND is_published = ?", userID, true).
		Order("published_at desc").
		Find(&published).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load published stickers: %w", err)
	}

	counts, err := s.likeCounts(ctx, published)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		UserID:   owner.ID,
		Name:     strings.TrimSpace(owner.FirstName + " " + owner.LastName),
		Avatar:   owner.Avatar,
		Stickers: make([]PublishedSticker, len(published)),
	}
	for i, st := range published {
		profile.Stickers[i] = PublishedSticker{Sticker: st, LikeCount: counts[st.ID]}
	}
	return profile, nil
}

func (s *Service) likeCounts(ctx context.Context, stickers []sticker.CustomSticker) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(stickers))
	if len(stickers) == 0 {
		return counts, nil
	}

	ids := make([]uint, len(stickers))
	for i, st := range stickers {
		ids[i] = st.ID
	}

	var rows []struct {
		StickerID uint
		Count     int64
	}
	err := s.db.WithContext(ctx).Model(&StickerLike{}).
		Select("sticker_id, count(*) as count").
		Where("sticker_id IN ?", ids).
		Group("sticker_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	for _, row := range rows {
		counts[row.StickerID] = row.Count
	}
	return counts, nil
}

func isDuplicate(err error) bool {
	return strings.Contains(err.Error(), "duplicate") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}
