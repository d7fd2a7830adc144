// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/config"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"gorm.io/gorm"
)

// Store is the authoritative server-side cart backend for
// authenticated users
type Store interface {
	List(ctx context.Context, userID uint) ([]LineItem, error)
	// Upsert applies the merge rule: an existing row for the same
	// sticker reference has its quantity incremented, otherwise a new
	// row is created. Returns the resulting row.
	Upsert(ctx context.Context, userID uint, item SessionItem) (*LineItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) error
	Remove(ctx context.Context, userID, itemID uint) error
	Clear(ctx context.Context, userID uint) error
}

// SessionStore is the anonymous cart backend. It also holds the
// non-authoritative mirror for authenticated users.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*SessionCart, error)
	Save(ctx context.Context, sessionID string, cart *SessionCart) error
	Clear(ctx context.Context, sessionID string) error
}

// gormStore implements Store on the cart_items table
type gormStore struct {
	db *gorm.DB
}

// NewStore creates the database-backed cart store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) List(ctx context.Context, userID uint) ([]LineItem, error) {
	var items []LineItem
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user cart: %w", err)
	}
	return items, nil
}

func (s *gormStore) Upsert(ctx context.Context, userID uint, item SessionItem) (*LineItem, error) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	var existing LineItem
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND sticker_id = ? AND sticker_type = ?",
			userID, item.StickerID, item.StickerType).
		First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		row := LineItem{
			UserID:         userID,
			StickerID:      item.StickerID,
			StickerType:    item.StickerType,
			Name:           item.Name,
			Category:       item.Category,
			Price:          item.Price,
			Currency:       item.Currency,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
			Specifications: encodeSpecs(item.Specifications),
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
		return &row, nil
	} else if result.Error != nil {
		return nil, fmt.Errorf("failed to look up cart item: %w", result.Error)
	}

	existing.Quantity += item.Quantity
	existing.Price = item.Price // Price may have changed since first add
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return &existing, nil
}

func (s *gormStore) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) error {
	result := s.db.WithContext(ctx).Model(&LineItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if result.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item not found in cart")
	}
	return nil
}

func (s *gormStore) Remove(ctx context.Context, userID, itemID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&LineItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("item not found in cart")
	}
	return nil
}

func (s *gormStore) Clear(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&LineItem{}).Error
}

// redisSessionStore implements SessionStore on Redis JSON blobs
type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewSessionStore creates the Redis-backed session cart store
func NewSessionStore(client *redis.Client, cfg *config.Config, logger *logrus.Logger) SessionStore {
	return &redisSessionStore{
		client: client,
		ttl:    cfg.Currency.SessionCartTTL,
		logger: logger,
	}
}

func (s *redisSessionStore) key(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for session cart")
	}

	data, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &SessionCart{
			SessionID: sessionID,
			Items:     []SessionItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, err
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, err
	}
	return &sessionCart, nil
}

func (s *redisSessionStore) Save(ctx context.Context, sessionID string, cart *SessionCart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	key := s.key(sessionID)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err == nil {
		return nil
	}

	// Capacity or transient write failure: drop the stale entry and
	// retry once before giving up
	s.client.Del(ctx, key)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).
			Warn("Session cart write failed after retry")
		return err
	}
	return nil
}

func (s *redisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func encodeSpecs(specs map[string]string) string {
	if len(specs) == 0 {
		return ""
	}
	data, err := json.Marshal(specs)
	if err != nil {
		return ""
	}
	return string(data)
}

func decodeSpecs(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	var specs map[string]string
	if err := json.Unmarshal([]byte(raw), &specs); err != nil {
		return nil
	}
	return specs
}

// itemFromRow converts a database row to the client item shape
func itemFromRow(row LineItem) Item {
	return Item{
		ID:             row.ID,
		StickerID:      row.StickerID,
		StickerType:    row.StickerType,
		Name:           row.Name,
		Category:       row.Category,
		Price:          row.Price,
		Currency:       row.Currency,
		Quantity:       row.Quantity,
		ImageURL:       row.ImageURL,
		Specifications: decodeSpecs(row.Specifications),
		Provenance:     ProvenanceConfirmed,
		AddedAt:        row.CreatedAt,
	}
}

// itemFromSession converts a session item to the client item shape
func itemFromSession(item SessionItem, provenance Provenance) Item {
	return Item{
		ID:             item.RowID,
		StickerID:      item.StickerID,
		StickerType:    item.StickerType,
		Name:           item.Name,
		Category:       item.Category,
		Price:          item.Price,
		Currency:       item.Currency,
		Quantity:       item.Quantity,
		ImageURL:       item.ImageURL,
		Specifications: item.Specifications,
		Provenance:     provenance,
		AddedAt:        item.AddedAt,
	}
}

// sessionItemFromSnapshot builds a session item from a catalog snapshot
func sessionItemFromSnapshot(snap *sticker.Snapshot, quantity int, specs map[string]string) SessionItem {
	return SessionItem{
		StickerID:      snap.StickerID,
		StickerType:    snap.Type,
		Name:           snap.Name,
		Category:       snap.Category,
		Price:          snap.Price,
		Currency:       snap.Currency,
		Quantity:       quantity,
		ImageURL:       snap.ImageURL,
		Specifications: specs,
		AddedAt:        time.Now().UTC(),
	}
}
