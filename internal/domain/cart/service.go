// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
)

// Resolver resolves a sticker reference to its catalog snapshot
type Resolver interface {
	Resolve(ctx context.Context, stickerType sticker.Type, stickerID uint) (*sticker.Snapshot, error)
}

// Service presents a single cart abstraction over the two backends:
// server rows when authenticated, the session cart otherwise. All the
// backend switching lives here; callers never branch on auth state.
type Service struct {
	store    Store
	sessions SessionStore
	resolver Resolver
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(store Store, sessions SessionStore, resolver Resolver, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		sessions: sessions,
		resolver: resolver,
		logger:   logger,
	}
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	StickerID      uint              `json:"sticker_id" binding:"required"`
	StickerType    sticker.Type      `json:"sticker_type" binding:"required"`
	Quantity       int               `json:"quantity"`
	Specifications map[string]string `json:"specifications"`
}

// UpdateQuantityRequest represents a quantity change request
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ItemRef addresses a line item in whichever identity space is active:
// the server row id for authenticated carts, the sticker reference for
// session carts. The two spaces must never be confused.
type ItemRef struct {
	RowID       uint
	StickerID   uint
	StickerType sticker.Type
}

// Get loads the cart for the current identity. When authenticated, a
// failed server read degrades to the session mirror instead of
// surfacing an error; a successful read refreshes the mirror.
func (s *Service) Get(ctx context.Context, id Identity) (*Cart, error) {
	if !id.Authenticated() {
		sessionCart, err := s.sessions.Get(ctx, id.SessionID)
		if err != nil {
			return nil, err
		}
		return s.buildFromSession(id, sessionCart, ProvenanceConfirmed), nil
	}

	rows, err := s.store.List(ctx, *id.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", *id.UserID).
			Warn("Cart fetch failed, degrading to session mirror")
		return s.degradeToMirror(ctx, id), nil
	}

	items := make([]Item, len(rows))
	for i, row := range rows {
		items[i] = itemFromRow(row)
	}

	s.refreshMirror(ctx, id.SessionID, items)

	return s.build(id, items, "server"), nil
}

// Add applies the merge rule for the authoritative backend: an item
// with the same sticker reference has its quantity incremented, a new
// reference is appended. When authenticated, the cart is reloaded from
// the server after a confirmed write; a failed write falls back to an
// optimistic merge into the session mirror.
func (s *Service) Add(ctx context.Context, id Identity, req *AddItemRequest) (*Cart, error) {
	if !req.StickerType.Valid() {
		return nil, fmt.Errorf("unknown sticker type: %s", req.StickerType)
	}

	snap, err := s.resolver.Resolve(ctx, req.StickerType, req.StickerID)
	if err != nil {
		return nil, err
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	item := sessionItemFromSnapshot(snap, quantity, req.Specifications)

	if id.Authenticated() {
		if _, err := s.store.Upsert(ctx, *id.UserID, item); err != nil {
			s.logger.WithError(err).WithField("user_id", *id.UserID).
				Warn("Cart upsert failed, applying optimistic local merge")
			return s.optimisticMerge(ctx, id, item), nil
		}
		// Reload server truth rather than merging locally
		return s.Get(ctx, id)
	}

	sessionCart, err := s.sessions.Get(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}
	mergeIntoSession(sessionCart, item)
	if err := s.sessions.Save(ctx, id.SessionID, sessionCart); err != nil {
		// Cart state survives in the response even if persistence failed
		s.logger.WithError(err).Warn("Session cart persist failed")
	}

	return s.buildFromSession(id, sessionCart, ProvenanceConfirmed), nil
}

// UpdateQuantity changes a line item's quantity. A quantity of zero or
// less is removal, never stored.
func (s *Service) UpdateQuantity(ctx context.Context, id Identity, ref ItemRef, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, id, ref)
	}

	if id.Authenticated() {
		if err := s.store.UpdateQuantity(ctx, *id.UserID, ref.RowID, quantity); err != nil {
			s.logger.WithError(err).WithField("user_id", *id.UserID).
				Warn("Cart update failed, applying optimistic local mutation")
			return s.optimisticMutate(ctx, id, func(c *SessionCart) {
				for i := range c.Items {
					if mirrorMatches(c.Items[i], ref) {
						c.Items[i].Quantity = quantity
						return
					}
				}
			}), nil
		}
		return s.Get(ctx, id)
	}

	sessionCart, err := s.sessions.Get(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].StickerID == ref.StickerID &&
			sessionCart.Items[i].StickerType == ref.StickerType {
			sessionCart.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("item not found in cart")
	}

	sessionCart.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, id.SessionID, sessionCart); err != nil {
		// Cart state survives in the response even if persistence failed
		s.logger.WithError(err).Warn("Session cart persist failed")
	}
	return s.buildFromSession(id, sessionCart, ProvenanceConfirmed), nil
}

// Remove deletes a line item from the authoritative backend
func (s *Service) Remove(ctx context.Context, id Identity, ref ItemRef) (*Cart, error) {
	if id.Authenticated() {
		if err := s.store.Remove(ctx, *id.UserID, ref.RowID); err != nil {
			s.logger.WithError(err).WithField("user_id", *id.UserID).
				Warn("Cart remove failed, applying optimistic local mutation")
			return s.optimisticMutate(ctx, id, func(c *SessionCart) {
				kept := c.Items[:0]
				for _, item := range c.Items {
					if mirrorMatches(item, ref) {
						continue
					}
					kept = append(kept, item)
				}
				c.Items = kept
			}), nil
		}
		return s.Get(ctx, id)
	}

	sessionCart, err := s.sessions.Get(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}

	kept := sessionCart.Items[:0]
	removed := false
	for _, item := range sessionCart.Items {
		if item.StickerID == ref.StickerID && item.StickerType == ref.StickerType {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, fmt.Errorf("item not found in cart")
	}
	sessionCart.Items = kept

	sessionCart.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, id.SessionID, sessionCart); err != nil {
		// Cart state survives in the response even if persistence failed
		s.logger.WithError(err).Warn("Session cart persist failed")
	}
	return s.buildFromSession(id, sessionCart, ProvenanceConfirmed), nil
}

// Clear empties the cart. The session mirror is always cleared too,
// regardless of authentication state, so stale items cannot reappear
// after logout.
func (s *Service) Clear(ctx context.Context, id Identity) error {
	var storeErr error
	if id.Authenticated() {
		storeErr = s.store.Clear(ctx, *id.UserID)
	}

	if id.SessionID != "" {
		if err := s.sessions.Clear(ctx, id.SessionID); err != nil {
			s.logger.WithError(err).Warn("Failed to clear session cart")
			if storeErr == nil {
				storeErr = err
			}
		}
	}

	return storeErr
}

// Count returns the total quantity across the cart
func (s *Service) Count(ctx context.Context, id Identity) (int, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return 0, nil // Missing cart counts as empty
	}
	return c.Totals.TotalQuantity, nil
}

// ReconcileOnLogin merges the anonymous session cart into the user's
// server cart, exactly once per login transition. Every session item is
// pushed to the server first and the session cart is cleared only after
// all pushes succeed: clearing before a confirmed push would silently
// drop the anonymous session's cart contents.
func (s *Service) ReconcileOnLogin(ctx context.Context, userID uint, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	sessionCart, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to read session cart: %w", err)
	}
	if len(sessionCart.Items) == 0 {
		return nil
	}

	for _, item := range sessionCart.Items {
		if _, err := s.store.Upsert(ctx, userID, item); err != nil {
			// Session cart stays intact so the merge can be retried
			return fmt.Errorf("failed to push session item %d/%s to server cart: %w",
				item.StickerID, item.StickerType, err)
		}
	}

	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).
			Warn("Failed to clear session cart after merge")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"items":   len(sessionCart.Items),
	}).Info("Session cart merged into user cart")

	return nil
}

// Internal helpers

func (s *Service) build(id Identity, items []Item, authoritative string) *Cart {
	totals := Totals{ItemCount: len(items)}
	for _, item := range items {
		totals.TotalQuantity += item.Quantity
	}
	return &Cart{
		SessionID:     id.SessionID,
		UserID:        id.UserID,
		Items:         items,
		Totals:        totals,
		Authoritative: authoritative,
		UpdatedAt:     time.Now().UTC(),
	}
}

func (s *Service) buildFromSession(id Identity, sessionCart *SessionCart, provenance Provenance) *Cart {
	items := make([]Item, len(sessionCart.Items))
	for i, item := range sessionCart.Items {
		items[i] = itemFromSession(item, provenance)
	}
	authoritative := "session"
	if id.Authenticated() {
		authoritative = "server"
	}
	return s.build(id, items, authoritative)
}

// degradeToMirror serves the session mirror when the server is
// unreachable. Items are tagged optimistic so a later reconciliation
// pass can detect drift.
func (s *Service) degradeToMirror(ctx context.Context, id Identity) *Cart {
	if id.SessionID == "" {
		return s.build(id, []Item{}, "server")
	}
	sessionCart, err := s.sessions.Get(ctx, id.SessionID)
	if err != nil {
		s.logger.WithError(err).Warn("Session mirror read failed, serving empty cart")
		return s.build(id, []Item{}, "server")
	}
	return s.buildFromSession(id, sessionCart, ProvenanceOptimistic)
}

// optimisticMerge applies the anonymous merge rule to the mirror after
// a failed server write, so the user's view of the cart is never lost
func (s *Service) optimisticMerge(ctx context.Context, id Identity, item SessionItem) *Cart {
	return s.optimisticMutate(ctx, id, func(c *SessionCart) {
		mergeIntoSession(c, item)
	})
}

// optimisticMutate applies a local mutation to the session mirror
// after a failed server write and serves the result marked optimistic
func (s *Service) optimisticMutate(ctx context.Context, id Identity, mutate func(*SessionCart)) *Cart {
	sessionCart, err := s.sessions.Get(ctx, id.SessionID)
	if err != nil {
		sessionCart = &SessionCart{SessionID: id.SessionID, Items: []SessionItem{}}
	}
	mutate(sessionCart)
	sessionCart.UpdatedAt = time.Now().UTC()
	if err := s.sessions.Save(ctx, id.SessionID, sessionCart); err != nil {
		s.logger.WithError(err).Warn("Optimistic mirror persist failed")
	}
	return s.buildFromSession(id, sessionCart, ProvenanceOptimistic)
}

// mirrorMatches resolves an item reference against a mirror entry: by
// server row id when the mirror carries one, by sticker reference
// otherwise
func mirrorMatches(item SessionItem, ref ItemRef) bool {
	if ref.RowID != 0 {
		return item.RowID == ref.RowID
	}
	return item.StickerID == ref.StickerID && item.StickerType == ref.StickerType
}

// refreshMirror writes the server cart into the session store as a
// non-authoritative backup, best effort
func (s *Service) refreshMirror(ctx context.Context, sessionID string, items []Item) {
	if sessionID == "" {
		return
	}
	mirror := &SessionCart{
		SessionID: sessionID,
		Items:     make([]SessionItem, len(items)),
		UpdatedAt: time.Now().UTC(),
	}
	for i, item := range items {
		mirror.Items[i] = SessionItem{
			RowID:          item.ID,
			StickerID:      item.StickerID,
			StickerType:    item.StickerType,
			Name:           item.Name,
			Category:       item.Category,
			Price:          item.Price,
			Currency:       item.Currency,
			Quantity:       item.Quantity,
			ImageURL:       item.ImageURL,
			Specifications: item.Specifications,
			AddedAt:        item.AddedAt,
		}
	}
	if err := s.sessions.Save(ctx, sessionID, mirror); err != nil {
		s.logger.WithError(err).Debug("Cart mirror refresh failed")
	}
}

// mergeIntoSession applies the merge rule to a session cart: same
// sticker reference increments quantity, otherwise append
func mergeIntoSession(sessionCart *SessionCart, item SessionItem) {
	for i := range sessionCart.Items {
		if sessionCart.Items[i].StickerID == item.StickerID &&
			sessionCart.Items[i].StickerType == item.StickerType {
			sessionCart.Items[i].Quantity += item.Quantity
			sessionCart.Items[i].Price = item.Price
			sessionCart.UpdatedAt = time.Now().UTC()
			return
		}
	}
	sessionCart.Items = append(sessionCart.Items, item)
	sessionCart.UpdatedAt = time.Now().UTC()
}
