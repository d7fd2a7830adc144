// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows      map[uint]*LineItem
	nextID    uint
	listErr   error
	saveErr   error
	updateErr error
	removeErr error
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uint]*LineItem), nextID: 1}
}

func (m *memStore) List(ctx context.Context, userID uint) ([]LineItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var items []LineItem
	for _, row := range m.rows {
		if row.UserID == userID {
			items = append(items, *row)
		}
	}
	return items, nil
}

func (m *memStore) Upsert(ctx context.Context, userID uint, item SessionItem) (*LineItem, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	for _, row := range m.rows {
		if row.UserID == userID && row.StickerID == item.StickerID && row.StickerType == item.StickerType {
			row.Quantity += item.Quantity
			row.Price = item.Price
			return row, nil
		}
	}
	row := &LineItem{
		ID:          m.nextID,
		UserID:      userID,
		StickerID:   item.StickerID,
		StickerType: item.StickerType,
		Name:        item.Name,
		Category:    item.Category,
		Price:       item.Price,
		Currency:    item.Currency,
		Quantity:    item.Quantity,
		ImageURL:    item.ImageURL,
		CreatedAt:   time.Now().UTC(),
	}
	m.nextID++
	m.rows[row.ID] = row
	return row, nil
}

func (m *memStore) UpdateQuantity(ctx context.Context, userID, itemID uint, quantity int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	row, ok := m.rows[itemID]
	if !ok || row.UserID != userID {
		return errors.New("item not found in cart")
	}
	row.Quantity = quantity
	return nil
}

func (m *memStore) Remove(ctx context.Context, userID, itemID uint) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	row, ok := m.rows[itemID]
	if !ok || row.UserID != userID {
		return errors.New("item not found in cart")
	}
	delete(m.rows, itemID)
	return nil
}

func (m *memStore) Clear(ctx context.Context, userID uint) error {
	for id, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, id)
		}
	}
	return nil
}

type memSessions struct {
	carts   map[string]*SessionCart
	getErr  error
	saveErr error
}

func newMemSessions() *memSessions {
	return &memSessions{carts: make(map[string]*SessionCart)}
}

func (m *memSessions) Get(ctx context.Context, sessionID string) (*SessionCart, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if c, ok := m.carts[sessionID]; ok {
		clone := *c
		clone.Items = append([]SessionItem{}, c.Items...)
		return &clone, nil
	}
	now := time.Now().UTC()
	return &SessionCart{SessionID: sessionID, Items: []SessionItem{}, CreatedAt: now, UpdatedAt: now}, nil
}

func (m *memSessions) Save(ctx context.Context, sessionID string, cart *SessionCart) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.carts[sessionID] = cart
	return nil
}

func (m *memSessions) Clear(ctx context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type stubResolver struct {
	snapshots map[uint]*sticker.Snapshot
}

func (r *stubResolver) Resolve(ctx context.Context, stickerType sticker.Type, stickerID uint) (*sticker.Snapshot, error) {
	snap, ok := r.snapshots[stickerID]
	if !ok {
		return nil, errors.New("sticker not found")
	}
	return snap, nil
}

func newTestService() (*Service, *memStore, *memSessions) {
	store := newMemStore()
	sessions := newMemSessions()
	resolver := &stubResolver{snapshots: map[uint]*sticker.Snapshot{
		1: {StickerID: 1, Type: sticker.TypeTemplate, Name: "Rocket", Category: "Space", Price: 3.50, Currency: "USD", ImageURL: "/img/rocket.png"},
		2: {StickerID: 2, Type: sticker.TypeTemplate, Name: "Comet", Category: "Space", Price: 2.00, Currency: "USD", ImageURL: "/img/comet.png"},
	}}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewService(store, sessions, resolver, logger), store, sessions
}

func anonIdentity() Identity {
	return Identity{SessionID: "sess-1"}
}

func authIdentity() Identity {
	userID := uint(7)
	return Identity{UserID: &userID, SessionID: "sess-1"}
}

func TestAddSameReferenceIncrementsQuantity(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	id := anonIdentity()

	for i := 0; i < 3; i++ {
		_, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 1})
		require.NoError(t, err)
	}

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 3, c.Totals.TotalQuantity)
	assert.Equal(t, 1, c.Totals.ItemCount)
}

func TestAddAuthenticatedMergesOnServer(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	id := authIdentity()

	_, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)
	c, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 1})
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, ProvenanceConfirmed, c.Items[0].Provenance)
	assert.Len(t, store.rows, 1)
}

func TestAddUnknownStickerFails(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Add(context.Background(), anonIdentity(), &AddItemRequest{StickerID: 99, StickerType: sticker.TypeTemplate})
	assert.Error(t, err)
}

func TestAddServerFailureFallsBackToOptimisticMirror(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	id := authIdentity()
	store.saveErr = errors.New("connection refused")

	c, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, ProvenanceOptimistic, c.Items[0].Provenance)
}

func TestUpdateQuantityZeroRemovesItem(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	id := anonIdentity()

	_, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)

	ref := ItemRef{StickerID: 1, StickerType: sticker.TypeTemplate}
	c, err := svc.UpdateQuantity(ctx, id, ref, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	_, err = svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)
	c, err = svc.UpdateQuantity(ctx, id, ref, -5)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestUpdateQuantityAuthenticatedUsesRowID(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	id := authIdentity()

	c, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	c, err = svc.UpdateQuantity(ctx, id, ItemRef{RowID: c.Items[0].ID}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestUpdateQuantityServerFailureDegradesToMirror(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	id := authIdentity()

	c, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)
	rowID := c.Items[0].ID

	store.updateErr = errors.New("connection refused")

	c, err = svc.UpdateQuantity(ctx, id, ItemRef{RowID: rowID}, 5)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, ProvenanceOptimistic, c.Items[0].Provenance)
	// Server row untouched; only the local view moved
	assert.Equal(t, 2, store.rows[rowID].Quantity)
}

func TestRemoveServerFailureDegradesToMirror(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	id := authIdentity()

	c, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 1})
	require.NoError(t, err)
	rowID := c.Items[0].ID

	store.removeErr = errors.New("connection refused")

	c, err = svc.Remove(ctx, id, ItemRef{RowID: rowID})
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Contains(t, store.rows, rowID)
}

func TestAnonymousUpdatePersistFailureStillReturnsCart(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()
	id := anonIdentity()

	_, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)

	sessions.saveErr = errors.New("OOM command not allowed")

	ref := ItemRef{StickerID: 1, StickerType: sticker.TypeTemplate}
	c, err := svc.UpdateQuantity(ctx, id, ref, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity)

	c, err = svc.Remove(ctx, id, ref)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestRemoveMissingItemFails(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Remove(context.Background(), anonIdentity(), ItemRef{StickerID: 42, StickerType: sticker.TypeTemplate})
	assert.Error(t, err)
}

func TestGetDegradesToMirrorOnServerFailure(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()
	id := authIdentity()

	// Populate server cart and let Get refresh the mirror
	_, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)

	store.listErr = errors.New("connection refused")
	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, ProvenanceOptimistic, c.Items[0].Provenance)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestGetDegradesToEmptyWhenMirrorUnavailable(t *testing.T) {
	svc, store, sessions := newTestService()
	ctx := context.Background()
	id := authIdentity()

	store.listErr = errors.New("connection refused")
	sessions.getErr = errors.New("redis down")

	c, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestClearAlwaysClearsSessionMirror(t *testing.T) {
	svc, store, sessions := newTestService()
	ctx := context.Background()
	id := authIdentity()

	_, err := svc.Add(ctx, id, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 1})
	require.NoError(t, err)
	require.NotEmpty(t, sessions.carts)

	require.NoError(t, svc.Clear(ctx, id))
	assert.Empty(t, store.rows)
	assert.Empty(t, sessions.carts)
}

func TestReconcileOnLoginPushesThenClears(t *testing.T) {
	svc, store, sessions := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, anonIdentity(), &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)
	_, err = svc.Add(ctx, anonIdentity(), &AddItemRequest{StickerID: 2, StickerType: sticker.TypeTemplate, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.ReconcileOnLogin(ctx, 7, "sess-1"))

	assert.Len(t, store.rows, 2)
	_, stillThere := sessions.carts["sess-1"]
	assert.False(t, stillThere, "session cart should be cleared after a successful merge")
}

func TestReconcileOnLoginMergesIntoExistingServerCart(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, authIdentity(), &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 1})
	require.NoError(t, err)

	guest := Identity{SessionID: "sess-guest"}
	_, err = svc.Add(ctx, guest, &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.ReconcileOnLogin(ctx, 7, "sess-guest"))

	require.Len(t, store.rows, 1)
	for _, row := range store.rows {
		assert.Equal(t, 3, row.Quantity)
	}
}

func TestReconcileOnLoginFailurePreservesSessionCart(t *testing.T) {
	svc, store, sessions := newTestService()
	ctx := context.Background()

	_, err := svc.Add(ctx, anonIdentity(), &AddItemRequest{StickerID: 1, StickerType: sticker.TypeTemplate, Quantity: 2})
	require.NoError(t, err)

	store.saveErr = errors.New("connection refused")
	err = svc.ReconcileOnLogin(ctx, 7, "sess-1")
	require.Error(t, err)

	c, ok := sessions.carts["sess-1"]
	require.True(t, ok, "session cart must survive a failed merge")
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestReconcileOnLoginEmptySessionIsNoop(t *testing.T) {
	svc, _, _ := newTestService()
	assert.NoError(t, svc.ReconcileOnLogin(context.Background(), 7, "sess-1"))
	assert.NoError(t, svc.ReconcileOnLogin(context.Background(), 7, ""))
}
