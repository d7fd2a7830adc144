// internal/domain/checkout/service_test.go
package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/domain/cart"
	"github.com/stickerly/stickershop-backend/internal/domain/currency"
	"github.com/stickerly/stickershop-backend/internal/domain/order"
	"github.com/stickerly/stickershop-backend/internal/domain/payment"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCarts struct {
	cart    *cart.Cart
	cleared bool
	getErr  error
}

func (s *stubCarts) Get(ctx context.Context, id cart.Identity) (*cart.Cart, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(ctx context.Context, id cart.Identity) error {
	s.cleared = true
	return nil
}

type stubOrders struct {
	created   *order.CreateRequest
	orders    map[string]*order.Order
	createErr error
}

func newStubOrders() *stubOrders {
	return &stubOrders{orders: make(map[string]*order.Order)}
}

func (s *stubOrders) Create(ctx context.Context, req *order.CreateRequest) (*order.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = req
	ord := &order.Order{
		ID:             1,
		OrderNumber:    "STK-TEST-1",
		UserID:         req.UserID,
		Email:          req.Email,
		Status:         order.StatusPending,
		TotalAmount:    req.TotalAmount,
		Currency:       req.Currency,
		GatewayOrderID: req.GatewayOrderID,
		Items:          req.Items,
	}
	s.orders[req.GatewayOrderID] = ord
	return ord, nil
}

func (s *stubOrders) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	ord, ok := s.orders[gatewayOrderID]
	if !ok {
		return nil, errors.New("order not found")
	}
	return ord, nil
}

func (s *stubOrders) MarkPaid(ctx context.Context, orderID uint, gatewayPaymentID string) (*order.Order, error) {
	for _, ord := range s.orders {
		if ord.ID == orderID {
			if !ord.Status.CanTransitionTo(order.StatusPaid) {
				return nil, errors.New("invalid transition")
			}
			ord.Status = order.StatusPaid
			ord.GatewayPaymentID = gatewayPaymentID
			now := time.Now().UTC()
			ord.PaidAt = &now
			return ord, nil
		}
	}
	return nil, errors.New("order not found")
}

func (s *stubOrders) MarkFailed(ctx context.Context, orderID uint) (*order.Order, error) {
	for _, ord := range s.orders {
		if ord.ID == orderID {
			ord.Status = order.StatusFailed
			return ord, nil
		}
	}
	return nil, errors.New("order not found")
}

func (s *stubOrders) MarkCancelled(ctx context.Context, orderID uint) (*order.Order, error) {
	for _, ord := range s.orders {
		if ord.ID == orderID {
			ord.Status = order.StatusCancelled
			return ord, nil
		}
	}
	return nil, errors.New("order not found")
}

type stubGateway struct {
	createdAmount   int64
	createdCurrency string
	validSignature  string
	createErr       error
}

func (s *stubGateway) CreateOrder(ctx context.Context, req *payment.CreateOrderRequest) (*payment.GatewayOrder, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createdAmount = req.Amount
	s.createdCurrency = req.Currency
	return &payment.GatewayOrder{ID: "rzp_order_1", Amount: req.Amount, Currency: req.Currency}, nil
}

func (s *stubGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return signature == s.validSignature
}

func (s *stubGateway) Key() string { return "rzp_test_key" }

type stubMailer struct {
	sent []*order.Order
}

func (s *stubMailer) SendOrderConfirmation(ord *order.Order) error {
	s.sent = append(s.sent, ord)
	return nil
}

func testCart(items ...cart.Item) *cart.Cart {
	userID := uint(7)
	return &cart.Cart{UserID: &userID, SessionID: "sess-1", Items: items}
}

func item(price float64, code string, qty int) cart.Item {
	return cart.Item{
		StickerID:   1,
		StickerType: sticker.TypeTemplate,
		Name:        "Rocket",
		Price:       price,
		Currency:    code,
		Quantity:    qty,
	}
}

func newTestService(c *cart.Cart) (*Service, *stubCarts, *stubOrders, *stubGateway, *stubMailer) {
	carts := &stubCarts{cart: c}
	orders := newStubOrders()
	gateway := &stubGateway{validSignature: "good-signature"}
	mailer := &stubMailer{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(carts, orders, gateway, currency.NewConverter("USD"), mailer, logger)
	return svc, carts, orders, gateway, mailer
}

func authIdentity() cart.Identity {
	userID := uint(7)
	return cart.Identity{UserID: &userID, SessionID: "sess-1"}
}

func TestComputeTotalEmptyCart(t *testing.T) {
	svc, _, _, _, _ := newTestService(testCart())
	total := svc.ComputeTotal(testCart(), "EUR")
	assert.Equal(t, 0.0, total.Amount)
	assert.Equal(t, "EUR", total.Currency)
}

func TestComputeTotalUniformCurrencySumsDirectly(t *testing.T) {
	c := testCart(item(3.50, "EUR", 2), item(2.00, "EUR", 1))
	svc, _, _, _, _ := newTestService(c)

	// Uniform items keep their own currency, no conversion applied
	total := svc.ComputeTotal(c, "USD")
	assert.InDelta(t, 9.00, total.Amount, 1e-9)
	assert.Equal(t, "EUR", total.Currency)
	assert.Equal(t, "€9.00", total.Display)
}

func TestComputeTotalUniformityIsCaseInsensitive(t *testing.T) {
	c := testCart(item(5.00, "usd", 2), item(3.00, "USD", 1))
	svc, _, _, _, _ := newTestService(c)

	// "usd" and "USD" are one currency: direct sum, shared code kept
	total := svc.ComputeTotal(c, "EUR")
	assert.InDelta(t, 13.00, total.Amount, 1e-9)
	assert.Equal(t, "USD", total.Currency)
	assert.Equal(t, "$13.00", total.Display)
}

func TestComputeTotalEmptyCodesCountAsBase(t *testing.T) {
	c := testCart(item(2.50, "", 2), item(1.00, "", 1))
	svc, _, _, _, _ := newTestService(c)

	total := svc.ComputeTotal(c, "EUR")
	assert.InDelta(t, 6.00, total.Amount, 1e-9)
	assert.Equal(t, "USD", total.Currency)
}

func TestComputeTotalMixedCurrenciesConverts(t *testing.T) {
	c := testCart(item(10.00, "USD", 1), item(9.20, "EUR", 1))
	svc, _, _, _, _ := newTestService(c)

	total := svc.ComputeTotal(c, "USD")
	// 9.20 EUR at 0.92 EUR/USD is 10 USD
	assert.InDelta(t, 20.00, total.Amount, 1e-9)
	assert.Equal(t, "USD", total.Currency)
}

func TestCreatePaymentOrderRequiresAuth(t *testing.T) {
	svc, _, _, _, _ := newTestService(testCart(item(1, "USD", 1)))
	_, err := svc.CreatePaymentOrder(context.Background(), cart.Identity{SessionID: "sess-1"}, "a@b.c", "USD")
	assert.Error(t, err)
}

func TestCreatePaymentOrderRefusesEmptyCart(t *testing.T) {
	svc, _, _, _, _ := newTestService(testCart())
	_, err := svc.CreatePaymentOrder(context.Background(), authIdentity(), "a@b.c", "USD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty cart")
}

func TestCreatePaymentOrderChargesComputedTotal(t *testing.T) {
	c := testCart(item(3.50, "USD", 2), item(2.00, "USD", 3))
	svc, _, orders, gateway, _ := newTestService(c)

	resp, err := svc.CreatePaymentOrder(context.Background(), authIdentity(), "a@b.c", "USD")
	require.NoError(t, err)

	// 3.50*2 + 2.00*3 = 13.00 USD, 1300 subunits
	assert.Equal(t, int64(1300), resp.Amount)
	assert.Equal(t, int64(1300), gateway.createdAmount)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, "rzp_order_1", resp.GatewayOrderID)
	assert.Equal(t, "rzp_test_key", resp.Key)

	require.NotNil(t, orders.created)
	assert.Equal(t, int64(1300), orders.created.TotalAmount)
	assert.Len(t, orders.created.Items, 2)
}

func TestCreatePaymentOrderGatewayFailureCreatesNoOrder(t *testing.T) {
	c := testCart(item(1.00, "USD", 1))
	svc, _, orders, gateway, _ := newTestService(c)
	gateway.createErr = errors.New("gateway unavailable")

	_, err := svc.CreatePaymentOrder(context.Background(), authIdentity(), "a@b.c", "USD")
	require.Error(t, err)
	assert.Nil(t, orders.created)
}

func TestVerifyPaymentSuccessSettlesOrderAndClearsCart(t *testing.T) {
	c := testCart(item(1.00, "USD", 1))
	svc, carts, _, _, mailer := newTestService(c)
	ctx := context.Background()

	_, err := svc.CreatePaymentOrder(ctx, authIdentity(), "a@b.c", "USD")
	require.NoError(t, err)

	paid, err := svc.VerifyPayment(ctx, authIdentity(), &VerifyRequest{
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good-signature",
	})
	require.NoError(t, err)

	assert.Equal(t, order.StatusPaid, paid.Status)
	assert.Equal(t, "pay_1", paid.GatewayPaymentID)
	assert.NotNil(t, paid.PaidAt)
	assert.True(t, carts.cleared)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, paid.OrderNumber, mailer.sent[0].OrderNumber)
}

func TestVerifyPaymentBadSignatureLeavesCartIntact(t *testing.T) {
	c := testCart(item(1.00, "USD", 1))
	svc, carts, orders, _, mailer := newTestService(c)
	ctx := context.Background()

	_, err := svc.CreatePaymentOrder(ctx, authIdentity(), "a@b.c", "USD")
	require.NoError(t, err)

	_, err = svc.VerifyPayment(ctx, authIdentity(), &VerifyRequest{
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "forged",
	})
	require.Error(t, err)

	assert.False(t, carts.cleared, "cart must survive a failed payment")
	assert.Empty(t, mailer.sent)
	ord, _ := orders.GetByGatewayOrderID(ctx, "rzp_order_1")
	assert.Equal(t, order.StatusFailed, ord.Status)
}

func TestVerifyPaymentRejectsForeignOrder(t *testing.T) {
	c := testCart(item(1.00, "USD", 1))
	svc, _, _, _, _ := newTestService(c)
	ctx := context.Background()

	_, err := svc.CreatePaymentOrder(ctx, authIdentity(), "a@b.c", "USD")
	require.NoError(t, err)

	otherUser := uint(99)
	_, err = svc.VerifyPayment(ctx, cart.Identity{UserID: &otherUser}, &VerifyRequest{
		GatewayOrderID:   "rzp_order_1",
		GatewayPaymentID: "pay_1",
		Signature:        "good-signature",
	})
	assert.Error(t, err)
}

func TestCancelPaymentIsSilent(t *testing.T) {
	c := testCart(item(1.00, "USD", 1))
	svc, carts, orders, _, _ := newTestService(c)
	ctx := context.Background()

	_, err := svc.CreatePaymentOrder(ctx, authIdentity(), "a@b.c", "USD")
	require.NoError(t, err)

	assert.NoError(t, svc.CancelPayment(ctx, authIdentity(), "rzp_order_1"))
	assert.False(t, carts.cleared, "cancellation must not touch the cart")
	ord, _ := orders.GetByGatewayOrderID(ctx, "rzp_order_1")
	assert.Equal(t, order.StatusCancelled, ord.Status)

	// Unknown gateway order is a no-op, not an error
	assert.NoError(t, svc.CancelPayment(ctx, authIdentity(), "rzp_unknown"))
}
