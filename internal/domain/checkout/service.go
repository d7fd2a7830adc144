// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/domain/cart"
	"github.com/stickerly/stickershop-backend/internal/domain/currency"
	"github.com/stickerly/stickershop-backend/internal/domain/order"
	"github.com/stickerly/stickershop-backend/internal/domain/payment"
)

// Carts is the slice of the cart service the checkout flow needs
type Carts interface {
	Get(ctx context.Context, id cart.Identity) (*cart.Cart, error)
	Clear(ctx context.Context, id cart.Identity) error
}

// Orders is the slice of the order service the checkout flow needs
type Orders interface {
	Create(ctx context.Context, req *order.CreateRequest) (*order.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error)
	MarkPaid(ctx context.Context, orderID uint, gatewayPaymentID string) (*order.Order, error)
	MarkFailed(ctx context.Context, orderID uint) (*order.Order, error)
	MarkCancelled(ctx context.Context, orderID uint) (*order.Order, error)
}

// Mailer sends the order confirmation, best effort
type Mailer interface {
	SendOrderConfirmation(ord *order.Order) error
}

// Service orchestrates the checkout flow: it computes the total the
// user sees, creates the gateway order for exactly that amount, and
// settles the order when the gateway reports back. Display and charge
// always come from the same computation.
type Service struct {
	carts     Carts
	orders    Orders
	gateway   payment.Gateway
	converter *currency.Converter
	mailer    Mailer
	logger    *logrus.Logger
}

// NewService creates a new checkout service
func NewService(carts Carts, orders Orders, gateway payment.Gateway, converter *currency.Converter, mailer Mailer, logger *logrus.Logger) *Service {
	return &Service{
		carts:     carts,
		orders:    orders,
		gateway:   gateway,
		converter: converter,
		mailer:    mailer,
		logger:    logger,
	}
}

// Total is a cart total with the currency it is denominated in
type Total struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Display  string  `json:"display"`
}

// PaymentOrderResponse carries what the frontend needs to open the
// payment widget
type PaymentOrderResponse struct {
	OrderID         uint   `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	GatewayOrderID  string `json:"gateway_order_id"`
	Amount          int64  `json:"amount"` // Subunits
	Currency        string `json:"currency"`
	Key             string `json:"key"`
	AmountFormatted string `json:"amount_formatted"`
}

// VerifyRequest is the gateway callback payload after a payment attempt
type VerifyRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id" binding:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature        string `json:"razorpay_signature" binding:"required"`
}

// CartView loads the cart exactly as checkout will price it
func (s *Service) CartView(ctx context.Context, id cart.Identity) (*cart.Cart, error) {
	return s.carts.Get(ctx, id)
}

// ComputeTotal sums the cart in the requested display currency. When
// every item already shares one currency the sum is direct and the
// total stays in that currency; mixed carts convert each line before
// summing.
func (s *Service) ComputeTotal(c *cart.Cart, displayCurrency string) Total {
	if len(c.Items) == 0 {
		code := s.converter.Normalize(displayCurrency)
		return Total{Amount: 0, Currency: code, Display: s.converter.Format(0, code, 2)}
	}

	// Codes are compared normalized so "usd" and "USD" (and empty,
	// which normalizes to the base) still count as one currency
	uniform := s.converter.Normalize(c.Items[0].Currency)
	mixed := false
	for _, item := range c.Items[1:] {
		if s.converter.Normalize(item.Currency) != uniform {
			mixed = true
			break
		}
	}

	if !mixed {
		var total float64
		for _, item := range c.Items {
			total += item.Price * float64(item.Quantity)
		}
		return Total{Amount: total, Currency: uniform, Display: s.converter.Format(total, uniform, 2)}
	}

	code := s.converter.Normalize(displayCurrency)
	var total float64
	for _, item := range c.Items {
		total += s.converter.Convert(item.Price*float64(item.Quantity), item.Currency, code)
	}
	return Total{Amount: total, Currency: code, Display: s.converter.Format(total, code, 2)}
}

// CreatePaymentOrder snapshots the cart into a pending order and
// registers it with the gateway. The charged amount is the computed
// total, rounded to subunits only here, at the gateway boundary.
func (s *Service) CreatePaymentOrder(ctx context.Context, id cart.Identity, email, displayCurrency string) (*PaymentOrderResponse, error) {
	if !id.Authenticated() {
		return nil, fmt.Errorf("authentication required for checkout")
	}

	c, err := s.carts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("cannot checkout an empty cart")
	}

	total := s.ComputeTotal(c, displayCurrency)
	amount := currency.Subunits(total.Amount)
	if amount <= 0 {
		return nil, fmt.Errorf("cart total must be positive")
	}

	orderNumber := order.GenerateOrderNumber()
	gatewayOrder, err := s.gateway.CreateOrder(ctx, &payment.CreateOrderRequest{
		Amount:   amount,
		Currency: total.Currency,
		Receipt:  orderNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	items := make([]order.Item, len(c.Items))
	for i, ci := range c.Items {
		items[i] = order.Item{
			StickerID:   ci.StickerID,
			StickerType: ci.StickerType,
			Name:        ci.Name,
			Category:    ci.Category,
			Quantity:    ci.Quantity,
			Price:       ci.Price,
			Currency:    ci.Currency,
			ImageURL:    ci.ImageURL,
		}
	}

	ord, err := s.orders.Create(ctx, &order.CreateRequest{
		UserID:         *id.UserID,
		Email:          email,
		Items:          items,
		TotalAmount:    amount,
		Currency:       total.Currency,
		GatewayOrderID: gatewayOrder.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &PaymentOrderResponse{
		OrderID:         ord.ID,
		OrderNumber:     ord.OrderNumber,
		GatewayOrderID:  gatewayOrder.ID,
		Amount:          amount,
		Currency:        total.Currency,
		Key:             s.gateway.Key(),
		AmountFormatted: total.Display,
	}, nil
}

// VerifyPayment settles a payment callback. A bad signature is a hard
// stop: the order is marked failed and the cart is left untouched so
// the user can retry. On success the order is marked paid, the cart is
// cleared, and the confirmation email goes out best effort.
func (s *Service) VerifyPayment(ctx context.Context, id cart.Identity, req *VerifyRequest) (*order.Order, error) {
	ord, err := s.orders.GetByGatewayOrderID(ctx, req.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if id.UserID == nil || ord.UserID != *id.UserID {
		return nil, fmt.Errorf("order not found")
	}

	if !s.gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature) {
		if _, ferr := s.orders.MarkFailed(ctx, ord.ID); ferr != nil {
			s.logger.WithError(ferr).WithField("order_number", ord.OrderNumber).
				Warn("Failed to record payment failure")
		}
		s.logger.WithField("order_number", ord.OrderNumber).Warn("Payment signature verification failed")
		return nil, fmt.Errorf("payment verification failed")
	}

	paid, err := s.orders.MarkPaid(ctx, ord.ID, req.GatewayPaymentID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, id); err != nil {
		s.logger.WithError(err).WithField("order_number", paid.OrderNumber).
			Warn("Failed to clear cart after payment")
	}

	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(paid); err != nil {
			s.logger.WithError(err).WithField("order_number", paid.OrderNumber).
				Warn("Failed to send order confirmation email")
		}
	}

	return paid, nil
}

// CancelPayment records that the user dismissed the payment widget.
// Cancellation is not a failure: the cart stays as it was and no error
// is surfaced.
func (s *Service) CancelPayment(ctx context.Context, id cart.Identity, gatewayOrderID string) error {
	ord, err := s.orders.GetByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		// Nothing to cancel
		return nil
	}
	if id.UserID == nil || ord.UserID != *id.UserID {
		return nil
	}
	if _, err := s.orders.MarkCancelled(ctx, ord.ID); err != nil {
		s.logger.WithError(err).WithField("order_number", ord.OrderNumber).
			Debug("Cancel skipped")
	}
	return nil
}
