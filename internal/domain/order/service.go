// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Service handles order persistence and status transitions
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// CreateRequest carries the snapshotted cart and the gateway amount
type CreateRequest struct {
	UserID         uint
	Email          string
	Items          []Item
	TotalAmount    int64 // Subunits of Currency
	Currency       string
	GatewayOrderID string
}

// Create persists a pending order with its item snapshot in a single
// transaction
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("cannot create an order with no items")
	}
	if req.TotalAmount <= 0 {
		return nil, fmt.Errorf("order total must be positive")
	}

	ord := &Order{
		OrderNumber:    GenerateOrderNumber(),
		UserID:         req.UserID,
		Email:          req.Email,
		Status:         StatusPending,
		TotalAmount:    req.TotalAmount,
		Currency:       req.Currency,
		GatewayOrderID: req.GatewayOrderID,
		Items:          req.Items,
	}

	if err := s.db.WithContext(ctx).Create(ord).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": ord.OrderNumber,
		"user_id":      ord.UserID,
		"total":        ord.TotalAmount,
		"currency":     ord.Currency,
	}).Info("Order created")

	return ord, nil
}

// GetByID retrieves an order scoped to its owner
func (s *Service) GetByID(ctx context.Context, userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&ord).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("order not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// GetByGatewayOrderID retrieves an order by the id the payment gateway
// assigned at creation
func (s *Service) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("gateway_order_id = ?", gatewayOrderID).
		First(&ord).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("order not found")
	} else if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &ord, nil
}

// List returns a user's orders, newest first
func (s *Service) List(ctx context.Context, userID uint, page, limit int) ([]Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&Order{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

// MarkPaid transitions an order to paid and records the gateway payment
// id. A paid order is never downgraded, so a duplicate callback is an
// error rather than a silent overwrite.
func (s *Service) MarkPaid(ctx context.Context, orderID uint, gatewayPaymentID string) (*Order, error) {
	return s.transition(ctx, orderID, StatusPaid, func(ord *Order) {
		ord.GatewayPaymentID = gatewayPaymentID
		now := time.Now().UTC()
		ord.PaidAt = &now
	})
}

// MarkFailed records a failed payment attempt
func (s *Service) MarkFailed(ctx context.Context, orderID uint) (*Order, error) {
	return s.transition(ctx, orderID, StatusFailed, nil)
}

// MarkCancelled records that the user abandoned the payment
func (s *Service) MarkCancelled(ctx context.Context, orderID uint) (*Order, error) {
	return s.transition(ctx, orderID, StatusCancelled, nil)
}

func (s *Service) transition(ctx context.Context, orderID uint, target Status, mutate func(*Order)) (*Order, error) {
	var ord Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&ord, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("order not found")
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		if !ord.Status.CanTransitionTo(target) {
			return fmt.Errorf("cannot transition order from %s to %s", ord.Status, target)
		}

		ord.Status = target
		if mutate != nil {
			mutate(&ord)
		}
		if err := tx.Save(&ord).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": ord.OrderNumber,
		"status":       ord.Status,
	}).Info("Order status updated")

	return &ord, nil
}
