// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stickerly/stickershop-backend/internal/domain/checkout"
	"github.com/stickerly/stickershop-backend/internal/domain/currency"
	"github.com/stickerly/stickershop-backend/internal/domain/payment"
	"github.com/stickerly/stickershop-backend/internal/domain/user"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles checkout and payment endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	gateway         payment.Gateway
	detector        *currency.Detector
	userService     *user.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, gateway payment.Gateway, detector *currency.Detector, userService *user.Service) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		gateway:         gateway,
		detector:        detector,
		userService:     userService,
	}
}

// GetTotal handles GET /checkout/total, the amount checkout would
// charge right now
func (h *CheckoutHandler) GetTotal(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	cartView, err := h.checkoutService.CartView(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return
	}

	total := h.checkoutService.ComputeTotal(cartView, h.displayCurrency(c))

	c.JSON(http.StatusOK, gin.H{
		"data": total,
	})
}

// GetKey handles GET /payments/key
func (h *CheckoutHandler) GetKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"key": h.gateway.Key(),
		},
	})
}

// CreateOrder handles POST /payments/create-order
func (h *CheckoutHandler) CreateOrder(c *gin.Context) {
	id := middleware.IdentityFromContext(c)
	email, _ := middleware.GetUserEmailFromContext(c)

	resp, err := h.checkoutService.CreatePaymentOrder(c.Request.Context(), id, email, h.displayCurrency(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment order created successfully",
		"data":    resp,
	})
}

// VerifyPayment handles POST /payments/verify
func (h *CheckoutHandler) VerifyPayment(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	var req checkout.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ord, err := h.checkoutService.VerifyPayment(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment verified successfully",
		"data":    ord,
	})
}

// CancelPayment handles POST /payments/cancel. Dismissing the payment
// widget is an expected path, so the response is always a success.
func (h *CheckoutHandler) CancelPayment(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	var req struct {
		GatewayOrderID string `json:"razorpay_order_id"`
	}
	c.ShouldBindJSON(&req)

	h.checkoutService.CancelPayment(c.Request.Context(), id, req.GatewayOrderID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment cancelled",
	})
}

// displayCurrency resolves the currency for totals: an explicit query
// parameter wins, then the account preference, then detection
func (h *CheckoutHandler) displayCurrency(c *gin.Context) string {
	if code := c.Query("currency"); code != "" {
		return code
	}

	persisted := ""
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		if profile, err := h.userService.GetProfile(c.Request.Context(), userID); err == nil {
			persisted = profile.PreferredCurrency
		}
	}
	return h.detector.Detect(c.Request.Context(), c.ClientIP(), persisted)
}
