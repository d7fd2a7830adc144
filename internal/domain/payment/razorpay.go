// internal/domain/payment/razorpay.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/stickerly/stickershop-backend/internal/config"
)

// Gateway is the payment provider surface the checkout flow depends on
type Gateway interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*GatewayOrder, error)
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	Key() string
}

// CreateOrderRequest is the order creation payload sent to the gateway.
// Amount is in currency subunits.
type CreateOrderRequest struct {
	Amount   int64                  `json:"amount"`
	Currency string                 `json:"currency"`
	Receipt  string                 `json:"receipt"`
	Notes    map[string]interface{} `json:"notes,omitempty"`
}

// GatewayOrder is the gateway's view of a created order
type GatewayOrder struct {
	ID       string                 `json:"id"`
	Amount   int64                  `json:"amount"`
	Currency string                 `json:"currency"`
	Receipt  string                 `json:"receipt"`
	Status   string                 `json:"status"`
	Notes    map[string]interface{} `json:"notes"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// RazorpayGateway talks to the Razorpay Orders API
type RazorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewRazorpayGateway creates a new Razorpay gateway client
func NewRazorpayGateway(cfg *config.Config, logger *logrus.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     cfg.External.Razorpay.KeyID,
		keySecret: cfg.External.Razorpay.KeySecret,
		baseURL:   cfg.External.Razorpay.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.External.Razorpay.Timeout,
		},
		logger: logger,
	}
}

// Key returns the public key id the frontend needs to open the payment
// widget
func (g *RazorpayGateway) Key() string {
	return g.keyID
}

// CreateOrder registers an order with the gateway and returns its id
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*GatewayOrder, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("gateway rejected order: %s", apiErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var gatewayOrder GatewayOrder
	if err := json.Unmarshal(respBody, &gatewayOrder); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"gateway_order_id": gatewayOrder.ID,
		"amount":           gatewayOrder.Amount,
		"currency":         gatewayOrder.Currency,
	}).Info("Gateway order created")

	return &gatewayOrder, nil
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay attaches to
// a completed payment: the hex digest of "order_id|payment_id" keyed
// with the secret. Comparison is constant time.
func (g *RazorpayGateway) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return verifySignature(g.keySecret, gatewayOrderID, gatewayPaymentID, signature)
}

func verifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
