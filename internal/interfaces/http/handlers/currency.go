// internal/interfaces/http/handlers/currency.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stickerly/stickershop-backend/internal/domain/currency"
	"github.com/stickerly/stickershop-backend/internal/domain/user"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/middleware"
)

// CurrencyHandler handles currency endpoints
type CurrencyHandler struct {
	converter   *currency.Converter
	detector    *currency.Detector
	userService *user.Service
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(converter *currency.Converter, detector *currency.Detector, userService *user.Service) *CurrencyHandler {
	return &CurrencyHandler{
		converter:   converter,
		detector:    detector,
		userService: userService,
	}
}

// GetRates handles GET /currency/rates
func (h *CurrencyHandler) GetRates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"base":  h.converter.Base(),
			"rates": h.converter.Rates(),
		},
	})
}

// Detect handles GET /currency/detect
func (h *CurrencyHandler) Detect(c *gin.Context) {
	persisted := h.persistedSelection(c)
	code := h.detector.Detect(c.Request.Context(), c.ClientIP(), persisted)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"currency": code,
		},
	})
}

// Select handles POST /currency/select, persisting an explicit choice
// on the account
func (h *CurrencyHandler) Select(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req struct {
		Currency string `json:"currency" binding:"required,len=3"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A 3-letter currency code is required",
		})
		return
	}

	code := h.converter.Normalize(req.Currency)
	if !h.converter.Known(code) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported currency code",
		})
		return
	}

	if err := h.userService.SetPreferredCurrency(c.Request.Context(), userID, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save currency preference",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Currency preference saved",
		"data":    gin.H{"currency": code},
	})
}

// persistedSelection returns the authenticated user's stored currency
// choice, empty when anonymous or unset
func (h *CurrencyHandler) persistedSelection(c *gin.Context) string {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return ""
	}
	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		return ""
	}
	return profile.PreferredCurrency
}
