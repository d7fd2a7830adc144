// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stickerly/stickershop-backend/internal/domain/cart"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints. The same routes serve anonymous
// and authenticated carts; the identity decides the backend.
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	resp, err := h.cartService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    resp,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.cartService.Add(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    resp,
	})
}

// UpdateItem handles PUT /cart/items/:id
//
// The :id parameter is the server row id for authenticated carts and
// the sticker id for session carts, matching what GetCart returned.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	ref, ok := h.itemRef(c, id)
	if !ok {
		return
	}

	var req cart.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.cartService.UpdateQuantity(c.Request.Context(), id, ref, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    resp,
	})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	ref, ok := h.itemRef(c, id)
	if !ok {
		return
	}

	resp, err := h.cartService.Remove(c.Request.Context(), id, ref)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    resp,
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	if err := h.cartService.Clear(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCount handles GET /cart/count
func (h *CartHandler) GetCount(c *gin.Context) {
	id := middleware.IdentityFromContext(c)

	count, err := h.cartService.Count(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count cart items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"count": count},
	})
}

// MergeCart handles POST /cart/merge, pushing the session cart into
// the authenticated user's server cart
func (h *CartHandler) MergeCart(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}
	sessionID := middleware.GetSessionIDFromContext(c)

	if err := h.cartService.ReconcileOnLogin(c.Request.Context(), userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to merge cart",
		})
		return
	}

	id := middleware.IdentityFromContext(c)
	resp, err := h.cartService.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart merged successfully",
		"data":    resp,
	})
}

func (h *CartHandler) itemRef(c *gin.Context, id cart.Identity) (cart.ItemRef, bool) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid item ID",
		})
		return cart.ItemRef{}, false
	}

	if id.Authenticated() {
		return cart.ItemRef{RowID: uint(rawID)}, true
	}

	stickerType := sticker.Type(c.DefaultQuery("sticker_type", string(sticker.TypeTemplate)))
	if !stickerType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sticker type",
		})
		return cart.ItemRef{}, false
	}
	return cart.ItemRef{StickerID: uint(rawID), StickerType: stickerType}, true
}
