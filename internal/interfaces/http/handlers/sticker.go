// internal/interfaces/http/handlers/sticker.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stickerly/stickershop-backend/internal/domain/sticker"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/middleware"
)

// StickerHandler handles catalog and custom sticker endpoints
type StickerHandler struct {
	stickerService *sticker.Service
}

// NewStickerHandler creates a new sticker handler
func NewStickerHandler(stickerService *sticker.Service) *StickerHandler {
	return &StickerHandler{stickerService: stickerService}
}

// ListCategories handles GET /stickers/categories
func (h *StickerHandler) ListCategories(c *gin.Context) {
	categories, err := h.stickerService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve categories",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": categories,
	})
}

// ListTemplates handles GET /stickers/templates
func (h *StickerHandler) ListTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	params := sticker.ListParams{
		CategorySlug: c.Query("category"),
		FeaturedOnly: c.Query("featured") == "true",
		Page:         page,
		Limit:        limit,
	}

	list, err := h.stickerService.ListTemplates(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve templates",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": list,
	})
}

// GetTemplate handles GET /stickers/templates/:id
func (h *StickerHandler) GetTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid template ID",
		})
		return
	}

	tmpl, err := h.stickerService.GetTemplate(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": tmpl,
	})
}

// CreateCustom handles POST /stickers/custom
func (h *StickerHandler) CreateCustom(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req sticker.CreateCustomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	custom, err := h.stickerService.CreateCustom(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Custom sticker created successfully",
		"data":    custom,
	})
}

// GetCustom handles GET /stickers/custom/:id
func (h *StickerHandler) GetCustom(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sticker ID",
		})
		return
	}

	var requesterID *uint
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		requesterID = &userID
	}

	custom, err := h.stickerService.GetCustom(c.Request.Context(), requesterID, uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": custom,
	})
}

// GenerateDesign handles POST /stickers/generate. The same prompt
// always yields the same artwork, so previews are free to re-request.
func (h *StickerHandler) GenerateDesign(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Prompt required",
		})
		return
	}

	dataURL := h.stickerService.GenerateDesign(req.Prompt)

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"prompt":    req.Prompt,
			"image_url": dataURL,
		},
	})
}
