// internal/interfaces/http/handlers/social.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stickerly/stickershop-backend/internal/domain/social"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/middleware"
)

// SocialHandler handles likes, publishing and profile endpoints
type SocialHandler struct {
	socialService *social.Service
}

// NewSocialHandler creates a new social handler
func NewSocialHandler(socialService *social.Service) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

// LikeSticker handles POST /stickers/:id/like
func (h *SocialHandler) LikeSticker(c *gin.Context) {
	userID, stickerID, ok := h.authAndStickerID(c)
	if !ok {
		return
	}

	if err := h.socialService.Like(c.Request.Context(), userID, stickerID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	count, _ := h.socialService.LikeCount(c.Request.Context(), stickerID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Sticker liked",
		"data":    gin.H{"like_count": count},
	})
}

// UnlikeSticker handles DELETE /stickers/:id/like
func (h *SocialHandler) UnlikeSticker(c *gin.Context) {
	userID, stickerID, ok := h.authAndStickerID(c)
	if !ok {
		return
	}

	if err := h.socialService.Unlike(c.Request.Context(), userID, stickerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	count, _ := h.socialService.LikeCount(c.Request.Context(), stickerID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Sticker unliked",
		"data":    gin.H{"like_count": count},
	})
}

// GetLikes handles GET /stickers/:id/likes
func (h *SocialHandler) GetLikes(c *gin.Context) {
	stickerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sticker ID",
		})
		return
	}

	count, err := h.socialService.LikeCount(c.Request.Context(), uint(stickerID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count likes",
		})
		return
	}

	data := gin.H{"like_count": count}
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		liked, _ := h.socialService.Liked(c.Request.Context(), userID, uint(stickerID))
		data["liked"] = liked
	}

	c.JSON(http.StatusOK, gin.H{"data": data})
}

// PublishSticker handles POST /stickers/:id/publish
func (h *SocialHandler) PublishSticker(c *gin.Context) {
	h.setPublished(c, true)
}

// UnpublishSticker handles DELETE /stickers/:id/publish
func (h *SocialHandler) UnpublishSticker(c *gin.Context) {
	h.setPublished(c, false)
}

// GetProfile handles GET /profiles/:id
func (h *SocialHandler) GetProfile(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid user ID",
		})
		return
	}

	profile, err := h.socialService.Profile(c.Request.Context(), uint(userID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": profile,
	})
}

func (h *SocialHandler) setPublished(c *gin.Context, published bool) {
	userID, stickerID, ok := h.authAndStickerID(c)
	if !ok {
		return
	}

	custom, err := h.socialService.Publish(c.Request.Context(), userID, stickerID, published)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	message := "Sticker published"
	if !published {
		message = "Sticker unpublished"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    custom,
	})
}

func (h *SocialHandler) authAndStickerID(c *gin.Context) (uint, uint, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return 0, 0, false
	}

	stickerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid sticker ID",
		})
		return 0, 0, false
	}

	return userID, uint(stickerID), true
}
