// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stickerly/stickershop-backend/internal/domain/upload"
	"github.com/stickerly/stickershop-backend/internal/interfaces/http/middleware"
)

// UploadHandler handles design upload endpoints
type UploadHandler struct {
	uploadService *upload.Service
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *upload.Service) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadDesign handles POST /uploads
func (h *UploadHandler) UploadDesign(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "A file field is required",
		})
		return
	}
	defer file.Close()

	uploaded, err := h.uploadService.UploadDesign(c.Request.Context(), &upload.UploadRequest{
		File:       file,
		Header:     header,
		UploadedBy: userID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Design uploaded successfully",
		"data":    uploaded,
	})
}

// DeleteDesign handles DELETE /uploads/:id
func (h *UploadHandler) DeleteDesign(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid file ID",
		})
		return
	}

	if err := h.uploadService.Delete(c.Request.Context(), uint(fileID), userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Design deleted successfully",
	})
}
