package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"sweetholic/internal/services"

	"github.com/gin-gonic/gin"
)

// ImageHandler uploads photo files to the external host. The rest of the
// API only ever sees the returned URL.
type ImageHandler struct{}

func NewImageHandler() *ImageHandler {
	return &ImageHandler{}
}

// Upload handles POST /images (multipart "image" field)
func (h *ImageHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		Error(c, http.StatusBadRequest, "An image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		Error(c, http.StatusBadRequest, "Only image files are allowed")
		return
	}

	// 限制 10MB
	if header.Size > 10*1024*1024 {
		Error(c, http.StatusBadRequest, "Image must be 10MB or less")
		return
	}

	result, err := services.UploadImage(file, header)
	if err != nil {
		Error(c, http.StatusInternalServerError, fmt.Sprintf("Upload failed: %v", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"url":     result.URL,
		"id":      result.ID,
	})
}
