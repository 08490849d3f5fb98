package handlers

import (
	"io"
	"net/http"

	"github.com/mcwa24/bilbord-expo/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadImage stores an uploaded banner image in the object store and
// returns its public URL.
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if services.Cloudinary == nil {
		zap.S().Error("upload requested but Cloudinary is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload service unavailable"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file data"})
		return
	}

	result, err := services.Cloudinary.UploadImageFromBytes(c.Request.Context(), data, "banners", file.Filename)
	if err != nil {
		zap.S().Errorw("failed to upload image", "filename", file.Filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.SecureURL})
}
