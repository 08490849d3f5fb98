package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mcwa24/bilbord-expo/database"
	"github.com/mcwa24/bilbord-expo/models"
	"github.com/mcwa24/bilbord-expo/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type bannerRequest struct {
	ImageURL  string     `json:"imageUrl"`
	Link      string     `json:"link"`
	Title     string     `json:"title"`
	ExpiresAt *time.Time `json:"expiresAt"`
	Position  *int       `json:"position"`
}

// normalize trims the image URL and upgrades it to https.
func (r *bannerRequest) normalize() {
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	if strings.HasPrefix(strings.ToLower(r.ImageURL), "http://") {
		r.ImageURL = "https://" + strings.TrimPrefix(r.ImageURL, "http://")
	}
	r.Link = strings.TrimSpace(r.Link)
}

func (r *bannerRequest) banner() models.Banner {
	return models.Banner{
		ImageURL:  r.ImageURL,
		Link:      r.Link,
		Title:     r.Title,
		ExpiresAt: r.ExpiresAt,
		Position:  r.Position,
	}
}

// GetBanners returns all active banners in display order.
func GetBanners(c *gin.Context) {
	banners, err := DB.ListBanners(c.Request.Context())
	if err != nil {
		zap.S().Errorw("failed to fetch banners", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banners"})
		return
	}

	c.JSON(http.StatusOK, banners)
}

// CreateBanner creates a new banner.
func CreateBanner(c *gin.Context) {
	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	req.normalize()
	if req.ImageURL == "" || req.Link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image URL and link are required"})
		return
	}

	banner, err := DB.CreateBanner(c.Request.Context(), req.banner())
	if err != nil {
		zap.S().Errorw("failed to create banner", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create banner"})
		return
	}

	c.JSON(http.StatusCreated, banner)
}

// UpdateBanner overwrites an existing banner.
func UpdateBanner(c *gin.Context) {
	id := c.Param("id")

	var req bannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	req.normalize()
	if req.ImageURL == "" || req.Link == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image URL and link are required"})
		return
	}

	banner, err := DB.UpdateBanner(c.Request.Context(), id, req.banner())
	if errors.Is(err, database.ErrBannerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Banner not found"})
		return
	}
	if err != nil {
		zap.S().Errorw("failed to update banner", "banner", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update banner"})
		return
	}

	c.JSON(http.StatusOK, banner)
}

// DeleteBanner removes a banner. Deleting an already-gone banner is
// reported as success. The stored image is cleaned up best effort; a
// leftover asset is not worth failing the delete over.
func DeleteBanner(c *gin.Context) {
	id := c.Param("id")

	imageURL, err := DB.DeleteBanner(c.Request.Context(), id)
	if err != nil {
		zap.S().Errorw("failed to delete banner", "banner", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete banner"})
		return
	}

	if imageURL != "" && services.Cloudinary != nil {
		if publicID := services.ExtractPublicID(imageURL); publicID != "" {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := services.Cloudinary.DeleteImage(ctx, publicID); err != nil {
					zap.S().Warnw("failed to delete banner image", "publicID", publicID, "error", err)
				}
			}()
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reorderRequest struct {
	Positions []models.BannerPosition `json:"positions"`
}

// ReorderBanners writes a client-proposed slot order to the store and
// returns the server-confirmed list.
func ReorderBanners(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Positions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Positions array is required"})
		return
	}

	result, err := DB.UpdatePositions(c.Request.Context(), req.Positions)
	if err != nil {
		zap.S().Errorw("failed to reorder banners", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder banners"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"updated":  result.Updated,
		"verified": result.Verified,
		"banners":  result.Banners,
	})
}

// GetBannerStats returns banner counts for the admin dashboard.
func GetBannerStats(c *gin.Context) {
	stats, err := DB.CountBanners(c.Request.Context())
	if err != nil {
		zap.S().Errorw("failed to fetch banner stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch banner stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}
