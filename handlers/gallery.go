package handlers

import (
	"net/http"

	"github.com/mcwa24/bilbord-expo/config"
	"github.com/mcwa24/bilbord-expo/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gallery renders the public exhibition page. A store failure renders
// an empty wall rather than an error page; the failure is logged.
func Gallery(c *gin.Context) {
	banners, err := DB.ListBanners(c.Request.Context())
	if err != nil {
		zap.S().Errorw("failed to fetch banners for gallery", "error", err)
		banners = []models.Banner{}
	}

	c.HTML(http.StatusOK, "gallery.html", gin.H{
		"Banners": banners,
		"SiteURL": config.AppConfig.SiteURL,
	})
}
