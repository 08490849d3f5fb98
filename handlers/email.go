package handlers

import (
	"net/http"

	"github.com/mcwa24/bilbord-expo/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendEmailRequest struct {
	To          string `json:"to"`
	BannerLink  string `json:"bannerLink"`
	BannerTitle string `json:"bannerTitle"`
}

// SendEmail notifies a client that their banner is live. A failure
// here never rolls back a saved banner; the caller reports it as a
// partial success.
func SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.To == "" || req.BannerLink == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and banner link are required"})
		return
	}

	data, err := services.Email.SendBannerLive(req.To, req.BannerLink, req.BannerTitle)
	if err != nil {
		zap.S().Errorw("failed to send email", "to", req.To, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
