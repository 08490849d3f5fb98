package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

// resendMessage is the request body of the Resend send-email API.
type resendMessage struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ResendResponse is the Resend API response for a sent email.
type ResendResponse struct {
	ID string `json:"id"`
}

// EmailService sends transactional email through the Resend HTTP API.
type EmailService struct {
	APIKey   string
	From     string
	SiteURL  string
	Endpoint string

	client *http.Client
}

var Email *EmailService

// NewEmailService creates an email sender. An empty API key leaves the
// service disabled; sends then fail with an explicit error.
func NewEmailService(apiKey, from, siteURL string) *EmailService {
	return &EmailService{
		APIKey:   apiKey,
		From:     from,
		SiteURL:  siteURL,
		Endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SendBannerLive notifies a client that their banner is up, with a
// link to it and to the gallery.
func (es *EmailService) SendBannerLive(to, bannerLink, bannerTitle string) (*ResendResponse, error) {
	if es.APIKey == "" {
		return nil, fmt.Errorf("email API key is not configured")
	}
	if to == "" || bannerLink == "" {
		return nil, fmt.Errorf("recipient and banner link are required")
	}

	message := resendMessage{
		From:    es.From,
		To:      []string{to},
		Subject: "Vaš baner je postavljen na Bilbord Expo platformu",
		HTML:    bannerLiveHTML(bannerLink, bannerTitle, es.SiteURL),
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email message: %w", err)
	}

	req, err := http.NewRequest("POST", es.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+es.APIKey)

	resp, err := es.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("email send failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	var sendResponse ResendResponse
	if err := json.Unmarshal(responseBody, &sendResponse); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &sendResponse, nil
}

func bannerLiveHTML(bannerLink, bannerTitle, siteURL string) string {
	titleLine := ""
	if bannerTitle != "" {
		titleLine = fmt.Sprintf(" &#8222;%s&#8220;", bannerTitle)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #f9c344; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
      <h1 style="color: #1d1d1f; margin: 0;">Bilbord Expo</h1>
    </div>
    <div style="background-color: #ffffff; padding: 30px; border: 1px solid #e0e0e0; border-top: none; border-radius: 0 0 8px 8px;">
      <h2 style="color: #1d1d1f; margin-top: 0;">Vaš baner je uspešno postavljen!</h2>
      <p>Poštovani,</p>
      <p>Vaš baner%s je uspešno postavljen na <strong>Bilbord Expo</strong> platformu.</p>
      <p>Baner možete pregledati na sledećoj adresi:</p>
      <p style="margin: 20px 0;">
        <a href="%s" style="color: #1d1d1f; text-decoration: underline; word-break: break-all;">%s</a>
      </p>
      <p style="margin: 20px 0;">
        <a href="%s" style="display: inline-block; background-color: #f9c344; color: #1d1d1f; padding: 12px 24px; text-decoration: none; border-radius: 6px; font-weight: bold;">Posetite Bilbord Expo</a>
      </p>
      <p style="margin-top: 30px; color: #666; font-size: 14px;">
        Srdačan pozdrav,<br>
        <strong>Bilbord Expo tim</strong>
      </p>
    </div>
    <div style="text-align: center; margin-top: 20px; color: #999; font-size: 12px;">
      <p>&copy; %d Bilbord Expo. Sva prava zadržana.</p>
    </div>
  </body>
</html>`, titleLine, bannerLink, bannerLink, siteURL, time.Now().Year())
}
