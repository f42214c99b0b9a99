package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WebhookService posts platform events to a Discord webhook. It is
// constructed once at startup and injected into the services that emit
// notifications. All sends are fire-and-forget: failures are logged and
// never propagated to the caller.
type WebhookService struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewWebhookService(webhookURL string, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		url:    webhookURL,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type discordPayload struct {
	Content string `json:"content"`
}

// NotifyRelationshipRequest announces a cross-user relationship proposal.
func (ws *WebhookService) NotifyRelationshipRequest(proposerName, targetName, relType string) {
	ws.send(fmt.Sprintf("**%s** requested a *%s* relationship with **%s**", proposerName, relType, targetName))
}

// NotifyMessage announces a direct message between characters.
func (ws *WebhookService) NotifyMessage(senderName, receiverName string) {
	ws.send(fmt.Sprintf("**%s** sent a message to **%s**", senderName, receiverName))
}

func (ws *WebhookService) send(content string) {
	if ws.url == "" {
		return
	}

	go func() {
		body, err := json.Marshal(discordPayload{Content: content})
		if err != nil {
			ws.logger.Warn("webhook payload marshal failed", zap.Error(err))
			return
		}

		resp, err := ws.client.Post(ws.url, "application/json", bytes.NewReader(body))
		if err != nil {
			ws.logger.Warn("webhook delivery failed", zap.Error(err))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			ws.logger.Warn("webhook rejected", zap.Int("status", resp.StatusCode))
		}
	}()
}
