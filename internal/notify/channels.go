package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"garageflow/internal/booking"
	"garageflow/pkg/config"
	"garageflow/pkg/logger"
)

// Channel is one delivery transport. Deliver is synchronous; the dispatcher
// decides what to do with the outcome.
type Channel interface {
	Name() booking.NotificationChannel
	Deliver(ctx context.Context, recipient, message string) error
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// MessagingChannel posts to a WhatsApp-style messaging relay. When no URL
// is configured the channel runs in log-only mode and reports success, so
// dev environments exercise the full dispatch path without a relay.
type MessagingChannel struct {
	cfg config.NotifyConfig
	log logger.Logger
}

func NewMessagingChannel(cfg config.NotifyConfig, log logger.Logger) *MessagingChannel {
	return &MessagingChannel{cfg: cfg, log: log}
}

func (c *MessagingChannel) Name() booking.NotificationChannel {
	return booking.ChannelMessaging
}

type messagingPayload struct {
	PhoneNumber string `json:"phoneNumber"`
	Message     string `json:"message"`
	Type        string `json:"type"`
}

func (c *MessagingChannel) Deliver(ctx context.Context, recipient, message string) error {
	if c.cfg.MessagingServiceURL == "" {
		c.log.Info("messaging relay not configured, logging only", "recipient", recipient, "message", message)
		return nil
	}
	body, err := json.Marshal(messagingPayload{PhoneNumber: recipient, Message: message, Type: "text"})
	if err != nil {
		return err
	}
	return post(ctx, c.cfg.MessagingServiceURL+"/api/v1/messages", c.cfg.MessagingToken, body)
}

// EmailChannel posts to a transactional mail relay.
type EmailChannel struct {
	cfg config.NotifyConfig
	log logger.Logger
}

func NewEmailChannel(cfg config.NotifyConfig, log logger.Logger) *EmailChannel {
	return &EmailChannel{cfg: cfg, log: log}
}

func (c *EmailChannel) Name() booking.NotificationChannel {
	return booking.ChannelEmail
}

type mailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func (c *EmailChannel) Deliver(ctx context.Context, recipient, message string) error {
	if c.cfg.MailRelayURL == "" {
		c.log.Info("mail relay not configured, logging only", "recipient", recipient, "message", message)
		return nil
	}
	body, err := json.Marshal(mailPayload{
		From:    c.cfg.FromAddress,
		To:      recipient,
		Subject: "Update on your vehicle service",
		Text:    message,
	})
	if err != nil {
		return err
	}
	return post(ctx, c.cfg.MailRelayURL+"/send", c.cfg.MailToken, body)
}

func post(ctx context.Context, url, token string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}
