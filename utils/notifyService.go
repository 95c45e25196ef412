package utils

import (
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"medtrain/config"
)

// NotifyWebhook posts a platform event to the configured compliance
// webhook. Delivery is best-effort; failures are logged and dropped.
func NotifyWebhook(event string, payload map[string]interface{}) {
	if config.AppConfig == nil || config.AppConfig.NotifyWebhookURL == "" {
		return
	}
	url := config.AppConfig.NotifyWebhookURL

	client := resty.New().SetTimeout(10 * time.Second)

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]interface{}{
			"event":     event,
			"payload":   payload,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}).
		Post(url)
	if err != nil {
		log.Printf("[NOTIFY] webhook %s failed: %v", event, err)
		return
	}
	if resp.IsError() {
		log.Printf("[NOTIFY] webhook %s returned %d", event, resp.StatusCode())
	}
}
