package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"
)

type TicketEvent struct {
	Event     string `json:"event"`
	ProjectID uint   `json:"project_id"`
	TicketID  uint   `json:"ticket_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	ActorID   uint   `json:"actor_id"`
}

var webhookClient = &http.Client{Timeout: 5 * time.Second}

// NotifyTicketEvent posts the event to WEBHOOK_URL when one is configured.
// Delivery is fire and forget: failures are logged and never surface to the
// request that triggered them.
func NotifyTicketEvent(event TicketEvent) {
	url := os.Getenv("WEBHOOK_URL")

	if url == "" {
		return
	}

	payload, err := json.Marshal(event)

	if err != nil {
		log.Printf("Failed to marshal webhook payload: %v", err)
		return
	}

	resp, err := webhookClient.Post(url, "application/json", bytes.NewReader(payload))

	if err != nil {
		log.Printf("Failed to deliver webhook for ticket %d: %v", event.TicketID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("Webhook endpoint returned %d for ticket %d", resp.StatusCode, event.TicketID)
	}
}
