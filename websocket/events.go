// websocket/events.go
package websocket

import (
	"encoding/json"
	"log"
	"time"
)

// Event is one entry on a tenant's live feed.
type Event struct {
	Type      string      `json:"type"` // REQUEST_CREATED, REQUEST_STATUS_CHANGE, STOCK_CHANGE
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func (h *Hub) send(tenant string, e Event) {
	e.Timestamp = time.Now()
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("failed to marshal ws event: %v", err)
		return
	}
	h.broadcast <- broadcastMessage{tenant: tenant, payload: payload}
}

func (h *Hub) NotifyRequestCreated(tenant string, request interface{}) {
	h.send(tenant, Event{Type: "REQUEST_CREATED", Data: request})
}

func (h *Hub) NotifyRequestStatus(tenant, requestID, oldStatus, newStatus string) {
	h.send(tenant, Event{
		Type: "REQUEST_STATUS_CHANGE",
		Data: map[string]interface{}{
			"requestId": requestID,
			"oldStatus": oldStatus,
			"newStatus": newStatus,
		},
	})
}

func (h *Hub) NotifyStockChange(tenant, assetID, assetName string, quantity int64) {
	h.send(tenant, Event{
		Type: "STOCK_CHANGE",
		Data: map[string]interface{}{
			"assetId":  assetID,
			"name":     assetName,
			"quantity": quantity,
		},
	})
}
