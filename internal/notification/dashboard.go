package notification

import (
	"context"
	"encoding/json"
	"fmt"
)

// Broadcaster is the hub surface the dashboard channel needs.
type Broadcaster interface {
	GetBroadcast() chan []byte
}

// DashboardChannel pushes payloads to connected back-office dashboards over
// the websocket hub.
type DashboardChannel struct {
	hub Broadcaster
}

func NewDashboardChannel(hub Broadcaster) *DashboardChannel {
	return &DashboardChannel{hub: hub}
}

func (d *DashboardChannel) Name() string { return "dashboard" }

func (d *DashboardChannel) Send(ctx context.Context, payload Payload) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard payload: %w", err)
	}

	select {
	case d.hub.GetBroadcast() <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dashboard broadcast aborted: %w", ctx.Err())
	}
}
