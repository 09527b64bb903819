package notification

import "context"

// Event type constants
const (
	EventReconciliationCompleted = "reconciliation.completed"
	EventSettlementPaid          = "settlement.paid"
	EventSettlementOverdue       = "settlement.overdue"
)

// Payload is the message delivered to every configured channel.
type Payload struct {
	Event    string      `json:"event"`
	TenantID string      `json:"tenant_id"`
	Data     interface{} `json:"data"`
}

// Channel delivers a payload to one destination (webhook, dashboard, ...).
type Channel interface {
	Name() string
	Send(ctx context.Context, payload Payload) error
}

// ChannelResult reports one channel's delivery outcome back to the caller.
type ChannelResult struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
