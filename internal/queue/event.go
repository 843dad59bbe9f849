// Package queue defines message payloads exchanged over the message broker.
package queue

// NotifyQueueName is the durable queue carrying notification events.
const NotifyQueueName = "distro.notify"

// Notification kinds carried in NotificationEvent.Kind.
const (
	KindInviteCreated = "invite_created"
	KindInviteResent  = "invite_resent"
	KindPayoutUpdated = "payout_updated"
)

// NotificationEvent is published whenever the application wants an
// out-of-band message delivered to a user.  It carries enough
// information for the consumer to render and deliver the message
// without querying the primary database.  Delivery is best-effort:
// publishing failures never fail the operation that raised the
// event.
type NotificationEvent struct {
	Kind         string  `json:"kind"`
	Recipient    string  `json:"recipient"`
	ReleaseID    uint64  `json:"release_id,omitempty"`
	ReleaseTitle string  `json:"release_title,omitempty"`
	InviterName  string  `json:"inviter_name,omitempty"`
	Percent      float64 `json:"percent,omitempty"`
	AcceptURL    string  `json:"accept_url,omitempty"`
	PayoutRef    string  `json:"payout_ref,omitempty"`
	PayoutStatus string  `json:"payout_status,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	RaisedAt     string  `json:"raised_at"`
}
