// Package queue publishes booking lifecycle events to RabbitMQ and
// runs the consumer that turns them into an audit log. Publishing is
// always best effort: a broker outage is logged and never fails the
// request that triggered the event.
package queue

// Actions carried in BookingEvent.Action.
const (
	ActionCreated   = "created"
	ActionConfirmed = "confirmed"
	ActionCancelled = "cancelled"
)

// BookingEvent is published on every booking lifecycle change. It
// carries enough context for downstream consumers (audit log,
// notifications, analytics) to act without querying the database.
type BookingEvent struct {
	Action           string   `json:"action"`
	BookingID        uint64   `json:"booking_id"`
	UserID           uint64   `json:"user_id"`
	ShowID           uint64   `json:"show_id"`
	ShowName         string   `json:"show_name,omitempty"`
	Venue            string   `json:"venue,omitempty"`
	SeatLabels       []string `json:"seats,omitempty"`
	TotalAmountCents uint32   `json:"total_amount_cents,omitempty"`
	OccurredAt       string   `json:"occurred_at"`
}
