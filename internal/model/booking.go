package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// CanTransition reports whether a booking may move from one status to
// another. A booking starts pending, may be confirmed exactly once,
// and may be cancelled from either live state. Cancelled is terminal.
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case BookingPending:
		return to == BookingConfirmed || to == BookingCancelled
	case BookingConfirmed:
		return to == BookingCancelled
	default:
		return false
	}
}

// Booking is a user's claim on a subset of a show's seats. SeatNumbers
// is non-empty, sorted ascending and duplicate-free; every number lies
// in [1, show.TotalSeats]. TotalAmountCents is fixed at creation time
// (seat count times the show's price) and never recomputed.
//
// The correctness property of the whole system: for a given show no
// seat number appears in two bookings that are both pending or
// confirmed. Cancelled bookings free their seats.
type Booking struct {
	ID               uint64
	UserID           uint64
	ShowID           uint64
	SeatNumbers      []uint32
	Status           BookingStatus
	TotalAmountCents uint32
	CreatedAt        time.Time
}
