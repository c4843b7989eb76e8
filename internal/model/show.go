package model

import "time"

// Show represents a scheduled event with a fixed seat inventory and a
// per-seat price. Shows are created by administrators and are
// immutable afterwards except for deletion, which cascades to all
// bookings of the show.
//
// Seats are not stored: a show with TotalSeats = n has seats numbered
// 1..n laid out on a fixed 10-column grid (see the seat package).
//
// Fields:
//  ID          - primary key identifier.
//  Name        - display name of the show.
//  Description - free-form description.
//  Date        - scheduled date and time (UTC).
//  Venue       - venue name.
//  TotalSeats  - number of seats, always positive.
//  PriceCents  - price per seat in cents, never negative.
//  CreatedAt   - row creation timestamp.
type Show struct {
	ID          uint64
	Name        string
	Description string
	Date        time.Time
	Venue       string
	TotalSeats  uint32
	PriceCents  uint32
	CreatedAt   time.Time
}
