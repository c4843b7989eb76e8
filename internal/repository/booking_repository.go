package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tickethub/tickethub/internal/model"
	"github.com/tickethub/tickethub/internal/seat"
)

// BookingRepo persists bookings. A booking's seat set is stored as a
// JSON array of seat numbers in the seat_numbers column, sorted
// ascending, which keeps the set a single value exactly as the domain
// treats it.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// encodeSeatNumbers renders a seat set as its canonical JSON form:
// sorted ascending, duplicates removed.
func encodeSeatNumbers(nums []uint32) (string, error) {
	canonical := canonicalSeats(nums)
	if len(canonical) == 0 {
		return "", errors.New("empty seat set")
	}
	b, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeSeatNumbers(s string) ([]uint32, error) {
	var nums []uint32
	if err := json.Unmarshal([]byte(s), &nums); err != nil {
		return nil, fmt.Errorf("decode seat_numbers: %w", err)
	}
	return nums, nil
}

// canonicalSeats sorts and deduplicates a seat slice without touching
// the input.
func canonicalSeats(nums []uint32) []uint32 {
	out := append([]uint32(nil), nums...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	j := 0
	for i, n := range out {
		if i == 0 || n != out[j-1] {
			out[j] = n
			j++
		}
	}
	return out[:j]
}

// overlap returns the members of want that appear in taken, ascending.
func overlap(want []uint32, taken map[uint32]struct{}) []uint32 {
	var hit []uint32
	for _, n := range canonicalSeats(want) {
		if _, ok := taken[n]; ok {
			hit = append(hit, n)
		}
	}
	return hit
}

const liveStatuses = `('pending','confirmed')`

// BookedSeats returns the union of seat numbers across all pending and
// confirmed bookings of a show, sorted ascending. Cancelled bookings
// do not contribute.
func (r *BookingRepo) BookedSeats(ctx context.Context, showID uint64) ([]uint32, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_numbers FROM bookings WHERE show_id = ? AND status IN `+liveStatuses, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	set := make(map[uint32]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		nums, err := decodeSeatNumbers(raw)
		if err != nil {
			return nil, err
		}
		for _, n := range nums {
			set[n] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]uint32, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Create inserts a new pending booking. The insert is conditional and
// atomic: inside the transaction it re-reads every live booking of the
// show with FOR UPDATE, so two submissions racing on the same seat
// serialize on the row locks and the loser sees the winner's seats.
// On overlap nothing is written and ErrSeatConflict is returned.
//
// On success the generated ID, status and creation timestamp are
// populated on the given booking, whose SeatNumbers are replaced by
// their canonical sorted form.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) (err error) {
	b.SeatNumbers = canonicalSeats(b.SeatNumbers)
	encoded, err := encodeSeatNumbers(b.SeatNumbers)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT seat_numbers FROM bookings WHERE show_id = ? AND status IN `+liveStatuses+` FOR UPDATE`,
		b.ShowID)
	if err != nil {
		return err
	}
	taken := make(map[uint32]struct{})
	for rows.Next() {
		var raw string
		if scanErr := rows.Scan(&raw); scanErr != nil {
			rows.Close()
			return scanErr
		}
		nums, decErr := decodeSeatNumbers(raw)
		if decErr != nil {
			rows.Close()
			return decErr
		}
		for _, n := range nums {
			taken[n] = struct{}{}
		}
	}
	if err = rows.Close(); err != nil {
		return err
	}
	if hit := overlap(b.SeatNumbers, taken); len(hit) > 0 {
		err = ErrSeatConflict
		return err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (user_id, show_id, seat_numbers, status, total_amount_cents)
		 VALUES (?, ?, ?, 'pending', ?)`,
		b.UserID, b.ShowID, encoded, b.TotalAmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.Status = model.BookingPending
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt)
	return err
}

// BookingDetail is a booking joined with the show fields needed to
// render a user's booking list.
type BookingDetail struct {
	ID               uint64              `json:"id"`
	ShowID           uint64              `json:"show_id"`
	SeatNumbers      []uint32            `json:"seat_numbers"`
	SeatLabels       []string            `json:"seats"`
	Status           model.BookingStatus `json:"status"`
	TotalAmountCents uint32              `json:"total_amount_cents"`
	CreatedAt        time.Time           `json:"created_at"`
	ShowName         string              `json:"show_name"`
	ShowDate         time.Time           `json:"show_date"`
	Venue            string              `json:"venue"`
}

// ListByUser returns the user's bookings newest first, including
// cancelled ones, with show name, date and venue joined in.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.show_id, b.seat_numbers, b.status, b.total_amount_cents, b.created_at,
	                  s.name, s.date, s.venue
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var raw string
		if err := rows.Scan(&d.ID, &d.ShowID, &raw, &d.Status, &d.TotalAmountCents, &d.CreatedAt,
			&d.ShowName, &d.ShowDate, &d.Venue); err != nil {
			return nil, err
		}
		if d.SeatNumbers, err = decodeSeatNumbers(raw); err != nil {
			return nil, err
		}
		d.SeatLabels = seat.Labels(d.SeatNumbers)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// UpdateStatus moves a booking owned by userID to the given status,
// enforcing the lifecycle. The returned status is the booking's state
// after the call and changed reports whether a write happened: asking
// for the status the booking already has (cancelling twice, say) is a
// no-op, while a disallowed move returns ErrInvalidTransition. A
// missing or foreign booking returns ErrBookingNotFound.
func (r *BookingRepo) UpdateStatus(ctx context.Context, bookingID, userID uint64, to model.BookingStatus) (status model.BookingStatus, changed bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var current model.BookingStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM bookings WHERE id = ? AND user_id = ? FOR UPDATE`,
		bookingID, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrBookingNotFound
		}
		return "", false, err
	}
	if current == to {
		return current, false, nil
	}
	if !model.CanTransition(current, to) {
		err = ErrInvalidTransition
		return current, false, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ?`, to, bookingID); err != nil {
		return current, false, err
	}
	return to, true, nil
}
