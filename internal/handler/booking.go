package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/tickethub/internal/booking"
	"github.com/tickethub/tickethub/internal/model"
	"github.com/tickethub/tickethub/internal/queue"
	"github.com/tickethub/tickethub/internal/repository"
	"github.com/tickethub/tickethub/internal/seat"
)

// BookingStore is the slice of the booking repository the handler uses
// beyond the selection flow. Tests substitute a fake.
type BookingStore interface {
	ListByUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
	UpdateStatus(ctx context.Context, bookingID, userID uint64, to model.BookingStatus) (model.BookingStatus, bool, error)
}

// flowStore adapts the MySQL repositories to the selection flow's
// Store interface.
type flowStore struct {
	shows    *repository.ShowRepo
	bookings *repository.BookingRepo
}

func (f flowStore) GetShow(ctx context.Context, showID uint64) (*model.Show, error) {
	return f.shows.GetByID(ctx, showID)
}

func (f flowStore) BookedSeats(ctx context.Context, showID uint64) ([]uint32, error) {
	return f.bookings.BookedSeats(ctx, showID)
}

func (f flowStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	return f.bookings.Create(ctx, b)
}

// BookingHandler serves the authenticated booking endpoints. Publish
// is swappable so tests do not need a broker; it defaults to the
// RabbitMQ publisher and every call through it is best effort.
type BookingHandler struct {
	Flow     booking.Store
	Bookings BookingStore
	Publish  func(ctx context.Context, ev queue.BookingEvent) error
}

func NewBookingHandler(shows *repository.ShowRepo, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{
		Flow:     flowStore{shows: shows, bookings: bookings},
		Bookings: bookings,
		Publish:  queue.PublishBookingEvent,
	}
}

type createBookingReq struct {
	SeatNumbers []uint32 `json:"seat_numbers"`
}

type bookingResp struct {
	ID               uint64              `json:"id"`
	ShowID           uint64              `json:"show_id"`
	SeatNumbers      []uint32            `json:"seat_numbers"`
	SeatLabels       []string            `json:"seats"`
	Status           model.BookingStatus `json:"status"`
	TotalAmountCents uint32              `json:"total_amount_cents"`
	CreatedAt        time.Time           `json:"created_at"`
}

func (h *BookingHandler) publishEvent(ev queue.BookingEvent) {
	// Detached from the request context: the response must not wait on
	// the broker, and a cancelled request should still produce its event.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Publish(ctx, ev); err != nil {
		log.Printf("publish booking event %q failed: %v", ev.Action, err)
	}
}

// CreateBooking handles POST /v1/shows/:id/bookings. The request names
// the seats to book; the whole set succeeds or fails together. A
// conflict response lists the seats that were already taken and the
// selection that survives for a retry.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.SeatNumbers) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers required"})
	}

	ctx := c.Request().Context()
	sess := booking.NewSession(h.Flow)
	if err := sess.Load(ctx, showID); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load show failed"})
	}

	show := sess.Show()
	seen := make(map[uint32]struct{}, len(req.SeatNumbers))
	var conflicting []uint32
	for _, n := range req.SeatNumbers {
		if n < 1 || n > show.TotalSeats {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "seat number out of range",
				"seat":  n,
			})
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if sess.IsBooked(n) {
			conflicting = append(conflicting, n)
			continue
		}
		sess.ToggleSeat(n)
	}
	if len(conflicting) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":       "some seats are already booked",
			"conflicting": conflicting,
			"remaining":   sess.Selected(),
		})
	}

	b, err := sess.Submit(ctx, uid)
	if err != nil {
		var conflict *booking.ConflictError
		switch {
		case errors.As(err, &conflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "some seats are already booked",
				"conflicting": conflict.Seats,
				"remaining":   sess.Selected(),
			})
		case errors.Is(err, booking.ErrEmptySelection):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers required"})
		default:
			log.Printf("submit booking for show %d failed: %v", showID, err)
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "booking failed, try again"})
		}
	}

	h.publishEvent(queue.BookingEvent{
		Action:           queue.ActionCreated,
		BookingID:        b.ID,
		UserID:           uid,
		ShowID:           show.ID,
		ShowName:         show.Name,
		Venue:            show.Venue,
		SeatLabels:       seat.Labels(b.SeatNumbers),
		TotalAmountCents: b.TotalAmountCents,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, bookingResp{
		ID:               b.ID,
		ShowID:           b.ShowID,
		SeatNumbers:      b.SeatNumbers,
		SeatLabels:       seat.Labels(b.SeatNumbers),
		Status:           b.Status,
		TotalAmountCents: b.TotalAmountCents,
		CreatedAt:        b.CreatedAt,
	})
}

// ListBookings handles GET /v1/my-bookings. Like the public listings,
// a failed read degrades to an empty list.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), uid)
	if err != nil {
		log.Printf("list bookings for user %d failed: %v", uid, err)
		return c.JSON(http.StatusOK, []repository.BookingDetail{})
	}
	return c.JSON(http.StatusOK, details)
}

// Confirm handles POST /v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.updateStatus(c, model.BookingConfirmed, queue.ActionConfirmed)
}

// Cancel handles POST /v1/bookings/:id/cancel. Cancelling an already
// cancelled booking succeeds without doing anything.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.updateStatus(c, model.BookingCancelled, queue.ActionCancelled)
}

func (h *BookingHandler) updateStatus(c echo.Context, to model.BookingStatus, action string) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	status, changed, err := h.Bookings.UpdateStatus(c.Request().Context(), bookingID, uid, to)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":  "invalid status transition",
				"status": status,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
		}
	}
	if changed {
		h.publishEvent(queue.BookingEvent{
			Action:     action,
			BookingID:  bookingID,
			UserID:     uid,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": bookingID, "status": status})
}
