package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/tickethub/internal/model"
	"github.com/tickethub/tickethub/internal/repository"
	"github.com/tickethub/tickethub/internal/seat"
)

// PublicHandler serves the unauthenticated browse endpoints: show
// listings, show details and the per-show seat map. List reads follow
// a lenient policy: a failed fetch yields an empty result rather than
// an error page, since there is nothing a browsing user could do with
// a 500 here. The write path is strict by contrast.
type PublicHandler struct {
	Shows    *repository.ShowRepo
	Bookings *repository.BookingRepo
}

func NewPublicHandler(shows *repository.ShowRepo, bookings *repository.BookingRepo) *PublicHandler {
	if shows == nil || bookings == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Shows: shows, Bookings: bookings}
}

type showResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Venue       string `json:"venue"`
	TotalSeats  uint32 `json:"total_seats"`
	PriceCents  uint32 `json:"price_cents"`
}

func toShowResp(s model.Show) showResp {
	return showResp{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Date:        s.Date.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Venue:       s.Venue,
		TotalSeats:  s.TotalSeats,
		PriceCents:  s.PriceCents,
	}
}

// ListShows handles GET /v1/shows. The filter query parameter selects
// "upcoming" (default) or "all"; results are ordered by date
// ascending either way.
func (h *PublicHandler) ListShows(c echo.Context) error {
	upcomingOnly := c.QueryParam("filter") != "all"
	shows, err := h.Shows.List(c.Request().Context(), upcomingOnly)
	if err != nil {
		log.Printf("list shows failed: %v", err)
		return c.JSON(http.StatusOK, []showResp{})
	}
	out := make([]showResp, 0, len(shows))
	for _, s := range shows {
		out = append(out, toShowResp(s))
	}
	return c.JSON(http.StatusOK, out)
}

// GetShow handles GET /v1/shows/:id.
func (h *PublicHandler) GetShow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	s, err := h.Shows.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toShowResp(*s))
}

type seatResp struct {
	Number uint32 `json:"number"`
	Label  string `json:"label"`
	Column int    `json:"column"`
	Booked bool   `json:"booked"`
}

type seatRowResp struct {
	Label string     `json:"label"`
	Seats []seatResp `json:"seats"`
}

// GetShowSeats handles GET /v1/shows/:id/seats. It renders the
// derived seat grid row by row together with the show's current
// booked set. A failed booked-set read degrades to an empty set, the
// same leniency the listings get; the authoritative check happens at
// booking time anyway.
func (h *PublicHandler) GetShowSeats(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	ctx := c.Request().Context()
	s, err := h.Shows.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	booked, err := h.Bookings.BookedSeats(ctx, id)
	if err != nil {
		log.Printf("booked seats for show %d failed: %v", id, err)
		booked = nil
	}
	bookedSet := make(map[uint32]struct{}, len(booked))
	for _, n := range booked {
		bookedSet[n] = struct{}{}
	}

	rows := make([]seatRowResp, 0, seat.Rows(s.TotalSeats))
	for r := 0; r < seat.Rows(s.TotalSeats); r++ {
		row := seatRowResp{Label: seat.RowLabel(r)}
		for col := 1; col <= seat.Columns; col++ {
			n := uint32(r*seat.Columns + col)
			if n > s.TotalSeats {
				break
			}
			_, isBooked := bookedSet[n]
			row.Seats = append(row.Seats, seatResp{
				Number: n,
				Label:  seat.Label(n),
				Column: col,
				Booked: isBooked,
			})
		}
		rows = append(rows, row)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"show_id":     s.ID,
		"total_seats": s.TotalSeats,
		"price_cents": s.PriceCents,
		"booked":      booked,
		"rows":        rows,
	})
}
