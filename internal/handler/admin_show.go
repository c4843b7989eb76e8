package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/tickethub/internal/model"
	"github.com/tickethub/tickethub/internal/repository"
)

// AdminHandler serves the admin-only show management endpoints. Route
// registration wraps these in the admin role guard; the handlers
// themselves assume it already ran.
type AdminHandler struct {
	Shows *repository.ShowRepo
}

func NewAdminHandler(shows *repository.ShowRepo) *AdminHandler {
	return &AdminHandler{Shows: shows}
}

type createShowReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Venue       string `json:"venue"`
	TotalSeats  uint32 `json:"total_seats"`
	PriceCents  uint32 `json:"price_cents"`
}

// CreateShow handles POST /v1/admin/shows. Date must be RFC 3339.
func (h *AdminHandler) CreateShow(c echo.Context) error {
	var req createShowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Name == "" || req.Venue == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and venue are required"})
	}
	if req.TotalSeats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_seats must be positive"})
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be RFC 3339"})
	}

	s := &model.Show{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		Venue:       req.Venue,
		TotalSeats:  req.TotalSeats,
		PriceCents:  req.PriceCents,
	}
	if err := h.Shows.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create show failed"})
	}
	return c.JSON(http.StatusCreated, toShowResp(*s))
}

// DeleteShow handles DELETE /v1/admin/shows/:id. Deletion cascades to
// every booking of the show.
func (h *AdminHandler) DeleteShow(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	if err := h.Shows.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete show failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
