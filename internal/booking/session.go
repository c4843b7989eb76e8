// Package booking implements the seat-selection flow: loading a
// show's seat inventory, tracking a user's tentative selection and
// submitting it as a booking.
//
// A Session holds only local state; nothing is written to the store
// until Submit. The pre-submit re-check against a fresh booked set is
// advisory and exists so the user learns exactly which seats were
// taken from under them. The store's Create is the enforcement point:
// it re-validates the seat set atomically inside its own transaction,
// so even two sessions racing past the advisory check cannot both
// persist the same seat.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tickethub/tickethub/internal/model"
	"github.com/tickethub/tickethub/internal/repository"
)

// Store is the persistence surface the flow needs. The MySQL
// implementation lives in the repository package; tests substitute a
// fake. Implementations return repository.ErrShowNotFound for missing
// shows and repository.ErrSeatConflict for losing the insert race.
type Store interface {
	GetShow(ctx context.Context, showID uint64) (*model.Show, error)
	BookedSeats(ctx context.Context, showID uint64) ([]uint32, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
}

// ErrEmptySelection is returned by Submit when no seats are selected.
var ErrEmptySelection = errors.New("no seats selected")

// ConflictError reports seats that were booked by someone else between
// loading the seat map and submitting. Seats is sorted ascending.
type ConflictError struct {
	Seats []uint32
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %v", e.Seats)
}

// Session is one user's in-progress booking attempt for one show.
// It is not safe for concurrent use; a session belongs to a single
// request flow.
type Session struct {
	store    Store
	show     *model.Show
	booked   map[uint32]struct{}
	selected map[uint32]struct{}
}

func NewSession(store Store) *Session {
	return &Session{
		store:    store,
		booked:   make(map[uint32]struct{}),
		selected: make(map[uint32]struct{}),
	}
}

// Load fetches the show and its current booked set concurrently. The
// selection starts empty. A missing show surfaces as
// repository.ErrShowNotFound.
func (s *Session) Load(ctx context.Context, showID uint64) error {
	g, gctx := errgroup.WithContext(ctx)
	var (
		show   *model.Show
		booked []uint32
	)
	g.Go(func() error {
		var err error
		show, err = s.store.GetShow(gctx, showID)
		return err
	})
	g.Go(func() error {
		var err error
		booked, err = s.store.BookedSeats(gctx, showID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.show = show
	s.booked = toSet(booked)
	s.selected = make(map[uint32]struct{})
	return nil
}

// Show returns the loaded show record.
func (s *Session) Show() *model.Show { return s.show }

// Booked returns the seats known to be taken by others, ascending.
func (s *Session) Booked() []uint32 { return sortedKeys(s.booked) }

// Selected returns the current selection, ascending.
func (s *Session) Selected() []uint32 { return sortedKeys(s.selected) }

// IsBooked reports whether a seat is in the booked set.
func (s *Session) IsBooked(n uint32) bool {
	_, ok := s.booked[n]
	return ok
}

// ToggleSeat flips a seat in or out of the selection and reports
// whether the selection changed. Booked seats and numbers outside
// [1, TotalSeats] are ignored. Toggling twice restores the prior
// selection.
func (s *Session) ToggleSeat(n uint32) bool {
	if s.show == nil || n < 1 || n > s.show.TotalSeats {
		return false
	}
	if _, taken := s.booked[n]; taken {
		return false
	}
	if _, ok := s.selected[n]; ok {
		delete(s.selected, n)
	} else {
		s.selected[n] = struct{}{}
	}
	return true
}

// Submit attempts to persist the selection as a new pending booking.
//
// It re-reads the booked set first. If the fresh set overlaps the
// selection, nothing is inserted: the session's booked set is replaced
// with the fresh read, the overlapping seats are dropped from the
// selection (the rest survives for a retry) and a *ConflictError names
// the seats that were lost. The same handling applies when the store
// itself rejects the insert with repository.ErrSeatConflict, which can
// still happen in the window between the re-read and the insert.
//
// Any other store failure leaves the selection untouched so the user
// can simply retry.
func (s *Session) Submit(ctx context.Context, userID uint64) (*model.Booking, error) {
	if s.show == nil {
		return nil, errors.New("session not loaded")
	}
	if len(s.selected) == 0 {
		return nil, ErrEmptySelection
	}

	fresh, err := s.store.BookedSeats(ctx, s.show.ID)
	if err != nil {
		return nil, fmt.Errorf("refresh booked seats: %w", err)
	}
	if conflict := s.reconcile(fresh); conflict != nil {
		return nil, conflict
	}

	seats := s.Selected()
	b := &model.Booking{
		UserID:           userID,
		ShowID:           s.show.ID,
		SeatNumbers:      seats,
		TotalAmountCents: uint32(len(seats)) * s.show.PriceCents,
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, repository.ErrSeatConflict) {
			// Lost the race after our re-check. Refresh once more so
			// the caller still learns which seats went away.
			if fresh, rerr := s.store.BookedSeats(ctx, s.show.ID); rerr == nil {
				if conflict := s.reconcile(fresh); conflict != nil {
					return nil, conflict
				}
			}
			return nil, &ConflictError{}
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	// The new booking's seats are now taken as far as this session is
	// concerned.
	for _, n := range b.SeatNumbers {
		s.booked[n] = struct{}{}
	}
	s.selected = make(map[uint32]struct{})
	return b, nil
}

// reconcile installs a freshly read booked set. When it overlaps the
// selection, the overlap is removed from the selection and returned as
// a *ConflictError; otherwise reconcile returns nil.
func (s *Session) reconcile(fresh []uint32) *ConflictError {
	s.booked = toSet(fresh)
	var lost []uint32
	for n := range s.selected {
		if _, taken := s.booked[n]; taken {
			lost = append(lost, n)
		}
	}
	if len(lost) == 0 {
		return nil
	}
	for _, n := range lost {
		delete(s.selected, n)
	}
	sort.Slice(lost, func(i, j int) bool { return lost[i] < lost[j] })
	return &ConflictError{Seats: lost}
}

func toSet(nums []uint32) map[uint32]struct{} {
	set := make(map[uint32]struct{}, len(nums))
	for _, n := range nums {
		set[n] = struct{}{}
	}
	return set
}

func sortedKeys(set map[uint32]struct{}) []uint32 {
	out := make([]uint32, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
