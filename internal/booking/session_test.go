package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/tickethub/internal/model"
	"github.com/tickethub/tickethub/internal/repository"
)

// fakeStore is an in-memory Store for exercising the selection flow.
// The hooks let individual tests inject failures or race conditions.
type fakeStore struct {
	show    *model.Show
	booked  []uint32
	created []*model.Booking

	bookedErr    error
	createErr    error
	beforeCreate func(f *fakeStore)
}

func (f *fakeStore) GetShow(ctx context.Context, showID uint64) (*model.Show, error) {
	if f.show == nil || f.show.ID != showID {
		return nil, repository.ErrShowNotFound
	}
	return f.show, nil
}

func (f *fakeStore) BookedSeats(ctx context.Context, showID uint64) ([]uint32, error) {
	if f.bookedErr != nil {
		return nil, f.bookedErr
	}
	return append([]uint32(nil), f.booked...), nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	if f.beforeCreate != nil {
		f.beforeCreate(f)
	}
	if f.createErr != nil {
		return f.createErr
	}
	for _, n := range b.SeatNumbers {
		for _, taken := range f.booked {
			if n == taken {
				return repository.ErrSeatConflict
			}
		}
	}
	b.ID = uint64(len(f.created) + 1)
	b.Status = model.BookingPending
	f.booked = append(f.booked, b.SeatNumbers...)
	f.created = append(f.created, b)
	return nil
}

func newTestStore(totalSeats, priceCents uint32, booked ...uint32) *fakeStore {
	return &fakeStore{
		show:   &model.Show{ID: 1, Name: "Test Show", TotalSeats: totalSeats, PriceCents: priceCents},
		booked: booked,
	}
}

func loadedSession(t *testing.T, store *fakeStore) *Session {
	t.Helper()
	s := NewSession(store)
	require.NoError(t, s.Load(context.Background(), 1))
	return s
}

func TestLoadMissingShow(t *testing.T) {
	s := NewSession(newTestStore(50, 100))
	err := s.Load(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrShowNotFound)
}

func TestToggleSeat(t *testing.T) {
	s := loadedSession(t, newTestStore(50, 100, 3))

	assert.True(t, s.ToggleSeat(5))
	assert.Equal(t, []uint32{5}, s.Selected())

	// Toggling again deselects.
	assert.True(t, s.ToggleSeat(5))
	assert.Empty(t, s.Selected())

	// Booked and out-of-range seats are ignored.
	assert.False(t, s.ToggleSeat(3))
	assert.False(t, s.ToggleSeat(0))
	assert.False(t, s.ToggleSeat(51))
	assert.Empty(t, s.Selected())
}

func TestToggleBeforeLoad(t *testing.T) {
	s := NewSession(newTestStore(50, 100))
	assert.False(t, s.ToggleSeat(1))
}

func TestSubmitEmptySelection(t *testing.T) {
	s := loadedSession(t, newTestStore(50, 100))
	_, err := s.Submit(context.Background(), 7)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestSubmitCreatesPendingBooking(t *testing.T) {
	store := newTestStore(50, 10)
	s := loadedSession(t, store)
	s.ToggleSeat(6)
	s.ToggleSeat(5)

	b, err := s.Submit(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), b.UserID)
	assert.Equal(t, uint64(1), b.ShowID)
	assert.Equal(t, []uint32{5, 6}, b.SeatNumbers, "seat set is sorted")
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, uint32(20), b.TotalAmountCents, "2 seats at 10 cents")

	// Selection cleared, seats now locally booked.
	assert.Empty(t, s.Selected())
	assert.True(t, s.IsBooked(5))
	assert.True(t, s.IsBooked(6))
}

func TestSubmitConflictPrunesSelection(t *testing.T) {
	// Session loaded while seats 1 and 2 were free; someone else books
	// them before this user submits 2 and 3.
	store := newTestStore(50, 100)
	s := loadedSession(t, store)
	s.ToggleSeat(2)
	s.ToggleSeat(3)
	store.booked = []uint32{1, 2}

	_, err := s.Submit(context.Background(), 7)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	assert.Equal(t, []uint32{2}, conflict.Seats, "only the overlap is reported")
	assert.Equal(t, []uint32{3}, s.Selected(), "non-conflicting seats survive")
	assert.Equal(t, []uint32{1, 2}, s.Booked(), "booked set refreshed")
	assert.Empty(t, store.created, "nothing persisted")
}

func TestSubmitLosesInsertRace(t *testing.T) {
	// The advisory re-check passes, then the store rejects the insert
	// because a competing transaction committed first.
	store := newTestStore(50, 100)
	store.beforeCreate = func(f *fakeStore) {
		f.booked = []uint32{4}
		f.beforeCreate = nil
	}
	s := loadedSession(t, store)
	s.ToggleSeat(4)
	s.ToggleSeat(8)

	_, err := s.Submit(context.Background(), 7)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []uint32{4}, conflict.Seats)
	assert.Equal(t, []uint32{8}, s.Selected())
}

func TestSubmitStoreFailureKeepsSelection(t *testing.T) {
	store := newTestStore(50, 100)
	store.createErr = errors.New("connection reset")
	s := loadedSession(t, store)
	s.ToggleSeat(9)

	_, err := s.Submit(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptySelection)
	assert.Equal(t, []uint32{9}, s.Selected(), "selection untouched for retry")
}

func TestSubmitRefreshFailure(t *testing.T) {
	store := newTestStore(50, 100)
	s := loadedSession(t, store)
	s.ToggleSeat(9)
	store.bookedErr = errors.New("timeout")

	_, err := s.Submit(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, []uint32{9}, s.Selected())
	assert.Empty(t, store.created)
}
