package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/tickethub/internal/model"
)

func TestBookedSeatsCountsOnlyLiveBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The status filter is part of the query itself: cancelled rows are
	// never fetched, so their seats cannot enter the union.
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT seat_numbers FROM bookings WHERE show_id = ? AND status IN ('pending','confirmed')`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_numbers"}).
			AddRow("[2,1]").
			AddRow("[2,5]"))

	got, err := NewBookingRepo(db).BookedSeats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 5}, got, "union across rows is deduped and sorted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelFreesSeatsForSubsequentLoads(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewBookingRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT status FROM bookings WHERE id = ? AND user_id = ? FOR UPDATE`)).
		WithArgs(uint64(9), uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE bookings SET status = ? WHERE id = ?`)).
		WithArgs("cancelled", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status, changed, err := repo.UpdateStatus(context.Background(), 9, 7, model.BookingCancelled)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.BookingCancelled, status)

	// A later load no longer sees the cancelled booking's seats.
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT seat_numbers FROM bookings WHERE show_id = ? AND status IN ('pending','confirmed')`)).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_numbers"}))

	got, err := repo.BookedSeats(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
