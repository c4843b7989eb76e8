package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tickethub/tickethub/internal/model"
)

// ShowRepo manages persistence for shows. Shows are immutable once
// created; the only mutation is deletion, which cascades to bookings.
type ShowRepo struct {
	db *sql.DB
}

func NewShowRepo(db *sql.DB) *ShowRepo { return &ShowRepo{db: db} }

const showColumns = "id, name, description, date, venue, total_seats, price_cents, created_at"

func scanShow(row interface {
	Scan(dest ...interface{}) error
}, s *model.Show) error {
	return row.Scan(&s.ID, &s.Name, &s.Description, &s.Date, &s.Venue,
		&s.TotalSeats, &s.PriceCents, &s.CreatedAt)
}

// Create inserts a new show and populates the generated ID and
// creation timestamp on the given struct. The caller is responsible
// for validating TotalSeats > 0 and a non-negative price.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	const q = `INSERT INTO shows (name, description, date, venue, total_seats, price_cents)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Name, s.Description, s.Date.UTC(), s.Venue, s.TotalSeats, s.PriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Read the row back to pick up DB-default fields.
	return scanShow(r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE id = ?`, s.ID), s)
}

// GetByID retrieves a show by its ID, or ErrShowNotFound.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	var s model.Show
	err := scanShow(r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE id = ?`, id), &s)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns shows ordered by date ascending. With upcomingOnly set
// it restricts to shows whose date lies in the future. An empty
// result is a non-nil empty slice.
func (r *ShowRepo) List(ctx context.Context, upcomingOnly bool) ([]model.Show, error) {
	q := `SELECT ` + showColumns + ` FROM shows`
	if upcomingOnly {
		q += ` WHERE date >= UTC_TIMESTAMP()`
	}
	q += ` ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Show, 0)
	for rows.Next() {
		var s model.Show
		if err := scanShow(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a show together with all of its bookings, live or
// cancelled, in one transaction so that no orphaned bookings survive
// a partial failure. Returns ErrShowNotFound when the show is absent.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) (err error) {
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
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrShowNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM bookings WHERE show_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id)
	return err
}
