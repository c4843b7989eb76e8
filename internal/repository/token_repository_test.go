package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsRevokedAndExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewTokenRepo(db)

	const q = `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1`

	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("live").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(7), time.Now().Add(time.Hour), nil))
	uid, err := repo.Validate(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)

	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("revoked").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(7), time.Now().Add(time.Hour), time.Now()))
	_, err = repo.Validate(context.Background(), "revoked")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	mock.ExpectQuery(regexp.QuoteMeta(q)).WithArgs("expired").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(7), time.Now().Add(-time.Hour), nil))
	_, err = repo.Validate(context.Background(), "expired")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeAllForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL`)).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, NewTokenRepo(db).RevokeAllForUser(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}
