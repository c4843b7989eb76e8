package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/tickethub/internal/config"
	"github.com/tickethub/tickethub/internal/repository"
	"github.com/tickethub/tickethub/internal/utils"
)

const validateTokenQuery = `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1`

func newAuthHandlerWithMock(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewAuthHandler(config.Config{}, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return h, mock
}

func TestLogoutRevokesSingleToken(t *testing.T) {
	h, mock := newAuthHandlerWithMock(t)
	hash := utils.HashRefreshRaw("raw-token")

	mock.ExpectQuery(regexp.QuoteMeta(validateTokenQuery)).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(7), time.Now().Add(time.Hour), nil))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL`)).
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := doRequest(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"raw-token"}`, nil, "")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutAllEndsEverySession(t *testing.T) {
	h, mock := newAuthHandlerWithMock(t)
	hash := utils.HashRefreshRaw("raw-token")

	mock.ExpectQuery(regexp.QuoteMeta(validateTokenQuery)).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(7), time.Now().Add(time.Hour), nil))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL`)).
		WithArgs(uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	c, rec := doRequest(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"raw-token","all":true}`, nil, "")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutUnknownToken(t *testing.T) {
	h, mock := newAuthHandlerWithMock(t)
	hash := utils.HashRefreshRaw("stale")

	mock.ExpectQuery(regexp.QuoteMeta(validateTokenQuery)).WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}))

	c, rec := doRequest(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"stale"}`, nil, "")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
