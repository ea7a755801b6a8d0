package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

func newMock(t *testing.T) (*SessionRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepo(db), mock
}

var sessionCols = []string{"id", "user_id", "role", "user_json", "token_hash", "expires_at", "revoked_at", "created_at"}

func TestSessionRepo_Create(t *testing.T) {
	repo, mock := newMock(t)
	exp := time.Now().Add(time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO portal_sessions")).
		WithArgs(int64(7), "CLIENT", []byte(`{"id":7}`), "hash", exp).
		WillReturnResult(sqlmock.NewResult(12, 1))

	id, err := repo.Create(context.Background(), &model.Session{
		UserID: 7, Role: "CLIENT", UserJSON: []byte(`{"id":7}`), TokenHash: "hash", ExpiresAt: exp,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_FindActive(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, role, user_json, token_hash, expires_at, revoked_at, created_at FROM portal_sessions")).
		WithArgs("hash").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow(1, 7, "ADMIN", []byte(`{"id":7}`), "hash", now.Add(time.Hour), nil, now))

	s, err := repo.FindActive(context.Background(), "hash")
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.UserID)
	assert.Equal(t, "ADMIN", s.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_FindActiveRejectsRevokedAndExpired(t *testing.T) {
	now := time.Now().UTC()
	cases := map[string][]driver.Value{
		"revoked": {1, 7, "CLIENT", []byte(`{}`), "hash", now.Add(time.Hour), now, now},
		"expired": {1, 7, "CLIENT", []byte(`{}`), "hash", now.Add(-time.Minute), nil, now},
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			repo, mock := newMock(t)
			mock.ExpectQuery("SELECT id").WithArgs("hash").
				WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(row...))
			_, err := repo.FindActive(context.Background(), "hash")
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestSessionRepo_FindActiveMissing(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery("SELECT id").WithArgs("nope").WillReturnRows(sqlmock.NewRows(sessionCols))
	_, err := repo.FindActive(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepo_Rotate(t *testing.T) {
	repo, mock := newMock(t)
	next := &model.Session{UserID: 7, Role: "CLIENT", UserJSON: []byte(`{}`), TokenHash: "new", ExpiresAt: time.Now().Add(time.Hour)}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE portal_sessions SET revoked_at=NOW() WHERE token_hash=?")).
		WithArgs("old").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO portal_sessions")).
		WithArgs(int64(7), "CLIENT", []byte(`{}`), "new", next.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Rotate(context.Background(), "old", next))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_RotateAlreadyRevoked(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE portal_sessions").WithArgs("old").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Rotate(context.Background(), "old", &model.Session{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_RevokeAllForUser(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE portal_sessions SET revoked_at=NOW() WHERE user_id=?")).
		WithArgs(int64(7)).WillReturnError(errors.New("db gone"))
	assert.Error(t, repo.RevokeAllForUser(context.Background(), 7))
}

func TestSessionRepo_UpdateSnapshot(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE portal_sessions SET role=?, user_json=?")).
		WithArgs("CLIENT", []byte(`{"id":7}`), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.UpdateSnapshot(context.Background(), 7, "CLIENT", []byte(`{"id":7}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
