package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundrail/distro/internal/model"
	"github.com/soundrail/distro/internal/repository"
)

const (
	shareByTokenSQL = "SELECT id,release_id,invitee_email,display_name,percent,status,token,user_id,created_at,updated_at FROM split_shares WHERE token=? LIMIT 1 FOR UPDATE"
	userByEmailSQL  = "SELECT id,email,password_hash,artist_name,role,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1"
	acceptShareSQL  = "UPDATE split_shares SET status=?, user_id=? WHERE id=? AND status=?"
)

func newAcceptService(t *testing.T) (*SplitInviteService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	svc := NewSplitInviteService(db,
		repository.NewReleaseRepo(db),
		repository.NewSplitShareRepo(db),
		repository.NewUserRepo(db),
		"http://localhost:3000/splits/accept?token=")
	return svc, mock
}

func shareRow(status string, userID any) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "release_id", "invitee_email", "display_name", "percent", "status", "token", "user_id", "created_at", "updated_at"}).
		AddRow(5, 7, "collab@example.com", "Collab", 25.0, status, "tok-abc", userID, now, now)
}

func userRow(id uint64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "artist_name", "role", "is_active", "created_at", "updated_at"}).
		AddRow(id, "collab@example.com", "hash", "Collab", model.RoleArtist, true, now, now)
}

func TestAcceptLinksUserAtomically(t *testing.T) {
	svc, mock := newAcceptService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(shareByTokenSQL).WithArgs("tok-abc").WillReturnRows(shareRow("pending", nil))
	mock.ExpectQuery(userByEmailSQL).WithArgs("collab@example.com").WillReturnRows(userRow(42))
	mock.ExpectExec(acceptShareSQL).
		WithArgs("accepted", uint64(42), uint64(5), "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	share, err := svc.Accept(context.Background(), "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, model.ShareAccepted, share.Status)
	require.NotNil(t, share.UserID)
	assert.Equal(t, uint64(42), *share.UserID)
	assert.Equal(t, 25.0, share.Percent, "percentage is untouched by acceptance")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptSecondTimeIsRejectedWithoutWrites(t *testing.T) {
	svc, mock := newAcceptService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(shareByTokenSQL).WithArgs("tok-abc").WillReturnRows(shareRow("accepted", 42))
	mock.ExpectRollback()

	_, err := svc.Accept(context.Background(), "tok-abc")
	assert.ErrorIs(t, err, ErrAlreadyAccepted)
	assert.NoError(t, mock.ExpectationsWereMet(), "a second accept must not issue any UPDATE")
}

func TestAcceptUnknownToken(t *testing.T) {
	svc, mock := newAcceptService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(shareByTokenSQL).WithArgs("tok-bad").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Accept(context.Background(), "tok-bad")
	assert.ErrorIs(t, err, repository.ErrShareNotFound)
	assert.NotErrorIs(t, err, ErrNoAccount, "broken token and missing account are distinct failures")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptWithoutAccount(t *testing.T) {
	svc, mock := newAcceptService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(shareByTokenSQL).WithArgs("tok-abc").WillReturnRows(shareRow("pending", nil))
	mock.ExpectQuery(userByEmailSQL).WithArgs("collab@example.com").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := svc.Accept(context.Background(), "tok-abc")
	assert.ErrorIs(t, err, ErrNoAccount)
	assert.NotErrorIs(t, err, repository.ErrShareNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptRacePastTheLock(t *testing.T) {
	// if another transaction flipped the status between the read and
	// the update, the status guard in the WHERE clause must leave
	// this accept with zero affected rows
	svc, mock := newAcceptService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(shareByTokenSQL).WithArgs("tok-abc").WillReturnRows(shareRow("pending", nil))
	mock.ExpectQuery(userByEmailSQL).WithArgs("collab@example.com").WillReturnRows(userRow(42))
	mock.ExpectExec(acceptShareSQL).
		WithArgs("accepted", uint64(42), uint64(5), "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.Accept(context.Background(), "tok-abc")
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
