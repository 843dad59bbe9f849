package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*TrackRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewTrackRepo(db), mock
}

func TestListByReleaseRejectsNonOwner(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("SELECT owner_id FROM releases WHERE id=?").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(2))

	_, err := repo.ListByRelease(context.Background(), 7, 1)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet(), "no track rows may be read for a caller who does not own the release")
}

func TestListByReleaseUnknownRelease(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectQuery("SELECT owner_id FROM releases WHERE id=?").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}))

	_, err := repo.ListByRelease(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrReleaseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByReleaseOwner(t *testing.T) {
	repo, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("SELECT owner_id FROM releases WHERE id=?").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(1))
	mock.ExpectQuery("SELECT " + trackColumns + " FROM tracks WHERE release_id=? ORDER BY position, id").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "release_id", "title", "isrc", "duration_sec", "position", "created_at", "updated_at"}).
			AddRow(11, 7, "Intro", nil, 92, 1, now, now).
			AddRow(12, 7, "Main Theme", "USABC2600001", 241, 2, now, now))

	tracks, err := repo.ListByRelease(context.Background(), 7, 1)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "Intro", tracks[0].Title)
	assert.Nil(t, tracks[0].ISRC)
	require.NotNil(t, tracks[1].ISRC)
	assert.Equal(t, "USABC2600001", *tracks[1].ISRC)
	assert.NoError(t, mock.ExpectationsWereMet())
}
