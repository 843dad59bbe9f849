package repository

import (
	"context"
	"database/sql"

	"github.com/soundrail/distro/internal/model"
)

// TrackRepo provides CRUD operations for tracks.  Callers are
// expected to have verified release ownership through ReleaseRepo
// before mutating tracks; the helpers here re-check it with the
// owner id they are handed.
type TrackRepo struct{ DB *sql.DB }

func NewTrackRepo(db *sql.DB) *TrackRepo { return &TrackRepo{DB: db} }

const trackColumns = "id,release_id,title,isrc,duration_sec,position,created_at,updated_at"

func scanTrack(row interface{ Scan(...any) error }) (model.Track, error) {
	var (
		t    model.Track
		isrc sql.NullString
	)
	err := row.Scan(&t.ID, &t.ReleaseID, &t.Title, &isrc, &t.DurationSec, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Track{}, err
	}
	if isrc.Valid {
		v := isrc.String
		t.ISRC = &v
	}
	return t, nil
}

// Create inserts a track under a release the caller owns.
func (r *TrackRepo) Create(ctx context.Context, releaseID, callerID uint64, title string, isrc *string, durationSec uint32, position uint16) (model.Track, error) {
	if err := r.checkOwner(ctx, releaseID, callerID); err != nil {
		return model.Track{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tracks (release_id, title, isrc, duration_sec, position) VALUES (?,?,?,?,?)",
		releaseID, title, isrc, durationSec, position)
	if err != nil {
		return model.Track{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Track{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a track by id.
func (r *TrackRepo) GetByID(ctx context.Context, id uint64) (model.Track, error) {
	t, err := scanTrack(r.DB.QueryRowContext(ctx,
		"SELECT "+trackColumns+" FROM tracks WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Track{}, ErrTrackNotFound
	}
	return t, err
}

// ListByRelease returns a release's tracks in position order,
// after verifying the caller owns the release.  Reads get the same
// ownership gate as mutations; track listings are not public.
func (r *TrackRepo) ListByRelease(ctx context.Context, releaseID, callerID uint64) ([]model.Track, error) {
	if err := r.checkOwner(ctx, releaseID, callerID); err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+trackColumns+" FROM tracks WHERE release_id=? ORDER BY position, id", releaseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update modifies a track's mutable fields after verifying the
// caller owns the parent release.
func (r *TrackRepo) Update(ctx context.Context, id, callerID uint64, title string, isrc *string, durationSec uint32, position uint16) (model.Track, error) {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Track{}, err
	}
	if err := r.checkOwner(ctx, t.ReleaseID, callerID); err != nil {
		return model.Track{}, err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE tracks SET title=?, isrc=?, duration_sec=?, position=? WHERE id=?",
		title, isrc, durationSec, position, id)
	if err != nil {
		return model.Track{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a track the caller owns via its release.
func (r *TrackRepo) Delete(ctx context.Context, id, callerID uint64) error {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.checkOwner(ctx, t.ReleaseID, callerID); err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM tracks WHERE id=?", id)
	return err
}

func (r *TrackRepo) checkOwner(ctx context.Context, releaseID, callerID uint64) error {
	var ownerID uint64
	err := r.DB.QueryRowContext(ctx, "SELECT owner_id FROM releases WHERE id=?", releaseID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return ErrReleaseNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != callerID {
		return ErrForbidden
	}
	return nil
}
