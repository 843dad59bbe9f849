package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/soundrail/distro/internal/model"
)

// SplitShareRepo provides access to the split_shares table.  The
// write paths come in Tx variants because the invariant checks in
// the invitation lifecycle (100% ceiling, one pending invitation
// per email) must happen inside the same transaction as the
// mutation, behind a lock on the parent release row.
type SplitShareRepo struct{ DB *sql.DB }

func NewSplitShareRepo(db *sql.DB) *SplitShareRepo { return &SplitShareRepo{DB: db} }

const shareColumns = "id,release_id,invitee_email,display_name,percent,status,token,user_id,created_at,updated_at"

func scanShare(row interface{ Scan(...any) error }) (model.SplitShare, error) {
	var (
		s      model.SplitShare
		status string
		userID sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.ReleaseID, &s.InviteeEmail, &s.DisplayName, &s.Percent, &status, &s.Token, &userID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.SplitShare{}, err
	}
	st, ok := model.ParseShareStatus(status)
	if !ok {
		// unknown status in storage degrades to pending rather than
		// crashing reads; writes only ever produce the two known values
		st = model.SharePending
	}
	s.Status = st
	if userID.Valid {
		v := uint64(userID.Int64)
		s.UserID = &v
	}
	return s, nil
}

// CreateTx inserts a new pending share inside the caller's
// transaction and populates the generated id and timestamps.
func (r *SplitShareRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.SplitShare) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO split_shares (release_id, invitee_email, display_name, percent, status, token) VALUES (?,?,?,?,?,?)",
		s.ReleaseID, strings.ToLower(strings.TrimSpace(s.InviteeEmail)), s.DisplayName, s.Percent, string(model.SharePending), s.Token)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	got, err := scanShare(tx.QueryRowContext(ctx,
		"SELECT "+shareColumns+" FROM split_shares WHERE id=? LIMIT 1", s.ID))
	if err != nil {
		return err
	}
	*s = got
	return nil
}

// HasPendingTx reports whether a pending invitation already exists
// for the (release, invitee email) pair.  Must run inside the
// transaction that holds the release lock.
func (r *SplitShareRepo) HasPendingTx(ctx context.Context, tx *sql.Tx, releaseID uint64, email string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM split_shares WHERE release_id=? AND invitee_email=? AND status=? LIMIT 1",
		releaseID, strings.ToLower(strings.TrimSpace(email)), string(model.SharePending)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SumActivePercentTx sums the percentages of all pending and
// accepted shares on a release.  Must run inside the transaction
// that holds the release lock; the 100% ceiling check reads this
// total immediately before inserting.
func (r *SplitShareRepo) SumActivePercentTx(ctx context.Context, tx *sql.Tx, releaseID uint64) (float64, error) {
	var total float64
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(percent),0) FROM split_shares WHERE release_id=?",
		releaseID).Scan(&total)
	return total, err
}

// GetByID fetches a share by id.
func (r *SplitShareRepo) GetByID(ctx context.Context, id uint64) (model.SplitShare, error) {
	s, err := scanShare(r.DB.QueryRowContext(ctx,
		"SELECT "+shareColumns+" FROM split_shares WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.SplitShare{}, ErrShareNotFound
	}
	return s, err
}

// GetByTokenForUpdateTx fetches a share by its acceptance token
// and locks the row so the pending check and the accept update are
// one atomic unit.
func (r *SplitShareRepo) GetByTokenForUpdateTx(ctx context.Context, tx *sql.Tx, token string) (model.SplitShare, error) {
	s, err := scanShare(tx.QueryRowContext(ctx,
		"SELECT "+shareColumns+" FROM split_shares WHERE token=? LIMIT 1 FOR UPDATE", token))
	if err == sql.ErrNoRows {
		return model.SplitShare{}, ErrShareNotFound
	}
	return s, err
}

// AcceptTx transitions a pending share to accepted and stamps the
// linked user id in a single statement.  The status guard in the
// WHERE clause makes re-acceptance a no-op even if a caller races
// past the row lock.
func (r *SplitShareRepo) AcceptTx(ctx context.Context, tx *sql.Tx, shareID, userID uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE split_shares SET status=?, user_id=? WHERE id=? AND status=?",
		string(model.ShareAccepted), userID, shareID, string(model.SharePending))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByRelease returns all shares on a release, oldest first.
func (r *SplitShareRepo) ListByRelease(ctx context.Context, releaseID uint64) ([]model.SplitShare, error) {
	return r.list(ctx, "SELECT "+shareColumns+" FROM split_shares WHERE release_id=? ORDER BY id", releaseID)
}

// ListAcceptedByRelease returns only the accepted shares of a
// release; this is the resolver's input.
func (r *SplitShareRepo) ListAcceptedByRelease(ctx context.Context, releaseID uint64) ([]model.SplitShare, error) {
	return r.list(ctx,
		"SELECT "+shareColumns+" FROM split_shares WHERE release_id=? AND status=? ORDER BY id",
		releaseID, string(model.ShareAccepted))
}

// ListAcceptedForReleases returns the accepted shares across a set
// of releases in one query, keyed by release id, so the aggregator
// can resolve every candidate release without N+1 lookups.
func (r *SplitShareRepo) ListAcceptedForReleases(ctx context.Context, releaseIDs []uint64) (map[uint64][]model.SplitShare, error) {
	out := make(map[uint64][]model.SplitShare, len(releaseIDs))
	if len(releaseIDs) == 0 {
		return out, nil
	}
	query := "SELECT " + shareColumns + " FROM split_shares WHERE status=? AND release_id IN (?" +
		strings.Repeat(",?", len(releaseIDs)-1) + ") ORDER BY id"
	args := make([]any, 0, len(releaseIDs)+1)
	args = append(args, string(model.ShareAccepted))
	for _, id := range releaseIDs {
		args = append(args, id)
	}
	shares, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for _, s := range shares {
		out[s.ReleaseID] = append(out[s.ReleaseID], s)
	}
	return out, nil
}

// ListAcceptedByUser returns all accepted shares linked to a user,
// across every release they collaborate on.
func (r *SplitShareRepo) ListAcceptedByUser(ctx context.Context, userID uint64) ([]model.SplitShare, error) {
	return r.list(ctx,
		"SELECT "+shareColumns+" FROM split_shares WHERE user_id=? AND status=? ORDER BY release_id, id",
		userID, string(model.ShareAccepted))
}

func (r *SplitShareRepo) list(ctx context.Context, query string, args ...any) ([]model.SplitShare, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SplitShare
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
