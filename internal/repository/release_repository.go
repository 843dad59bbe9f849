package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/soundrail/distro/internal/model"
)

// ReleaseRepo provides CRUD operations for releases.  Ownership is
// immutable after creation: nothing in this repository can change
// owner_id, and the attribution engine relies on that.
type ReleaseRepo struct{ DB *sql.DB }

func NewReleaseRepo(db *sql.DB) *ReleaseRepo { return &ReleaseRepo{DB: db} }

const releaseColumns = "id,owner_id,title,catalogue_no,upc,release_date,status,created_at,updated_at"

func scanRelease(row interface{ Scan(...any) error }) (model.Release, error) {
	var (
		rel         model.Release
		upc         sql.NullString
		releaseDate sql.NullTime
	)
	err := row.Scan(&rel.ID, &rel.OwnerID, &rel.Title, &rel.CatalogueNo, &upc, &releaseDate, &rel.Status, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		return model.Release{}, err
	}
	if upc.Valid {
		v := upc.String
		rel.UPC = &v
	}
	if releaseDate.Valid {
		t := releaseDate.Time
		rel.ReleaseDate = &t
	}
	return rel, nil
}

// Create inserts a release owned by ownerID and returns it with
// generated fields populated.  The catalogue number is stored
// trimmed; the earnings join normalizes the rest.
func (r *ReleaseRepo) Create(ctx context.Context, ownerID uint64, title, catalogueNo string, upc *string, releaseDate *string) (model.Release, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO releases (owner_id, title, catalogue_no, upc, release_date, status) VALUES (?,?,?,?,?,?)",
		ownerID, title, strings.TrimSpace(catalogueNo), upc, releaseDate, model.ReleaseDraft)
	if err != nil {
		return model.Release{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Release{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a release by id.
func (r *ReleaseRepo) GetByID(ctx context.Context, id uint64) (model.Release, error) {
	rel, err := scanRelease(r.DB.QueryRowContext(ctx,
		"SELECT "+releaseColumns+" FROM releases WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Release{}, ErrReleaseNotFound
	}
	return rel, err
}

// GetForUpdateTx locks the release row for the duration of the
// transaction.  The split-share create and accept flows take this
// lock before checking their invariants so that concurrent
// check-then-insert sequences on the same release serialize.
func (r *ReleaseRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Release, error) {
	rel, err := scanRelease(tx.QueryRowContext(ctx,
		"SELECT "+releaseColumns+" FROM releases WHERE id=? LIMIT 1 FOR UPDATE", id))
	if err == sql.ErrNoRows {
		return model.Release{}, ErrReleaseNotFound
	}
	return rel, err
}

// ListByOwner returns all releases created by a user, newest first.
func (r *ReleaseRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Release, error) {
	return r.list(ctx, "SELECT "+releaseColumns+" FROM releases WHERE owner_id=? ORDER BY id DESC", ownerID)
}

// ListAll returns every release, newest first, for the admin surface.
func (r *ReleaseRepo) ListAll(ctx context.Context) ([]model.Release, error) {
	return r.list(ctx, "SELECT "+releaseColumns+" FROM releases ORDER BY id DESC")
}

// ListByIDs fetches a set of releases in one query.  Missing ids
// are silently absent from the result.
func (r *ReleaseRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Release, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := "SELECT " + releaseColumns + " FROM releases WHERE id IN (?" +
		strings.Repeat(",?", len(ids)-1) + ")"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.list(ctx, query, args...)
}

// ListOwnedIDs returns the ids of all releases owned by a user.
func (r *ReleaseRepo) ListOwnedIDs(ctx context.Context, ownerID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id FROM releases WHERE owner_id=?", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Update modifies the mutable fields of a release.  ErrForbidden
// is returned when the caller is not the owner; the owner column
// itself is never written.
func (r *ReleaseRepo) Update(ctx context.Context, id, callerID uint64, title string, upc *string, releaseDate *string, status string) (model.Release, error) {
	rel, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Release{}, err
	}
	if rel.OwnerID != callerID {
		return model.Release{}, ErrForbidden
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE releases SET title=?, upc=?, release_date=?, status=? WHERE id=?",
		title, upc, releaseDate, status, id)
	if err != nil {
		return model.Release{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a release that has no split shares.  Releases
// with shares (pending or accepted) conflict because deleting them
// would orphan collaborators' claims.
func (r *ReleaseRepo) Delete(ctx context.Context, id, callerID uint64) error {
	rel, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if rel.OwnerID != callerID {
		return ErrForbidden
	}
	var shares int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM split_shares WHERE release_id=?", id).Scan(&shares); err != nil {
		return err
	}
	if shares > 0 {
		return ErrConflict
	}
	_, err = r.DB.ExecContext(ctx, "DELETE FROM releases WHERE id=?", id)
	return err
}

func (r *ReleaseRepo) list(ctx context.Context, query string, args ...any) ([]model.Release, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Release
	for rows.Next() {
		rel, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, rows.Err()
}
