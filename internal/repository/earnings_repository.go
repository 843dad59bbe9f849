package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/soundrail/distro/internal/royalty"
)

// EarningsRepo reads and ingests stream-earnings rows.  The
// attribution engine never mutates them; it only fetches the rows
// joined to a candidate release set and scales them in memory.
type EarningsRepo struct{ DB *sql.DB }

func NewEarningsRepo(db *sql.DB) *EarningsRepo { return &EarningsRepo{DB: db} }

// ListForReleases fetches every earnings row whose catalogue
// number matches one of the given releases.  The join normalizes
// both sides with UPPER(TRIM(...)) because DSP reports are sloppy
// about catalogue formatting; rows matching no release simply
// never come back, which is the documented data-quality behavior.
func (r *EarningsRepo) ListForReleases(ctx context.Context, releaseIDs []uint64) ([]royalty.EarningRow, error) {
	if len(releaseIDs) == 0 {
		return nil, nil
	}
	query := `SELECT rel.id, rel.title, e.platform, e.territory, e.reporting_period, e.activity_period, e.streams, e.royalty, e.sale_type
FROM stream_earnings e
JOIN releases rel ON UPPER(TRIM(rel.catalogue_no)) = UPPER(TRIM(e.catalogue_no))
WHERE rel.id IN (?` + strings.Repeat(",?", len(releaseIDs)-1) + `)
ORDER BY e.reporting_period DESC, e.id`
	args := make([]any, len(releaseIDs))
	for i, id := range releaseIDs {
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []royalty.EarningRow
	for rows.Next() {
		var e royalty.EarningRow
		if err := rows.Scan(&e.ReleaseID, &e.ReleaseTitle, &e.Platform, &e.Territory, &e.ReportingPeriod, &e.ActivityPeriod, &e.Streams, &e.Royalty, &e.SaleType); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ImportRow is one parsed line of an admin royalty-report CSV.
type ImportRow struct {
	CatalogueNo     string
	Platform        string
	Territory       string
	ReportingPeriod string
	ActivityPeriod  string
	Streams         int64
	Royalty         float64
	SaleType        string
}

// InsertBatch stores imported earnings rows in one transaction so
// a failed import never leaves a half-written report behind.  The
// unique key on (catalogue_no, platform, territory,
// reporting_period, activity_period, sale_type) makes re-importing
// a corrected report an update rather than a duplicate.
func (r *EarningsRepo) InsertBatch(ctx context.Context, batch []ImportRow) error {
	if len(batch) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO stream_earnings (catalogue_no, platform, territory, reporting_period, activity_period, streams, royalty, sale_type) VALUES (?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE streams = VALUES(streams), royalty = VALUES(royalty)`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, row := range batch {
		if _, err := stmt.ExecContext(ctx,
			strings.TrimSpace(row.CatalogueNo), row.Platform, row.Territory,
			row.ReportingPeriod, row.ActivityPeriod, row.Streams, row.Royalty, row.SaleType); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
