package repository

import (
	"context"
	"database/sql"

	"github.com/soundrail/distro/internal/model"
)

// PayoutRepo provides access to the payouts table.
type PayoutRepo struct{ DB *sql.DB }

func NewPayoutRepo(db *sql.DB) *PayoutRepo { return &PayoutRepo{DB: db} }

const payoutColumns = "id,user_id,reference,amount,method,detail,status,created_at,updated_at"

func scanPayout(row interface{ Scan(...any) error }) (model.Payout, error) {
	var (
		p      model.Payout
		method string
		status string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Reference, &p.Amount, &method, &p.Detail, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Payout{}, err
	}
	if m, ok := model.ParsePayoutMethod(method); ok {
		p.Method = m
	}
	if s, ok := model.ParsePayoutStatus(status); ok {
		p.Status = s
	}
	return p, nil
}

// Create inserts a payout request in the requested state.
func (r *PayoutRepo) Create(ctx context.Context, userID uint64, reference string, amount float64, method model.PayoutMethod, detail string) (model.Payout, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO payouts (user_id, reference, amount, method, detail, status) VALUES (?,?,?,?,?,?)",
		userID, reference, amount, string(method), detail, string(model.PayoutRequested))
	if err != nil {
		return model.Payout{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Payout{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a payout by id.
func (r *PayoutRepo) GetByID(ctx context.Context, id uint64) (model.Payout, error) {
	p, err := scanPayout(r.DB.QueryRowContext(ctx,
		"SELECT "+payoutColumns+" FROM payouts WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.Payout{}, ErrPayoutNotFound
	}
	return p, err
}

// ListByUser returns a user's payouts, newest first.
func (r *PayoutRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Payout, error) {
	return r.list(ctx, "SELECT "+payoutColumns+" FROM payouts WHERE user_id=? ORDER BY id DESC", userID)
}

// ListByStatus returns payouts in a given state for the admin
// review queue, oldest first.
func (r *PayoutRepo) ListByStatus(ctx context.Context, status model.PayoutStatus) ([]model.Payout, error) {
	return r.list(ctx, "SELECT "+payoutColumns+" FROM payouts WHERE status=? ORDER BY id", string(status))
}

// SumOutstanding sums a user's requested and paid payouts; the
// available balance is total attributed earnings minus this.
// Rejected payouts release their amount back to the balance.
func (r *PayoutRepo) SumOutstanding(ctx context.Context, userID uint64) (float64, error) {
	var total float64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount),0) FROM payouts WHERE user_id=? AND status IN (?,?)",
		userID, string(model.PayoutRequested), string(model.PayoutPaid)).Scan(&total)
	return total, err
}

// UpdateStatus moves a requested payout to paid or rejected.
// Payouts that already left the requested state conflict.
func (r *PayoutRepo) UpdateStatus(ctx context.Context, id uint64, status model.PayoutStatus) (model.Payout, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE payouts SET status=? WHERE id=? AND status=?",
		string(status), id, string(model.PayoutRequested))
	if err != nil {
		return model.Payout{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Payout{}, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Payout{}, err
		}
		return model.Payout{}, ErrConflict
	}
	return r.GetByID(ctx, id)
}

func (r *PayoutRepo) list(ctx context.Context, query string, args ...any) ([]model.Payout, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
