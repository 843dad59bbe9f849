package repository

import (
	"context"
	"database/sql"

	"github.com/soundrail/distro/internal/model"
)

// TicketRepo provides access to support tickets and their message
// threads.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

const ticketColumns = "id,user_id,reference,subject,status,created_at,updated_at"

func scanTicket(row interface{ Scan(...any) error }) (model.SupportTicket, error) {
	var (
		t      model.SupportTicket
		status string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Reference, &t.Subject, &status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.SupportTicket{}, err
	}
	if s, ok := model.ParseTicketStatus(status); ok {
		t.Status = s
	}
	return t, nil
}

// Create opens a ticket with its first message in one transaction.
func (r *TicketRepo) Create(ctx context.Context, userID uint64, reference, subject, body string) (model.SupportTicket, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.SupportTicket{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO support_tickets (user_id, reference, subject, status) VALUES (?,?,?,?)",
		userID, reference, subject, string(model.TicketOpen))
	if err != nil {
		return model.SupportTicket{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.SupportTicket{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ticket_messages (ticket_id, author_id, body) VALUES (?,?,?)",
		id, userID, body); err != nil {
		return model.SupportTicket{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.SupportTicket{}, err
	}
	committed = true
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a ticket by id.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.SupportTicket, error) {
	t, err := scanTicket(r.DB.QueryRowContext(ctx,
		"SELECT "+ticketColumns+" FROM support_tickets WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return model.SupportTicket{}, ErrTicketNotFound
	}
	return t, err
}

// ListByUser returns a user's tickets, newest first.
func (r *TicketRepo) ListByUser(ctx context.Context, userID uint64) ([]model.SupportTicket, error) {
	return r.list(ctx, "SELECT "+ticketColumns+" FROM support_tickets WHERE user_id=? ORDER BY id DESC", userID)
}

// ListAll returns every ticket, newest first, for the admin queue.
func (r *TicketRepo) ListAll(ctx context.Context) ([]model.SupportTicket, error) {
	return r.list(ctx, "SELECT "+ticketColumns+" FROM support_tickets ORDER BY id DESC")
}

// AddMessage appends a message to a ticket's thread.  Closed
// tickets conflict; reopening requires an admin status change.
func (r *TicketRepo) AddMessage(ctx context.Context, ticketID, authorID uint64, body string) (model.TicketMessage, error) {
	t, err := r.GetByID(ctx, ticketID)
	if err != nil {
		return model.TicketMessage{}, err
	}
	if t.Status == model.TicketClosed {
		return model.TicketMessage{}, ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO ticket_messages (ticket_id, author_id, body) VALUES (?,?,?)",
		ticketID, authorID, body)
	if err != nil {
		return model.TicketMessage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TicketMessage{}, err
	}
	var m model.TicketMessage
	err = r.DB.QueryRowContext(ctx,
		"SELECT id,ticket_id,author_id,body,created_at FROM ticket_messages WHERE id=? LIMIT 1",
		id).Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.Body, &m.CreatedAt)
	return m, err
}

// ListMessages returns a ticket's thread in chronological order.
func (r *TicketRepo) ListMessages(ctx context.Context, ticketID uint64) ([]model.TicketMessage, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,ticket_id,author_id,body,created_at FROM ticket_messages WHERE ticket_id=? ORDER BY id", ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketMessage
	for rows.Next() {
		var m model.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateStatus sets a ticket's status.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id uint64, status model.TicketStatus) (model.SupportTicket, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE support_tickets SET status=? WHERE id=?", string(status), id)
	if err != nil {
		return model.SupportTicket{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// either no such ticket or already in that state
		return r.GetByID(ctx, id)
	}
	return r.GetByID(ctx, id)
}

func (r *TicketRepo) list(ctx context.Context, query string, args ...any) ([]model.SupportTicket, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SupportTicket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
