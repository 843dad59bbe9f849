package model

import "time"

// TicketStatus is the closed set of support ticket states.
// Transitions run open → in_progress → closed; admins may also
// close an open ticket directly.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// ParseTicketStatus validates a raw status string.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch TicketStatus(s) {
	case TicketOpen, TicketInProgress, TicketClosed:
		return TicketStatus(s), true
	}
	return "", false
}

// SupportTicket is a help request filed by a user.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who opened the ticket.
//  Reference – short code (UUID) quoted in support emails.
//  Subject   – ticket subject line.
//  Status    – open, in_progress or closed.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type SupportTicket struct {
	ID        uint64       // support_tickets.id
	UserID    uint64       // support_tickets.user_id
	Reference string       // support_tickets.reference
	Subject   string       // support_tickets.subject
	Status    TicketStatus // support_tickets.status
	CreatedAt time.Time    // support_tickets.created_at
	UpdatedAt time.Time    // support_tickets.updated_at
}

// TicketMessage is one message in a ticket's thread, from either
// the reporter or an admin.
type TicketMessage struct {
	ID        uint64    // ticket_messages.id
	TicketID  uint64    // ticket_messages.ticket_id
	AuthorID  uint64    // ticket_messages.author_id
	Body      string    // ticket_messages.body
	CreatedAt time.Time // ticket_messages.created_at
}
