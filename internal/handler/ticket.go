package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/soundrail/distro/internal/model"
	"github.com/soundrail/distro/internal/repository"
)

// TicketHandler covers the artist-facing support ticket endpoints.
type TicketHandler struct {
	Tickets *repository.TicketRepo
}

func NewTicketHandler(tickets *repository.TicketRepo) *TicketHandler {
	if tickets == nil {
		panic("nil ticket repo passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: tickets}
}

type ticketCreateReq struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type ticketReplyReq struct {
	Body string `json:"body"`
}

type ticketResp struct {
	ID        uint64 `json:"id"`
	Reference string `json:"reference"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ticketMessageResp struct {
	ID        uint64 `json:"id"`
	AuthorID  uint64 `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

func toTicketResp(t model.SupportTicket) ticketResp {
	return ticketResp{
		ID:        t.ID,
		Reference: t.Reference,
		Subject:   t.Subject,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toTicketMessageResp(m model.TicketMessage) ticketMessageResp {
	return ticketMessageResp{
		ID:        m.ID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/tickets: a new ticket with its first
// message, created atomically.
func (h *TicketHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req ticketCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	if subject == "" || body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject and body are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticket, err := h.Tickets.Create(ctx, uid, uuid.NewString(), subject, body)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"ticket": toTicketResp(ticket)})
}

// List handles GET /v1/tickets.
func (h *TicketHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListByUser(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]ticketResp, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": out})
}

// Get handles GET /v1/tickets/:id with the full message thread.
// Admins may read any ticket; artists only their own.
func (h *TicketHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	role, _ := c.Get("role").(string)
	if ticket.UserID != uid && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	messages, err := h.Tickets.ListMessages(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]ticketMessageResp, 0, len(messages))
	for _, m := range messages {
		out = append(out, toTicketMessageResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": toTicketResp(ticket), "messages": out})
}

// Reply handles POST /v1/tickets/:id/messages.  Closed tickets
// reject new messages with 409.
func (h *TicketHandler) Reply(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req ticketReplyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticket, err := h.Tickets.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	role, _ := c.Get("role").(string)
	if ticket.UserID != uid && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	msg, err := h.Tickets.AddMessage(ctx, id, uid, strings.TrimSpace(req.Body))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": toTicketMessageResp(msg)})
}
