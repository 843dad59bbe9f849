package handler

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrail/distro/internal/model"
	"github.com/soundrail/distro/internal/queue"
	"github.com/soundrail/distro/internal/repository"
	"github.com/soundrail/distro/internal/service"
)

// AdminHandler covers the back-office endpoints: account
// management, catalogue oversight, payout processing, ticket
// triage and royalty-report ingestion.  Everything here sits
// behind the ADMIN role middleware.
type AdminHandler struct {
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	Releases *repository.ReleaseRepo
	Payouts  *repository.PayoutRepo
	Tickets  *repository.TicketRepo
	Earnings *repository.EarningsRepo
}

func NewAdminHandler(users *repository.UserRepo, tokens *repository.TokenRepo, releases *repository.ReleaseRepo, payouts *repository.PayoutRepo, tickets *repository.TicketRepo, earnings *repository.EarningsRepo) *AdminHandler {
	if users == nil || tokens == nil || releases == nil || payouts == nil || tickets == nil || earnings == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Users: users, Tokens: tokens, Releases: releases, Payouts: payouts, Tickets: tickets, Earnings: earnings}
}

type adminUserResp struct {
	ID         uint64 `json:"id"`
	Email      string `json:"email"`
	ArtistName string `json:"artist_name"`
	Role       string `json:"role"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]adminUserResp, 0, len(users))
	for _, u := range users {
		out = append(out, adminUserResp{
			ID:         u.ID,
			Email:      u.Email,
			ArtistName: u.ArtistName,
			Role:       u.Role,
			IsActive:   u.IsActive,
			CreatedAt:  u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// SetUserActive handles PATCH /v1/admin/users/:id/active.
// Deactivation also revokes every refresh token the account holds,
// so the lockout takes effect as soon as the access token expires.
func (h *AdminHandler) SetUserActive(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Users.SetActive(ctx, id, req.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return repoError(c, err)
	}
	if !req.Active {
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			return repoError(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "active": req.Active})
}

// ListReleases handles GET /v1/admin/releases.
func (h *AdminHandler) ListReleases(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	releases, err := h.Releases.ListAll(ctx)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]releaseResp, 0, len(releases))
	for _, r := range releases {
		out = append(out, toReleaseResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"releases": out})
}

// ListPayouts handles GET /v1/admin/payouts?status=requested.
func (h *AdminHandler) ListPayouts(c echo.Context) error {
	status, ok := model.ParsePayoutStatus(c.QueryParam("status"))
	if !ok {
		status = model.PayoutRequested
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payouts, err := h.Payouts.ListByStatus(ctx, status)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]payoutResp, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, toPayoutResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"payouts": out})
}

// UpdatePayout handles PATCH /v1/admin/payouts/:id: marks a
// requested payout paid or rejected and raises a notification for
// the artist.  A payout that already left the requested state
// cannot change again.
func (h *AdminHandler) UpdatePayout(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payout id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status, ok := model.ParsePayoutStatus(req.Status)
	if !ok || status == model.PayoutRequested {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be paid or rejected", "field": "status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	payout, err := h.Payouts.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "payout already processed"})
		}
		return repoError(c, err)
	}

	notified := false
	if user, err := h.Users.GetByID(ctx, payout.UserID); err == nil {
		event := queue.NotificationEvent{
			Kind:         queue.KindPayoutUpdated,
			Recipient:    user.Email,
			PayoutRef:    payout.Reference,
			PayoutStatus: string(payout.Status),
			Amount:       payout.Amount,
			RaisedAt:     time.Now().UTC().Format(time.RFC3339),
		}
		notified = service.PublishNotification(ctx, event) == nil
	}
	return c.JSON(http.StatusOK, echo.Map{"payout": toPayoutResp(payout), "notified": notified})
}

// ListTickets handles GET /v1/admin/tickets.
func (h *AdminHandler) ListTickets(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, err := h.Tickets.ListAll(ctx)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]ticketResp, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": out})
}

// UpdateTicket handles PATCH /v1/admin/tickets/:id.
func (h *AdminHandler) UpdateTicket(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status, ok := model.ParseTicketStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket status", "field": "status"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ticket, err := h.Tickets.UpdateStatus(ctx, id, status)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": toTicketResp(ticket)})
}

// csvColumns is the expected header of a royalty report upload, in
// order.
var csvColumns = []string{"catalogue_no", "platform", "territory", "reporting_period", "activity_period", "streams", "royalty", "sale_type"}

// ImportEarnings handles POST /v1/admin/earnings/import: a
// multipart CSV upload of a DSP royalty report.  Malformed lines
// are counted and skipped; the valid lines are stored in a single
// transaction.  Rows whose catalogue number matches no release are
// stored anyway and surface once the release is created.
func (h *AdminHandler) ImportEarnings(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "csv file required under field 'file'"})
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open upload"})
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty or unreadable csv"})
	}
	if !matchHeader(header) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":    "unexpected csv header",
			"expected": strings.Join(csvColumns, ","),
		})
	}

	var (
		batch   []repository.ImportRow
		skipped int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		row, ok := parseImportRecord(record)
		if !ok {
			skipped++
			continue
		}
		batch = append(batch, row)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	if err := h.Earnings.InsertBatch(ctx, batch); err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"imported": len(batch), "skipped": skipped})
}

func matchHeader(header []string) bool {
	if len(header) != len(csvColumns) {
		return false
	}
	for i, col := range header {
		if strings.ToLower(strings.TrimSpace(col)) != csvColumns[i] {
			return false
		}
	}
	return true
}

func parseImportRecord(record []string) (repository.ImportRow, bool) {
	if len(record) != len(csvColumns) {
		return repository.ImportRow{}, false
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	if record[0] == "" || record[1] == "" {
		return repository.ImportRow{}, false
	}
	streams, err := strconv.ParseInt(record[5], 10, 64)
	if err != nil || streams < 0 {
		return repository.ImportRow{}, false
	}
	royalty, err := strconv.ParseFloat(record[6], 64)
	if err != nil {
		return repository.ImportRow{}, false
	}
	return repository.ImportRow{
		CatalogueNo:     record[0],
		Platform:        record[1],
		Territory:       record[2],
		ReportingPeriod: record[3],
		ActivityPeriod:  record[4],
		Streams:         streams,
		Royalty:         royalty,
		SaleType:        record[7],
	}, true
}
