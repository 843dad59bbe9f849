package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrail/distro/internal/model"
	"github.com/soundrail/distro/internal/repository"
	"github.com/soundrail/distro/internal/service"
)

// SplitShareHandler exposes the split-share invitation lifecycle.
// The failure reasons matter here: the front end branches on which
// precondition rejected the request (duplicate pending vs. ceiling
// on create; broken link vs. missing account on accept), so every
// distinct error gets its own reason string and the invariant
// rejections embed the current aggregate state.
type SplitShareHandler struct {
	Users   *repository.UserRepo
	Shares  *repository.SplitShareRepo
	Invites *service.SplitInviteService
}

func NewSplitShareHandler(users *repository.UserRepo, shares *repository.SplitShareRepo, invites *service.SplitInviteService) *SplitShareHandler {
	if users == nil || shares == nil || invites == nil {
		panic("nil dependency passed to NewSplitShareHandler")
	}
	return &SplitShareHandler{Users: users, Shares: shares, Invites: invites}
}

type createShareReq struct {
	Email       string  `json:"email"`
	Percent     float64 `json:"percent"`
	DisplayName string  `json:"display_name"`
}

type acceptShareReq struct {
	Token string `json:"token"`
}

type shareResp struct {
	ID          uint64  `json:"id"`
	ReleaseID   uint64  `json:"release_id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name"`
	Percent     float64 `json:"percent"`
	Status      string  `json:"status"`
	UserID      *uint64 `json:"user_id,omitempty"`
}

func toShareResp(s model.SplitShare) shareResp {
	return shareResp{
		ID:          s.ID,
		ReleaseID:   s.ReleaseID,
		Email:       s.InviteeEmail,
		DisplayName: s.DisplayName,
		Percent:     s.Percent,
		Status:      string(s.Status),
		UserID:      s.UserID,
	}
}

// Create handles POST /v1/releases/:id/splits.  On success the
// response carries the invitation plus a "notified" flag; a failed
// notification does not fail the create.
func (h *SplitShareHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	releaseID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release id"})
	}
	var req createShareReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	inviter, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	share, notified, err := h.Invites.Create(ctx, inviter, releaseID, req.Email, req.Percent, req.DisplayName)
	if err != nil {
		var ceiling *service.CeilingError
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email", "field": "email"})
		case errors.Is(err, service.ErrInvalidPercent):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "percent must be in (0, 100]", "field": "percent"})
		case errors.Is(err, service.ErrDuplicatePending):
			return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate pending invitation for this email"})
		case errors.As(err, &ceiling):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error":         ceiling.Error(),
				"current_total": ceiling.Current,
				"requested":     ceiling.Requested,
			})
		}
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"invitation": toShareResp(share),
		"token":      share.Token,
		"notified":   notified,
	})
}

// List handles GET /v1/releases/:id/splits for the release owner.
func (h *SplitShareHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	releaseID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	release, err := h.Invites.Releases.GetByID(ctx, releaseID)
	if err != nil {
		return repoError(c, err)
	}
	if release.OwnerID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	shares, err := h.Shares.ListByRelease(ctx, releaseID)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]shareResp, 0, len(shares))
	var total float64
	for _, s := range shares {
		out = append(out, toShareResp(s))
		total += s.Percent
	}
	return c.JSON(http.StatusOK, echo.Map{"splits": out, "total_percent": total})
}

// Accept handles POST /v1/splits/accept.  The two failure modes
// the UI branches on stay distinct: 404 means the link is broken
// or already used, 409 with reason "no_account" means the invitee
// must register first.
func (h *SplitShareHandler) Accept(c echo.Context) error {
	var req acceptShareReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	share, err := h.Invites.Accept(ctx, strings.TrimSpace(req.Token))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShareNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or unknown invitation token", "reason": "invalid_token"})
		case errors.Is(err, service.ErrAlreadyAccepted):
			return c.JSON(http.StatusConflict, echo.Map{"error": "invitation already accepted", "reason": "already_accepted"})
		case errors.Is(err, service.ErrNoAccount):
			return c.JSON(http.StatusConflict, echo.Map{"error": "no account exists for the invited email; register first", "reason": "no_account"})
		}
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invitation": toShareResp(share)})
}

// Resend handles POST /v1/splits/:id/resend.  Valid only while the
// invitation is pending; the token and state are unchanged.
func (h *SplitShareHandler) Resend(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	shareID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invitation id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	inviter, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	share, notified, err := h.Invites.Resend(ctx, inviter, shareID)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyAccepted) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "invitation already accepted", "reason": "already_accepted"})
		}
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invitation": toShareResp(share), "notified": notified})
}

// Mine handles GET /v1/splits/mine: the accepted shares linked to
// the calling user across all releases.
func (h *SplitShareHandler) Mine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	shares, err := h.Shares.ListAcceptedByUser(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]shareResp, 0, len(shares))
	for _, s := range shares {
		out = append(out, toShareResp(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"splits": out})
}
