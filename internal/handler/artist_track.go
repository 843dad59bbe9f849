package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrail/distro/internal/model"
	"github.com/soundrail/distro/internal/repository"
)

// TrackHandler exposes track CRUD under a release the caller owns.
type TrackHandler struct {
	Tracks *repository.TrackRepo
}

func NewTrackHandler(tracks *repository.TrackRepo) *TrackHandler {
	if tracks == nil {
		panic("nil repository passed to NewTrackHandler")
	}
	return &TrackHandler{Tracks: tracks}
}

type trackReq struct {
	Title       string  `json:"title"`
	ISRC        *string `json:"isrc"`
	DurationSec uint32  `json:"duration_sec"`
	Position    uint16  `json:"position"`
}

type trackResp struct {
	ID          uint64  `json:"id"`
	ReleaseID   uint64  `json:"release_id"`
	Title       string  `json:"title"`
	ISRC        *string `json:"isrc,omitempty"`
	DurationSec uint32  `json:"duration_sec"`
	Position    uint16  `json:"position"`
}

func toTrackResp(t model.Track) trackResp {
	return trackResp{ID: t.ID, ReleaseID: t.ReleaseID, Title: t.Title, ISRC: t.ISRC, DurationSec: t.DurationSec, Position: t.Position}
}

// Create handles POST /v1/releases/:id/tracks.
func (h *TrackHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	releaseID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release id"})
	}
	var req trackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	if req.Position == 0 {
		req.Position = 1
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tracks.Create(ctx, releaseID, uid, req.Title, req.ISRC, req.DurationSec, req.Position)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, toTrackResp(t))
}

// List handles GET /v1/releases/:id/tracks.  Owner-only, like the
// release detail view.
func (h *TrackHandler) List(c echo.Context) error {
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

	tracks, err := h.Tracks.ListByRelease(ctx, releaseID, uid)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]trackResp, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, toTrackResp(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"tracks": out})
}

// Update handles PUT /v1/tracks/:id.
func (h *TrackHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid track id"})
	}
	var req trackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tracks.Update(ctx, id, uid, req.Title, req.ISRC, req.DurationSec, req.Position)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, toTrackResp(t))
}

// Delete handles DELETE /v1/tracks/:id.
func (h *TrackHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid track id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tracks.Delete(ctx, id, uid); err != nil {
		return repoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
