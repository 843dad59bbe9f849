package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/soundrail/distro/internal/royalty"
	"github.com/soundrail/distro/internal/service"
)

// EarningsHandler serves the earnings and analytics views.  Each
// endpoint runs one attribution pass through the royalty service
// and shapes the same attributed rows, so the numbers agree across
// views by construction.
type EarningsHandler struct {
	Royalties *service.RoyaltyService
}

func NewEarningsHandler(royalties *service.RoyaltyService) *EarningsHandler {
	if royalties == nil {
		panic("nil royalty service passed to NewEarningsHandler")
	}
	return &EarningsHandler{Royalties: royalties}
}

type claimResp struct {
	ReleaseID    uint64  `json:"release_id"`
	Title        string  `json:"title"`
	CatalogueNo  string  `json:"catalogue_no"`
	Role         string  `json:"role"`
	SharePercent float64 `json:"share_percent"`
}

type earningRowResp struct {
	ReleaseID       uint64  `json:"release_id"`
	ReleaseTitle    string  `json:"release_title"`
	Platform        string  `json:"platform"`
	Territory       string  `json:"territory"`
	ReportingPeriod string  `json:"reporting_period"`
	ActivityPeriod  string  `json:"activity_period"`
	Streams         int64   `json:"streams"`
	Royalty         float64 `json:"royalty"`
	SharePercent    float64 `json:"share_percent"`
	Attributed      float64 `json:"attributed"`
}

// Claims handles GET /v1/earnings/claims: every release the user
// owns or collaborates on, with the resolved percentage.
func (h *EarningsHandler) Claims(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	claims, _, err := h.Royalties.Claims(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]claimResp, 0, len(claims))
	for _, cl := range claims {
		out = append(out, claimResp{
			ReleaseID:    cl.Release.ID,
			Title:        cl.Release.Title,
			CatalogueNo:  cl.Release.CatalogueNo,
			Role:         cl.Claim.Role.String(),
			SharePercent: cl.Claim.Percent,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"claims": out})
}

// List handles GET /v1/earnings: the raw attributed rows.
func (h *EarningsHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.Royalties.AttributedRows(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]earningRowResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, earningRowResp{
			ReleaseID:       r.ReleaseID,
			ReleaseTitle:    r.ReleaseTitle,
			Platform:        r.Platform,
			Territory:       r.Territory,
			ReportingPeriod: r.ReportingPeriod,
			ActivityPeriod:  r.ActivityPeriod,
			Streams:         r.Streams,
			Royalty:         r.Royalty,
			SharePercent:    r.SharePercent,
			Attributed:      r.Attributed,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"earnings": out})
}

// Summary handles GET /v1/earnings/summary.
func (h *EarningsHandler) Summary(c echo.Context) error {
	return h.shaped(c, func(rows []royalty.AttributedRow) any {
		return royalty.Summarize(rows)
	})
}

// ByPlatform handles GET /v1/earnings/platforms.
func (h *EarningsHandler) ByPlatform(c echo.Context) error {
	return h.shaped(c, func(rows []royalty.AttributedRow) any {
		return echo.Map{"platforms": royalty.ByPlatform(rows)}
	})
}

// ByTerritory handles GET /v1/earnings/territories.
func (h *EarningsHandler) ByTerritory(c echo.Context) error {
	return h.shaped(c, func(rows []royalty.AttributedRow) any {
		return echo.Map{"territories": royalty.ByTerritory(rows)}
	})
}

// ByPeriod handles GET /v1/earnings/periods.
func (h *EarningsHandler) ByPeriod(c echo.Context) error {
	return h.shaped(c, func(rows []royalty.AttributedRow) any {
		return echo.Map{"periods": royalty.ByPeriod(rows)}
	})
}

// Balance handles GET /v1/earnings/balance: attributed earnings
// minus outstanding payouts.
func (h *EarningsHandler) Balance(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	balance, err := h.Royalties.Balance(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"balance": balance})
}

func (h *EarningsHandler) shaped(c echo.Context, shape func([]royalty.AttributedRow) any) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rows, err := h.Royalties.AttributedRows(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusOK, shape(rows))
}
