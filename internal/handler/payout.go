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
	"github.com/soundrail/distro/internal/service"
)

// PayoutHandler covers the artist-facing payout endpoints.  A
// payout request is validated against the live withdrawable
// balance, so two overlapping requests cannot both drain it: the
// second sees the first as outstanding.
type PayoutHandler struct {
	Payouts   *repository.PayoutRepo
	Royalties *service.RoyaltyService
	MinPayout float64
}

func NewPayoutHandler(payouts *repository.PayoutRepo, royalties *service.RoyaltyService, minPayout float64) *PayoutHandler {
	if payouts == nil || royalties == nil {
		panic("nil dependency passed to NewPayoutHandler")
	}
	return &PayoutHandler{Payouts: payouts, Royalties: royalties, MinPayout: minPayout}
}

type payoutReq struct {
	Amount float64 `json:"amount"`
	Method string  `json:"method"`
	Detail string  `json:"detail"`
}

type payoutResp struct {
	ID        uint64  `json:"id"`
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Detail    string  `json:"detail"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

func toPayoutResp(p model.Payout) payoutResp {
	return payoutResp{
		ID:        p.ID,
		Reference: p.Reference,
		Amount:    p.Amount,
		Method:    string(p.Method),
		Detail:    p.Detail,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/payouts.
func (h *PayoutHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req payoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	method, ok := model.ParsePayoutMethod(req.Method)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payout method", "field": "method"})
	}
	if strings.TrimSpace(req.Detail) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payout detail required", "field": "detail"})
	}
	if req.Amount < h.MinPayout {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "amount below minimum payout", "minimum": h.MinPayout})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	balance, err := h.Royalties.Balance(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	if req.Amount > balance {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "amount exceeds withdrawable balance", "balance": balance})
	}

	payout, err := h.Payouts.Create(ctx, uid, uuid.NewString(), req.Amount, method, strings.TrimSpace(req.Detail))
	if err != nil {
		return repoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"payout": toPayoutResp(payout)})
}

// List handles GET /v1/payouts.
func (h *PayoutHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payouts, err := h.Payouts.ListByUser(ctx, uid)
	if err != nil {
		return repoError(c, err)
	}
	out := make([]payoutResp, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, toPayoutResp(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"payouts": out})
}

// Get handles GET /v1/payouts/:id for the requesting artist.
func (h *PayoutHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payout id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	payout, err := h.Payouts.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err)
	}
	if payout.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"payout": toPayoutResp(payout)})
}
