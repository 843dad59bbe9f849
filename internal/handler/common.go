// Package handler implements the HTTP endpoints.  Handlers bind
// and validate the request, extract the authenticated user id that
// JWTAuth stored in the context, and call into repositories and
// services with that identity as an explicit argument.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/soundrail/distro/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it
// to uint64.  JWT numeric claims round-trip as float64, so that is
// the common case.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// repoError translates the shared repository sentinels into HTTP
// responses.  Handlers call it as the final fallback after their
// endpoint-specific error handling.
func repoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, repository.ErrReleaseNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "release not found"})
	case errors.Is(err, repository.ErrTrackNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "track not found"})
	case errors.Is(err, repository.ErrShareNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
	case errors.Is(err, repository.ErrPayoutNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payout not found"})
	case errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
