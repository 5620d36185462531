package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-room-reservation/internal/engine"
)

// writeEngineError maps the engine's error categories onto HTTP
// statuses: validation 400, not found 404, conflicts and bad state
// transitions 409. Anything uncategorized is a 500 with a generic
// body so internals never leak to clients.
func writeEngineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, engine.ErrConflict), errors.Is(err, engine.ErrState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// operatorID extracts the acting account's ID from the JWT claims
// stored by the auth middleware. JWT numerics decode as float64.
func operatorID(c echo.Context) uint64 {
	switch v := c.Get("account_id").(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	}
	return 0
}
