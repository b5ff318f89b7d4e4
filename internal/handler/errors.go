package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/class-schedule/internal/logger"
	"github.com/iliyamo/class-schedule/internal/model"
	"github.com/iliyamo/class-schedule/internal/repository"
)

// statusClientClosed is written when the client went away mid-request.
const statusClientClosed = 499

// writeError maps err to a JSON error body.  Validation errors are the
// caller's fault (400), missing rows are 404; everything else is logged and reported as 500.
func writeError(c echo.Context, err error) error {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Code(), "message": ve.Reason})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": err.Error()})
	case errors.Is(err, context.Canceled):
		return c.NoContent(statusClientClosed)
	}
	logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "unexpected server error"})
}
