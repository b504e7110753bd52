package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"warbler/internal/errors"
)

// respondError maps a domain error onto an HTTP error with the standard body.
// Unexpected errors are logged with the request id and hidden from the client.
func respondError(c echo.Context, err error) *echo.HTTPError {
	mapped := errors.MapErrorToHTTP(err)
	if mapped.StatusCode >= http.StatusInternalServerError {
		log.Ctx(c.Request().Context()).Error().
			Err(err).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Str("route", c.Path()).
			Msg("request failed")
	}
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse())
}

func badRequest(message, code string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint, *echo.HTTPError) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid "+name, "INVALID_ID")
	}
	return uint(id), nil
}
