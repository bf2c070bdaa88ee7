package api

import (
	"context"
	"errors"
	"net/http"

	"wanderlust-service/internal/domain/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var statusByError = []struct {
	err    error
	status int
	code   string
}{
	{errs.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{errs.ErrRange, http.StatusBadRequest, "invalid_range"},
	{errs.ErrMissingEndpoint, http.StatusBadRequest, "missing_endpoint"},
	{errs.ErrUnknownWeekday, http.StatusBadGateway, "unknown_weekday"},
	{errs.ErrNotFound, http.StatusNotFound, "not_found"},
	{errs.ErrConflict, http.StatusConflict, "conflict"},
	{errs.ErrProviderUnavailable, http.StatusBadGateway, "provider_unavailable"},
	{errs.ErrUnsupported, http.StatusNotImplemented, "unsupported"},
	{errs.ErrGeolocationUnavailable, http.StatusServiceUnavailable, "geolocation_unavailable"},
	{errs.ErrDatabaseOperationFailed, http.StatusInternalServerError, "database_error"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// StatusFor maps a domain error onto an HTTP status and error code
func StatusFor(err error) (int, string) {
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// ErrorHandler renders domain errors and echo errors as ErrorResponse
func (s *Server) ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, ErrorResponse{Error: "http_error", Message: msg})
		return
	}

	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}
	_ = c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
