package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront-order-service/internal/dto"
	"storefront-order-service/internal/service"

	"github.com/labstack/echo/v4"
)

var statusByErr = []struct {
	err    error
	status int
}{
	{service.ErrInvalidRequest, http.StatusBadRequest},
	{service.ErrInsufficientStock, http.StatusBadRequest},
	{service.ErrPaymentNotCompleted, http.StatusBadRequest},
	{service.ErrProductNotFound, http.StatusNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound},
	{service.ErrOrderAlreadyProcessed, http.StatusConflict},
	{service.ErrGatewayResponseMalformed, http.StatusBadGateway},
	{service.ErrGateway, http.StatusBadGateway},
	{service.ErrPersistence, http.StatusInternalServerError},
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

func messageFor(err error, status int) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
		return http.StatusText(he.Code)
	}
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	// Server-side details stay in the log.
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.err.Error()
		}
	}
	return http.StatusText(status)
}

// ErrorHandler renders every failure as {success:false, message}.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", status,
				"error", err,
			)
		}

		body := dto.MessageResponse{Success: false, Message: messageFor(err, status)}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", "error", err)
		}
	}
}
