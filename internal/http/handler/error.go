package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"payoutrecon/internal/http/middleware"
	"payoutrecon/internal/reconcile"
	"payoutrecon/internal/service"
	"payoutrecon/internal/shopify"
)

// errorPayload is the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

// writeError writes a JSON error with a machine-readable code and a safe
// message. Internal error text is never sent.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var serviceErrors = []errorMapping{
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", "id is required"},
	{service.ErrInvalidDate, fiber.StatusBadRequest, "INVALID_DATE", "dates must be YYYY-MM-DD"},
	{service.ErrInvalidTimezone, fiber.StatusBadRequest, "INVALID_TIMEZONE", "unknown timezone"},
	{service.ErrInvalidGrouping, fiber.StatusBadRequest, "INVALID_GROUP_BY", "group_by must be order_date or payout_date"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrInvalidPayouts, fiber.StatusUnprocessableEntity, "INVALID_PAYOUT_FILE", "payout export could not be read"},
	{reconcile.ErrNoPayouts, fiber.StatusUnprocessableEntity, "NO_PAYOUTS", "payout export has no transactions"},
	{reconcile.ErrNoOrders, fiber.StatusUnprocessableEntity, "NO_ORDERS", "no orders found for the date"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "reconciliation run not found"},
	{service.ErrReportNotFound, fiber.StatusNotFound, "REPORT_NOT_FOUND", "report not found"},
}

// writeServiceError maps service and engine errors to HTTP responses.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	var apiErr *shopify.APIError
	var gqlErr *shopify.GraphQLError
	if errors.As(err, &apiErr) || errors.As(err, &gqlErr) {
		return writeError(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "shopify request failed")
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "payout export is too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
