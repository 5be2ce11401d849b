package webapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/moneta-ict/ledger/pkg/domain"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

// SuccessResponseJSON writes the standard success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseJSON returns a response following RFC 9457 Problem Details.
func ErrorResponseJSON(c *fiber.Ctx, status int, title string, detail any) error {
	pd := ProblemDetails{
		Type:   "about:blank",
		Title:  title,
		Status: status,
	}
	if detail != nil {
		if s, ok := detail.(string); ok {
			pd.Detail = s
		} else {
			pd.Errors = detail
		}
	}
	pd.Instance = c.OriginalURL()
	c.Set(fiber.HeaderContentType, "application/problem+json")

	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps domain errors to appropriate HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidStateTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// DomainErrorResponse maps a service error to the problem-details response.
func DomainErrorResponse(c *fiber.Ctx, err error) error {
	status := ErrorToStatusCode(err)
	title := "Request failed"
	switch status {
	case fiber.StatusNotFound:
		title = "Not found"
	case fiber.StatusBadRequest:
		title = "Validation failed"
	case fiber.StatusUnprocessableEntity:
		title = "Insufficient balance"
	case fiber.StatusConflict:
		title = "Conflict"
	case fiber.StatusInternalServerError:
		title = "Internal Server Error"
	}
	return ErrorResponseJSON(c, status, title, err.Error())
}

// BindAndValidate parses the request body and validates it using
// go-playground/validator. On failure it writes the error response itself
// and returns the error so the handler can stop.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
		return nil, err
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", err.Error())
		return nil, err
	}
	return &input, nil
}

// ParseUUIDParam reads a route parameter as a UUID, writing the error
// response on failure.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		ErrorResponseJSON(c, fiber.StatusBadRequest, "Validation failed", "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
