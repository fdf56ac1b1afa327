package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://moneymanager.app/errors/validation"
	ErrorTypeNotFound     = "https://moneymanager.app/errors/not-found"
	ErrorTypeUnauthorized = "https://moneymanager.app/errors/unauthorized"
	ErrorTypeInternal     = "https://moneymanager.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// validationFields maps validation errors to the request field they concern
var validationFields = []struct {
	err   error
	field string
}{
	{domain.ErrEmptyID, "id"},
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrInvalidKind, "kind"},
	{domain.ErrNameRequired, "name"},
	{domain.ErrNameTooLong, "name"},
	{domain.ErrCategoryRequired, "category"},
	{domain.ErrDescriptionTooLong, "description"},
	{domain.ErrInvalidMonth, "month"},
	{domain.ErrInvalidYear, "year"},
}

// handleServiceError writes the problem details response matching err
func handleServiceError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return NewUnauthorizedError(c, "Authentication required")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		for _, v := range validationFields {
			if errors.Is(err, v.err) {
				return NewValidationError(c, "Validation failed", []ValidationError{
					{Field: v.field, Message: err.Error()},
				})
			}
		}
		return NewValidationError(c, err.Error(), nil)
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

// parseIntParam parses an optional integer query parameter; empty yields 0
func parseIntParam(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// invalidParam responds with a validation error for one request field
func invalidParam(c echo.Context, field, message string) error {
	return NewValidationError(c, "Invalid "+field, []ValidationError{
		{Field: field, Message: message},
	})
}

// parseKindParam parses an optional kind query parameter
func parseKindParam(c echo.Context) (*domain.Kind, error) {
	raw := c.QueryParam("kind")
	if raw == "" {
		return nil, nil
	}
	kind, err := domain.ParseKind(raw)
	if err != nil {
		return nil, err
	}
	return &kind, nil
}
