package handlers

import (
	"net/http"

	"citrus-link/models"
	"citrus-link/repositories/base"

	"github.com/labstack/echo/v4"
)

// serviceError maps repository taxonomy errors onto the API contract:
// missing entities are 404, violated constraints and duplicates are
// client errors, anything else is a generic server error.
func serviceError(c echo.Context, err error) error {
	switch {
	case base.IsEntityNotFound(err):
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: err.Error()})
	case base.IsValidationError(err), base.IsDuplicateEntity(err):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "An unexpected internal error occurred"})
	}
}

// badRequest reports any failure as a client error with its detail,
// used where the contract fixes the failure status to 400.
func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: err.Error()})
}
