package handler

import (
	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

// respondError writes the structured error body. Internal errors are masked
// by apperrors.From.
func respondError(c echo.Context, err error) error {
	appErr := apperrors.From(err)
	return c.JSON(appErr.Status(), appErr.Body())
}
