package handler

import (
	"encoding/json"
	"io"
	"strings"

	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

// bindStrictJSON decodes exactly one JSON value with no unknown fields.
func bindStrictJSON(c echo.Context, dst interface{}) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), contentTypeJSON) {
		return apperrors.BadRequest(msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apperrors.BadRequest(msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperrors.BadRequest(msgInvalidRequestBody)
	}

	return nil
}
