package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/healer/pkg/registry"
)

// mapRegistryError maps registry-layer errors to HTTP error responses.
func mapRegistryError(err error) *echo.HTTPError {
	if errors.Is(err, registry.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "run not found")
	}
	if errors.Is(err, registry.ErrAlreadyExists) {
		return echo.NewHTTPError(http.StatusConflict, "run already exists")
	}
	slog.Error("unexpected registry error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
