package api

import (
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

// mapErr translates a classified *apierrors.Error into an Echo HTTP error,
// the way the teacher's mapServiceError translates *services.ValidationError
// and the services.Err* sentinels into status codes.
func mapErr(err error) *echo.HTTPError {
	switch apierrors.KindOf(err) {
	case apierrors.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case apierrors.KindConflict, apierrors.KindStateViolation:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case apierrors.KindValidation:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case apierrors.KindExternal:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case apierrors.KindInterrupted:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	case apierrors.KindCorrupt:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("unclassified API error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
