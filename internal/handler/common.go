package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/dental-clinic-desk/internal/encounter"
	"github.com/iliyamo/dental-clinic-desk/internal/gateway"
	"github.com/iliyamo/dental-clinic-desk/internal/middleware"
	"github.com/iliyamo/dental-clinic-desk/internal/recommend"
	"github.com/iliyamo/dental-clinic-desk/internal/repository"
)

var errNoOperator = errors.New("missing operator id in context")

// getUserID returns the operator id set by JWTAuth. Sessions are owned by it.
func getUserID(c echo.Context) (string, error) {
	if id := middleware.UserID(c); id != "" {
		return id, nil
	}
	return "", errNoOperator
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// statusFor maps domain errors to HTTP statuses. Write failures are checked
// before availability: a commit that failed against an unreachable store is
// still a failed commit.
func statusFor(err error) int {
	switch {
	case errors.Is(err, encounter.ErrAppointmentWriteFailed),
		errors.Is(err, encounter.ErrPaymentWriteFailed):
		return http.StatusBadGateway
	case errors.Is(err, encounter.ErrGatewayUnavailable), gateway.Unavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, encounter.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, encounter.ErrIncompleteSelection),
		errors.Is(err, encounter.ErrPartyNotSelected),
		errors.Is(err, encounter.ErrUnknownTreatment),
		errors.Is(err, encounter.ErrEmptyCart),
		errors.Is(err, encounter.ErrMissingVisitDate),
		errors.Is(err, encounter.ErrInvalidTender),
		errors.Is(err, recommend.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, encounter.ErrSessionNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, encounter.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, encounter.ErrSessionClosed),
		errors.Is(err, encounter.ErrInvalidState),
		errors.Is(err, encounter.ErrNotRetryable),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errNoOperator):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ..., "stage": ...}. Internal errors are not
// echoed to the client.
func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	body := echo.Map{"error": err.Error()}
	if status == http.StatusInternalServerError {
		body["error"] = "internal error"
	}
	var ce *encounter.CommitError
	if errors.As(err, &ce) {
		body["stage"] = ce.Stage
		if ce.AppointmentID != 0 {
			body["appointment_id"] = ce.AppointmentID
		}
	}
	return c.JSON(status, body)
}

// badRequest reports malformed input.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
