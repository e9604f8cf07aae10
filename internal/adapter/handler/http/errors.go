package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	domainErrors "github.com/ptiporki19/pxv-pay-app-sub003/internal/domain/errors"
	apperrors "github.com/ptiporki19/pxv-pay-app-sub003/pkg/errors"
)

// handleError converts use case errors into echo errors for the shared error
// handler. Client errors keep their domain type as the response code.
func handleError(err error) error {
	he := apperrors.ToHTTPError(domainErrors.ToAppError(err))

	var pe *domainErrors.PaymentError
	if errors.As(err, &pe) && he.Code < http.StatusInternalServerError {
		he.Message = apperrors.ErrorBody{Error: pe.Message, Code: pe.Type}
	}
	return he
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorBody{
		Error: msg,
		Code:  domainErrors.ErrTypeInvalidInput,
	})
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, badRequest("invalid id")
	}
	return id, nil
}
